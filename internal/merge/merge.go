// Package merge combines per-batch extraction results into the pipeline's
// unified output.
package merge

import "brochureflow/internal/extract"

// Unified folds batch results in batch order. The first batch seeds the
// project, payment plan, stats, confidence and model; later batches only
// contribute their units (concatenated, order preserved) and add their
// stats.total_units. Other stats fields stand as reported by the first
// batch; cross-batch disagreement on project or payment plan is not
// reconciled. brochureImages is attached regardless of batch count.
func Unified(batches []extract.BatchResult, brochureImages []string) extract.UnifiedResult {
	out := extract.UnifiedResult{
		Units:          []extract.Unit{},
		BrochureImages: brochureImages,
	}
	if out.BrochureImages == nil {
		out.BrochureImages = []string{}
	}
	for i, b := range batches {
		if i == 0 {
			out.Project = b.Project
			out.PaymentPlan = b.PaymentPlan
			out.Stats = b.Stats
			out.Confidence = b.Confidence
			out.Model = b.Model
		} else {
			out.Stats.TotalUnits += b.Stats.TotalUnits
		}
		out.Units = append(out.Units, b.Units...)
		out.FileCount += b.FileCount
	}
	return out
}
