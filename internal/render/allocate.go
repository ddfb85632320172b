// Package render holds the image track's page-budget arithmetic. The
// rasterization itself is an external service; this package only decides
// how many pages of each file to request.
package render

// AllocatePages spreads a global page budget across files, one page per
// file per round in input order, so every file contributes at least its
// first page before any file contributes a second. Files with an unknown
// page count (0) are skipped. Deterministic for a given input.
func AllocatePages(pageCounts []int, totalMaxPages int) []int {
	alloc := make([]int, len(pageCounts))
	if totalMaxPages <= 0 {
		return alloc
	}
	remaining := totalMaxPages
	for remaining > 0 {
		granted := false
		for i, n := range pageCounts {
			if alloc[i] >= n {
				continue
			}
			alloc[i]++
			remaining--
			granted = true
			if remaining == 0 {
				break
			}
		}
		if !granted {
			break
		}
	}
	return alloc
}

// TotalPages sums an allocation.
func TotalPages(alloc []int) int {
	total := 0
	for _, n := range alloc {
		total += n
	}
	return total
}
