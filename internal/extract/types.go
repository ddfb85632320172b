// Package extract holds the extraction-domain types shared between the
// extraction service client, the merger and the API.
package extract

type Project struct {
	Name        string `json:"name"`
	Developer   string `json:"developer,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Unit is a single sellable inventory item parsed out of a brochure.
type Unit struct {
	Name      string  `json:"name"`
	Type      string  `json:"type,omitempty"`
	Floor     string  `json:"floor,omitempty"`
	Bedrooms  int     `json:"bedrooms,omitempty"`
	Bathrooms int     `json:"bathrooms,omitempty"`
	AreaSqft  float64 `json:"area_sqft,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Currency  string  `json:"currency,omitempty"`
}

type Installment struct {
	Milestone string  `json:"milestone"`
	Percent   float64 `json:"percent"`
}

type PaymentPlan struct {
	DownPaymentPercent float64       `json:"down_payment_percent,omitempty"`
	Installments       []Installment `json:"installments,omitempty"`
	HandoverDate       string        `json:"handover_date,omitempty"`
}

type Stats struct {
	TotalUnits int     `json:"total_units"`
	MinPrice   float64 `json:"min_price,omitempty"`
	MaxPrice   float64 `json:"max_price,omitempty"`
	AvgPrice   float64 `json:"avg_price,omitempty"`
}

// BatchResult is the extraction service's response for one batch of files.
type BatchResult struct {
	Project     Project     `json:"project"`
	Units       []Unit      `json:"units"`
	PaymentPlan PaymentPlan `json:"payment_plan"`
	Stats       Stats       `json:"stats"`
	Confidence  string      `json:"confidence"`
	FileCount   int         `json:"file_count"`
	Model       string      `json:"model"`
}

// UnifiedResult is the pipeline's final output, combining every batch
// result with the image track's brochure page URLs.
type UnifiedResult struct {
	Project        Project     `json:"project"`
	Units          []Unit      `json:"units"`
	PaymentPlan    PaymentPlan `json:"payment_plan"`
	Stats          Stats       `json:"stats"`
	Confidence     string      `json:"confidence"`
	FileCount      int         `json:"file_count"`
	Model          string      `json:"model"`
	BrochureImages []string    `json:"brochure_images"`
}
