package models

import "time"

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// Per-file observable statuses. A brochure never moves backwards.
const (
	FileStatusPending   = "pending"
	FileStatusUploading = "uploading"
	FileStatusSuccess   = "success"
	FileStatusError     = "error"
)

// Run is one user-initiated extraction invocation. It holds no state
// across invocations; the result (when succeeded) is stored alongside it.
type Run struct {
	RunID        string    `json:"run_id"`
	Status       string    `json:"status"`
	FileCount    int       `json:"file_count"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Brochure is a tracked file owned by a single run.
type Brochure struct {
	BrochureID   string    `json:"brochure_id"`
	RunID        string    `json:"run_id"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	Status       string    `json:"status"`
	Progress     int       `json:"progress"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
