package services

import "fmt"

// ExtractionError carries the extraction service's failure response.
// Error() returns the server-provided message verbatim when present so it
// can be surfaced to the caller unchanged.
type ExtractionError struct {
	StatusCode int
	Message    string
}

func (e *ExtractionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("extraction service returned status %d", e.StatusCode)
}
