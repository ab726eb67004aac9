package errs

import "fmt"

// Kind categorizes application errors for the JSON error contract.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// MissingParameter indicates a required query or body field was absent.
	// Reported in the JSON body with HTTP 200, preserving the original contract.
	MissingParameter
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Network indicates DNS, connection, or timeout failure reaching the target (HTTP 502).
	Network
	// UpstreamStatus indicates the target responded with an error status (HTTP 502).
	UpstreamStatus
	// Timeout indicates the operation exceeded its deadline (HTTP 504).
	Timeout
	// ParseFailed indicates the fetched markup lacked the expected structure (HTTP 500).
	ParseFailed
)

// AppError carries a category, user message, and original cause.
// Nothing in this service escalates an AppError to a process failure:
// every component converts it into a structured result at its boundary.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target, when relevant
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Missing builds the canonical error for an absent required field.
func Missing(field string) *AppError {
	return &AppError{Kind: MissingParameter, Message: field + " missing"}
}
