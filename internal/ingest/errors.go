package ingest

import "fmt"

// Validation error codes returned by the ingestion pipeline. Detected before
// any write; never retried by the server.
const (
	CodeMissingField     = "MissingField"
	CodeEmptyMessage     = "EmptyMessage"
	CodePayloadTooLarge  = "PayloadTooLarge"
	CodeInvalidTimestamp = "InvalidTimestamp"
)

// ValidationError describes a rejected payload with enough detail to
// correct the request.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Code: CodeMissingField, Field: field, Message: field + " is required"}
}

func emptyMessage() *ValidationError {
	return &ValidationError{Code: CodeEmptyMessage, Message: "at least one of text, media, or sourceUrl is required"}
}

func payloadTooLarge(limit int64) *ValidationError {
	return &ValidationError{
		Code:    CodePayloadTooLarge,
		Field:   "media",
		Message: fmt.Sprintf("inline media exceeds %d byte limit", limit),
	}
}

func invalidTimestamp(raw string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidTimestamp,
		Field:   "timestamp",
		Message: fmt.Sprintf("cannot parse %q as epoch milliseconds or RFC3339", raw),
	}
}
