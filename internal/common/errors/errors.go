// Package errors provides standardized error handling for the loan pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Extraction stage errors. All fatal for the run, none retried.
	ErrCodeUnknownDocumentType    ErrorCode = "UNKNOWN_DOCUMENT_TYPE"
	ErrCodeExtractionServiceError ErrorCode = "EXTRACTION_SERVICE_ERROR"
	ErrCodeExtractionDataError    ErrorCode = "EXTRACTION_DATA_ERROR"
	ErrCodeNoDataExtracted        ErrorCode = "NO_DATA_EXTRACTED"

	// Scoring stage errors. Absorbed into the safe-default assessment,
	// never surfaced to the caller.
	ErrCodeScoringTransportError ErrorCode = "SCORING_TRANSPORT_ERROR"
	ErrCodeScoringParseError     ErrorCode = "SCORING_PARSE_ERROR"

	// Storage errors surface after scoring completed.
	ErrCodePersistenceError ErrorCode = "PERSISTENCE_ERROR"

	ErrCodeInvalidLoanAmount ErrorCode = "INVALID_LOAN_AMOUNT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewUnknownDocumentTypeError creates a caller error for a category that is
// not in the schema registry. Raised before any network call is made.
func NewUnknownDocumentTypeError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownDocumentType,
		Message:   "Unknown document type",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionServiceError creates an error for a transport or HTTP failure
// while calling the document extraction service.
func NewExtractionServiceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionServiceError,
		Message:   "Document extraction service error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionDataError creates an error for a response the service produced
// but which carried no usable structured data.
func NewExtractionDataError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionDataError,
		Message:   "Document extraction returned unusable data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoDataExtractedError creates an error for a response with neither a
// structured annotation nor markdown text.
func NewNoDataExtractedError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoDataExtracted,
		Message:   "No data extracted from document",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringTransportError creates an error for a reasoning-model transport
// failure. Callers convert it to the fallback assessment, never propagate it.
func NewScoringTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringTransportError,
		Message:   "Risk analysis service unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringParseError creates an error for a reasoning-model response that
// could not be parsed or validated against the assessment schema.
func NewScoringParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringParseError,
		Message:   "Risk analysis response parsing failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceError creates an error for a storage write failure.
func NewPersistenceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceError,
		Message:   "Application record persistence failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLoanAmountError creates a caller error for a non-positive amount.
func NewInvalidLoanAmountError(amount float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLoanAmount,
		Message:   "Loan amount must be positive",
		Details:   fmt.Sprintf("amount: %.2f", amount),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "EXTRACTED"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "SCORING"):
		return "SCORING"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
