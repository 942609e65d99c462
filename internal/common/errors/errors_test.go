// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeUnknownDocumentType, "EXTRACTION"},
		{ErrCodeExtractionServiceError, "EXTRACTION"},
		{ErrCodeExtractionDataError, "EXTRACTION"},
		{ErrCodeNoDataExtracted, "EXTRACTION"},
		{ErrCodeScoringTransportError, "SCORING"},
		{ErrCodeScoringParseError, "SCORING"},
		{ErrCodePersistenceError, "STORAGE"},
		{ErrCodeInvalidLoanAmount, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}

func TestConstructorsAreNonRetryable(t *testing.T) {
	errs := []*StandardError{
		NewUnknownDocumentTypeError("tax_return"),
		NewExtractionServiceError(errors.New("status 502")),
		NewExtractionDataError("bad annotation"),
		NewNoDataExtractedError("identity"),
		NewScoringTransportError(errors.New("refused")),
		NewScoringParseError(errors.New("no json")),
		NewPersistenceError(errors.New("write concern")),
		NewInvalidLoanAmountError(-1),
	}

	for _, err := range errs {
		require.NotEmpty(t, err.Code)
		assert.False(t, err.Retryable)
		assert.False(t, err.Timestamp.IsZero())
		assert.Contains(t, err.Error(), string(err.Code))
	}
}
