// internal/server/handlers.go
package server

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"

	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/pipeline"
	"github.com/cozypet/loan-processor-ai/internal/report"

	"github.com/gin-gonic/gin"
)

const maxDocumentBytes = 20 << 20 // single PDF upload cap

// handleSubmit accepts a multipart submission with identity_document,
// income_document, an optional bank_statement and a loan_amount field, runs
// the pipeline and returns the persisted decision.
func (s *Server) handleSubmit(c *gin.Context) {
	amount, err := s.parseLoanAmount(c.PostForm("loan_amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := readFormDocument(c, "identity_document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	income, err := readFormDocument(c, "income_document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bank, err := readOptionalFormDocument(c, "bank_statement")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), pipeline.Input{
		IdentityDocument: identity,
		IncomeDocument:   income,
		BankDocument:     bank,
		LoanAmount:       amount,
	})
	if err != nil {
		s.respondRunError(c, result, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"application_id":  result.ApplicationID,
		"run_id":          result.RunID,
		"loan_amount":     result.LoanAmount,
		"applicant_data":  result.Profile,
		"risk_assessment": result.Assessment,
	})
}

// respondRunError maps pipeline failures to HTTP statuses. A persistence
// failure arrives with a populated result; the computed decision is returned
// in the body so the caller does not lose it.
func (s *Server) respondRunError(c *gin.Context, result *pipeline.Result, err error) {
	var stdErr *stderrors.StandardError
	if !errors.As(err, &stdErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.WithError(err).Error("pipeline run failed", map[string]interface{}{
		"error_code": stdErr.Code,
	})

	switch stdErr.Code {
	case stderrors.ErrCodeUnknownDocumentType, stderrors.ErrCodeInvalidLoanAmount:
		c.JSON(http.StatusBadRequest, gin.H{"error": stdErr.Message, "code": stdErr.Code})
	case stderrors.ErrCodeExtractionServiceError:
		c.JSON(http.StatusBadGateway, gin.H{"error": stdErr.Message, "code": stdErr.Code})
	case stderrors.ErrCodeExtractionDataError, stderrors.ErrCodeNoDataExtracted:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": stdErr.Message, "code": stdErr.Code})
	case stderrors.ErrCodePersistenceError:
		body := gin.H{"error": stdErr.Message, "code": stdErr.Code}
		if result != nil {
			body["run_id"] = result.RunID
			body["applicant_data"] = result.Profile
			body["risk_assessment"] = result.Assessment
			body["loan_amount"] = result.LoanAmount
		}
		c.JSON(http.StatusInternalServerError, body)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": stdErr.Message, "code": stdErr.Code})
	}
}

func (s *Server) handleGet(c *gin.Context) {
	app, err := s.reader.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}
	c.JSON(http.StatusOK, app)
}

// handleReport renders the stored application as a downloadable JSON report.
func (s *Server) handleReport(c *gin.Context) {
	app, err := s.reader.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	rep := report.Build(app.ApplicantData, app.RiskAssessment)
	payload, err := rep.Marshal()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report rendering failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(rep.Timestamp)))
	c.Data(http.StatusOK, "application/json", payload)
}

// parseLoanAmount enforces the submission bounds from policy: range and
// step. The pipeline itself only rejects non-positive amounts; the granular
// constraints belong to the intake surface.
func (s *Server) parseLoanAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("loan_amount is required")
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("loan_amount is not a number: %q", raw)
	}
	// ParseFloat accepts "NaN" and "Inf", and every range comparison below
	// is false for NaN, so non-finite values must be rejected explicitly.
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("loan_amount is not a finite number: %q", raw)
	}

	policy := s.cfg.Policy
	if amount < policy.MinLoanAmountEUR || amount > policy.MaxLoanAmountEUR {
		return 0, fmt.Errorf("loan_amount must be between %.0f and %.0f EUR",
			policy.MinLoanAmountEUR, policy.MaxLoanAmountEUR)
	}
	if policy.LoanAmountStepEUR > 0 {
		offset := math.Mod(amount-policy.MinLoanAmountEUR, policy.LoanAmountStepEUR)
		if math.Min(offset, policy.LoanAmountStepEUR-offset) > 1e-9 {
			return 0, fmt.Errorf("loan_amount must be a multiple of %.0f EUR", policy.LoanAmountStepEUR)
		}
	}
	return amount, nil
}

func readFormDocument(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s is required", field)
	}
	return readDocument(header, field)
}

func readOptionalFormDocument(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return readDocument(header, field)
}

func readDocument(header *multipart.FileHeader, field string) ([]byte, error) {
	if header.Size > maxDocumentBytes {
		return nil, fmt.Errorf("%s exceeds the %d MB upload limit", field, maxDocumentBytes>>20)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%s could not be read", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s could not be read", field)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", field)
	}
	return data, nil
}
