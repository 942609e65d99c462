// internal/extractor/models.go
package extractor

import (
	"encoding/json"

	"github.com/cozypet/loan-processor-ai/internal/schema"
)

// IdentityFields holds the structured output for an identity document.
type IdentityFields struct {
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	DocumentNumber string `json:"document_number"`
	DocumentType   string `json:"document_type,omitempty"`
	Address        string `json:"address,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	IssueDate      string `json:"issue_date,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
}

// IncomeFields holds the structured output for a payslip or employment
// contract. Numeric fields are pointers so a missing value is distinguishable
// from an extracted zero.
type IncomeFields struct {
	ApplicantName       string   `json:"applicant_name"`
	EmployerName        string   `json:"employer_name"`
	JobTitle            string   `json:"job_title"`
	MonthlyGrossIncome  *float64 `json:"monthly_gross_income,omitempty"`
	MonthlyNetIncome    *float64 `json:"monthly_net_income,omitempty"`
	EmploymentStartDate string   `json:"employment_start_date,omitempty"`
	ContractType        string   `json:"contract_type,omitempty"`
	PaymentDate         string   `json:"payment_date,omitempty"`
}

// BankFields holds the structured output for a bank statement.
type BankFields struct {
	AccountHolderName     string   `json:"account_holder_name"`
	StatementPeriodStart  string   `json:"statement_period_start"`
	StatementPeriodEnd    string   `json:"statement_period_end"`
	AverageBalance        *float64 `json:"average_balance,omitempty"`
	TotalIncome           *float64 `json:"total_income,omitempty"`
	TotalExpenses         *float64 `json:"total_expenses,omitempty"`
	RecurringLoanPayments *float64 `json:"recurring_loan_payments,omitempty"`
	OverdraftOccurrences  *int     `json:"overdraft_occurrences,omitempty"`
}

// ExtractedRecord is the tagged result of one document extraction. Exactly
// one of the structured variants matches Category when the service returned
// an annotation; a record with only RawText is a degraded markdown fallback
// that downstream combination must tolerate.
type ExtractedRecord struct {
	Category schema.Category `json:"category"`
	Identity *IdentityFields `json:"identity,omitempty"`
	Income   *IncomeFields   `json:"income,omitempty"`
	Bank     *BankFields     `json:"bank,omitempty"`
	RawText  string          `json:"raw_text,omitempty"`
}

// Degraded reports whether the record carries only raw markdown text.
func (r *ExtractedRecord) Degraded() bool {
	return r.Identity == nil && r.Income == nil && r.Bank == nil
}

// recordFromAnnotation builds the typed variant for category from the
// annotation JSON.
func recordFromAnnotation(category schema.Category, annotation []byte) (*ExtractedRecord, error) {
	rec := &ExtractedRecord{Category: category}

	switch category {
	case schema.CategoryIdentity:
		var f IdentityFields
		if err := json.Unmarshal(annotation, &f); err != nil {
			return nil, err
		}
		rec.Identity = &f
	case schema.CategoryIncome:
		var f IncomeFields
		if err := json.Unmarshal(annotation, &f); err != nil {
			return nil, err
		}
		rec.Income = &f
	case schema.CategoryBankStatement:
		var f BankFields
		if err := json.Unmarshal(annotation, &f); err != nil {
			return nil, err
		}
		rec.Bank = &f
	}

	return rec, nil
}

// Wire types for the extraction service response. Only the fields the
// pipeline reads are declared.
type extractionResponse struct {
	Pages []extractionPage `json:"pages"`
}

type extractionPage struct {
	Markdown string            `json:"markdown"`
	Images   []extractionImage `json:"images"`
}

type extractionImage struct {
	// ImageAnnotation arrives either as a JSON object or as a JSON string
	// containing encoded JSON, depending on the service version.
	ImageAnnotation json.RawMessage `json:"image_annotation"`
}

// annotationBytes normalizes the two annotation encodings to raw JSON.
func (i extractionImage) annotationBytes() ([]byte, error) {
	if len(i.ImageAnnotation) == 0 {
		return nil, nil
	}
	if i.ImageAnnotation[0] == '"' {
		var inner string
		if err := json.Unmarshal(i.ImageAnnotation, &inner); err != nil {
			return nil, err
		}
		return []byte(inner), nil
	}
	return i.ImageAnnotation, nil
}
