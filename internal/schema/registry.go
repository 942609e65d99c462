// internal/schema/registry.go
package schema

import (
	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
)

// Category identifies a supported loan document type. Unknown categories are
// rejected at construction time via ParseCategory.
type Category string

const (
	CategoryIdentity      Category = "identity"
	CategoryIncome        Category = "income"
	CategoryBankStatement Category = "bank_statement"
)

// ParseCategory converts a raw string to a Category, failing for anything
// outside the registry.
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryIdentity, CategoryIncome, CategoryBankStatement:
		return Category(raw), nil
	default:
		return "", stderrors.NewUnknownDocumentTypeError(raw)
	}
}

// Schema is a JSON Schema object sent to the extraction service as a strict
// structured-output constraint.
type Schema map[string]interface{}

// For returns the extraction schema for a category.
func For(c Category) (Schema, bool) {
	s, ok := registry[c]
	return s, ok
}

// Categories returns all registered categories.
func Categories() []Category {
	return []Category{CategoryIdentity, CategoryIncome, CategoryBankStatement}
}

// registry is immutable after process start. Field sets mirror the document
// types the bank accepts for a loan file.
var registry = map[Category]Schema{
	CategoryIdentity: {
		"title": "IdentityDocument",
		"type":  "object",
		"properties": map[string]interface{}{
			"full_name":       map[string]interface{}{"type": "string", "description": "Full name of the person"},
			"date_of_birth":   map[string]interface{}{"type": "string", "description": "Date of birth in YYYY-MM-DD format"},
			"document_number": map[string]interface{}{"type": "string", "description": "Document identification number"},
			"document_type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"passport", "id_card", "drivers_license"},
				"description": "Type of identity document",
			},
			"address":     map[string]interface{}{"type": "string", "description": "Residential address"},
			"nationality": map[string]interface{}{"type": "string", "description": "Nationality"},
			"issue_date":  map[string]interface{}{"type": "string", "description": "Document issue date"},
			"expiry_date": map[string]interface{}{"type": "string", "description": "Document expiry date"},
		},
		"required":             []string{"full_name", "date_of_birth", "document_number"},
		"additionalProperties": false,
	},
	CategoryIncome: {
		"title": "IncomeDocument",
		"type":  "object",
		"properties": map[string]interface{}{
			"applicant_name":        map[string]interface{}{"type": "string", "description": "Name of the employee/applicant"},
			"employer_name":         map[string]interface{}{"type": "string", "description": "Name of the employer company"},
			"job_title":             map[string]interface{}{"type": "string", "description": "Job title or position"},
			"monthly_gross_income":  map[string]interface{}{"type": "number", "description": "Monthly gross salary/income in euros"},
			"monthly_net_income":    map[string]interface{}{"type": "number", "description": "Monthly net salary/income in euros"},
			"employment_start_date": map[string]interface{}{"type": "string", "description": "Employment start date in YYYY-MM-DD format"},
			"contract_type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"permanent", "fixed_term", "temporary"},
				"description": "Type of employment contract",
			},
			"payment_date": map[string]interface{}{"type": "string", "description": "Latest payment date"},
		},
		"required":             []string{"applicant_name", "employer_name", "job_title", "monthly_gross_income", "employment_start_date"},
		"additionalProperties": false,
	},
	CategoryBankStatement: {
		"title": "BankStatement",
		"type":  "object",
		"properties": map[string]interface{}{
			"account_holder_name":     map[string]interface{}{"type": "string", "description": "Name of the account holder"},
			"statement_period_start":  map[string]interface{}{"type": "string", "description": "Statement period start date"},
			"statement_period_end":    map[string]interface{}{"type": "string", "description": "Statement period end date"},
			"average_balance":         map[string]interface{}{"type": "number", "description": "Average account balance in euros"},
			"total_income":            map[string]interface{}{"type": "number", "description": "Total income/deposits during period"},
			"total_expenses":          map[string]interface{}{"type": "number", "description": "Total expenses/withdrawals during period"},
			"recurring_loan_payments": map[string]interface{}{"type": "number", "description": "Monthly recurring loan payments"},
			"overdraft_occurrences":   map[string]interface{}{"type": "integer", "description": "Number of overdraft occurrences"},
		},
		"required":             []string{"account_holder_name", "statement_period_start", "statement_period_end"},
		"additionalProperties": false,
	},
}
