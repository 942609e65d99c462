// internal/profile/models.go
package profile

// ApplicantProfile is the flattened record combining one identity record,
// one income record, and an optional bank-statement record.
//
// EmploymentMonths is always present and non-negative. Monetary fields
// default to 0 when source data is missing, except the bank-statement-only
// fields, which stay nil when no bank statement was supplied. The asymmetry
// on RecurringLoanPayments (0 rather than nil without a statement) keeps the
// risk engine's debt computation well-defined.
type ApplicantProfile struct {
	FullName            string  `json:"full_name" bson:"full_name"`
	DateOfBirth         string  `json:"date_of_birth" bson:"date_of_birth"`
	DocumentNumber      string  `json:"document_number" bson:"document_number"`
	Address             string  `json:"address" bson:"address"`
	EmployerName        string  `json:"employer_name" bson:"employer_name"`
	JobTitle            string  `json:"job_title" bson:"job_title"`
	MonthlyGrossIncome  float64 `json:"monthly_gross_income" bson:"monthly_gross_income"`
	MonthlyNetIncome    float64 `json:"monthly_net_income" bson:"monthly_net_income"`
	EmploymentStartDate string  `json:"employment_start_date" bson:"employment_start_date"`
	EmploymentMonths    int     `json:"employment_months" bson:"employment_months"`
	ContractType        string  `json:"contract_type" bson:"contract_type"`

	AverageBalance        *float64 `json:"average_balance" bson:"average_balance"`
	TotalExpenses         *float64 `json:"total_expenses" bson:"total_expenses"`
	RecurringLoanPayments float64  `json:"recurring_loan_payments" bson:"recurring_loan_payments"`
	OverdraftOccurrences  *int     `json:"overdraft_occurrences" bson:"overdraft_occurrences"`
}
