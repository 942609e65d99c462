// internal/profile/combiner.go
package profile

import (
	"time"

	"github.com/cozypet/loan-processor-ai/internal/extractor"
)

const unknownName = "Unknown"

const dateLayout = "2006-01-02"

// Combiner merges extracted records into one ApplicantProfile. It never
// fails: missing or degraded source data resolves to defaults, so a
// best-effort profile is always produced.
type Combiner struct {
	// NetIncomeGrossRatio is applied when the income document carries no net
	// income figure. Business constant, configured not hard-coded.
	NetIncomeGrossRatio float64

	// Now is injectable for deterministic employment-duration tests.
	Now func() time.Time
}

func NewCombiner(netIncomeGrossRatio float64) *Combiner {
	return &Combiner{
		NetIncomeGrossRatio: netIncomeGrossRatio,
		Now:                 time.Now,
	}
}

// Combine flattens identity, income and the optional bank record. Degraded
// records (markdown fallback, no structured variant) contribute defaults.
func (c *Combiner) Combine(identity, income, bank *extractor.ExtractedRecord) ApplicantProfile {
	idFields := identityFields(identity)
	incFields := incomeFields(income)

	out := ApplicantProfile{
		FullName:       resolveName(idFields, incFields),
		DateOfBirth:    idFields.DateOfBirth,
		DocumentNumber: idFields.DocumentNumber,
		Address:        idFields.Address,
		EmployerName:   incFields.EmployerName,
		JobTitle:       incFields.JobTitle,
		ContractType:   incFields.ContractType,
	}
	if out.ContractType == "" {
		out.ContractType = "unknown"
	}

	if incFields.MonthlyGrossIncome != nil {
		out.MonthlyGrossIncome = *incFields.MonthlyGrossIncome
	}
	switch {
	case incFields.MonthlyNetIncome != nil:
		out.MonthlyNetIncome = *incFields.MonthlyNetIncome
	case incFields.MonthlyGrossIncome != nil:
		out.MonthlyNetIncome = *incFields.MonthlyGrossIncome * c.NetIncomeGrossRatio
	}

	out.EmploymentStartDate = incFields.EmploymentStartDate
	out.EmploymentMonths = c.employmentMonths(incFields.EmploymentStartDate)

	if bank != nil {
		bf := bankFields(bank)
		out.AverageBalance = valueOrZero(bf.AverageBalance)
		out.TotalExpenses = valueOrZero(bf.TotalExpenses)
		if bf.RecurringLoanPayments != nil {
			out.RecurringLoanPayments = *bf.RecurringLoanPayments
		}
		occurrences := 0
		if bf.OverdraftOccurrences != nil {
			occurrences = *bf.OverdraftOccurrences
		}
		out.OverdraftOccurrences = &occurrences
	}
	// Without a statement AverageBalance/TotalExpenses/OverdraftOccurrences
	// stay nil and RecurringLoanPayments stays 0.

	return out
}

// employmentMonths computes whole calendar months since the start date. Any
// parse failure yields 0 silently; this fail-open default is deliberate.
func (c *Combiner) employmentMonths(startDate string) int {
	if startDate == "" {
		return 0
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0
	}
	now := c.Now()
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if months < 0 {
		return 0
	}
	return months
}

// resolveName prefers the identity document, then the income document, then
// the Unknown sentinel.
func resolveName(id extractor.IdentityFields, inc extractor.IncomeFields) string {
	if id.FullName != "" {
		return id.FullName
	}
	if inc.ApplicantName != "" {
		return inc.ApplicantName
	}
	return unknownName
}

func identityFields(rec *extractor.ExtractedRecord) extractor.IdentityFields {
	if rec == nil || rec.Identity == nil {
		return extractor.IdentityFields{}
	}
	return *rec.Identity
}

func incomeFields(rec *extractor.ExtractedRecord) extractor.IncomeFields {
	if rec == nil || rec.Income == nil {
		return extractor.IncomeFields{}
	}
	return *rec.Income
}

func bankFields(rec *extractor.ExtractedRecord) extractor.BankFields {
	if rec == nil || rec.Bank == nil {
		return extractor.BankFields{}
	}
	return *rec.Bank
}

func valueOrZero(v *float64) *float64 {
	out := 0.0
	if v != nil {
		out = *v
	}
	return &out
}
