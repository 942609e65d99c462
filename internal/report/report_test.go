// internal/report/report_test.go
package report

import (
	"testing"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() profile.ApplicantProfile {
	avg := 1800.50
	overdrafts := 1
	return profile.ApplicantProfile{
		FullName:              "Marie Dupont",
		MonthlyGrossIncome:    3000,
		MonthlyNetIncome:      2300,
		EmploymentMonths:      42,
		ContractType:          "permanent",
		AverageBalance:        &avg,
		RecurringLoanPayments: 200,
		OverdraftOccurrences:  &overdrafts,
	}
}

func sampleAssessment() *risk.RiskAssessment {
	return &risk.RiskAssessment{
		RiskScore:         35,
		RiskLevel:         risk.RiskLevelLow,
		DebtToIncomeRatio: 0.1667,
		Recommendation:    risk.RecommendationApprove,
		Explanation:       "Stable employment, low debt load.",
		Flags:             []risk.RiskFlag{},
		SuggestedActions:  []string{},
		PolicyCompliance: map[string]risk.PolicyEntry{
			"dti_ratio": {Required: 0.40, Actual: 0.1667, Compliant: true},
		},
	}
}

func TestReportRoundTrip(t *testing.T) {
	rep := Build(sampleProfile(), sampleAssessment())

	raw, err := rep.Marshal()
	require.NoError(t, err)

	got, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, rep.ApplicantData, got.ApplicantData)
	assert.Equal(t, rep.RiskAssessment, got.RiskAssessment)
	assert.True(t, rep.Timestamp.Equal(got.Timestamp))
}

func TestReportContainsExpectedSections(t *testing.T) {
	rep := Build(sampleProfile(), sampleAssessment())

	raw, err := rep.Marshal()
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, `"timestamp"`)
	assert.Contains(t, s, `"applicant_data"`)
	assert.Contains(t, s, `"risk_assessment"`)
	assert.Contains(t, s, `"full_name": "Marie Dupont"`)
	assert.Contains(t, s, `"recommendation": "APPROVE"`)
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, time.March, 15, 9, 5, 42, 0, time.UTC)
	assert.Equal(t, "loan_application_20260315_090542.json", Filename(ts))
}
