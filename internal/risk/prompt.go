// internal/risk/prompt.go
package risk

import (
	"fmt"
	"strings"

	"github.com/cozypet/loan-processor-ai/internal/profile"
)

// buildPrompt embeds the bank policy thresholds and the phase-1 metrics and
// instructs the model to answer with a single JSON object.
func (e *Engine) buildPrompt(p *profile.ApplicantProfile, loanAmount float64, m Metrics) string {
	var b strings.Builder

	b.WriteString("You are a loan risk assessment AI for a bank. Analyze the following loan application and provide a detailed risk assessment.\n\n")

	b.WriteString("BANK POLICY RULES:\n")
	fmt.Fprintf(&b, "- Maximum Debt-to-Income (DTI) ratio: %.0f%% (%.2f)\n", e.policy.MaxDTIRatio*100, e.policy.MaxDTIRatio)
	fmt.Fprintf(&b, "- Minimum employment duration: %d months\n", e.policy.MinEmploymentMonths)
	fmt.Fprintf(&b, "- Minimum monthly gross income: €%.0f\n", e.policy.MinMonthlyGrossEUR)
	b.WriteString("- Stable income verification required\n\n")

	b.WriteString("APPLICANT DATA:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "- Date of Birth: %s\n", p.DateOfBirth)
	fmt.Fprintf(&b, "- Employer: %s\n", p.EmployerName)
	fmt.Fprintf(&b, "- Job Title: %s\n", p.JobTitle)
	fmt.Fprintf(&b, "- Monthly Gross Income: €%.2f\n", p.MonthlyGrossIncome)
	fmt.Fprintf(&b, "- Employment Duration: %d months\n", p.EmploymentMonths)
	fmt.Fprintf(&b, "- Contract Type: %s\n", p.ContractType)
	fmt.Fprintf(&b, "- Existing Loan Payments: €%.2f/month\n", p.RecurringLoanPayments)
	fmt.Fprintf(&b, "- Average Bank Balance: %s\n", euroOrNA(p.AverageBalance))
	fmt.Fprintf(&b, "- Overdraft Occurrences: %s\n\n", countOrNA(p.OverdraftOccurrences))

	b.WriteString("LOAN REQUEST:\n")
	fmt.Fprintf(&b, "- Amount: €%.2f\n", loanAmount)
	fmt.Fprintf(&b, "- Estimated Monthly Payment: €%.2f\n\n", m.EstimatedMonthlyPayment)

	b.WriteString("CALCULATED METRICS:\n")
	fmt.Fprintf(&b, "- Total Monthly Debt: €%.2f\n", m.TotalMonthlyDebt)
	fmt.Fprintf(&b, "- Debt-to-Income Ratio: %.2f%%\n\n", m.DTIRatio*100)

	b.WriteString("Provide your assessment as a JSON object with the following structure:\n")
	b.WriteString(`{
  "risk_score": <number 0-100>,
  "risk_level": "<LOW|MEDIUM|HIGH>",
  "debt_to_income_ratio": <float>,
  "recommendation": "<APPROVE|MANUAL_REVIEW|REJECT>",
  "explanation": "<detailed explanation>",
  "flags": [
    {"flag_type": "<type>", "message": "<message>", "severity": "<low|medium|high>"}
  ],
  "suggested_actions": ["<action 1>", "<action 2>"],
  "policy_compliance": {
`)
	fmt.Fprintf(&b, "    \"min_income\": {\"required\": %.0f, \"actual\": <value>, \"compliant\": <true|false>},\n", e.policy.MinMonthlyGrossEUR)
	fmt.Fprintf(&b, "    \"min_employment_months\": {\"required\": %d, \"actual\": <value>, \"compliant\": <true|false>},\n", e.policy.MinEmploymentMonths)
	fmt.Fprintf(&b, "    \"max_dti\": {\"required\": %.2f, \"actual\": <value>, \"compliant\": <true|false>}\n", e.policy.MaxDTIRatio)
	b.WriteString(`  }
}

Return ONLY the JSON object, no additional text.`)

	return b.String()
}

func euroOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("€%.2f", *v)
}

func countOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}
