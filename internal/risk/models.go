// internal/risk/models.go
package risk

// Risk levels returned by the scoring model.
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// Recommendations returned by the scoring model.
const (
	RecommendationApprove      = "APPROVE"
	RecommendationManualReview = "MANUAL_REVIEW"
	RecommendationReject       = "REJECT"
)

// Flag severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// RiskAssessment is the scoring result for one application. Produced once
// per pipeline run and immutable once returned.
type RiskAssessment struct {
	RiskScore         int                    `json:"risk_score" bson:"risk_score"`
	RiskLevel         string                 `json:"risk_level" bson:"risk_level"`
	DebtToIncomeRatio float64                `json:"debt_to_income_ratio" bson:"debt_to_income_ratio"`
	Recommendation    string                 `json:"recommendation" bson:"recommendation"`
	Explanation       string                 `json:"explanation" bson:"explanation"`
	Flags             []RiskFlag             `json:"flags" bson:"flags"`
	SuggestedActions  []string               `json:"suggested_actions" bson:"suggested_actions"`
	PolicyCompliance  map[string]PolicyEntry `json:"policy_compliance" bson:"policy_compliance"`
}

// RiskFlag marks one concern the model raised about the application.
type RiskFlag struct {
	FlagType string `json:"flag_type" bson:"flag_type"`
	Message  string `json:"message" bson:"message"`
	Severity string `json:"severity" bson:"severity"`
}

// PolicyEntry compares a required threshold against the applicant's actual
// value.
type PolicyEntry struct {
	Required  float64 `json:"required" bson:"required"`
	Actual    float64 `json:"actual" bson:"actual"`
	Compliant bool    `json:"compliant" bson:"compliant"`
}

// Metrics are the deterministic phase-1 figures. They are always computed,
// never delegated to the model, and remain available when scoring falls back.
type Metrics struct {
	EstimatedMonthlyPayment float64 `json:"estimated_monthly_payment"`
	TotalMonthlyDebt        float64 `json:"total_monthly_debt"`
	DTIRatio                float64 `json:"dti_ratio"`
}
