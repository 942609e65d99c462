// internal/risk/validate.go
package risk

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// assessmentSchema guards against syntactically valid but semantically
// malformed model output: score outside [0,100], unknown risk levels or
// recommendations. Violations route to the same fallback as a parse failure.
var assessmentSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"risk_score": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
			"maximum": 100,
		},
		"risk_level": map[string]interface{}{
			"type": "string",
			"enum": []string{RiskLevelLow, RiskLevelMedium, RiskLevelHigh},
		},
		"debt_to_income_ratio": map[string]interface{}{
			"type": "number",
		},
		"recommendation": map[string]interface{}{
			"type": "string",
			"enum": []string{RecommendationApprove, RecommendationManualReview, RecommendationReject},
		},
		"explanation": map[string]interface{}{
			"type": "string",
		},
		"flags": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"flag_type": map[string]interface{}{"type": "string"},
					"message":   map[string]interface{}{"type": "string"},
					"severity": map[string]interface{}{
						"type": "string",
						"enum": []string{SeverityLow, SeverityMedium, SeverityHigh},
					},
				},
				"required": []string{"flag_type", "message", "severity"},
			},
		},
		"suggested_actions": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"policy_compliance": map[string]interface{}{
			"type": "object",
		},
	},
	"required": []string{"risk_score", "risk_level", "debt_to_income_ratio", "recommendation", "explanation"},
}

var compiledAssessmentSchema = mustCompileSchema()

func mustCompileSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(assessmentSchema))
	if err != nil {
		panic(fmt.Sprintf("risk: assessment schema does not compile: %v", err))
	}
	return s
}

// validateAssessment checks raw JSON against the assessment schema.
func validateAssessment(raw string) error {
	result, err := compiledAssessmentSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("assessment schema violations: %s", strings.Join(msgs, "; "))
}
