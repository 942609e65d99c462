// internal/risk/jsonextract_test.go
package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"risk_score": 10}`,
			want:  `{"risk_score": 10}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"risk_score\": 10}\n```",
			want:  `{"risk_score": 10}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"risk_score\": 10}\n```",
			want:  `{"risk_score": 10}`,
		},
		{
			name:  "surrounding prose",
			input: "Here is my assessment:\n{\"risk_score\": 10}\nLet me know if you need more.",
			want:  `{"risk_score": 10}`,
		},
		{
			name:  "nested objects",
			input: `{"policy_compliance": {"dti_ratio": {"compliant": true}}}`,
			want:  `{"policy_compliance": {"dti_ratio": {"compliant": true}}}`,
		},
		{
			name:  "braces inside string literals",
			input: `{"explanation": "income {gross} exceeds \"minimum\" threshold"}`,
			want:  `{"explanation": "income {gross} exceeds \"minimum\" threshold"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONObjectFailure(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"prose only", "The application cannot be assessed."},
		{"unterminated object", `{"risk_score": 10`},
		{"array not object", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractJSONObject(tt.input)
			assert.ErrorIs(t, err, errNoJSONObject)
		})
	}
}
