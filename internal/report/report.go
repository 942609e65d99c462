// internal/report/report.go
package report

import (
	"encoding/json"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"
)

// Report is the downloadable JSON document for one completed run. It is
// produced on demand and never persisted.
type Report struct {
	Timestamp      time.Time                `json:"timestamp"`
	ApplicantData  profile.ApplicantProfile `json:"applicant_data"`
	RiskAssessment *risk.RiskAssessment     `json:"risk_assessment"`
}

// Build assembles a report stamped with the current time.
func Build(p profile.ApplicantProfile, assessment *risk.RiskAssessment) Report {
	return Report{
		Timestamp:      time.Now().UTC(),
		ApplicantData:  p,
		RiskAssessment: assessment,
	}
}

// Marshal renders the report as indented JSON, the download format.
func (r Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Parse reads a report back from its JSON form. Round-tripping through
// Marshal and Parse yields applicant data and assessment deep-equal to the
// in-memory values.
func Parse(raw []byte) (Report, error) {
	var r Report
	err := json.Unmarshal(raw, &r)
	return r, err
}

// Filename returns the download filename for a report generated at ts.
func Filename(ts time.Time) string {
	return "loan_application_" + ts.Format("20060102_150405") + ".json"
}
