// internal/pipeline/context.go
package pipeline

import (
	"time"

	"github.com/cozypet/loan-processor-ai/internal/extractor"
	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"

	"github.com/google/uuid"
)

// State is a step in the strict linear pipeline state machine.
type State string

const (
	StateIdle            State = "idle"
	StateExtractIdentity State = "extract_identity"
	StateExtractIncome   State = "extract_income"
	StateExtractBank     State = "extract_bank"
	StateCombine         State = "combine"
	StateScore           State = "score"
	StateReadyToPersist  State = "ready_to_persist"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
)

// RunContext carries all per-run state. One value per submission; nothing is
// shared across runs, so concurrent submissions stay isolated.
type RunContext struct {
	RunID     string
	State     State
	StartedAt time.Time

	Identity *extractor.ExtractedRecord
	Income   *extractor.ExtractedRecord
	Bank     *extractor.ExtractedRecord

	Profile    *profile.ApplicantProfile
	Assessment *risk.RiskAssessment
	LoanAmount float64

	Err error
}

func newRunContext(loanAmount float64) *RunContext {
	return &RunContext{
		RunID:      uuid.New().String(),
		State:      StateIdle,
		StartedAt:  time.Now().UTC(),
		LoanAmount: loanAmount,
	}
}

func (rc *RunContext) transition(next State) {
	rc.State = next
}

// Failed reaches only from extraction states; Combine cannot fail by
// contract and Score always resolves to a valid assessment.
func (rc *RunContext) fail(err error) {
	rc.State = StateFailed
	rc.Err = err
}
