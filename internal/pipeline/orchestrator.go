// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"errors"
	"math"
	"time"

	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/common/metrics"
	"github.com/cozypet/loan-processor-ai/internal/extractor"
	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"
	"github.com/cozypet/loan-processor-ai/internal/schema"
	"github.com/cozypet/loan-processor-ai/internal/store"
)

// DocumentExtractor is the extraction collaborator.
type DocumentExtractor interface {
	Extract(ctx context.Context, document []byte, category schema.Category) (*extractor.ExtractedRecord, error)
}

// Scorer is the risk-scoring collaborator. It returns an assessment
// unconditionally; the safe-default fallback lives inside the scorer.
type Scorer interface {
	Assess(ctx context.Context, p *profile.ApplicantProfile, loanAmount float64) *risk.RiskAssessment
}

// ApplicationStore is the persistence collaborator.
type ApplicationStore interface {
	Save(ctx context.Context, app store.Application) (string, error)
}

// Input is one loan submission. BankDocument may be nil; the bank extraction
// stage is then skipped entirely.
type Input struct {
	IdentityDocument []byte
	IncomeDocument   []byte
	BankDocument     []byte
	LoanAmount       float64
}

// Result is the outcome of one completed run. ApplicationID is empty when
// persistence failed; Profile and Assessment are still populated so the
// computed decision is not lost.
type Result struct {
	RunID         string
	ApplicationID string
	Profile       profile.ApplicantProfile
	Assessment    *risk.RiskAssessment
	LoanAmount    float64
}

// Orchestrator sequences extraction, combination, scoring and persistence
// into one fail-fast pass. Extraction errors abort the run; scoring always
// resolves; persistence errors surface after the assessment is computed.
type Orchestrator struct {
	extractor DocumentExtractor
	combiner  *profile.Combiner
	scorer    Scorer
	store     ApplicationStore
	logger    logger.Logger
}

func NewOrchestrator(ex DocumentExtractor, combiner *profile.Combiner, scorer Scorer, st ApplicationStore, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		extractor: ex,
		combiner:  combiner,
		scorer:    scorer,
		store:     st,
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run processes one submission end to end.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Result, error) {
	// NaN fails every ordered comparison, so the non-positive check alone
	// would let it through to extraction and persistence.
	if in.LoanAmount <= 0 || math.IsNaN(in.LoanAmount) || math.IsInf(in.LoanAmount, 0) {
		return nil, stderrors.NewInvalidLoanAmountError(in.LoanAmount)
	}

	rc := newRunContext(in.LoanAmount)
	log := o.logger.WithFields(map[string]interface{}{"runId": rc.RunID})
	log.Info("pipeline run started", map[string]interface{}{
		"loanAmount":       in.LoanAmount,
		"hasBankStatement": in.BankDocument != nil,
	})

	rc.transition(StateExtractIdentity)
	identity, err := o.extractor.Extract(ctx, in.IdentityDocument, schema.CategoryIdentity)
	if err != nil {
		return nil, o.failRun(rc, log, StateExtractIdentity, err)
	}
	rc.Identity = identity

	rc.transition(StateExtractIncome)
	income, err := o.extractor.Extract(ctx, in.IncomeDocument, schema.CategoryIncome)
	if err != nil {
		return nil, o.failRun(rc, log, StateExtractIncome, err)
	}
	rc.Income = income

	if in.BankDocument != nil {
		rc.transition(StateExtractBank)
		bank, err := o.extractor.Extract(ctx, in.BankDocument, schema.CategoryBankStatement)
		if err != nil {
			return nil, o.failRun(rc, log, StateExtractBank, err)
		}
		rc.Bank = bank
	}

	rc.transition(StateCombine)
	combined := o.combiner.Combine(rc.Identity, rc.Income, rc.Bank)
	rc.Profile = &combined

	rc.transition(StateScore)
	rc.Assessment = o.scorer.Assess(ctx, rc.Profile, rc.LoanAmount)

	rc.transition(StateReadyToPersist)
	result := &Result{
		RunID:      rc.RunID,
		Profile:    *rc.Profile,
		Assessment: rc.Assessment,
		LoanAmount: rc.LoanAmount,
	}

	appID, err := o.store.Save(ctx, store.Application{
		ApplicantData:  *rc.Profile,
		RiskAssessment: rc.Assessment,
		LoanAmount:     rc.LoanAmount,
	})
	if err != nil {
		// The run stops short of Complete but the computed decision stays
		// with the caller; it can still be exported.
		rc.Err = err
		code := errorCode(err)
		metrics.PipelineRunsFailed.WithLabelValues(string(StateReadyToPersist), code).Inc()
		log.Error("persistence failed after scoring", map[string]interface{}{
			"error":         err.Error(),
			"errorCategory": stderrors.GetErrorCategory(stderrors.ErrorCode(code)),
		})
		return result, err
	}
	result.ApplicationID = appID

	rc.transition(StateComplete)
	metrics.PipelineRunsCompleted.Inc()
	log.Info("pipeline run complete", map[string]interface{}{
		"applicationId":  appID,
		"riskLevel":      rc.Assessment.RiskLevel,
		"recommendation": rc.Assessment.Recommendation,
		"duration":       time.Since(rc.StartedAt).String(),
	})
	return result, nil
}

func (o *Orchestrator) failRun(rc *RunContext, log logger.Logger, stage State, err error) error {
	rc.fail(err)
	code := errorCode(err)
	metrics.PipelineRunsFailed.WithLabelValues(string(stage), code).Inc()
	log.Error("pipeline run failed", map[string]interface{}{
		"stage":         stage,
		"error":         err.Error(),
		"errorCategory": stderrors.GetErrorCategory(stderrors.ErrorCode(code)),
	})
	return err
}

func errorCode(err error) string {
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
