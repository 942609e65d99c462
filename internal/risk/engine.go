// internal/risk/engine.go
package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/common/config"
	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/common/metrics"
	"github.com/cozypet/loan-processor-ai/internal/profile"

	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the slice of the chat-completions client the engine uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Engine computes deterministic financial metrics and delegates qualitative
// scoring to an external reasoning model. Assess never returns an error: any
// uncertainty about model availability or output integrity resolves to a
// conservative rejection, never to silent approval.
type Engine struct {
	cfg    config.ReasoningConfig
	policy config.PolicyConfig
	chat   ChatCompleter
	logger logger.Logger
}

// NewEngine builds an engine talking to a chat-completions endpoint.
func NewEngine(cfg config.ReasoningConfig, policy config.PolicyConfig, log logger.Logger) *Engine {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewEngineWithClient(cfg, policy, openai.NewClientWithConfig(clientCfg), log)
}

// NewEngineWithClient allows injecting the chat client.
func NewEngineWithClient(cfg config.ReasoningConfig, policy config.PolicyConfig, chat ChatCompleter, log logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		policy: policy,
		chat:   chat,
		logger: log.WithFields(map[string]interface{}{"component": "risk-engine"}),
	}
}

// ComputeMetrics is phase 1: always computed, never delegated. When gross
// income is not positive the DTI ratio is the worst-case sentinel 1.0, which
// forces conservative downstream scoring.
func (e *Engine) ComputeMetrics(p *profile.ApplicantProfile, loanAmount float64) Metrics {
	payment := loanAmount * e.policy.MonthlyPaymentRate
	totalDebt := p.RecurringLoanPayments + payment

	dti := 1.0
	if p.MonthlyGrossIncome > 0 {
		dti = totalDebt / p.MonthlyGrossIncome
	}

	return Metrics{
		EstimatedMonthlyPayment: payment,
		TotalMonthlyDebt:        totalDebt,
		DTIRatio:                dti,
	}
}

// Assess scores one application. The returned assessment is either the
// validated model output or the safe-default fallback carrying the phase-1
// DTI ratio.
func (e *Engine) Assess(ctx context.Context, p *profile.ApplicantProfile, loanAmount float64) *RiskAssessment {
	m := e.ComputeMetrics(p, loanAmount)

	started := time.Now()
	assessment := e.score(ctx, p, loanAmount, m)
	metrics.StageDuration.WithLabelValues("score").Observe(time.Since(started).Seconds())

	return assessment
}

func (e *Engine) score(ctx context.Context, p *profile.ApplicantProfile, loanAmount float64, m Metrics) *RiskAssessment {
	prompt := e.buildPrompt(p, loanAmount, m)

	reqCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout())
	defer cancel()

	resp, err := e.chat.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: e.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(e.cfg.Temperature),
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		scoreErr := stderrors.NewScoringTransportError(err)
		e.logger.WithError(scoreErr).Error("risk analysis transport failure", map[string]interface{}{
			"errorCode": string(scoreErr.Code),
		})
		metrics.ScoringFallbacks.WithLabelValues("transport").Inc()
		return e.fallback(
			fmt.Sprintf("Risk analysis failed due to API error: %v. Application rejected as safety measure.", err),
			"Risk analysis system unavailable",
			m.DTIRatio,
		)
	}

	if len(resp.Choices) == 0 {
		scoreErr := stderrors.NewScoringParseError(errors.New("no choices in response"))
		e.logger.WithError(scoreErr).Error("risk analysis returned no choices", map[string]interface{}{
			"errorCode": string(scoreErr.Code),
		})
		metrics.ScoringFallbacks.WithLabelValues("empty").Inc()
		return e.fallback(
			"Risk analysis returned no response. Application rejected as safety measure.",
			"Risk analysis system unavailable",
			m.DTIRatio,
		)
	}

	content := resp.Choices[0].Message.Content

	raw, err := extractJSONObject(content)
	if err != nil {
		scoreErr := stderrors.NewScoringParseError(err)
		e.logger.WithError(scoreErr).Error("risk analysis output not parseable", map[string]interface{}{
			"errorCode": string(scoreErr.Code),
		})
		metrics.ScoringFallbacks.WithLabelValues("parse").Inc()
		return e.fallback(
			fmt.Sprintf("Risk analysis response parsing failed: %v. Application rejected as safety measure.", err),
			"Risk analysis parsing error",
			m.DTIRatio,
		)
	}

	if err := validateAssessment(raw); err != nil {
		scoreErr := stderrors.NewScoringParseError(err)
		e.logger.WithError(scoreErr).Error("risk analysis output failed validation", map[string]interface{}{
			"errorCode": string(scoreErr.Code),
		})
		metrics.ScoringFallbacks.WithLabelValues("validation").Inc()
		return e.fallback(
			fmt.Sprintf("Risk analysis response parsing failed: %v. Application rejected as safety measure.", err),
			"Risk analysis parsing error",
			m.DTIRatio,
		)
	}

	var assessment RiskAssessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		scoreErr := stderrors.NewScoringParseError(err)
		e.logger.WithError(scoreErr).Error("risk analysis output not decodable", map[string]interface{}{
			"errorCode": string(scoreErr.Code),
		})
		metrics.ScoringFallbacks.WithLabelValues("parse").Inc()
		return e.fallback(
			fmt.Sprintf("Risk analysis response parsing failed: %v. Application rejected as safety measure.", err),
			"Risk analysis parsing error",
			m.DTIRatio,
		)
	}

	e.logger.Info("risk analysis complete", map[string]interface{}{
		"riskScore":      assessment.RiskScore,
		"riskLevel":      assessment.RiskLevel,
		"recommendation": assessment.Recommendation,
	})
	return &assessment
}

// fallback builds the safe-default rejection. The DTI ratio comes from the
// already-computed phase-1 metrics, not from the failed model call.
func (e *Engine) fallback(explanation, flagMessage string, dti float64) *RiskAssessment {
	return &RiskAssessment{
		RiskScore:         100,
		RiskLevel:         RiskLevelHigh,
		DebtToIncomeRatio: dti,
		Recommendation:    RecommendationReject,
		Explanation:       explanation,
		Flags: []RiskFlag{
			{FlagType: "SYSTEM_ERROR", Message: flagMessage, Severity: SeverityHigh},
		},
		SuggestedActions: []string{"Retry analysis", "Contact IT support"},
		PolicyCompliance: map[string]PolicyEntry{},
	}
}
