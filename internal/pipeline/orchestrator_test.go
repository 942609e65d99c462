// internal/pipeline/orchestrator_test.go
package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/extractor"
	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"
	"github.com/cozypet/loan-processor-ai/internal/schema"
	"github.com/cozypet/loan-processor-ai/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor records the order of extraction calls and fails configured
// categories.
type fakeExtractor struct {
	calls   []schema.Category
	failOn  map[schema.Category]error
	records map[schema.Category]*extractor.ExtractedRecord
}

func (f *fakeExtractor) Extract(ctx context.Context, document []byte, category schema.Category) (*extractor.ExtractedRecord, error) {
	f.calls = append(f.calls, category)
	if err, ok := f.failOn[category]; ok {
		return nil, err
	}
	if rec, ok := f.records[category]; ok {
		return rec, nil
	}
	return &extractor.ExtractedRecord{Category: category}, nil
}

type fakeScorer struct {
	calls      int
	assessment *risk.RiskAssessment
}

func (f *fakeScorer) Assess(ctx context.Context, p *profile.ApplicantProfile, loanAmount float64) *risk.RiskAssessment {
	f.calls++
	if f.assessment != nil {
		return f.assessment
	}
	return &risk.RiskAssessment{
		RiskScore:      40,
		RiskLevel:      risk.RiskLevelMedium,
		Recommendation: risk.RecommendationManualReview,
	}
}

type fakeStore struct {
	saved []store.Application
	err   error
}

func (f *fakeStore) Save(ctx context.Context, app store.Application) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, app)
	return "65f0c0ffee00000000000001", nil
}

func gross(v float64) *float64 { return &v }

func testOrchestrator(ex *fakeExtractor, sc *fakeScorer, st *fakeStore) *Orchestrator {
	return NewOrchestrator(ex, profile.NewCombiner(0.7), sc, st, logger.NewNoOpLogger())
}

func fullInput() Input {
	return Input{
		IdentityDocument: []byte("id"),
		IncomeDocument:   []byte("payslip"),
		BankDocument:     []byte("statement"),
		LoanAmount:       15000,
	}
}

func TestRunHappyPath(t *testing.T) {
	ex := &fakeExtractor{
		records: map[schema.Category]*extractor.ExtractedRecord{
			schema.CategoryIdentity: {
				Category: schema.CategoryIdentity,
				Identity: &extractor.IdentityFields{FullName: "Marie Dupont"},
			},
			schema.CategoryIncome: {
				Category: schema.CategoryIncome,
				Income:   &extractor.IncomeFields{MonthlyGrossIncome: gross(3000)},
			},
			schema.CategoryBankStatement: {
				Category: schema.CategoryBankStatement,
				Bank:     &extractor.BankFields{},
			},
		},
	}
	sc := &fakeScorer{}
	st := &fakeStore{}
	o := testOrchestrator(ex, sc, st)

	result, err := o.Run(context.Background(), fullInput())

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.ApplicationID)
	assert.Equal(t, "Marie Dupont", result.Profile.FullName)
	assert.Equal(t, risk.RecommendationManualReview, result.Assessment.Recommendation)

	// Strict linear order: identity, income, bank.
	assert.Equal(t, []schema.Category{
		schema.CategoryIdentity,
		schema.CategoryIncome,
		schema.CategoryBankStatement,
	}, ex.calls)
	assert.Equal(t, 1, sc.calls)

	require.Len(t, st.saved, 1)
	assert.Equal(t, "Marie Dupont", st.saved[0].ApplicantData.FullName)
	assert.InDelta(t, 15000, st.saved[0].LoanAmount, 1e-9)
}

func TestRunSkipsBankStageWithoutStatement(t *testing.T) {
	ex := &fakeExtractor{}
	o := testOrchestrator(ex, &fakeScorer{}, &fakeStore{})

	in := fullInput()
	in.BankDocument = nil

	result, err := o.Run(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, []schema.Category{schema.CategoryIdentity, schema.CategoryIncome}, ex.calls)
	assert.Nil(t, result.Profile.AverageBalance)
	assert.Zero(t, result.Profile.RecurringLoanPayments)
}

func TestRunRejectsNonPositiveLoanAmount(t *testing.T) {
	ex := &fakeExtractor{}
	o := testOrchestrator(ex, &fakeScorer{}, &fakeStore{})

	for _, amount := range []float64{0, -5000, math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := fullInput()
		in.LoanAmount = amount

		result, err := o.Run(context.Background(), in)

		require.Error(t, err)
		assert.Nil(t, result)
		var stdErr *stderrors.StandardError
		require.True(t, errors.As(err, &stdErr))
		assert.Equal(t, stderrors.ErrCodeInvalidLoanAmount, stdErr.Code)
	}
	assert.Empty(t, ex.calls, "validation failure must precede extraction")
}

func TestRunFailsFastOnExtraction(t *testing.T) {
	tests := []struct {
		name      string
		failOn    schema.Category
		wantCalls []schema.Category
	}{
		{
			name:      "identity failure stops before income",
			failOn:    schema.CategoryIdentity,
			wantCalls: []schema.Category{schema.CategoryIdentity},
		},
		{
			name:      "income failure stops before bank",
			failOn:    schema.CategoryIncome,
			wantCalls: []schema.Category{schema.CategoryIdentity, schema.CategoryIncome},
		},
		{
			name:   "bank failure stops before scoring",
			failOn: schema.CategoryBankStatement,
			wantCalls: []schema.Category{
				schema.CategoryIdentity,
				schema.CategoryIncome,
				schema.CategoryBankStatement,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractionErr := stderrors.NewExtractionServiceError(errors.New("boom"))
			ex := &fakeExtractor{failOn: map[schema.Category]error{tt.failOn: extractionErr}}
			sc := &fakeScorer{}
			st := &fakeStore{}
			o := testOrchestrator(ex, sc, st)

			result, err := o.Run(context.Background(), fullInput())

			assert.Nil(t, result)
			assert.ErrorIs(t, err, extractionErr)
			assert.Equal(t, tt.wantCalls, ex.calls)
			assert.Zero(t, sc.calls, "scoring must not run after an extraction failure")
			assert.Empty(t, st.saved)
		})
	}
}

func TestRunPersistenceFailureKeepsDecision(t *testing.T) {
	persistErr := stderrors.NewPersistenceError(errors.New("write concern"))
	sc := &fakeScorer{}
	o := testOrchestrator(&fakeExtractor{}, sc, &fakeStore{err: persistErr})

	result, err := o.Run(context.Background(), fullInput())

	assert.ErrorIs(t, err, persistErr)
	require.NotNil(t, result, "the computed decision survives a storage failure")
	assert.Empty(t, result.ApplicationID)
	assert.NotNil(t, result.Assessment)
	assert.Equal(t, 1, sc.calls)
}
