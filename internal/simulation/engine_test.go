package simulation

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Underwriter/internal/affordability"
	"github.com/MikeSquared-Agency/Underwriter/internal/authority"
	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(policy.Default())
	require.NoError(t, err)
	return e
}

func referenceProfile() loan.ApplicantProfile {
	return loan.ApplicantProfile{
		AnnualIncome:             decimal.NewFromInt(60_000_000),
		CreditScore:              850,
		HasPayroll:               true,
		AutoTransfers:            3,
		JobYears:                 5,
		CurrentAnnualDebtPayment: decimal.Zero,
	}
}

func largeCreditLoan() loan.Request {
	return loan.Request{
		Amount:      decimal.NewFromInt(300_000_000),
		AnnualRate:  0.05,
		TermYears:   10,
		ProductType: loan.ProductCredit,
	}
}

func TestEvaluate_LargeLoanScenario(t *testing.T) {
	e := newEngine(t)

	r, err := e.Evaluate(referenceProfile(), largeCreditLoan(), "branch-manager")
	require.NoError(t, err)

	assert.Equal(t, policy.DefaultVersion, r.PolicyVersion)
	assert.Equal(t, 82.0, r.Score.TotalScore)
	assert.Equal(t, 2, r.Score.Grade)
	assert.InDelta(t, 0.6364, r.Current.Ratio, 0.0001)
	assert.Equal(t, 0.07, r.Stressed.AnnualRate)
	assert.InDelta(t, 0.6967, r.Stressed.Ratio, 0.0001)
	assert.Equal(t, authority.HeadquartersReview, r.Decision.Level)
	assert.Equal(t, []authority.Reason{authority.ReasonLargeLoan}, r.Decision.Reasons)
	assert.Equal(t, RiskRateIncrease, r.RiskNote)

	assert.False(t, r.Verdict.Actionable)
	assert.Equal(t, authority.OutcomeInsufficientAuthority, r.Verdict.Outcome)
	assert.Equal(t, authority.RoleHeadquarters, r.Verdict.RequiredRole)

	hq, err := e.Evaluate(referenceProfile(), largeCreditLoan(), "headquarters")
	require.NoError(t, err)
	assert.True(t, hq.Verdict.Actionable)
	assert.Equal(t, r.Decision, hq.Decision)
}

func TestEvaluate_ExistingDebtPushesToReject(t *testing.T) {
	p := referenceProfile()
	p.CurrentAnnualDebtPayment = decimal.NewFromInt(10_000_000)

	r, err := newEngine(t).Evaluate(p, largeCreditLoan(), "headquarters")
	require.NoError(t, err)
	assert.InDelta(t, 0.8031, r.Current.Ratio, 0.0001)
	assert.Equal(t, authority.Reject, r.Decision.Level)
	assert.False(t, r.Verdict.Actionable)
	assert.Equal(t, authority.OutcomeRejectedByPolicy, r.Verdict.Outcome)
}

func TestEvaluate_SmallLoanAutoApproves(t *testing.T) {
	req := loan.Request{
		Amount:      decimal.NewFromInt(20_000_000),
		AnnualRate:  0.045,
		TermYears:   5,
		ProductType: loan.ProductAuto,
	}
	r, err := newEngine(t).Evaluate(referenceProfile(), req, "staff")
	require.NoError(t, err)
	assert.Equal(t, authority.AutoApprove, r.Decision.Level)
	assert.True(t, r.Verdict.Actionable)
	assert.Equal(t, RiskStable, r.RiskNote)
}

func TestEvaluate_ZeroIncomeRejects(t *testing.T) {
	p := referenceProfile()
	p.AnnualIncome = decimal.Zero

	r, err := newEngine(t).Evaluate(p, largeCreditLoan(), "headquarters")
	require.NoError(t, err)
	assert.Equal(t, affordability.SentinelRatio, r.Current.Ratio)
	assert.True(t, r.Current.IncomeUndefined)
	assert.Equal(t, authority.Reject, r.Decision.Level)
	assert.Equal(t, RiskRateIncrease, r.RiskNote)
}

func TestEvaluate_StressNeverChangesDecision(t *testing.T) {
	// stressed ratio crosses the hard ceiling while the quoted one does not
	p := referenceProfile()
	p.CurrentAnnualDebtPayment = decimal.NewFromInt(3_000_000)

	r, err := newEngine(t).Evaluate(p, largeCreditLoan(), "headquarters")
	require.NoError(t, err)
	require.LessOrEqual(t, r.Current.Ratio, 0.70)
	require.Greater(t, r.Stressed.Ratio, 0.70)
	assert.Equal(t, authority.HeadquartersReview, r.Decision.Level)
}

func TestEvaluate_ValidationReportsBothInputs(t *testing.T) {
	p := referenceProfile()
	p.CreditScore = 1200
	req := largeCreditLoan()
	req.TermYears = 0
	req.ProductType = "boat"

	_, err := newEngine(t).Evaluate(p, req, "staff")
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrInvalidProfile)
	assert.ErrorIs(t, err, loan.ErrInvalidLoanRequest)

	var fields []string
	for _, fe := range loan.FieldErrors(err) {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"credit_score", "term_years", "product_type"}, fields)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newEngine(t)
	first, err := e.Evaluate(referenceProfile(), largeCreditLoan(), "manager")
	require.NoError(t, err)
	second, err := e.Evaluate(referenceProfile(), largeCreditLoan(), "manager")
	require.NoError(t, err)

	a, err := json.Marshal(first.Document())
	require.NoError(t, err)
	b, err := json.Marshal(second.Document())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestEvaluate_Concurrent(t *testing.T) {
	e := newEngine(t)
	want, err := e.Evaluate(referenceProfile(), largeCreditLoan(), "hq")
	require.NoError(t, err)
	wantJSON, err := json.Marshal(want.Document())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.Evaluate(referenceProfile(), largeCreditLoan(), "hq")
			if err != nil {
				return
			}
			b, _ := json.Marshal(r.Document())
			results[i] = string(b)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, string(wantJSON), got)
	}
}

func TestNewEngine_RejectsInvalidPolicy(t *testing.T) {
	p := policy.Default()
	p.Scoring.CreditWeight = 50
	_, err := NewEngine(p)
	assert.Error(t, err)
}

func TestDocument_Shape(t *testing.T) {
	r, err := newEngine(t).Evaluate(referenceProfile(), largeCreditLoan(), "unknown-role")
	require.NoError(t, err)

	doc := r.Document()
	assert.ElementsMatch(t,
		[]string{"policy_version", "request", "score", "affordability", "authority", "verdict", "risk_note"},
		keys(doc))

	authorityDoc := doc["authority"].(map[string]any)
	assert.Equal(t, "headquarters_review", authorityDoc["level"])
	assert.Equal(t, []string{string(authority.ReasonLargeLoan)}, authorityDoc["reasons"])

	verdictDoc := doc["verdict"].(map[string]any)
	assert.Equal(t, false, verdictDoc["role_recognized"])
	assert.Equal(t, "staff", verdictDoc["caller_role"])

	current := doc["affordability"].(map[string]any)["current"].(map[string]any)
	assert.Equal(t, "300000000.00", doc["request"].(map[string]any)["amount"])
	assert.Equal(t, "3181965.46", current["monthly_payment"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestEvaluate_ExtremeButValidInputs(t *testing.T) {
	e := newEngine(t)

	req := loan.Request{
		Amount:      decimal.NewFromInt(10_000_000),
		AnnualRate:  1e-17,
		TermYears:   5,
		ProductType: loan.ProductCredit,
	}
	r, err := e.Evaluate(referenceProfile(), req, "staff")
	require.NoError(t, err)
	assert.InDelta(t, 10_000_000.0/60, r.Current.MonthlyPayment.InexactFloat64(), 1)

	req.AnnualRate = 0.05
	req.Amount = decimal.RequireFromString("1e400")
	_, err = e.Evaluate(referenceProfile(), req, "staff")
	require.Error(t, err)
	fields := loan.FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "amount", fields[0].Field)
}
