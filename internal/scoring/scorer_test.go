package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

func referenceProfile() loan.ApplicantProfile {
	return loan.ApplicantProfile{
		AnnualIncome:  decimal.NewFromInt(60_000_000),
		CreditScore:   850,
		HasPayroll:    true,
		AutoTransfers: 3,
		JobYears:      4,
	}
}

func defaultScorer() *Scorer {
	return NewScorer(policy.Default().Scoring)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore_ReferenceProfile(t *testing.T) {
	r, err := defaultScorer().Score(referenceProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !near(r.Credit, 34) {
		t.Errorf("expected credit 34, got %f", r.Credit)
	}
	if !near(r.Income, 18) {
		t.Errorf("expected income 18, got %f", r.Income)
	}
	if r.Relationship != 20 {
		t.Errorf("expected relationship 20, got %f", r.Relationship)
	}
	if r.Stability != 10 {
		t.Errorf("expected stability 10, got %f", r.Stability)
	}
	if r.TotalScore != 82 {
		t.Errorf("expected total 82, got %f", r.TotalScore)
	}
	if r.Grade != 2 {
		t.Errorf("expected grade 2, got %d", r.Grade)
	}

	if len(r.Factors) != 4 {
		t.Fatalf("expected 4 factors, got %d", len(r.Factors))
	}
	if r.Factors[0].Name != "credit" || r.Factors[3].Name != "stability" {
		t.Errorf("unexpected factor order: %s ... %s", r.Factors[0].Name, r.Factors[3].Name)
	}
}

func TestCreditFactor(t *testing.T) {
	sp := policy.Default().Scoring
	tests := []struct {
		score int
		want  float64
	}{
		{0, 0},
		{500, 20},
		{850, 34},
		{1000, 40},
	}
	for _, tt := range tests {
		p := referenceProfile()
		p.CreditScore = tt.score
		if got := CreditFactor(p, sp).Points; !near(got, tt.want) {
			t.Errorf("score %d: expected %f, got %f", tt.score, tt.want, got)
		}
	}
}

func TestIncomeFactor_CappedAtWeight(t *testing.T) {
	sp := policy.Default().Scoring
	p := referenceProfile()

	p.AnnualIncome = decimal.NewFromInt(100_000_000)
	if got := IncomeFactor(p, sp).Points; !near(got, 30) {
		t.Errorf("reference income: expected 30, got %f", got)
	}

	p.AnnualIncome = decimal.NewFromInt(1_000_000_000)
	r := IncomeFactor(p, sp)
	if r.Points != 30 {
		t.Errorf("high income: expected cap 30, got %f", r.Points)
	}
	if r.Reason != "at or above reference income" {
		t.Errorf("unexpected reason %q", r.Reason)
	}

	p.AnnualIncome = decimal.Zero
	if got := IncomeFactor(p, sp).Points; got != 0 {
		t.Errorf("zero income: expected 0, got %f", got)
	}
}

func TestRelationshipFactor(t *testing.T) {
	sp := policy.Default().Scoring
	tests := []struct {
		name      string
		payroll   bool
		transfers int
		want      float64
	}{
		{"none", false, 0, 0},
		{"payroll only", true, 2, 10},
		{"transfers only", false, 3, 10},
		{"both", true, 7, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceProfile()
			p.HasPayroll = tt.payroll
			p.AutoTransfers = tt.transfers
			if got := RelationshipFactor(p, sp).Points; got != tt.want {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestStabilityFactor(t *testing.T) {
	sp := policy.Default().Scoring
	tests := []struct {
		years float64
		want  float64
	}{
		{0, 0},
		{0.99, 0},
		{1, 5},
		{2.5, 5},
		{3, 10},
		{25, 10},
	}
	for _, tt := range tests {
		p := referenceProfile()
		p.JobYears = tt.years
		if got := StabilityFactor(p, sp).Points; got != tt.want {
			t.Errorf("years %.2f: expected %f, got %f", tt.years, tt.want, got)
		}
	}
}

func TestGradeFor_Boundaries(t *testing.T) {
	cutoffs := policy.Default().Scoring.GradeCutoffs
	tests := []struct {
		total float64
		want  int
	}{
		{100, 1},
		{90, 1},
		{89.9, 2},
		{80, 2},
		{79.9, 3},
		{70, 3},
		{60, 4},
		{59.9, 5},
		{0, 5},
	}
	for _, tt := range tests {
		if got := GradeFor(tt.total, cutoffs); got != tt.want {
			t.Errorf("total %.1f: expected grade %d, got %d", tt.total, tt.want, got)
		}
	}
}

func TestGradeFor_NonIncreasing(t *testing.T) {
	cutoffs := policy.Default().Scoring.GradeCutoffs
	prev := GradeFor(0, cutoffs)
	for tenths := 1; tenths <= 1000; tenths++ {
		g := GradeFor(float64(tenths)/10, cutoffs)
		if g > prev {
			t.Fatalf("grade got worse as score rose to %.1f", float64(tenths)/10)
		}
		prev = g
	}
}

func TestScore_RangeOverProfiles(t *testing.T) {
	s := defaultScorer()
	cutoffs := policy.Default().Scoring.GradeCutoffs
	for _, income := range []int64{0, 10_000_000, 60_000_000, 250_000_000} {
		for _, bureau := range []int{0, 300, 720, 1000} {
			for _, years := range []float64{0, 1.5, 10} {
				p := loan.ApplicantProfile{
					AnnualIncome:  decimal.NewFromInt(income),
					CreditScore:   bureau,
					HasPayroll:    bureau > 500,
					AutoTransfers: int(years),
					JobYears:      years,
				}
				r, err := s.Score(p)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if r.TotalScore < 0 || r.TotalScore > 100 {
					t.Errorf("total %f out of range for %+v", r.TotalScore, p)
				}
				if r.Grade < 1 || r.Grade > 5 {
					t.Errorf("grade %d out of range for %+v", r.Grade, p)
				}
				if want := GradeFor(r.TotalScore, cutoffs); r.Grade != want {
					t.Errorf("grade %d does not match GradeFor %d", r.Grade, want)
				}
			}
		}
	}
}

func TestScore_RoundsToOneDecimal(t *testing.T) {
	p := referenceProfile()
	p.CreditScore = 333 // 13.32 points
	p.AnnualIncome = decimal.NewFromInt(12_345_678)
	r, err := defaultScorer().Score(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 13.32 + 3.7037034 + 20 + 10 = 47.0237...
	if r.TotalScore != 47 {
		t.Errorf("expected 47.0, got %f", r.TotalScore)
	}
	if r.Grade != 5 {
		t.Errorf("expected grade 5, got %d", r.Grade)
	}
}

func TestScore_InvalidProfile(t *testing.T) {
	p := referenceProfile()
	p.AnnualIncome = decimal.NewFromInt(-1)
	_, err := defaultScorer().Score(p)
	if !errors.Is(err, loan.ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}
