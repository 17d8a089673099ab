package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

// ScoreResult is the composite creditworthiness score and its risk grade.
type ScoreResult struct {
	Credit       float64        `json:"credit"`
	Income       float64        `json:"income"`
	Relationship float64        `json:"relationship"`
	Stability    float64        `json:"stability"`
	TotalScore   float64        `json:"total_score"`
	Grade        int            `json:"grade"`
	Factors      []FactorResult `json:"factors"`
}

// Scorer computes the 4-factor composite score. It is stateless after
// construction and safe for concurrent use.
type Scorer struct {
	policy policy.ScoringPolicy
}

// NewScorer creates a Scorer for the given scoring policy.
func NewScorer(sp policy.ScoringPolicy) *Scorer {
	return &Scorer{policy: sp}
}

// Score validates the profile and computes its composite score and grade.
func (s *Scorer) Score(p loan.ApplicantProfile) (ScoreResult, error) {
	if err := p.Validate(); err != nil {
		return ScoreResult{}, fmt.Errorf("score: %w", err)
	}

	factors := []FactorResult{
		CreditFactor(p, s.policy),
		IncomeFactor(p, s.policy),
		RelationshipFactor(p, s.policy),
		StabilityFactor(p, s.policy),
	}

	var total float64
	for _, f := range factors {
		total += f.Points
	}
	total = round(total, 1)

	return ScoreResult{
		Credit:       factors[0].Points,
		Income:       factors[1].Points,
		Relationship: factors[2].Points,
		Stability:    factors[3].Points,
		TotalScore:   total,
		Grade:        GradeFor(total, s.policy.GradeCutoffs),
		Factors:      factors,
	}, nil
}

// GradeFor maps a total score onto a grade. Cutoffs are evaluated highest
// first; a score equal to a cutoff gets the better grade.
func GradeFor(total float64, cutoffs []float64) int {
	for i, c := range cutoffs {
		if total >= c {
			return i + 1
		}
	}
	return len(cutoffs) + 1
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
