package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

// FactorResult captures one sub-score's contribution to the composite score.
type FactorResult struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Cap    float64 `json:"cap"`
	Reason string  `json:"reason"`
}

// --- Individual factor calculators ---

// CreditFactor scales the bureau score linearly onto the credit weight.
func CreditFactor(p loan.ApplicantProfile, sp policy.ScoringPolicy) FactorResult {
	points := float64(p.CreditScore) / float64(sp.BureauScoreMax) * sp.CreditWeight
	return FactorResult{
		Name:   "credit",
		Points: math.Min(points, sp.CreditWeight),
		Cap:    sp.CreditWeight,
		Reason: fmt.Sprintf("bureau score %d/%d", p.CreditScore, sp.BureauScoreMax),
	}
}

// IncomeFactor scales annual income against the reference income.
func IncomeFactor(p loan.ApplicantProfile, sp policy.ScoringPolicy) FactorResult {
	points := p.AnnualIncome.Div(sp.ReferenceIncome).InexactFloat64() * sp.IncomeWeight
	reason := "below reference income"
	if p.AnnualIncome.GreaterThanOrEqual(sp.ReferenceIncome) {
		reason = "at or above reference income"
	}
	return FactorResult{
		Name:   "income",
		Points: math.Min(points, sp.IncomeWeight),
		Cap:    sp.IncomeWeight,
		Reason: reason,
	}
}

// RelationshipFactor awards independent points for a payroll link and for
// enough automatic transfers.
func RelationshipFactor(p loan.ApplicantProfile, sp policy.ScoringPolicy) FactorResult {
	var points float64
	reason := "no engagement"
	if p.HasPayroll {
		points += sp.PayrollPoints
		reason = "payroll linked"
	}
	if p.AutoTransfers >= sp.AutoTransferMin {
		points += sp.AutoTransferPoints
		if p.HasPayroll {
			reason = "payroll linked, auto transfers"
		} else {
			reason = "auto transfers"
		}
	}
	return FactorResult{Name: "relationship", Points: points, Cap: sp.RelationshipWeight, Reason: reason}
}

// StabilityFactor steps on job tenure.
func StabilityFactor(p loan.ApplicantProfile, sp policy.ScoringPolicy) FactorResult {
	switch {
	case p.JobYears >= sp.LongTenureYears:
		return FactorResult{Name: "stability", Points: sp.LongTenurePoints, Cap: sp.StabilityWeight, Reason: "long tenure"}
	case p.JobYears >= sp.ShortTenureYears:
		return FactorResult{Name: "stability", Points: sp.ShortTenurePoints, Cap: sp.StabilityWeight, Reason: "short tenure"}
	default:
		return FactorResult{Name: "stability", Points: 0, Cap: sp.StabilityWeight, Reason: "under minimum tenure"}
	}
}
