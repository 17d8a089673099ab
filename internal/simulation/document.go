package simulation

import (
	"github.com/MikeSquared-Agency/Underwriter/internal/affordability"
	"github.com/MikeSquared-Agency/Underwriter/internal/scoring"
)

// moneyPlaces is the precision of currency values in documents.
const moneyPlaces = 2

// Document converts the report into a nested key/value structure for
// transport. Currency values are fixed-point strings; the key set is the
// same for every report.
func (r Report) Document() map[string]any {
	reasons := make([]string, 0, len(r.Decision.Reasons))
	for _, reason := range r.Decision.Reasons {
		reasons = append(reasons, string(reason))
	}

	return map[string]any{
		"policy_version": r.PolicyVersion,
		"request": map[string]any{
			"amount":       r.Request.Amount.StringFixed(moneyPlaces),
			"annual_rate":  r.Request.AnnualRate,
			"term_years":   r.Request.TermYears,
			"product_type": string(r.Request.ProductType),
		},
		"score": map[string]any{
			"credit":       r.Score.Credit,
			"income":       r.Score.Income,
			"relationship": r.Score.Relationship,
			"stability":    r.Score.Stability,
			"total":        r.Score.TotalScore,
			"grade":        r.Score.Grade,
			"factors":      factorDocs(r.Score.Factors),
		},
		"affordability": map[string]any{
			"current":  dsrDoc(r.Current),
			"stressed": dsrDoc(r.Stressed),
		},
		"authority": map[string]any{
			"level":     r.Decision.Level.String(),
			"rationale": r.Decision.Rationale,
			"reasons":   reasons,
			"rule":      r.Decision.Rule,
		},
		"verdict": map[string]any{
			"actionable":      r.Verdict.Actionable,
			"outcome":         string(r.Verdict.Outcome),
			"caller_role":     string(r.Verdict.CallerRole),
			"caller_level":    r.Verdict.CallerLevel,
			"role_recognized": r.Verdict.RoleRecognized,
			"required_role":   string(r.Verdict.RequiredRole),
			"required_level":  r.Verdict.RequiredLevel,
		},
		"risk_note": string(r.RiskNote),
	}
}

func dsrDoc(a affordability.Result) map[string]any {
	return map[string]any{
		"annual_rate":          a.AnnualRate,
		"term_years":           a.TermYears,
		"monthly_payment":      a.MonthlyPayment.StringFixed(moneyPlaces),
		"new_annual_payment":   a.NewAnnualPayment.StringFixed(moneyPlaces),
		"total_annual_payment": a.TotalAnnualPayment.StringFixed(moneyPlaces),
		"ratio":                a.Ratio,
		"income_undefined":     a.IncomeUndefined,
	}
}

func factorDocs(fs []scoring.FactorResult) []map[string]any {
	out := make([]map[string]any, 0, len(fs))
	for _, f := range fs {
		out = append(out, map[string]any{
			"name":   f.Name,
			"points": f.Points,
			"cap":    f.Cap,
			"reason": f.Reason,
		})
	}
	return out
}
