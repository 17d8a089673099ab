package authority

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

// Input bundles everything the resolver looks at.
type Input struct {
	Amount      decimal.Decimal
	Grade       int
	Ratio       float64
	ProductType loan.ProductType
}

// Rule is one step of the ordered policy chain. Match returns false when the
// rule does not apply and evaluation should continue.
type Rule struct {
	Name  string
	Match func(in Input, ap policy.AuthorityPolicy) (Decision, bool)
}

// Rules returns the policy chain in evaluation order. The first matching rule
// wins; the final rule always matches.
func Rules() []Rule {
	return []Rule{
		{Name: "grade_floor", Match: gradeFloorRule},
		{Name: "hard_dsr_ceiling", Match: hardDSRRule},
		{Name: "auto_approve", Match: autoApproveRule},
		{Name: "headquarters_escalation", Match: escalationRule},
		{Name: "branch_default", Match: branchDefaultRule},
	}
}

// Resolver maps a scored, ratio-checked request to its approval authority.
type Resolver struct {
	policy policy.AuthorityPolicy
	rules  []Rule
}

// NewResolver creates a Resolver over the given thresholds.
func NewResolver(ap policy.AuthorityPolicy) *Resolver {
	return &Resolver{policy: ap, rules: Rules()}
}

// Resolve runs the rule chain. It is total: every input maps to exactly one level.
func (r *Resolver) Resolve(in Input) Decision {
	for _, rule := range r.rules {
		if d, ok := rule.Match(in, r.policy); ok {
			d.Rule = rule.Name
			return d
		}
	}
	// unreachable while branch_default terminates the chain
	return Decision{Level: Reject, Rationale: RationaleHardDSR, Rule: "fallthrough"}
}

func gradeFloorRule(in Input, ap policy.AuthorityPolicy) (Decision, bool) {
	if in.Grade >= ap.RejectGradeFloor {
		return Decision{Level: Reject, Rationale: RationaleGradeFloor}, true
	}
	return Decision{}, false
}

func hardDSRRule(in Input, ap policy.AuthorityPolicy) (Decision, bool) {
	if in.Ratio > ap.HardDSRCeiling {
		return Decision{Level: Reject, Rationale: RationaleHardDSR}, true
	}
	return Decision{}, false
}

func autoApproveRule(in Input, ap policy.AuthorityPolicy) (Decision, bool) {
	if in.Amount.LessThanOrEqual(ap.SmallLoanCeiling) &&
		in.Grade <= ap.AutoApproveGradeCeiling &&
		in.Ratio <= ap.AutoApproveDSRCeiling {
		return Decision{Level: AutoApprove, Rationale: RationaleAutoApproved}, true
	}
	return Decision{}, false
}

func escalationRule(in Input, ap policy.AuthorityPolicy) (Decision, bool) {
	reasons := EscalationReasons(in, ap)
	if len(reasons) == 0 {
		return Decision{}, false
	}
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return Decision{
		Level:     HeadquartersReview,
		Rationale: RationaleHeadquarters + ": " + strings.Join(parts, ", "),
		Reasons:   reasons,
	}, true
}

func branchDefaultRule(Input, policy.AuthorityPolicy) (Decision, bool) {
	return Decision{Level: BranchManager, Rationale: RationaleBranch}, true
}

// EscalationReasons collects every headquarters trigger, in a fixed order.
func EscalationReasons(in Input, ap policy.AuthorityPolicy) []Reason {
	var reasons []Reason
	if in.Amount.GreaterThan(ap.LargeLoanCeiling) {
		reasons = append(reasons, ReasonLargeLoan)
	}
	if in.ProductType == loan.ProductMortgage && in.Ratio > ap.MortgageDSRCeiling {
		reasons = append(reasons, ReasonMortgageDSR)
	}
	if in.ProductType == loan.ProductPolicy && in.Ratio > ap.PolicyProductDSRCeiling {
		reasons = append(reasons, ReasonPolicyProductDSR)
	}
	return reasons
}
