package authority

import "strings"

// Role is an organizational role tag.
type Role string

const (
	RoleStaff         Role = "staff"
	RoleBranchManager Role = "branch-manager"
	RoleHeadquarters  Role = "headquarters"
)

// roleLevels orders roles; the short tags are the legacy assistant tool values.
var roleLevels = map[string]Role{
	"staff":          RoleStaff,
	"branch-manager": RoleBranchManager,
	"branch_manager": RoleBranchManager,
	"manager":        RoleBranchManager,
	"headquarters":   RoleHeadquarters,
	"hq":             RoleHeadquarters,
}

// Level returns the role's ordered authority: staff=0, branch-manager=1, headquarters=2.
func (r Role) Level() int {
	switch r {
	case RoleBranchManager:
		return 1
	case RoleHeadquarters:
		return 2
	default:
		return 0
	}
}

// ParseRole normalizes a role tag. Unknown tags resolve to staff with ok=false.
func ParseRole(s string) (Role, bool) {
	r, ok := roleLevels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return RoleStaff, false
	}
	return r, true
}

// RequiredRole is the least senior role that may act on a level. Reject has none.
func RequiredRole(l Level) (Role, bool) {
	switch l {
	case AutoApprove:
		return RoleStaff, true
	case BranchManager:
		return RoleBranchManager, true
	case HeadquartersReview:
		return RoleHeadquarters, true
	default:
		return "", false
	}
}

// Outcome classifies a verdict.
type Outcome string

const (
	OutcomeWithinAuthority       Outcome = "within_authority"
	OutcomeInsufficientAuthority Outcome = "insufficient_authority"
	OutcomeRejectedByPolicy      Outcome = "rejected_by_policy"
)

// Verdict states whether the caller may act on a decision.
type Verdict struct {
	Actionable     bool    `json:"actionable"`
	Outcome        Outcome `json:"outcome"`
	CallerRole     Role    `json:"caller_role"`
	CallerInput    string  `json:"caller_input"`
	CallerLevel    int     `json:"caller_level"`
	RoleRecognized bool    `json:"role_recognized"`
	RequiredRole   Role    `json:"required_role,omitempty"`
	RequiredLevel  int     `json:"required_level"`
}

// Check compares the caller's role against the decision. Unknown roles are
// treated as staff. Rejected decisions are never actionable.
func Check(d Decision, callerRole string) Verdict {
	role, recognized := ParseRole(callerRole)
	v := Verdict{
		CallerRole:     role,
		CallerInput:    callerRole,
		CallerLevel:    role.Level(),
		RoleRecognized: recognized,
	}

	required, ok := RequiredRole(d.Level)
	if !ok {
		v.Outcome = OutcomeRejectedByPolicy
		v.RequiredLevel = -1
		return v
	}
	v.RequiredRole = required
	v.RequiredLevel = required.Level()

	if v.CallerLevel >= v.RequiredLevel {
		v.Actionable = true
		v.Outcome = OutcomeWithinAuthority
	} else {
		v.Outcome = OutcomeInsufficientAuthority
	}
	return v
}
