package authority

import (
	"encoding/json"
	"fmt"
)

// Level is the approval authority a decision requires. Levels are ordered by
// strictness: AutoApprove < BranchManager < HeadquartersReview < Reject.
type Level int

const (
	AutoApprove Level = iota
	BranchManager
	HeadquartersReview
	Reject
)

var levelNames = map[Level]string{
	AutoApprove:        "auto_approve",
	BranchManager:      "branch_manager",
	HeadquartersReview: "headquarters_review",
	Reject:             "reject",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalJSON encodes the level by name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for lv, name := range levelNames {
		if name == s {
			*l = lv
			return nil
		}
	}
	return fmt.Errorf("unknown authority level %q", s)
}

// Reason is a policy condition that forced headquarters review.
type Reason string

const (
	ReasonLargeLoan        Reason = "amount exceeds large-loan ceiling"
	ReasonMortgageDSR      Reason = "mortgage DSR exceeds mortgage ceiling"
	ReasonPolicyProductDSR Reason = "policy-product DSR exceeds special ceiling"
)

// Rationale codes for non-escalation outcomes.
const (
	RationaleGradeFloor   = "internal grade below floor"
	RationaleHardDSR      = "DSR exceeds hard ceiling"
	RationaleAutoApproved = "small loan, good grade, low DSR"
	RationaleBranch       = "within branch manager authority"
	RationaleHeadquarters = "headquarters review required"
)

// Decision is the resolved approval authority.
type Decision struct {
	Level     Level    `json:"level"`
	Rationale string   `json:"rationale"`
	Reasons   []Reason `json:"reasons,omitempty"`
	Rule      string   `json:"rule"`
}
