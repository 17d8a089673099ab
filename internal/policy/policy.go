package policy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Policy is the complete, versioned rule table used by the decision engine.
// Every threshold the engine compares against lives here.
type Policy struct {
	Version   string          `yaml:"version" json:"version"`
	Scoring   ScoringPolicy   `yaml:"scoring" json:"scoring"`
	Authority AuthorityPolicy `yaml:"authority" json:"authority"`
	Stress    StressPolicy    `yaml:"stress" json:"stress"`
}

// ScoringPolicy defines the composite score weights (points) and grade cutoffs.
type ScoringPolicy struct {
	CreditWeight       float64         `yaml:"credit_weight" json:"credit_weight"`
	IncomeWeight       float64         `yaml:"income_weight" json:"income_weight"`
	RelationshipWeight float64         `yaml:"relationship_weight" json:"relationship_weight"`
	StabilityWeight    float64         `yaml:"stability_weight" json:"stability_weight"`
	BureauScoreMax     int             `yaml:"bureau_score_max" json:"bureau_score_max"`
	ReferenceIncome    decimal.Decimal `yaml:"reference_income" json:"reference_income"`
	PayrollPoints      float64         `yaml:"payroll_points" json:"payroll_points"`
	AutoTransferPoints float64         `yaml:"auto_transfer_points" json:"auto_transfer_points"`
	AutoTransferMin    int             `yaml:"auto_transfer_min" json:"auto_transfer_min"`
	LongTenureYears    float64         `yaml:"long_tenure_years" json:"long_tenure_years"`
	LongTenurePoints   float64         `yaml:"long_tenure_points" json:"long_tenure_points"`
	ShortTenureYears   float64         `yaml:"short_tenure_years" json:"short_tenure_years"`
	ShortTenurePoints  float64         `yaml:"short_tenure_points" json:"short_tenure_points"`

	// GradeCutoffs[i] is the minimum total score for grade i+1. The last grade
	// (len(GradeCutoffs)+1) catches everything below the final cutoff.
	GradeCutoffs []float64 `yaml:"grade_cutoffs" json:"grade_cutoffs"`
}

// AuthorityPolicy holds the approval-authority thresholds.
type AuthorityPolicy struct {
	SmallLoanCeiling        decimal.Decimal `yaml:"small_loan_ceiling" json:"small_loan_ceiling"`
	LargeLoanCeiling        decimal.Decimal `yaml:"large_loan_ceiling" json:"large_loan_ceiling"`
	HardDSRCeiling          float64         `yaml:"hard_dsr_ceiling" json:"hard_dsr_ceiling"`
	AutoApproveDSRCeiling   float64         `yaml:"auto_approve_dsr_ceiling" json:"auto_approve_dsr_ceiling"`
	AutoApproveGradeCeiling int             `yaml:"auto_approve_grade_ceiling" json:"auto_approve_grade_ceiling"`
	RejectGradeFloor        int             `yaml:"reject_grade_floor" json:"reject_grade_floor"`
	MortgageDSRCeiling      float64         `yaml:"mortgage_dsr_ceiling" json:"mortgage_dsr_ceiling"`
	PolicyProductDSRCeiling float64         `yaml:"policy_product_dsr_ceiling" json:"policy_product_dsr_ceiling"`
}

// StressPolicy drives the interest-rate stress test. It only feeds risk commentary.
type StressPolicy struct {
	RateIncrement        float64 `yaml:"rate_increment" json:"rate_increment"`
	RegulatoryDSRCeiling float64 `yaml:"regulatory_dsr_ceiling" json:"regulatory_dsr_ceiling"`
}

// DefaultVersion identifies the rule table returned by Default.
const DefaultVersion = "css-2024.1"

// Default returns the fixed production rule table.
func Default() Policy {
	return Policy{
		Version: DefaultVersion,
		Scoring: ScoringPolicy{
			CreditWeight:       40,
			IncomeWeight:       30,
			RelationshipWeight: 20,
			StabilityWeight:    10,
			BureauScoreMax:     1000,
			ReferenceIncome:    decimal.NewFromInt(100_000_000),
			PayrollPoints:      10,
			AutoTransferPoints: 10,
			AutoTransferMin:    3,
			LongTenureYears:    3,
			LongTenurePoints:   10,
			ShortTenureYears:   1,
			ShortTenurePoints:  5,
			GradeCutoffs:       []float64{90, 80, 70, 60},
		},
		Authority: AuthorityPolicy{
			SmallLoanCeiling:        decimal.NewFromInt(50_000_000),
			LargeLoanCeiling:        decimal.NewFromInt(200_000_000),
			HardDSRCeiling:          0.70,
			AutoApproveDSRCeiling:   0.30,
			AutoApproveGradeCeiling: 3,
			RejectGradeFloor:        5,
			MortgageDSRCeiling:      0.40,
			PolicyProductDSRCeiling: 0.50,
		},
		Stress: StressPolicy{
			RateIncrement:        0.02,
			RegulatoryDSRCeiling: 0.40,
		},
	}
}

// WorstGrade is the grade assigned below the last cutoff.
func (s ScoringPolicy) WorstGrade() int {
	return len(s.GradeCutoffs) + 1
}

// WeightSum returns the maximum attainable composite score.
func (s ScoringPolicy) WeightSum() float64 {
	return s.CreditWeight + s.IncomeWeight + s.RelationshipWeight + s.StabilityWeight
}

// Validate checks that the policy is internally consistent.
func (p Policy) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("policy version is required")
	}
	if err := p.Scoring.validate(); err != nil {
		return fmt.Errorf("policy %s: scoring: %w", p.Version, err)
	}
	if err := p.Authority.validate(p.Scoring.WorstGrade()); err != nil {
		return fmt.Errorf("policy %s: authority: %w", p.Version, err)
	}
	if p.Stress.RateIncrement < 0 {
		return fmt.Errorf("policy %s: stress: negative rate increment %f", p.Version, p.Stress.RateIncrement)
	}
	if !inUnit(p.Stress.RegulatoryDSRCeiling) || p.Stress.RegulatoryDSRCeiling > p.Authority.HardDSRCeiling {
		return fmt.Errorf("policy %s: stress: regulatory ceiling %.4f must be within (0, hard ceiling]", p.Version, p.Stress.RegulatoryDSRCeiling)
	}
	return nil
}

func (s ScoringPolicy) validate() error {
	for _, v := range []float64{s.CreditWeight, s.IncomeWeight, s.RelationshipWeight, s.StabilityWeight,
		s.PayrollPoints, s.AutoTransferPoints, s.LongTenurePoints, s.ShortTenurePoints} {
		if v < 0 {
			return fmt.Errorf("negative points: %f", v)
		}
	}
	if math.Abs(s.WeightSum()-100) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 100", s.WeightSum())
	}
	if s.PayrollPoints+s.AutoTransferPoints > s.RelationshipWeight {
		return fmt.Errorf("relationship points exceed relationship weight %.1f", s.RelationshipWeight)
	}
	if s.LongTenurePoints > s.StabilityWeight || s.ShortTenurePoints > s.LongTenurePoints {
		return fmt.Errorf("tenure points must satisfy short <= long <= stability weight")
	}
	if s.ShortTenureYears > s.LongTenureYears {
		return fmt.Errorf("short tenure %.1f exceeds long tenure %.1f", s.ShortTenureYears, s.LongTenureYears)
	}
	if s.BureauScoreMax <= 0 {
		return fmt.Errorf("bureau score max must be positive")
	}
	if !s.ReferenceIncome.IsPositive() {
		return fmt.Errorf("reference income must be positive")
	}
	if len(s.GradeCutoffs) == 0 {
		return fmt.Errorf("at least one grade cutoff is required")
	}
	prev := math.Inf(1)
	for i, c := range s.GradeCutoffs {
		if c <= 0 || c > 100 {
			return fmt.Errorf("grade cutoff %d (%.1f) out of range (0, 100]", i+1, c)
		}
		if c >= prev {
			return fmt.Errorf("grade cutoffs must be strictly descending")
		}
		prev = c
	}
	return nil
}

func (a AuthorityPolicy) validate(worstGrade int) error {
	if !a.SmallLoanCeiling.IsPositive() || a.LargeLoanCeiling.LessThan(a.SmallLoanCeiling) {
		return fmt.Errorf("loan ceilings must satisfy 0 < small <= large")
	}
	ceilings := []struct {
		name  string
		value float64
	}{
		{"hard_dsr_ceiling", a.HardDSRCeiling},
		{"auto_approve_dsr_ceiling", a.AutoApproveDSRCeiling},
		{"mortgage_dsr_ceiling", a.MortgageDSRCeiling},
		{"policy_product_dsr_ceiling", a.PolicyProductDSRCeiling},
	}
	for _, c := range ceilings {
		if !inUnit(c.value) {
			return fmt.Errorf("%s %.4f out of range (0, 1]", c.name, c.value)
		}
	}
	if a.AutoApproveDSRCeiling > a.HardDSRCeiling {
		return fmt.Errorf("auto-approve DSR ceiling %.4f exceeds hard ceiling %.4f", a.AutoApproveDSRCeiling, a.HardDSRCeiling)
	}
	if a.RejectGradeFloor < 1 || a.RejectGradeFloor > worstGrade {
		return fmt.Errorf("reject grade floor %d out of range [1, %d]", a.RejectGradeFloor, worstGrade)
	}
	if a.AutoApproveGradeCeiling >= a.RejectGradeFloor {
		return fmt.Errorf("auto-approve grade ceiling %d must be better than reject floor %d", a.AutoApproveGradeCeiling, a.RejectGradeFloor)
	}
	return nil
}

func inUnit(v float64) bool {
	return v > 0 && v <= 1
}
