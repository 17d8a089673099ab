// Package simulation composes scoring, affordability and authority into a
// single deterministic evaluation.
package simulation

import (
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Underwriter/internal/affordability"
	"github.com/MikeSquared-Agency/Underwriter/internal/authority"
	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
	"github.com/MikeSquared-Agency/Underwriter/internal/scoring"
)

// RiskNote is the qualitative interest-rate commentary on a report.
type RiskNote string

const (
	RiskStable       RiskNote = "stable"
	RiskRateIncrease RiskNote = "rate_increase_risk"
)

// Report is the full result of one evaluation. It is built fresh per call.
type Report struct {
	PolicyVersion string               `json:"policy_version"`
	Request       loan.Request         `json:"request"`
	Score         scoring.ScoreResult  `json:"score"`
	Current       affordability.Result `json:"current"`
	Stressed      affordability.Result `json:"stressed"`
	Decision      authority.Decision   `json:"decision"`
	Verdict       authority.Verdict    `json:"verdict"`
	RiskNote      RiskNote             `json:"risk_note"`
}

// Engine evaluates loan requests against one policy. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	policy   policy.Policy
	scorer   *scoring.Scorer
	resolver *authority.Resolver
}

// NewEngine validates the policy and builds an engine over it.
func NewEngine(p policy.Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &Engine{
		policy:   p,
		scorer:   scoring.NewScorer(p.Scoring),
		resolver: authority.NewResolver(p.Authority),
	}, nil
}

// Policy returns the policy the engine evaluates against.
func (e *Engine) Policy() policy.Policy { return e.policy }

// Evaluate runs the full pipeline for one request. Validation failures for
// both inputs are reported together; nothing is evaluated unless all pass.
func (e *Engine) Evaluate(profile loan.ApplicantProfile, req loan.Request, callerRole string) (Report, error) {
	if err := errors.Join(profile.Validate(), req.Validate()); err != nil {
		return Report{}, err
	}

	score, err := e.scorer.Score(profile)
	if err != nil {
		return Report{}, err
	}

	current, err := affordability.DebtServiceRatio(profile.AnnualIncome, profile.CurrentAnnualDebtPayment,
		req.Amount, req.AnnualRate, req.TermYears)
	if err != nil {
		return Report{}, fmt.Errorf("current dsr: %w", err)
	}

	stressedRate := affordability.StressedRate(req.AnnualRate, e.policy.Stress.RateIncrement)
	stressed, err := affordability.DebtServiceRatio(profile.AnnualIncome, profile.CurrentAnnualDebtPayment,
		req.Amount, stressedRate, req.TermYears)
	if err != nil {
		return Report{}, fmt.Errorf("stressed dsr: %w", err)
	}

	// the stressed ratio only feeds the risk note, never the decision
	decision := e.resolver.Resolve(authority.Input{
		Amount:      req.Amount,
		Grade:       score.Grade,
		Ratio:       current.Ratio,
		ProductType: req.ProductType,
	})

	note := RiskStable
	if stressed.Ratio > e.policy.Stress.RegulatoryDSRCeiling {
		note = RiskRateIncrease
	}

	return Report{
		PolicyVersion: e.policy.Version,
		Request:       req,
		Score:         score,
		Current:       current,
		Stressed:      stressed,
		Decision:      decision,
		Verdict:       authority.Check(decision, callerRole),
		RiskNote:      note,
	}, nil
}
