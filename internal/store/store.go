package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

// ErrPolicyNotFound is returned when no row matches the requested version,
// or when no version is marked active.
var ErrPolicyNotFound = errors.New("policy not found")

// PolicyRecord is one row of the policy registry.
type PolicyRecord struct {
	Version   string        `json:"version"`
	Policy    policy.Policy `json:"policy"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

// PolicyStore is the versioned policy registry. Decisions are never stored.
type PolicyStore interface {
	GetPolicy(ctx context.Context, version string) (*PolicyRecord, error)
	ActivePolicy(ctx context.Context) (*PolicyRecord, error)
	ListPolicies(ctx context.Context) ([]*PolicyRecord, error)
	SavePolicy(ctx context.Context, p policy.Policy, activate bool) error

	Close() error
}

// Resolve loads the configured version, or the active one when version is
// empty, and validates it before handing it to the engine.
func Resolve(ctx context.Context, s PolicyStore, version string) (policy.Policy, error) {
	var (
		rec *PolicyRecord
		err error
	)
	if version != "" {
		rec, err = s.GetPolicy(ctx, version)
	} else {
		rec, err = s.ActivePolicy(ctx)
	}
	if err != nil {
		return policy.Policy{}, err
	}
	if err := rec.Policy.Validate(); err != nil {
		return policy.Policy{}, fmt.Errorf("policy %s: %w", rec.Version, err)
	}
	return rec.Policy, nil
}
