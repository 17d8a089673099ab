package loan

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProfile     = errors.New("invalid applicant profile")
	ErrInvalidLoanRequest = errors.New("invalid loan request")
)

// Bounds applied to arguments that may come from an untrusted extraction step.
const (
	MaxCreditScore = 1000
	MaxAnnualRate  = 1.0
	MaxTermYears   = 50
)

// MaxLoanAmount caps the principal at one trillion.
var MaxLoanAmount = decimal.NewFromInt(1_000_000_000_000)

// FieldError identifies one failing input field. It unwraps to its error kind.
type FieldError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// FieldErrors flattens a (possibly joined or wrapped) validation error into its field errors.
func FieldErrors(err error) []*FieldError {
	switch e := err.(type) {
	case nil:
		return nil
	case *FieldError:
		return []*FieldError{e}
	case interface{ Unwrap() []error }:
		var out []*FieldError
		for _, inner := range e.Unwrap() {
			out = append(out, FieldErrors(inner)...)
		}
		return out
	default:
		return FieldErrors(errors.Unwrap(err))
	}
}

// Validate checks every field of the profile and reports all failures at once.
func (p ApplicantProfile) Validate() error {
	var errs []error
	bad := func(field, reason string) {
		errs = append(errs, &FieldError{Kind: ErrInvalidProfile, Field: field, Reason: reason})
	}

	if p.AnnualIncome.IsNegative() {
		bad("annual_income", "must not be negative")
	}
	if p.CreditScore < 0 || p.CreditScore > MaxCreditScore {
		bad("credit_score", fmt.Sprintf("must be between 0 and %d", MaxCreditScore))
	}
	if p.AutoTransfers < 0 {
		bad("auto_transfers", "must not be negative")
	}
	switch {
	case math.IsNaN(p.JobYears) || math.IsInf(p.JobYears, 0):
		bad("job_years", "must be a finite number")
	case p.JobYears < 0:
		bad("job_years", "must not be negative")
	}
	if p.CurrentAnnualDebtPayment.IsNegative() {
		bad("current_annual_debt_payment", "must not be negative")
	}
	return errors.Join(errs...)
}

// Validate checks every field of the request and reports all failures at once.
func (r Request) Validate() error {
	var errs []error
	bad := func(field, reason string) {
		errs = append(errs, &FieldError{Kind: ErrInvalidLoanRequest, Field: field, Reason: reason})
	}

	switch {
	case !r.Amount.GreaterThan(decimal.Zero):
		bad("amount", "must be positive")
	case r.Amount.GreaterThan(MaxLoanAmount):
		bad("amount", fmt.Sprintf("must not exceed %s", MaxLoanAmount))
	}
	switch {
	case math.IsNaN(r.AnnualRate) || math.IsInf(r.AnnualRate, 0):
		bad("annual_rate", "must be a finite number")
	case r.AnnualRate < 0:
		bad("annual_rate", "must not be negative")
	case r.AnnualRate > MaxAnnualRate:
		bad("annual_rate", fmt.Sprintf("must not exceed %.2f", MaxAnnualRate))
	}
	switch {
	case r.TermYears <= 0:
		bad("term_years", "must be positive")
	case r.TermYears > MaxTermYears:
		bad("term_years", fmt.Sprintf("must not exceed %d", MaxTermYears))
	}
	if p, ok := ParseProductType(string(r.ProductType)); !ok || p != r.ProductType {
		bad("product_type", fmt.Sprintf("unknown product %q", r.ProductType))
	}
	return errors.Join(errs...)
}
