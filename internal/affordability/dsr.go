// Package affordability computes debt-service ratios for fixed-rate,
// equal-payment (annuity) loans.
package affordability

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
)

// SentinelRatio is returned when income is zero. Downstream it always
// exceeds the hard DSR ceiling, so the request is rejected.
const SentinelRatio = 999.0

// Result is the debt-service ratio for one rate/term pair.
type Result struct {
	AnnualRate         float64         `json:"annual_rate"`
	TermYears          int             `json:"term_years"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	NewAnnualPayment   decimal.Decimal `json:"new_annual_payment"`
	TotalAnnualPayment decimal.Decimal `json:"total_annual_payment"`
	Ratio              float64         `json:"ratio"`
	IncomeUndefined    bool            `json:"income_undefined"`
}

// MonthlyPayment returns the equal monthly installment:
//
//	r = annualRate / 12, n = termYears * 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate, or one too small to move (1+r)^n off 1, splits the principal
// evenly over n payments.
func MonthlyPayment(amount decimal.Decimal, annualRate float64, termYears int) (decimal.Decimal, error) {
	n := termYears * 12
	straight := amount.Div(decimal.NewFromInt(int64(n)))
	if annualRate == 0 {
		return straight, nil
	}
	r := annualRate / 12
	// growth = (1+r)^n - 1 without cancellation for tiny r
	growth := math.Expm1(float64(n) * math.Log1p(r))
	if growth == 0 {
		return straight, nil
	}
	payment := amount.InexactFloat64() * r * (growth + 1) / growth
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return decimal.Zero, &loan.FieldError{Kind: loan.ErrInvalidLoanRequest, Field: "amount", Reason: "monthly payment is not representable"}
	}
	return decimal.NewFromFloat(payment), nil
}

// DebtServiceRatio computes (current annual debt + new annual payment) / income,
// rounded to four decimal places. Zero income yields SentinelRatio.
func DebtServiceRatio(annualIncome, currentAnnualDebt, newLoanAmount decimal.Decimal, annualRate float64, termYears int) (Result, error) {
	if termYears <= 0 {
		return Result{}, &loan.FieldError{Kind: loan.ErrInvalidLoanRequest, Field: "term_years", Reason: "must be positive"}
	}
	if annualRate < 0 || math.IsNaN(annualRate) || math.IsInf(annualRate, 0) {
		return Result{}, &loan.FieldError{Kind: loan.ErrInvalidLoanRequest, Field: "annual_rate", Reason: fmt.Sprintf("invalid rate %v", annualRate)}
	}

	monthly, err := MonthlyPayment(newLoanAmount, annualRate, termYears)
	if err != nil {
		return Result{}, err
	}
	annual := monthly.Mul(decimal.NewFromInt(12))
	total := currentAnnualDebt.Add(annual)

	res := Result{
		AnnualRate:         annualRate,
		TermYears:          termYears,
		MonthlyPayment:     monthly,
		NewAnnualPayment:   annual,
		TotalAnnualPayment: total,
	}
	if annualIncome.IsZero() {
		res.Ratio = SentinelRatio
		res.IncomeUndefined = true
		return res, nil
	}
	res.Ratio = total.DivRound(annualIncome, 4).InexactFloat64()
	if math.IsInf(res.Ratio, 0) {
		// beyond float64 range; any such ratio is over every ceiling
		res.Ratio = SentinelRatio
	}
	return res, nil
}

// StressedRate returns the rate used for the stress test.
func StressedRate(annualRate, increment float64) float64 {
	return decimal.NewFromFloat(annualRate).Add(decimal.NewFromFloat(increment)).InexactFloat64()
}
