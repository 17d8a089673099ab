package loan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() ApplicantProfile {
	return ApplicantProfile{
		AnnualIncome:             decimal.NewFromInt(60_000_000),
		CreditScore:              850,
		HasPayroll:               true,
		AutoTransfers:            3,
		JobYears:                 4,
		CurrentAnnualDebtPayment: decimal.Zero,
	}
}

func validRequest() Request {
	return Request{
		Amount:      decimal.NewFromInt(300_000_000),
		AnnualRate:  0.05,
		TermYears:   10,
		ProductType: ProductCredit,
	}
}

func TestParseProductType(t *testing.T) {
	tests := []struct {
		in   string
		want ProductType
		ok   bool
	}{
		{"credit", ProductCredit, true},
		{" Mortgage ", ProductMortgage, true},
		{"AUTO", ProductAuto, true},
		{"policy", ProductPolicy, true},
		{"jumbo", ProductType("jumbo"), false},
		{"", ProductType(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseProductType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfileValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validProfile().Validate())
	})

	t.Run("zero income is valid", func(t *testing.T) {
		p := validProfile()
		p.AnnualIncome = decimal.Zero
		assert.NoError(t, p.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*ApplicantProfile)
		field  string
	}{
		{"negative income", func(p *ApplicantProfile) { p.AnnualIncome = decimal.NewFromInt(-1) }, "annual_income"},
		{"credit score too high", func(p *ApplicantProfile) { p.CreditScore = 1001 }, "credit_score"},
		{"credit score negative", func(p *ApplicantProfile) { p.CreditScore = -5 }, "credit_score"},
		{"negative transfers", func(p *ApplicantProfile) { p.AutoTransfers = -1 }, "auto_transfers"},
		{"negative tenure", func(p *ApplicantProfile) { p.JobYears = -0.5 }, "job_years"},
		{"NaN tenure", func(p *ApplicantProfile) { p.JobYears = math.NaN() }, "job_years"},
		{"negative debt", func(p *ApplicantProfile) { p.CurrentAnnualDebtPayment = decimal.NewFromInt(-10) }, "current_annual_debt_payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProfile)
			assert.NotErrorIs(t, err, ErrInvalidLoanRequest)

			fields := FieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestProfileValidate_ReportsEveryField(t *testing.T) {
	p := ApplicantProfile{
		AnnualIncome:             decimal.NewFromInt(-1),
		CreditScore:              2000,
		AutoTransfers:            -3,
		JobYears:                 -1,
		CurrentAnnualDebtPayment: decimal.NewFromInt(-1),
	}
	fields := FieldErrors(p.Validate())
	require.Len(t, fields, 5)

	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.Equal(t, []string{"annual_income", "credit_score", "auto_transfers", "job_years", "current_annual_debt_payment"}, names)
}

func TestRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validRequest().Validate())
	})

	t.Run("zero rate is valid", func(t *testing.T) {
		r := validRequest()
		r.AnnualRate = 0
		assert.NoError(t, r.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"zero amount", func(r *Request) { r.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(r *Request) { r.Amount = decimal.NewFromInt(-100) }, "amount"},
		{"amount beyond cap", func(r *Request) { r.Amount = MaxLoanAmount.Add(decimal.NewFromInt(1)) }, "amount"},
		{"amount beyond float range", func(r *Request) { r.Amount = decimal.RequireFromString("1e400") }, "amount"},
		{"negative rate", func(r *Request) { r.AnnualRate = -0.01 }, "annual_rate"},
		{"absurd rate", func(r *Request) { r.AnnualRate = 5 }, "annual_rate"},
		{"infinite rate", func(r *Request) { r.AnnualRate = math.Inf(1) }, "annual_rate"},
		{"zero term", func(r *Request) { r.TermYears = 0 }, "term_years"},
		{"term too long", func(r *Request) { r.TermYears = 99 }, "term_years"},
		{"unknown product", func(r *Request) { r.ProductType = "jumbo" }, "product_type"},
		{"non-canonical product", func(r *Request) { r.ProductType = "Mortgage" }, "product_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLoanRequest)

			fields := FieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestFieldErrors_Wrapped(t *testing.T) {
	r := validRequest()
	r.TermYears = 0
	err := fmt.Errorf("evaluate: %w", r.Validate())

	fields := FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "term_years", fields[0].Field)
	assert.Contains(t, fields[0].Error(), "term_years must be positive")

	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}

func TestRequest_DecodeNormalizesProduct(t *testing.T) {
	var r Request
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"1000000","annual_rate":0.05,"term_years":3,"product_type":" Mortgage "}`), &r))
	assert.Equal(t, ProductMortgage, r.ProductType)
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(1_000_000)))
	assert.NoError(t, r.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"product_type":"yacht"}`), &r))
	assert.Equal(t, ProductType("yacht"), r.ProductType)
}
