package loan

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductType is the loan category. Each category can carry its own escalation rule.
type ProductType string

const (
	ProductCredit   ProductType = "credit"
	ProductMortgage ProductType = "mortgage"
	ProductAuto     ProductType = "auto"
	ProductPolicy   ProductType = "policy" // subsidized
)

// Products lists the closed set of accepted product types.
func Products() []ProductType {
	return []ProductType{ProductCredit, ProductMortgage, ProductAuto, ProductPolicy}
}

// ParseProductType normalizes a product tag. The bool is false for unknown tags.
func ParseProductType(s string) (ProductType, bool) {
	p := ProductType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Products() {
		if p == known {
			return p, true
		}
	}
	return p, false
}

// UnmarshalText normalizes case and surrounding space so decoded requests
// carry the canonical tag. Unknown tags are kept and rejected by Validate.
func (p *ProductType) UnmarshalText(text []byte) error {
	*p, _ = ParseProductType(string(text))
	return nil
}

// ApplicantProfile is the applicant's financial profile for one evaluation.
type ApplicantProfile struct {
	AnnualIncome             decimal.Decimal `json:"annual_income" yaml:"annual_income"`
	CreditScore              int             `json:"credit_score" yaml:"credit_score"`
	HasPayroll               bool            `json:"has_payroll" yaml:"has_payroll"`
	AutoTransfers            int             `json:"auto_transfers" yaml:"auto_transfers"`
	JobYears                 float64         `json:"job_years" yaml:"job_years"`
	CurrentAnnualDebtPayment decimal.Decimal `json:"current_annual_debt_payment" yaml:"current_annual_debt_payment"`
}

// Request is the requested loan.
type Request struct {
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	AnnualRate  float64         `json:"annual_rate" yaml:"annual_rate"`
	TermYears   int             `json:"term_years" yaml:"term_years"`
	ProductType ProductType     `json:"product_type" yaml:"product_type"`
}
