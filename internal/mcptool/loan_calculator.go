package mcptool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/present"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
)

// Assistant-facing defaults for arguments the extraction step often omits.
const (
	DefaultAnnualRate    = 0.05
	DefaultTermYears     = 5
	DefaultHasPayroll    = true
	DefaultAutoTransfers = 3
	DefaultProductType   = loan.ProductCredit
	DefaultUserRole      = "manager"
)

// LoanCalculatorInput is the tool input. Numbers arrive from an untrusted
// extraction step and are validated by the engine.
type LoanCalculatorInput struct {
	AnnualIncome           float64  `json:"annual_income" jsonschema:"annual income in KRW, e.g. 50000000"`
	CreditScore            int      `json:"credit_score" jsonschema:"bureau credit score 0-1000, e.g. 850"`
	CurrentAnnualRepayment float64  `json:"current_annual_repayment,omitempty" jsonschema:"annual principal+interest on existing loans in KRW, 0 if none"`
	LoanAmount             float64  `json:"loan_amount" jsonschema:"requested loan amount in KRW"`
	ProductType            string   `json:"product_type,omitempty" jsonschema:"credit, mortgage, auto or policy (default credit)"`
	JobYears               float64  `json:"job_years,omitempty" jsonschema:"years at current employer, 0 if unknown"`
	UserRole               string   `json:"user_role,omitempty" jsonschema:"caller role: staff, manager (branch manager) or hq (headquarters); default manager"`
	AnnualRate             *float64 `json:"annual_rate,omitempty" jsonschema:"annual interest rate as a fraction (default 0.05)"`
	TermYears              *int     `json:"term_years,omitempty" jsonschema:"loan term in years (default 5)"`
	HasPayroll             *bool    `json:"has_payroll,omitempty" jsonschema:"salary is deposited with the bank (default true)"`
	AutoTransfers          *int     `json:"auto_transfers,omitempty" jsonschema:"number of automatic transfers (default 3)"`
	Language               string   `json:"language,omitempty" jsonschema:"response language tag, en or ko (default en)"`
}

// LoanCalculatorResult is the tool output.
type LoanCalculatorResult struct {
	Report   map[string]any   `json:"report" jsonschema:"full evaluation report"`
	Messages present.Messages `json:"messages" jsonschema:"localized summary lines"`
}

// LoanCalculatorTool defines the MCP tool schema for loan simulation.
func LoanCalculatorTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "loan_calculator",
		Description: "Simulate a loan review: computes the DSR, internal credit grade, approval authority " +
			"and whether the caller may approve. Use it whenever a concrete DSR figure or an approve/reject judgement is needed.",
	}
}

// LoanCalculatorHandler evaluates one request with the engine.
func LoanCalculatorHandler(engine *simulation.Engine, presenter *present.Presenter, logger *slog.Logger) mcp.ToolHandlerFor[LoanCalculatorInput, LoanCalculatorResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input LoanCalculatorInput) (*mcp.CallToolResult, LoanCalculatorResult, error) {
		profile, req, role := input.toDomain()

		report, err := engine.Evaluate(profile, req, role)
		if err != nil {
			logger.Info("loan_calculator rejected input", "error", err)
			return nil, LoanCalculatorResult{}, fmt.Errorf("invalid input: %s", describe(err))
		}

		return nil, LoanCalculatorResult{
			Report:   report.Document(),
			Messages: presenter.Render(report, presenter.Match(input.Language)),
		}, nil
	}
}

func (in LoanCalculatorInput) toDomain() (loan.ApplicantProfile, loan.Request, string) {
	profile := loan.ApplicantProfile{
		AnnualIncome:             decimal.NewFromFloat(in.AnnualIncome),
		CreditScore:              in.CreditScore,
		HasPayroll:               DefaultHasPayroll,
		AutoTransfers:            DefaultAutoTransfers,
		JobYears:                 in.JobYears,
		CurrentAnnualDebtPayment: decimal.NewFromFloat(in.CurrentAnnualRepayment),
	}
	if in.HasPayroll != nil {
		profile.HasPayroll = *in.HasPayroll
	}
	if in.AutoTransfers != nil {
		profile.AutoTransfers = *in.AutoTransfers
	}

	req := loan.Request{
		Amount:      decimal.NewFromFloat(in.LoanAmount),
		AnnualRate:  DefaultAnnualRate,
		TermYears:   DefaultTermYears,
		ProductType: DefaultProductType,
	}
	if in.AnnualRate != nil {
		req.AnnualRate = *in.AnnualRate
	}
	if in.TermYears != nil {
		req.TermYears = *in.TermYears
	}
	if strings.TrimSpace(in.ProductType) != "" {
		req.ProductType, _ = loan.ParseProductType(in.ProductType)
	}

	role := in.UserRole
	if strings.TrimSpace(role) == "" {
		role = DefaultUserRole
	}
	return profile, req, role
}

// describe flattens field errors into one line the assistant can relay.
func describe(err error) string {
	fields := loan.FieldErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, len(fields))
	for i, fe := range fields {
		parts[i] = fe.Field + " " + fe.Reason
	}
	return strings.Join(parts, "; ")
}
