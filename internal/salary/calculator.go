package salary

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jobeval/jobeval/internal/occupation"
)

// DefaultPayrollRatio is the share of annual revenue assumed available for
// total payroll when the company does not supply its own figure.
const DefaultPayrollRatio = 0.3

// Verdict classifies a proposed salary against market and budget.
type Verdict string

const (
	VerdictBelowMarket Verdict = "below_market"
	VerdictAtMarket    Verdict = "at_market"
	VerdictAboveMarket Verdict = "above_market"
	VerdictAboveBudget Verdict = "above_budget"
)

// CompanyProfile carries the company-side inputs collected by the wizard.
type CompanyProfile struct {
	AnnualRevenue decimal.Decimal
	Employees     int
	// PayrollRatio is the share of revenue spent on payroll, (0,1].
	// Zero means DefaultPayrollRatio.
	PayrollRatio float64
}

// Range is an affordable salary band, in whole dollars.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Mid decimal.Decimal `json:"mid"`
	Max decimal.Decimal `json:"max"`
}

// Evaluation is the result of comparing a proposed salary against an
// occupation's market wages and a company's budget.
type Evaluation struct {
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	Percentile float64 `json:"percentile"`
	Verdict    Verdict `json:"verdict"`
	// Market is the p25/median/p75 band for the occupation.
	Market Range `json:"market"`
	// Affordable is the market band capped by the company's per-head budget.
	Affordable Range           `json:"affordable"`
	BudgetCap  decimal.Decimal `json:"budget_cap"`
}

// Evaluate computes the market percentile, verdict, and affordable range for
// a proposed salary.
func Evaluate(occ occupation.Occupation, proposed decimal.Decimal, company CompanyProfile) (*Evaluation, error) {
	if !occ.Wages.Valid() {
		return nil, fmt.Errorf("occupation %s has no usable wage data", occ.Code)
	}
	if proposed.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("proposed salary must be positive")
	}
	if company.Employees <= 0 {
		return nil, fmt.Errorf("company employee count must be positive")
	}
	ratio := company.PayrollRatio
	if ratio == 0 {
		ratio = DefaultPayrollRatio
	}
	if ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("payroll ratio must be in (0, 1], got %v", ratio)
	}

	salary, _ := proposed.Float64()
	pct, err := PercentileFor(occ.Wages, salary)
	if err != nil {
		return nil, err
	}

	// Per-head budget: payroll share of revenue spread over headcount.
	budgetCap := company.AnnualRevenue.
		Mul(decimal.NewFromFloat(ratio)).
		Div(decimal.NewFromInt(int64(company.Employees))).
		Round(0)

	market := Range{
		Min: decimal.NewFromFloat(occ.Wages.P25).Round(0),
		Mid: decimal.NewFromFloat(occ.Wages.Median).Round(0),
		Max: decimal.NewFromFloat(occ.Wages.P75).Round(0),
	}
	affordable := Range{
		Min: decimal.Min(market.Min, budgetCap),
		Mid: decimal.Min(market.Mid, budgetCap),
		Max: decimal.Min(market.Max, budgetCap),
	}

	verdict := VerdictAtMarket
	switch {
	case proposed.GreaterThan(budgetCap):
		verdict = VerdictAboveBudget
	case pct < 25:
		verdict = VerdictBelowMarket
	case pct > 75:
		verdict = VerdictAboveMarket
	}

	return &Evaluation{
		Code:       occ.Code,
		Title:      occ.Title,
		Percentile: pct,
		Verdict:    verdict,
		Market:     market,
		Affordable: affordable,
		BudgetCap:  budgetCap,
	}, nil
}
