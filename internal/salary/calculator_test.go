package salary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobeval/jobeval/internal/occupation"
)

func testOccupation() occupation.Occupation {
	return occupation.Occupation{
		Code:  "15-1252",
		Title: "Software Developers",
		Wages: testWages(),
	}
}

// bigCompany has plenty of budget: 50M revenue, 100 staff -> 150k per head.
func bigCompany() CompanyProfile {
	return CompanyProfile{
		AnnualRevenue: decimal.NewFromInt(50_000_000),
		Employees:     100,
	}
}

func TestEvaluate_AtMarket(t *testing.T) {
	eval, err := Evaluate(testOccupation(), decimal.NewFromInt(65000), bigCompany())

	require.NoError(t, err)
	assert.Equal(t, VerdictAtMarket, eval.Verdict)
	assert.InDelta(t, 50.0, eval.Percentile, 1e-9)
	assert.True(t, eval.Market.Min.Equal(decimal.NewFromInt(50000)))
	assert.True(t, eval.Market.Max.Equal(decimal.NewFromInt(80000)))
}

func TestEvaluate_BelowMarket(t *testing.T) {
	eval, err := Evaluate(testOccupation(), decimal.NewFromInt(42000), bigCompany())

	require.NoError(t, err)
	assert.Equal(t, VerdictBelowMarket, eval.Verdict)
	assert.Less(t, eval.Percentile, 25.0)
}

func TestEvaluate_AboveMarket(t *testing.T) {
	eval, err := Evaluate(testOccupation(), decimal.NewFromInt(95000), bigCompany())

	require.NoError(t, err)
	assert.Equal(t, VerdictAboveMarket, eval.Verdict)
	assert.Greater(t, eval.Percentile, 75.0)
}

func TestEvaluate_AboveBudgetWinsOverMarketVerdict(t *testing.T) {
	// 1M revenue, 10 staff, default ratio -> 30k per head. A 65k proposal is
	// at market but over budget; budget takes precedence.
	company := CompanyProfile{AnnualRevenue: decimal.NewFromInt(1_000_000), Employees: 10}

	eval, err := Evaluate(testOccupation(), decimal.NewFromInt(65000), company)

	require.NoError(t, err)
	assert.Equal(t, VerdictAboveBudget, eval.Verdict)
	assert.True(t, eval.BudgetCap.Equal(decimal.NewFromInt(30000)))
}

func TestEvaluate_AffordableRangeCappedByBudget(t *testing.T) {
	// 2M revenue, 10 staff -> 60k per head: below median and p75.
	company := CompanyProfile{AnnualRevenue: decimal.NewFromInt(2_000_000), Employees: 10}

	eval, err := Evaluate(testOccupation(), decimal.NewFromInt(55000), company)

	require.NoError(t, err)
	assert.True(t, eval.Affordable.Min.Equal(decimal.NewFromInt(50000)))
	assert.True(t, eval.Affordable.Mid.Equal(decimal.NewFromInt(60000)))
	assert.True(t, eval.Affordable.Max.Equal(decimal.NewFromInt(60000)))
}

func TestEvaluate_CustomPayrollRatio(t *testing.T) {
	company := CompanyProfile{
		AnnualRevenue: decimal.NewFromInt(10_000_000),
		Employees:     20,
		PayrollRatio:  0.5,
	}

	eval, err := Evaluate(testOccupation(), decimal.NewFromInt(65000), company)

	require.NoError(t, err)
	assert.True(t, eval.BudgetCap.Equal(decimal.NewFromInt(250000)))
}

func TestEvaluate_InvalidInputs(t *testing.T) {
	_, err := Evaluate(testOccupation(), decimal.Zero, bigCompany())
	assert.Error(t, err)

	_, err = Evaluate(testOccupation(), decimal.NewFromInt(65000), CompanyProfile{AnnualRevenue: decimal.NewFromInt(1), Employees: 0})
	assert.Error(t, err)

	noWages := occupation.Occupation{Code: "00-0000", Title: "No Data"}
	_, err = Evaluate(noWages, decimal.NewFromInt(65000), bigCompany())
	assert.Error(t, err)

	bad := bigCompany()
	bad.PayrollRatio = 1.5
	_, err = Evaluate(testOccupation(), decimal.NewFromInt(65000), bad)
	assert.Error(t, err)
}

func TestFormatUSD_Grouping(t *testing.T) {
	assert.Equal(t, "$0", FormatUSD(decimal.Zero))
	assert.Equal(t, "$950", FormatUSD(decimal.NewFromInt(950)))
	assert.Equal(t, "$65,000", FormatUSD(decimal.NewFromInt(65000)))
	assert.Equal(t, "$1,234,568", FormatUSD(decimal.NewFromFloat(1234567.89)))
	assert.Equal(t, "-$42,000", FormatUSD(decimal.NewFromInt(-42000)))
}
