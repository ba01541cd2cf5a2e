package main

import (
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jobeval/jobeval/internal/occupation"
	"github.com/jobeval/jobeval/internal/salary"
)

var (
	evalOccPath   string
	evalIndexPath string
	evalCode      string
	evalSalary    int64
	evalRevenue   int64
	evalEmployees int
	evalRatio     float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a proposed salary for an occupation",
	Long:  `Evaluate a proposed salary against an occupation's market wage distribution and a company's payroll budget.`,
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalOccPath, "occupations", filepath.Join("data", "occupations.json"), "Path to the occupations artifact")
	evaluateCmd.Flags().StringVar(&evalIndexPath, "index", filepath.Join("data", "title_index.json"), "Path to the title index artifact")
	evaluateCmd.Flags().StringVar(&evalCode, "code", "", "SOC occupation code (required)")
	evaluateCmd.Flags().Int64Var(&evalSalary, "salary", 0, "Proposed annual salary in dollars (required)")
	evaluateCmd.Flags().Int64Var(&evalRevenue, "revenue", 0, "Company annual revenue in dollars (required)")
	evaluateCmd.Flags().IntVar(&evalEmployees, "employees", 0, "Company employee count (required)")
	evaluateCmd.Flags().Float64Var(&evalRatio, "payroll-ratio", 0, "Payroll share of revenue (default 0.3)")
	_ = evaluateCmd.MarkFlagRequired("code")
	_ = evaluateCmd.MarkFlagRequired("salary")
	_ = evaluateCmd.MarkFlagRequired("revenue")
	_ = evaluateCmd.MarkFlagRequired("employees")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(_ *cobra.Command, _ []string) error {
	matcher, _, err := occupation.NewMatcherFromFiles(evalOccPath, evalIndexPath)
	if err != nil {
		return err
	}

	occ, ok := matcher.Lookup(evalCode)
	if !ok {
		return fmt.Errorf("occupation %s not found in dataset", evalCode)
	}

	eval, err := salary.Evaluate(occ, decimal.NewFromInt(evalSalary), salary.CompanyProfile{
		AnnualRevenue: decimal.NewFromInt(evalRevenue),
		Employees:     evalEmployees,
		PayrollRatio:  evalRatio,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s\n", eval.Code, eval.Title)
	fmt.Printf("Proposed:    %s (%.1fth percentile)\n", salary.FormatUSD(decimal.NewFromInt(evalSalary)), eval.Percentile)
	fmt.Printf("Verdict:     %s\n", eval.Verdict)
	fmt.Printf("Market:      %s - %s (median %s)\n",
		salary.FormatUSD(eval.Market.Min), salary.FormatUSD(eval.Market.Max), salary.FormatUSD(eval.Market.Mid))
	fmt.Printf("Affordable:  %s - %s\n", salary.FormatUSD(eval.Affordable.Min), salary.FormatUSD(eval.Affordable.Max))
	fmt.Printf("Budget cap:  %s per head\n", salary.FormatUSD(eval.BudgetCap))
	return nil
}
