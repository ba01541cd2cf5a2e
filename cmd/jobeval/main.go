// Package main provides the entry point for the JobEval CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobeval",
	Short: "Occupation matching and salary evaluation",
	Long:  "JobEval matches free-text job titles to SOC occupations and evaluates proposed salaries against market wage data and company budgets.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
