package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jobeval/jobeval/internal/occupation"
)

var (
	matchOccPath       string
	matchIndexPath     string
	matchMaxResults    int
	matchMinConfidence float64
)

var matchCmd = &cobra.Command{
	Use:   "match <title>",
	Short: "Match a job title to SOC occupations",
	Long:  `Match a free-text job title against the occupation dataset and print the ranked candidate occupations.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchOccPath, "occupations", filepath.Join("data", "occupations.json"), "Path to the occupations artifact")
	matchCmd.Flags().StringVar(&matchIndexPath, "index", filepath.Join("data", "title_index.json"), "Path to the title index artifact")
	matchCmd.Flags().IntVar(&matchMaxResults, "max-results", occupation.DefaultMaxResults, "Maximum number of matches to print")
	matchCmd.Flags().Float64Var(&matchMinConfidence, "min-confidence", occupation.DefaultMinConfidence, "Minimum confidence for a match")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(_ *cobra.Command, args []string) error {
	matcher, dataset, err := occupation.NewMatcherFromFiles(matchOccPath, matchIndexPath)
	if err != nil {
		return err
	}

	matches := matcher.Match(args[0],
		occupation.WithMaxResults(matchMaxResults),
		occupation.WithMinConfidence(matchMinConfidence),
	)

	if len(matches) == 0 {
		fmt.Printf("No occupations matched %q (dataset %s)\n", args[0], dataset.Version)
		return nil
	}

	fmt.Printf("%-8s  %-10s  %-9s  %s\n", "CODE", "CONFIDENCE", "TYPE", "TITLE")
	for _, m := range matches {
		fmt.Printf("%-8s  %-10.2f  %-9s  %s\n", m.Code, m.Confidence, m.MatchType, m.Title)
	}
	return nil
}
