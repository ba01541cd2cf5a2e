package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jobeval/jobeval/internal/etl"
)

var (
	buildDataDir   string
	buildOEWSFile  string
	buildOccData   string
	buildAltTitles string
	buildSkills    string
	buildKnowledge string
	buildOutDir    string
	buildVersion   string
)

var buildDatasetCmd = &cobra.Command{
	Use:   "build-dataset",
	Short: "Build the occupation and title index artifacts",
	Long: `Parse the downloaded OEWS and O*NET source files, merge them into the
occupation table, build the title index, validate both against their JSON
schemas, and write the versioned artifacts.`,
	RunE: runBuildDataset,
}

func init() {
	buildDatasetCmd.Flags().StringVar(&buildDataDir, "data-dir", "data", "Directory containing the extracted source files")
	buildDatasetCmd.Flags().StringVar(&buildOEWSFile, "oews-file", "", "OEWS national CSV file (default: discovered in data-dir)")
	buildDatasetCmd.Flags().StringVar(&buildOccData, "occupation-data", "", "O*NET Occupation Data file")
	buildDatasetCmd.Flags().StringVar(&buildAltTitles, "alternate-titles", "", "O*NET Alternate Titles file")
	buildDatasetCmd.Flags().StringVar(&buildSkills, "skills", "", "O*NET Skills file")
	buildDatasetCmd.Flags().StringVar(&buildKnowledge, "knowledge", "", "O*NET Knowledge file")
	buildDatasetCmd.Flags().StringVar(&buildOutDir, "out-dir", "data", "Directory to write the artifacts into")
	buildDatasetCmd.Flags().StringVar(&buildVersion, "version", "", "Dataset version stamp, e.g. 2023.1 (required)")
	_ = buildDatasetCmd.MarkFlagRequired("version")
	rootCmd.AddCommand(buildDatasetCmd)
}

func runBuildDataset(_ *cobra.Command, _ []string) error {
	oewsPath := buildOEWSFile
	if oewsPath == "" {
		var err error
		oewsPath, err = findOEWSFile(buildDataDir)
		if err != nil {
			return err
		}
	}

	wages, err := parseOEWSFile(oewsPath)
	if err != nil {
		return err
	}
	log.Printf("[etl] parsed %d wage rows from %s", len(wages), filepath.Base(oewsPath))

	onet, err := parseONetFiles()
	if err != nil {
		return err
	}

	occupations, stats := etl.Merge(wages, onet)
	log.Printf("[etl] merged %d occupations (%d alternate titles, %d dropped without wages)",
		stats.Occupations, stats.AlternateTitles, stats.DroppedNoWages)

	index := etl.BuildIndex(occupations)
	log.Printf("[etl] built title index with %d entries", len(index))

	occJSON, idxJSON, err := etl.BuildArtifacts(occupations, index, buildVersion)
	if err != nil {
		return err
	}

	if err := etl.WriteArtifacts(buildOutDir, occJSON, idxJSON); err != nil {
		return err
	}

	fmt.Printf("Artifacts written to %s (version %s)\n", buildOutDir, buildVersion)
	return nil
}

// findOEWSFile locates the national OEWS CSV in the data directory.
func findOEWSFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no OEWS CSV file found in %s; pass --oews-file", dir)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("multiple CSV files in %s; pass --oews-file", dir)
	}
	return matches[0], nil
}

func parseOEWSFile(path string) ([]etl.WageRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OEWS file: %w", err)
	}
	defer f.Close()
	return etl.ParseOEWS(f)
}

func parseONetFiles() (*etl.ONetData, error) {
	occData := orDefault(buildOccData, "Occupation Data.txt")
	altTitles := orDefault(buildAltTitles, "Alternate Titles.txt")
	skillsFile := orDefault(buildSkills, "Skills.txt")
	knowledgeFile := orDefault(buildKnowledge, "Knowledge.txt")

	titles, err := parseWith(occData, etl.ParseOccupationData)
	if err != nil {
		return nil, err
	}
	alternates, err := parseWith(altTitles, etl.ParseAlternateTitles)
	if err != nil {
		return nil, err
	}
	skills, err := parseWith(skillsFile, etl.ParseElementRatings)
	if err != nil {
		return nil, err
	}
	knowledge, err := parseWith(knowledgeFile, etl.ParseElementRatings)
	if err != nil {
		return nil, err
	}

	return &etl.ONetData{
		Titles:          titles,
		AlternateTitles: alternates,
		Skills:          skills,
		Knowledge:       knowledge,
	}, nil
}

func orDefault(flagValue, name string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Join(buildDataDir, name)
}

func parseWith[T any](path string, parse func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return parse(f)
}
