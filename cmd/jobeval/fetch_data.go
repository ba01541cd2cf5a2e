package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobeval/jobeval/internal/etl"
)

// defaultONetURL points at the O*NET database text distribution, which
// carries Occupation Data, Alternate Titles, Skills, and Knowledge files.
const defaultONetURL = "https://www.onetcenter.org/dl_files/database/db_29_1_text.zip"

var (
	fetchDataDir string
	fetchOEWSURL string
	fetchONetURL string
)

var fetchDataCmd = &cobra.Command{
	Use:   "fetch-data",
	Short: "Download the BLS OEWS and O*NET source files",
	Long: `Download the latest BLS OEWS all-data archive and the O*NET database
text archive, then extract the files the build-dataset command consumes.

The OEWS archive URL is discovered from the BLS download page unless
--oews-url is given.`,
	RunE: runFetchData,
}

func init() {
	fetchDataCmd.Flags().StringVar(&fetchDataDir, "data-dir", "data", "Directory to download and extract into")
	fetchDataCmd.Flags().StringVar(&fetchOEWSURL, "oews-url", "", "OEWS archive URL (skips discovery)")
	fetchDataCmd.Flags().StringVar(&fetchONetURL, "onet-url", defaultONetURL, "O*NET database text archive URL")
	rootCmd.AddCommand(fetchDataCmd)
}

func runFetchData(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := os.MkdirAll(fetchDataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	d := etl.NewDownloader()

	oewsURL := fetchOEWSURL
	if oewsURL == "" {
		var err error
		oewsURL, err = d.LatestOEWSArchiveURL(ctx)
		if err != nil {
			return fmt.Errorf("failed to discover OEWS archive: %w", err)
		}
		log.Printf("[etl] discovered OEWS archive %s", oewsURL)
	}

	oewsZip := filepath.Join(fetchDataDir, "oews.zip")
	onetZip := filepath.Join(fetchDataDir, "onet.zip")

	sources := []etl.Source{
		{Name: "oews", URL: oewsURL, Dest: oewsZip},
		{Name: "onet", URL: fetchONetURL, Dest: onetZip},
	}
	if err := d.DownloadAll(ctx, sources); err != nil {
		return err
	}

	oewsFiles, err := etl.ExtractZip(oewsZip, fetchDataDir, func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), ".csv")
	})
	if err != nil {
		return fmt.Errorf("failed to extract OEWS archive: %w", err)
	}
	log.Printf("[etl] extracted %d OEWS file(s)", len(oewsFiles))

	onetWanted := map[string]bool{
		"occupation data.txt":  true,
		"alternate titles.txt": true,
		"skills.txt":           true,
		"knowledge.txt":        true,
	}
	onetFiles, err := etl.ExtractZip(onetZip, fetchDataDir, func(name string) bool {
		return onetWanted[strings.ToLower(name)]
	})
	if err != nil {
		return fmt.Errorf("failed to extract O*NET archive: %w", err)
	}
	log.Printf("[etl] extracted %d O*NET file(s)", len(onetFiles))

	if len(onetFiles) < len(onetWanted) {
		return fmt.Errorf("O*NET archive missing expected files: got %d of %d", len(onetFiles), len(onetWanted))
	}

	fmt.Printf("Source files downloaded to %s\n", fetchDataDir)
	return nil
}
