package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jobeval/jobeval/internal/config"
	"github.com/jobeval/jobeval/internal/feedback"
	"github.com/jobeval/jobeval/internal/server"
)

var (
	servePort       int
	serveConfigPath string
	serveOccPath    string
	serveIndexPath  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes title matching, salary evaluation, session, and feedback endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveOccPath, "occupations", "", "Path to the occupations artifact")
	serveCmd.Flags().StringVar(&serveIndexPath, "index", "", "Path to the title index artifact")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	srvCfg := server.Config{
		Port:            cfg.Port,
		DatabaseURL:     databaseURL,
		OccupationsPath: cfg.OccupationsPath,
		TitleIndexPath:  cfg.TitleIndexPath,
		MaxResults:      cfg.MaxResults,
		MinConfidence:   cfg.MinConfidence,
		PayrollRatio:    cfg.PayrollRatio,
	}

	fbCfg, err := feedbackConfig(cfg)
	if err != nil {
		return err
	}
	srvCfg.Feedback = fbCfg

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// loadServeConfig layers flags over the config file over built-in defaults.
func loadServeConfig() (config.Config, error) {
	base := config.Defaults()

	if serveConfigPath != "" {
		fileCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		base = fileCfg.MergeWithDefaults(base)
	}

	flags := config.Config{
		Port:            servePort,
		OccupationsPath: serveOccPath,
		TitleIndexPath:  serveIndexPath,
	}
	merged := flags.MergeWithDefaults(base)

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// feedbackConfig resolves GitHub App credentials from config and environment.
// Returns a zero config (forwarding disabled) when no app ID is set.
func feedbackConfig(cfg config.Config) (feedback.Config, error) {
	appID := cfg.GitHubAppID
	if appID == 0 {
		appID, _ = strconv.ParseInt(os.Getenv("GITHUB_APP_ID"), 10, 64)
	}
	if appID == 0 {
		return feedback.Config{}, nil
	}

	installationID := cfg.GitHubInstallationID
	if installationID == 0 {
		installationID, _ = strconv.ParseInt(os.Getenv("GITHUB_INSTALLATION_ID"), 10, 64)
	}

	keyPath := cfg.GitHubPrivateKeyPath
	if keyPath == "" {
		keyPath = os.Getenv("GITHUB_PRIVATE_KEY_PATH")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return feedback.Config{}, fmt.Errorf("failed to read github private key: %w", err)
	}

	owner := cfg.GitHubOwner
	if owner == "" {
		owner = os.Getenv("GITHUB_OWNER")
	}
	repo := cfg.GitHubRepo
	if repo == "" {
		repo = os.Getenv("GITHUB_REPO")
	}

	return feedback.Config{
		AppID:          appID,
		InstallationID: installationID,
		PrivateKeyPEM:  key,
		Owner:          owner,
		Repo:           repo,
	}, nil
}
