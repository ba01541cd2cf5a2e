// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Dataset
	DataDir         string `json:"data_dir,omitempty"`         // Directory for downloaded source files
	OccupationsPath string `json:"occupations_path,omitempty"` // Path to the occupations artifact
	TitleIndexPath  string `json:"title_index_path,omitempty"` // Path to the title index artifact

	// Matching
	MaxResults    int     `json:"max_results,omitempty"`    // Maximum matches returned per query
	MinConfidence float64 `json:"min_confidence,omitempty"` // Minimum confidence for a match (0.0-1.0)

	// Evaluation
	PayrollRatio float64 `json:"payroll_ratio,omitempty"` // Payroll share of revenue (0.0-1.0)

	// Feedback forwarding (GitHub App)
	GitHubAppID          int64  `json:"github_app_id,omitempty"`
	GitHubInstallationID int64  `json:"github_installation_id,omitempty"`
	GitHubPrivateKeyPath string `json:"github_private_key_path,omitempty"` // PEM file path
	GitHubOwner          string `json:"github_owner,omitempty"`
	GitHubRepo           string `json:"github_repo,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are handled by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid TCP port")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("config error: 'max_results' must be non-negative")
	}
	if c.MinConfidence < 0 || c.MinConfidence >= 1 {
		return fmt.Errorf("config error: 'min_confidence' must be in [0.0, 1.0)")
	}
	if c.PayrollRatio < 0 || c.PayrollRatio > 1 {
		return fmt.Errorf("config error: 'payroll_ratio' must be in [0.0, 1.0]")
	}

	if c.GitHubPrivateKeyPath != "" {
		if _, err := os.Stat(c.GitHubPrivateKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: github private key file not found: %s", c.GitHubPrivateKeyPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. This is used to apply config file values as defaults
// for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.OccupationsPath == "" {
		result.OccupationsPath = defaults.OccupationsPath
	}
	if result.TitleIndexPath == "" {
		result.TitleIndexPath = defaults.TitleIndexPath
	}
	if result.MaxResults == 0 {
		result.MaxResults = defaults.MaxResults
	}
	if result.MinConfidence == 0 {
		result.MinConfidence = defaults.MinConfidence
	}
	if result.PayrollRatio == 0 {
		result.PayrollRatio = defaults.PayrollRatio
	}
	if result.GitHubAppID == 0 {
		result.GitHubAppID = defaults.GitHubAppID
	}
	if result.GitHubInstallationID == 0 {
		result.GitHubInstallationID = defaults.GitHubInstallationID
	}
	if result.GitHubPrivateKeyPath == "" {
		result.GitHubPrivateKeyPath = defaults.GitHubPrivateKeyPath
	}
	if result.GitHubOwner == "" {
		result.GitHubOwner = defaults.GitHubOwner
	}
	if result.GitHubRepo == "" {
		result.GitHubRepo = defaults.GitHubRepo
	}

	return result
}

// Defaults returns the built-in default configuration.
func Defaults() Config {
	return Config{
		Port:            8080,
		DataDir:         "data",
		OccupationsPath: filepath.Join("data", "occupations.json"),
		TitleIndexPath:  filepath.Join("data", "title_index.json"),
	}
}
