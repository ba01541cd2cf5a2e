package etl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jobeval/jobeval/internal/occupation"
)

// Artifact file names, as consumed by the matcher's loader.
const (
	OccupationsFile = "occupations.json"
	TitleIndexFile  = "title_index.json"
)

// BuildArtifacts serializes the occupation table and title index into their
// published JSON forms and validates them. Nothing is returned unless both
// artifacts pass validation.
func BuildArtifacts(occupations map[string]occupation.Occupation, index map[string][]occupation.Candidate, version string) (occupationsJSON, indexJSON []byte, err error) {
	if version == "" {
		return nil, nil, fmt.Errorf("dataset version is required")
	}

	occArtifact := occupation.OccupationArtifact{
		Version:     version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Occupations: occupations,
	}
	occupationsJSON, err = json.MarshalIndent(occArtifact, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal occupations artifact: %w", err)
	}

	idxArtifact := occupation.IndexArtifact{
		Version: version,
		Entries: index,
	}
	indexJSON, err = json.MarshalIndent(idxArtifact, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal title index artifact: %w", err)
	}

	if err := ValidateArtifacts(occupationsJSON, indexJSON); err != nil {
		return nil, nil, err
	}
	return occupationsJSON, indexJSON, nil
}

// WriteArtifacts writes validated artifacts into dir, creating it if needed.
func WriteArtifacts(dir string, occupationsJSON, indexJSON []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	occPath := filepath.Join(dir, OccupationsFile)
	if err := os.WriteFile(occPath, occupationsJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", occPath, err)
	}

	idxPath := filepath.Join(dir, TitleIndexFile)
	if err := os.WriteFile(idxPath, indexJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", idxPath, err)
	}

	return nil
}
