package occupation

import (
	"encoding/json"
	"fmt"
	"os"
)

// OccupationArtifact is the on-disk shape of the generated occupation table.
type OccupationArtifact struct {
	Version     string                `json:"version"`
	GeneratedAt string                `json:"generated_at,omitempty"`
	Occupations map[string]Occupation `json:"occupations"`
}

// IndexArtifact is the on-disk shape of the generated title index.
type IndexArtifact struct {
	Version string                 `json:"version"`
	Entries map[string][]Candidate `json:"entries"`
}

// Dataset bundles both loaded artifacts.
type Dataset struct {
	Version     string
	GeneratedAt string
	Occupations map[string]Occupation
	Index       map[string][]Candidate
}

// LoadDataset reads the two generated JSON artifacts from disk. The files
// are produced by the build-dataset command and are treated as opaque,
// versioned, read-only inputs.
func LoadDataset(occupationsPath, indexPath string) (*Dataset, error) {
	occ, err := loadOccupations(occupationsPath)
	if err != nil {
		return nil, err
	}

	idx, err := loadIndex(indexPath)
	if err != nil {
		return nil, err
	}

	if occ.Version != "" && idx.Version != "" && occ.Version != idx.Version {
		return nil, fmt.Errorf("artifact version mismatch: occupations %q, index %q", occ.Version, idx.Version)
	}

	return &Dataset{
		Version:     occ.Version,
		GeneratedAt: occ.GeneratedAt,
		Occupations: occ.Occupations,
		Index:       idx.Entries,
	}, nil
}

// NewMatcherFromFiles is a convenience wrapper for LoadDataset + NewMatcher.
func NewMatcherFromFiles(occupationsPath, indexPath string) (*Matcher, *Dataset, error) {
	ds, err := LoadDataset(occupationsPath, indexPath)
	if err != nil {
		return nil, nil, err
	}
	return NewMatcher(ds.Occupations, ds.Index), ds, nil
}

func loadOccupations(path string) (*OccupationArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read occupations artifact %s: %w", path, err)
	}

	var artifact OccupationArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse occupations artifact: %w", err)
	}
	if len(artifact.Occupations) == 0 {
		return nil, fmt.Errorf("occupations artifact %s contains no occupations", path)
	}
	return &artifact, nil
}

func loadIndex(path string) (*IndexArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read title index artifact %s: %w", path, err)
	}

	var artifact IndexArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse title index artifact: %w", err)
	}
	if len(artifact.Entries) == 0 {
		return nil, fmt.Errorf("title index artifact %s contains no entries", path)
	}
	return &artifact, nil
}
