package etl

import (
	"encoding/json"
	"fmt"

	"github.com/jobeval/jobeval/internal/occupation"
	"github.com/jobeval/jobeval/internal/schemas"
)

// JSON Schemas the generated artifacts must conform to before publishing.
// The cross-artifact invariant (every indexed code exists with wage data)
// cannot be expressed in JSON Schema and is checked separately.

const occupationsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "occupations"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "generated_at": {"type": "string"},
    "occupations": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["code", "title", "wage_percentiles"],
        "properties": {
          "code": {"type": "string", "pattern": "^[0-9]{2}-[0-9]{4}$"},
          "title": {"type": "string", "minLength": 1},
          "group": {"type": "string"},
          "alternate_titles": {"type": "array", "items": {"type": "string"}},
          "skills": {"type": "array", "items": {"type": "string"}},
          "knowledge": {"type": "array", "items": {"type": "string"}},
          "wage_percentiles": {
            "type": "object",
            "required": ["p10", "p25", "median", "p75", "p90"],
            "properties": {
              "p10": {"type": "number", "exclusiveMinimum": 0},
              "p25": {"type": "number", "exclusiveMinimum": 0},
              "median": {"type": "number", "exclusiveMinimum": 0},
              "p75": {"type": "number", "exclusiveMinimum": 0},
              "p90": {"type": "number", "exclusiveMinimum": 0}
            }
          },
          "employment": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

const titleIndexSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "entries"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "entries": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["code", "title", "match_type"],
          "properties": {
            "code": {"type": "string", "pattern": "^[0-9]{2}-[0-9]{4}$"},
            "title": {"type": "string", "minLength": 1},
            "match_type": {"enum": ["primary", "alternate", "partial"]}
          }
        }
      }
    }
  }
}`

// ValidateArtifacts checks both artifact documents against their schemas and
// enforces the cross-artifact invariant: every code the index references
// must exist in the occupation table with a complete wage distribution.
func ValidateArtifacts(occupationsJSON, indexJSON []byte) error {
	if err := schemas.Validate(occupationsSchema, occupationsJSON); err != nil {
		return fmt.Errorf("occupations artifact: %w", err)
	}
	if err := schemas.Validate(titleIndexSchema, indexJSON); err != nil {
		return fmt.Errorf("title index artifact: %w", err)
	}

	var occ occupation.OccupationArtifact
	if err := json.Unmarshal(occupationsJSON, &occ); err != nil {
		return fmt.Errorf("failed to decode occupations artifact: %w", err)
	}
	var idx occupation.IndexArtifact
	if err := json.Unmarshal(indexJSON, &idx); err != nil {
		return fmt.Errorf("failed to decode title index artifact: %w", err)
	}

	if occ.Version != idx.Version {
		return fmt.Errorf("artifact version mismatch: occupations %q, index %q", occ.Version, idx.Version)
	}

	for key, candidates := range idx.Entries {
		for _, c := range candidates {
			target, ok := occ.Occupations[c.Code]
			if !ok {
				return fmt.Errorf("index entry %q references unknown occupation %s", key, c.Code)
			}
			if !target.Wages.Valid() {
				return fmt.Errorf("index entry %q references occupation %s without wage data", key, c.Code)
			}
		}
	}

	return nil
}
