// Package occupation provides the occupation reference data model and the
// title matcher that maps free-text job titles to SOC occupation codes.
package occupation

// WagePercentiles holds the annual wage distribution points for an occupation,
// sourced from the BLS OEWS survey.
type WagePercentiles struct {
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// Valid reports whether all five distribution points are present and ordered.
// Occupations without a complete, monotone wage curve cannot support salary
// calculations and are excluded from matching.
func (w WagePercentiles) Valid() bool {
	if w.P10 <= 0 {
		return false
	}
	return w.P10 <= w.P25 && w.P25 <= w.Median && w.Median <= w.P75 && w.P75 <= w.P90
}

// Occupation is one entry in the SOC taxonomy with merged BLS and O*NET
// attributes. Reference data: loaded once from the generated artifact and
// never mutated at runtime.
type Occupation struct {
	Code            string          `json:"code"`
	Title           string          `json:"title"`
	Group           string          `json:"group,omitempty"`
	AlternateTitles []string        `json:"alternate_titles,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	Knowledge       []string        `json:"knowledge,omitempty"`
	Wages           WagePercentiles `json:"wage_percentiles"`
	Employment      int64           `json:"employment,omitempty"`
}

// MatchType identifies which kind of indexed title produced a candidate.
type MatchType string

const (
	// MatchPrimary is a match against an occupation's official SOC title.
	MatchPrimary MatchType = "primary"
	// MatchAlternate is a match against an O*NET alternate title.
	MatchAlternate MatchType = "alternate"
	// MatchPartial is a match against a single word taken from a title.
	MatchPartial MatchType = "partial"
)

// Candidate is one entry under a normalized title key in the title index.
type Candidate struct {
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	MatchType MatchType `json:"match_type"`
}

// Match is one ranked result returned for a query. Title is the occupation's
// primary SOC title; MatchedOn is the indexed title variant that matched.
type Match struct {
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	Confidence float64   `json:"confidence"`
	MatchedOn  string    `json:"matched_on"`
	MatchType  MatchType `json:"match_type"`
}
