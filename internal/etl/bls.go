package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jobeval/jobeval/internal/occupation"
)

// socCodePattern matches detailed SOC codes like "15-1252".
var socCodePattern = regexp.MustCompile(`^\d{2}-\d{4}$`)

// WageRow is one occupation's national wage statistics parsed from the OEWS
// data file.
type WageRow struct {
	Code       string
	Title      string
	Employment int64
	Wages      occupation.WagePercentiles
}

// ParseOEWS reads the national OEWS CSV export and returns wage rows for
// detailed occupations with a complete annual wage distribution. Rows with
// suppressed values ("*", "#", "**") or aggregate group codes are skipped,
// not errors — suppression is normal in the published data.
func ParseOEWS(r io.Reader) ([]WageRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // BLS files carry trailing footnote columns on some rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read OEWS header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	required := []string{"OCC_CODE", "OCC_TITLE", "A_PCT10", "A_PCT25", "A_MEDIAN", "A_PCT75", "A_PCT90"}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("OEWS file missing column %s", name)
		}
	}

	var rows []WageRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read OEWS record: %w", err)
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		code := field("OCC_CODE")
		if !socCodePattern.MatchString(code) || strings.HasSuffix(code, "-0000") {
			continue // aggregate or malformed code
		}

		wages := occupation.WagePercentiles{}
		ok := true
		for _, p := range []struct {
			column string
			target *float64
		}{
			{"A_PCT10", &wages.P10},
			{"A_PCT25", &wages.P25},
			{"A_MEDIAN", &wages.Median},
			{"A_PCT75", &wages.P75},
			{"A_PCT90", &wages.P90},
		} {
			v, parsed := parseWageValue(field(p.column))
			if !parsed {
				ok = false
				break
			}
			*p.target = v
		}
		if !ok || !wages.Valid() {
			continue
		}

		row := WageRow{
			Code:  code,
			Title: strings.TrimSpace(field("OCC_TITLE")),
			Wages: wages,
		}
		if emp, parsed := parseCount(field("TOT_EMP")); parsed {
			row.Employment = emp
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("OEWS file contained no usable wage rows")
	}
	return rows, nil
}

// parseWageValue parses a wage figure, tolerating thousands separators.
// Suppression markers and empty cells report not-parsed.
func parseWageValue(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "*" || s == "**" || s == "#" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "*" || s == "**" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
