package etl

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// O*NET publishes tab-delimited text files keyed by O*NET-SOC codes such as
// "15-1252.00". The trailing ".00" specialization suffix is dropped so the
// data joins against BLS SOC codes.

// TopElementCount caps how many skill/knowledge names are kept per
// occupation, ranked by importance.
const TopElementCount = 8

// NormalizeSOC converts an O*NET-SOC code to its base SOC code.
func NormalizeSOC(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexByte(code, '.'); i >= 0 {
		code = code[:i]
	}
	return code
}

// ONetData aggregates the parsed O*NET attribute files.
type ONetData struct {
	// Titles maps SOC code to the O*NET occupation title.
	Titles map[string]string
	// AlternateTitles maps SOC code to reported and lay titles.
	AlternateTitles map[string][]string
	// Skills and Knowledge map SOC code to the top-ranked element names.
	Skills    map[string][]string
	Knowledge map[string][]string
}

// ParseOccupationData reads the "Occupation Data.txt" file (code, title,
// description) and returns code -> title.
func ParseOccupationData(r io.Reader) (map[string]string, error) {
	titles := make(map[string]string)

	err := forEachRow(r, 2, func(fields []string) {
		code := NormalizeSOC(fields[0])
		title := strings.TrimSpace(fields[1])
		if code == "" || title == "" {
			return
		}
		// Specializations of the same base SOC code share the first title seen.
		if _, exists := titles[code]; !exists {
			titles[code] = title
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse occupation data: %w", err)
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("occupation data file contained no rows")
	}
	return titles, nil
}

// ParseAlternateTitles reads the "Alternate Titles.txt" file and returns
// code -> deduplicated alternate titles, preserving file order.
func ParseAlternateTitles(r io.Reader) (map[string][]string, error) {
	alternates := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	err := forEachRow(r, 2, func(fields []string) {
		code := NormalizeSOC(fields[0])
		title := strings.TrimSpace(fields[1])
		if code == "" || title == "" {
			return
		}
		if seen[code] == nil {
			seen[code] = make(map[string]bool)
		}
		key := strings.ToLower(title)
		if seen[code][key] {
			return
		}
		seen[code][key] = true
		alternates[code] = append(alternates[code], title)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse alternate titles: %w", err)
	}
	return alternates, nil
}

// ParseElementRatings reads an element-rating file ("Skills.txt",
// "Knowledge.txt": code, element id, element name, scale id, data value) and
// returns code -> top element names by importance.
func ParseElementRatings(r io.Reader) (map[string][]string, error) {
	type rated struct {
		name  string
		value float64
	}
	byCode := make(map[string][]rated)

	err := forEachRow(r, 5, func(fields []string) {
		if strings.TrimSpace(fields[3]) != "IM" {
			return // keep only the importance scale, not level
		}
		code := NormalizeSOC(fields[0])
		name := strings.TrimSpace(fields[2])
		value, parseErr := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
		if code == "" || name == "" || parseErr != nil {
			return
		}
		byCode[code] = append(byCode[code], rated{name: name, value: value})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse element ratings: %w", err)
	}

	result := make(map[string][]string, len(byCode))
	for code, elements := range byCode {
		sort.SliceStable(elements, func(i, j int) bool {
			return elements[i].value > elements[j].value
		})
		names := make([]string, 0, TopElementCount)
		picked := make(map[string]bool)
		for _, e := range elements {
			if picked[e.name] {
				continue
			}
			picked[e.name] = true
			names = append(names, e.name)
			if len(names) == TopElementCount {
				break
			}
		}
		result[code] = names
	}
	return result, nil
}

// forEachRow iterates a tab-delimited O*NET file, skipping the header line
// and any row with fewer than minFields fields.
func forEachRow(r io.Reader, minFields int, fn func(fields []string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			continue
		}
		fn(fields)
	}
	return scanner.Err()
}
