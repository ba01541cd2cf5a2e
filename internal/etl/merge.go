package etl

import (
	"strings"

	"github.com/jobeval/jobeval/internal/occupation"
)

// socGroupNames maps SOC major-group prefixes to their official names, used
// to label occupations with a browsable category.
var socGroupNames = map[string]string{
	"11": "Management",
	"13": "Business and Financial Operations",
	"15": "Computer and Mathematical",
	"17": "Architecture and Engineering",
	"19": "Life, Physical, and Social Science",
	"21": "Community and Social Service",
	"23": "Legal",
	"25": "Educational Instruction and Library",
	"27": "Arts, Design, Entertainment, Sports, and Media",
	"29": "Healthcare Practitioners and Technical",
	"31": "Healthcare Support",
	"33": "Protective Service",
	"35": "Food Preparation and Serving Related",
	"37": "Building and Grounds Cleaning and Maintenance",
	"39": "Personal Care and Service",
	"41": "Sales and Related",
	"43": "Office and Administrative Support",
	"45": "Farming, Fishing, and Forestry",
	"47": "Construction and Extraction",
	"49": "Installation, Maintenance, and Repair",
	"51": "Production",
	"53": "Transportation and Material Moving",
	"55": "Military Specific",
}

// GroupName returns the SOC major-group name for a detailed code, or empty
// string when the prefix is unknown.
func GroupName(code string) string {
	if len(code) < 2 {
		return ""
	}
	return socGroupNames[code[:2]]
}

// MergeStats reports what the merge kept and dropped.
type MergeStats struct {
	Occupations     int
	DroppedNoWages  int
	AlternateTitles int
}

// Merge joins BLS wage rows with O*NET attributes into the occupation
// table. Wage data is the anchor: an occupation appears in O*NET but not in
// the wage rows cannot support salary calculations and is dropped (counted
// in DroppedNoWages).
func Merge(wages []WageRow, onet *ONetData) (map[string]occupation.Occupation, MergeStats) {
	occupations := make(map[string]occupation.Occupation, len(wages))
	stats := MergeStats{}

	for _, row := range wages {
		occ := occupation.Occupation{
			Code:       row.Code,
			Title:      row.Title,
			Group:      GroupName(row.Code),
			Wages:      row.Wages,
			Employment: row.Employment,
		}

		if onet != nil {
			// The BLS title is authoritative; the O*NET title, when it
			// differs, becomes the first alternate.
			if onetTitle := onet.Titles[row.Code]; onetTitle != "" &&
				!strings.EqualFold(onetTitle, row.Title) {
				occ.AlternateTitles = append(occ.AlternateTitles, onetTitle)
			}
			for _, alt := range onet.AlternateTitles[row.Code] {
				if !strings.EqualFold(alt, row.Title) {
					occ.AlternateTitles = append(occ.AlternateTitles, alt)
				}
			}
			occ.Skills = onet.Skills[row.Code]
			occ.Knowledge = onet.Knowledge[row.Code]
		}

		stats.AlternateTitles += len(occ.AlternateTitles)
		occupations[occ.Code] = occ
	}

	if onet != nil {
		for code := range onet.Titles {
			if _, ok := occupations[code]; !ok {
				stats.DroppedNoWages++
			}
		}
	}
	stats.Occupations = len(occupations)

	return occupations, stats
}
