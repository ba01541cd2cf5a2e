package etl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOEWS = `AREA_TITLE,OCC_CODE,OCC_TITLE,O_GROUP,TOT_EMP,A_PCT10,A_PCT25,A_MEDIAN,A_PCT75,A_PCT90
U.S.,00-0000,All Occupations,total,"151,853,870","23,420","30,000","48,060","76,980","115,430"
U.S.,15-0000,Computer and Mathematical Occupations,major,"5,003,280","45,000","65,000","95,000","130,000","165,000"
U.S.,15-1252,Software Developers,detailed,"1,656,880","77,020","98,450","130,160","168,570","208,620"
U.S.,17-2141,Mechanical Engineers,detailed,"281,290","64,560","78,250","99,510","126,590","157,470"
U.S.,27-3043,"Writers and Authors",detailed,"49,450",*,*,"73,690",*,#
U.S.,11-1011,Chief Executives,detailed,**,"79,110","129,070","206,680",#,#
`

func TestParseOEWS_KeepsDetailedRowsWithFullWages(t *testing.T) {
	rows, err := ParseOEWS(strings.NewReader(sampleOEWS))

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "15-1252", rows[0].Code)
	assert.Equal(t, "Software Developers", rows[0].Title)
	assert.Equal(t, int64(1656880), rows[0].Employment)
	assert.Equal(t, 130160.0, rows[0].Wages.Median)
	assert.True(t, rows[0].Wages.Valid())

	assert.Equal(t, "17-2141", rows[1].Code)
}

func TestParseOEWS_SkipsAggregateCodes(t *testing.T) {
	rows, err := ParseOEWS(strings.NewReader(sampleOEWS))

	require.NoError(t, err)
	for _, row := range rows {
		assert.NotContains(t, row.Code, "-0000")
	}
}

func TestParseOEWS_SkipsSuppressedWages(t *testing.T) {
	rows, err := ParseOEWS(strings.NewReader(sampleOEWS))

	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, "27-3043", row.Code)
		assert.NotEqual(t, "11-1011", row.Code)
	}
}

func TestParseOEWS_MissingColumn(t *testing.T) {
	_, err := ParseOEWS(strings.NewReader("OCC_CODE,OCC_TITLE\n15-1252,Software Developers\n"))

	assert.ErrorContains(t, err, "missing column")
}

func TestParseOEWS_NoUsableRows(t *testing.T) {
	header := "OCC_CODE,OCC_TITLE,A_PCT10,A_PCT25,A_MEDIAN,A_PCT75,A_PCT90\n"
	_, err := ParseOEWS(strings.NewReader(header + "15-1252,Software Developers,*,*,*,*,*\n"))

	assert.ErrorContains(t, err, "no usable wage rows")
}

func TestParseWageValue_SuppressionMarkers(t *testing.T) {
	for _, marker := range []string{"", "*", "**", "#"} {
		_, ok := parseWageValue(marker)
		assert.False(t, ok, "marker %q should not parse", marker)
	}

	v, ok := parseWageValue("98,450")
	assert.True(t, ok)
	assert.Equal(t, 98450.0, v)
}
