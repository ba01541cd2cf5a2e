// Package salary computes where a proposed salary sits against market wage
// percentiles and what range a company can afford for a position.
package salary

import (
	"fmt"

	"github.com/jobeval/jobeval/internal/occupation"
)

// Extrapolation bounds. Below the 10th percentile the curve extends linearly
// toward zero with a floor of 1; above the 90th it extends along the
// p75-p90 slope and is capped at 99 so the result never reads as "past the
// entire market".
const (
	minPercentile = 1.0
	maxPercentile = 99.0
)

type wagePoint struct {
	percentile float64
	wage       float64
}

func curve(w occupation.WagePercentiles) []wagePoint {
	return []wagePoint{
		{10, w.P10},
		{25, w.P25},
		{50, w.Median},
		{75, w.P75},
		{90, w.P90},
	}
}

// PercentileFor returns the market percentile a salary falls at for the
// given wage distribution, by piecewise linear interpolation between the
// five OEWS points.
func PercentileFor(w occupation.WagePercentiles, salary float64) (float64, error) {
	if !w.Valid() {
		return 0, fmt.Errorf("incomplete wage distribution")
	}
	if salary <= 0 {
		return 0, fmt.Errorf("salary must be positive, got %v", salary)
	}

	points := curve(w)

	// Below the 10th percentile: extrapolate toward zero.
	if salary < points[0].wage {
		pct := 10.0 * salary / points[0].wage
		if pct < minPercentile {
			pct = minPercentile
		}
		return pct, nil
	}

	// Between known points: linear interpolation within the segment.
	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if salary > hi.wage {
			continue
		}
		if hi.wage == lo.wage {
			// Flat segment: the salary sits at its upper edge.
			return hi.percentile, nil
		}
		frac := (salary - lo.wage) / (hi.wage - lo.wage)
		return lo.percentile + frac*(hi.percentile-lo.percentile), nil
	}

	// Above the 90th percentile: extend the p75-p90 slope, capped.
	p75, p90 := points[3], points[4]
	if p90.wage == p75.wage {
		return maxPercentile, nil
	}
	pct := 90.0 + (salary-p90.wage)/(p90.wage-p75.wage)*15.0
	if pct > maxPercentile {
		pct = maxPercentile
	}
	return pct, nil
}

// WageAt is the inverse of PercentileFor: the salary at a given market
// percentile. Percentiles are clamped to [1, 99].
func WageAt(w occupation.WagePercentiles, percentile float64) (float64, error) {
	if !w.Valid() {
		return 0, fmt.Errorf("incomplete wage distribution")
	}
	if percentile < minPercentile {
		percentile = minPercentile
	}
	if percentile > maxPercentile {
		percentile = maxPercentile
	}

	points := curve(w)

	if percentile <= points[0].percentile {
		return points[0].wage * percentile / 10.0, nil
	}

	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if percentile > hi.percentile {
			continue
		}
		frac := (percentile - lo.percentile) / (hi.percentile - lo.percentile)
		return lo.wage + frac*(hi.wage-lo.wage), nil
	}

	p75, p90 := points[3], points[4]
	return p90.wage + (percentile-90.0)/15.0*(p90.wage-p75.wage), nil
}
