// Package scoring holds the category score law, the weighted overall score and risk levels
package scoring

import "math"

// Level is a coarse risk bucket
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const (
	// pairCap limits a two-match category so that a single pair cannot reach high alone
	pairCap = 70
	maxCap  = 100

	mediumFrom = 30
	highFrom   = 60
)

// Score applies the per-category law to a match count n and category weight w
//
//	n = 0  -> 0
//	n = 1  -> w
//	n = 2  -> min(2w, 70)
//	n >= 3 -> min(n*w, 100)
func Score(n, w int) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return float64(min(w, maxCap))
	case n == 2:
		return float64(min(2*w, pairCap))
	default:
		return float64(min(n*w, maxCap))
	}
}

// Weighted is one category's score with its weight for the overall mean
type Weighted struct {
	Score  float64
	Weight int
}

// Overall is the weight-weighted mean of category scores, rounded to one decimal.
// An empty set or zero total weight yields 0
func Overall(ws []Weighted) float64 {
	var num float64
	var den int
	for _, w := range ws {
		if w.Weight <= 0 {
			continue
		}
		num += w.Score * float64(w.Weight)
		den += w.Weight
	}
	if den == 0 {
		return 0
	}
	return Round1(num / float64(den))
}

// Round1 rounds half away from zero to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// LevelOf classifies a score
func LevelOf(score float64) Level {
	switch {
	case score < mediumFrom:
		return LevelLow
	case score < highFrom:
		return LevelMedium
	default:
		return LevelHigh
	}
}
