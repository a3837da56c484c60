// Package progress scores chapters and builds progress reports.
package progress

import (
	"math"

	"github.com/verte-zerg/bookkit/internal/model"
)

// Round1 rounds to one decimal place, half away from zero: 12.25 becomes
// 12.3 and 0.75 becomes 0.8. The value is first snapped to six decimals so
// a tie carrying float error (50.5*0.7 = 35.349999...) still rounds up.
func Round1(v float64) float64 {
	snapped := math.Round(v*1e6) / 1e5
	return math.Round(snapped) / 10
}

// Compute returns the weighted completion percentage of a chapter in
// [0,100]. A chapter without metadata scores 0.
func Compute(stats model.ChapterStats, scoring model.Scoring) float64 {
	if stats.Metadata == nil {
		return 0
	}
	targetChars := stats.Metadata.Pages * scoring.CharsPerPage
	text := percentOf(stats.Content.CharCount, targetChars)
	exercises := percentOf(stats.Content.ExercisesCount, stats.Metadata.Exercises)
	weight := clamp(scoring.TextWeight, 0, 1)
	total := Round1(text*weight + exercises*(1-weight))
	return clamp(total, 0, 100)
}

// percentOf is current/target as a percentage capped at 100. A non-positive
// target yields 0.
func percentOf(current, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, float64(current)/float64(target)*100)
}

// Average returns the rounded mean of values, or 0 for none.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round1(sum / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
