package valuation

import (
	"time"

	"github.com/okian/valuator/internal/domain/model"
)

const (
	daysPerYear  = 365.25
	daysPerMonth = 30.44
	hoursPerDay  = 24
)

// unknownAgeScore is what an undated track contributes to the age score.
const unknownAgeScore = 1

// AgeScore maps the release-age distribution of released tracks to 1..5.
// Tracks are not filtered by status here. An empty list scores 0.
func AgeScore(tracks []model.Track, now time.Time) float64 {
	if len(tracks) == 0 {
		return 0
	}
	total := 0
	for _, t := range tracks {
		total += trackAgeScore(t, now)
	}
	return float64(total) / float64(len(tracks))
}

func trackAgeScore(t model.Track, now time.Time) int {
	if !t.Dated() {
		return unknownAgeScore
	}
	return ageBand(yearsBetween(*t.ReleaseDate, now))
}

// ageBand evaluates bands from oldest to newest; the first match wins.
func ageBand(years float64) int {
	switch {
	case years >= 10:
		return 5
	case years >= 5:
		return 4
	case years >= 2:
		return 3
	case years >= 0:
		return 2
	default:
		return 1
	}
}

func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / hoursPerDay / daysPerYear
}

func monthsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / hoursPerDay / daysPerMonth
}
