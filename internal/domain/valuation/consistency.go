package valuation

import (
	"sort"
	"time"

	"github.com/okian/valuator/internal/domain/model"
)

// ConsistencyResult describes the release cadence of a catalog.
type ConsistencyResult struct {
	Score          int
	AvgGapMonths   float64
	MaxGapMonths   float64
	TotalSpanYears float64
}

// ConsistencyScore classifies the gaps between consecutive dated releases.
// Undated tracks are ignored. No dated tracks scores 0, a single one 1.
func ConsistencyScore(tracks []model.Track, now time.Time) ConsistencyResult {
	dates := releaseDates(tracks)
	res := ConsistencyResult{TotalSpanYears: spanYears(dates, now)}
	switch len(dates) {
	case 0:
		return res
	case 1:
		res.Score = 1
		return res
	}

	sum, maxGap := 0.0, 0.0
	for i := 1; i < len(dates); i++ {
		gap := monthsBetween(dates[i-1], dates[i])
		sum += gap
		if gap > maxGap {
			maxGap = gap
		}
	}
	res.AvgGapMonths = sum / float64(len(dates)-1)
	res.MaxGapMonths = maxGap
	res.Score = cadenceBand(res.TotalSpanYears, res.AvgGapMonths, res.MaxGapMonths)
	return res
}

func cadenceBand(spanYears, avgGap, maxGap float64) int {
	switch {
	case spanYears >= 5 && avgGap >= 6 && avgGap <= 12 && maxGap <= 18:
		return 5
	case avgGap >= 12 && avgGap <= 18 && maxGap <= 24:
		return 4
	case maxGap <= 24:
		return 3
	case maxGap >= 36:
		return 2
	default:
		return 1
	}
}

// TotalSpanYears measures from the earliest dated release to now. It is 0
// when no track carries a release date.
func TotalSpanYears(tracks []model.Track, now time.Time) float64 {
	return spanYears(releaseDates(tracks), now)
}

// spanYears expects dates sorted ascending.
func spanYears(dates []time.Time, now time.Time) float64 {
	if len(dates) == 0 {
		return 0
	}
	return yearsBetween(dates[0], now)
}

func releaseDates(tracks []model.Track) []time.Time {
	dates := make([]time.Time, 0, len(tracks))
	for _, t := range tracks {
		if t.Dated() {
			dates = append(dates, *t.ReleaseDate)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
