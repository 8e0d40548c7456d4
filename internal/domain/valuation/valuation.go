// Package valuation implements the catalog valuation pipeline: four stage
// scorers, the characteristic and revenue multiplier lookups, the blender
// and the final valuation.
//
// Every function here is pure. Inputs are plain values, "now" is passed in
// explicitly, and degenerate inputs degrade to defined values instead of
// errors, so the functions are safe to call concurrently.
package valuation

import (
	"time"

	"github.com/okian/valuator/internal/domain/model"
)

// Input is everything the pipeline needs for one estimate.
type Input struct {
	Genres []string
	// Tracks are the released tracks of the catalog.
	Tracks   []model.Track
	OwnerIDs []string
	// ManualOwnership replaces the computed ownership percentage when set.
	ManualOwnership *float64
	Earnings        Earnings
	TotalStreams    float64
	TopFiveStreams  float64
	AdminFee        float64
	// ManualMultiplier recentres the combined multiplier when set.
	ManualMultiplier *float64
}

// Trace exposes every intermediate value of an estimate.
type Trace struct {
	GenreScore          float64
	AgeScore            float64
	OwnershipScore      int
	OwnershipPercentage float64
	ConsistencyScore    int
	AvgGapMonths        float64
	MaxGapMonths        float64
	TotalSpanYears      float64
	WeightedScore       float64
	Characteristic      MultiplierRange

	TotalTLM      float64
	TotalLifetime float64
	Revenue       RevenueResult

	Weights   BlendWeights
	Combined  MultiplierRange
	Final     MultiplierRange
	Valuation ValuationRange

	UnknownGenres   []string
	MalformedTracks []string
}

// Estimate runs the full pipeline.
func Estimate(in Input, now time.Time) Trace {
	var tr Trace

	genre := GenreScore(in.Genres)
	tr.GenreScore = genre.Score
	tr.UnknownGenres = genre.Unknown

	tr.AgeScore = AgeScore(in.Tracks, now)

	own := OwnershipPercentage(in.Tracks, in.OwnerIDs)
	tr.MalformedTracks = own.Malformed
	tr.OwnershipPercentage = own.Percentage
	if in.ManualOwnership != nil {
		tr.OwnershipPercentage = *in.ManualOwnership
	}
	tr.OwnershipScore = OwnershipScore(tr.OwnershipPercentage)

	cons := ConsistencyScore(in.Tracks, now)
	tr.ConsistencyScore = cons.Score
	tr.AvgGapMonths = cons.AvgGapMonths
	tr.MaxGapMonths = cons.MaxGapMonths
	tr.TotalSpanYears = TotalSpanYears(in.Tracks, now)

	tr.WeightedScore, tr.Characteristic = CharacteristicMultiplier(Scores{
		Genre:       tr.GenreScore,
		Age:         tr.AgeScore,
		Ownership:   tr.OwnershipScore,
		Consistency: tr.ConsistencyScore,
	})

	tr.TotalTLM, tr.TotalLifetime = in.Earnings.Totals()
	tr.Revenue = RevenueMultiplier(RevenueInput{
		TotalTLM:       tr.TotalTLM,
		TotalLifetime:  tr.TotalLifetime,
		TotalStreams:   in.TotalStreams,
		TopFiveStreams: in.TopFiveStreams,
		AdminFee:       in.AdminFee,
	})

	blend := Blend(tr.TotalSpanYears, tr.Characteristic, tr.Revenue.Range, in.ManualMultiplier)
	tr.Weights = blend.Weights
	tr.Combined = blend.Combined
	tr.Final = blend.Final

	tr.Valuation = Value(tr.Final, tr.TotalTLM, in.AdminFee)
	return tr
}
