// Package types contains the request and report shapes shared by the
// service, the HTTP API and the CLI.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/internal/domain/valuation"
)

// ErrInvalidRequest marks selections the service refuses to value.
var ErrInvalidRequest = errors.New("invalid valuation request")

// Count is a stream count. It decodes from a JSON number or a numeric string
// such as "1,250,000"; unparsable strings decode to 0.
type Count float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Count(valuation.ParseCount(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("count must be a number or numeric string: %w", err)
	}
	*c = Count(f)
	return nil
}

// ValuationRequest carries the user selections for one estimate.
type ValuationRequest struct {
	Genres []string `json:"genres"`
	// Tracks are valued as given; unreleased entries are dropped.
	// Ignored for catalog valuations, which load tracks from the store.
	Tracks          []model.Track      `json:"tracks,omitempty"`
	OwnerIDs        []string           `json:"owner_ids,omitempty"`
	ManualOwnership *float64           `json:"manual_ownership,omitempty"`
	Earnings        valuation.Earnings `json:"earnings"`
	// Stream counts; omitted values fall back to store stats for catalogs.
	TotalStreams     *Count   `json:"total_streams,omitempty"`
	TopFiveStreams   *Count   `json:"top_five_streams,omitempty"`
	AdminFee         *float64 `json:"admin_fee,omitempty"`
	ManualMultiplier *float64 `json:"manual_multiplier,omitempty"`
}

// Scores holds the stage scores of an estimate.
type Scores struct {
	Genre               float64 `json:"genre"`
	Age                 float64 `json:"age"`
	Ownership           int     `json:"ownership"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
	Consistency         int     `json:"consistency"`
	AvgGapMonths        float64 `json:"avg_gap_months"`
	MaxGapMonths        float64 `json:"max_gap_months"`
	TotalSpanYears      float64 `json:"total_span_years"`
	Weighted            float64 `json:"weighted"`
}

// Revenue holds the revenue multiplier classification.
type Revenue struct {
	TotalTLM              float64                   `json:"total_tlm"`
	TotalLifetime         float64                   `json:"total_lifetime"`
	DollarAge             float64                   `json:"dollar_age"`
	Concentration         float64                   `json:"concentration"`
	AgeCategory           string                    `json:"age_category"`
	ConcentrationCategory string                    `json:"concentration_category"`
	Range                 valuation.MultiplierRange `json:"range"`
}

// Report is the outcome of one valuation.
type Report struct {
	ID         string    `json:"id"`
	CatalogID  string    `json:"catalog_id,omitempty"`
	ComputedAt time.Time `json:"computed_at"`
	Cached     bool      `json:"cached"`
	Tracks     int       `json:"tracks"`

	Scores         Scores                    `json:"scores"`
	Characteristic valuation.MultiplierRange `json:"characteristic_multiplier"`
	Revenue        Revenue                   `json:"revenue"`
	Weights        valuation.BlendWeights    `json:"weights"`
	Combined       valuation.MultiplierRange `json:"combined_multiplier"`
	Final          valuation.MultiplierRange `json:"final_multiplier"`
	Valuation      valuation.ValuationRange  `json:"valuation"`

	UnknownGenres   []string `json:"unknown_genres,omitempty"`
	MalformedTracks []string `json:"malformed_tracks,omitempty"`
}

// ReportOf converts a pipeline trace into a report body. Identity fields
// are left for the caller.
func ReportOf(tr valuation.Trace) Report {
	return Report{
		Scores: Scores{
			Genre:               tr.GenreScore,
			Age:                 tr.AgeScore,
			Ownership:           tr.OwnershipScore,
			OwnershipPercentage: tr.OwnershipPercentage,
			Consistency:         tr.ConsistencyScore,
			AvgGapMonths:        tr.AvgGapMonths,
			MaxGapMonths:        tr.MaxGapMonths,
			TotalSpanYears:      tr.TotalSpanYears,
			Weighted:            tr.WeightedScore,
		},
		Characteristic: tr.Characteristic,
		Revenue: Revenue{
			TotalTLM:              tr.TotalTLM,
			TotalLifetime:         tr.TotalLifetime,
			DollarAge:             tr.Revenue.DollarAge,
			Concentration:         tr.Revenue.Concentration,
			AgeCategory:           tr.Revenue.AgeCategory.String(),
			ConcentrationCategory: tr.Revenue.ConcentrationCategory.String(),
			Range:                 tr.Revenue.Range,
		},
		Weights:         tr.Weights,
		Combined:        tr.Combined,
		Final:           tr.Final,
		Valuation:       tr.Valuation,
		UnknownGenres:   tr.UnknownGenres,
		MalformedTracks: tr.MalformedTracks,
	}
}
