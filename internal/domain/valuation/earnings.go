package valuation

import (
	"math"
	"strconv"
	"strings"
)

// EarningsPair holds trailing-twelve-month and lifetime earnings for one
// revenue category.
type EarningsPair struct {
	TrailingTwelveMonths float64 `json:"trailing_12_months"`
	Lifetime             float64 `json:"lifetime"`
}

// Earnings groups the four revenue categories.
type Earnings struct {
	Performance    EarningsPair `json:"performance"`
	Mechanical     EarningsPair `json:"mechanical"`
	Streaming      EarningsPair `json:"streaming"`
	OtherLicensing EarningsPair `json:"other_licensing"`
}

// Totals sums TLM and lifetime earnings across categories.
func (e Earnings) Totals() (tlm, lifetime float64) {
	for _, p := range []EarningsPair{e.Performance, e.Mechanical, e.Streaming, e.OtherLicensing} {
		tlm += finite(p.TrailingTwelveMonths)
		lifetime += finite(p.Lifetime)
	}
	return tlm, lifetime
}

// ParseCount parses a numeric string such as a stream count. Commas and
// surrounding spaces are ignored; anything unparsable, NaN or infinite
// yields 0.
func ParseCount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
