package valuation

import "math"

// Score weights for the characteristic multiplier. They sum to 1.
const (
	OwnershipWeight   = 0.5
	AgeWeight         = 0.15
	ConsistencyWeight = 0.15
	GenreWeightFactor = 0.2
)

// MultiplierRange is a lower/upper pair in multiples of annual revenue.
type MultiplierRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Spread returns Upper - Lower.
func (r MultiplierRange) Spread() float64 { return r.Upper - r.Lower }

// Scores bundles the four stage scores feeding the characteristic multiplier.
type Scores struct {
	Genre       float64
	Age         float64
	Ownership   int
	Consistency int
}

// Weighted combines the scores with the fixed weights, rounded to the two
// decimals the band table is published in. Exact band edges such as 4.0
// therefore land on their documented row.
func (s Scores) Weighted() float64 {
	w := float64(s.Ownership)*OwnershipWeight +
		s.Age*AgeWeight +
		float64(s.Consistency)*ConsistencyWeight +
		s.Genre*GenreWeightFactor
	return math.Round(w*100) / 100
}

// characteristicBand is a [Min, Max) row; the top row is closed at Max.
type characteristicBand struct {
	Min, Max  float64
	ClosedMax bool
	Range     MultiplierRange
}

// Edges such as 4.49 and 3.99 are kept as published; values falling in
// the gaps between rows use the fallback.
var characteristicBands = []characteristicBand{ //nolint:gochecknoglobals // fixed lookup table
	{Min: 4.5, Max: 5.0, ClosedMax: true, Range: MultiplierRange{Lower: 15, Upper: 20}},
	{Min: 4.0, Max: 4.49, Range: MultiplierRange{Lower: 12, Upper: 15}},
	{Min: 3.5, Max: 3.99, Range: MultiplierRange{Lower: 8, Upper: 12}},
	{Min: 3.0, Max: 3.49, Range: MultiplierRange{Lower: 5, Upper: 8}},
	{Min: 2.0, Max: 2.99, Range: MultiplierRange{Lower: 2, Upper: 5}},
	{Min: 1.0, Max: 1.99, Range: MultiplierRange{Lower: 1, Upper: 2}},
}

var characteristicFallback = MultiplierRange{Lower: 1, Upper: 2} //nolint:gochecknoglobals // fixed lookup value

// CharacteristicRange looks up the multiplier range for a weighted score.
func CharacteristicRange(weighted float64) MultiplierRange {
	for _, b := range characteristicBands {
		if weighted < b.Min {
			continue
		}
		if weighted < b.Max || (b.ClosedMax && weighted == b.Max) {
			return b.Range
		}
	}
	return characteristicFallback
}

// CharacteristicMultiplier returns the weighted score and its range.
func CharacteristicMultiplier(s Scores) (float64, MultiplierRange) {
	w := s.Weighted()
	return w, CharacteristicRange(w)
}

// AgeCategory classifies dollar age.
type AgeCategory int

// Dollar age categories.
const (
	AgeNew AgeCategory = iota
	AgeDeveloping
	AgeMidMature
	AgeMature
)

func (c AgeCategory) String() string {
	switch c {
	case AgeNew:
		return "new"
	case AgeDeveloping:
		return "developing"
	case AgeMidMature:
		return "mid-mature"
	case AgeMature:
		return "mature"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c AgeCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ConcentrationCategory classifies how much of the streaming sits in the top tracks.
type ConcentrationCategory int

// Streaming concentration categories.
const (
	ConcentrationLow ConcentrationCategory = iota
	ConcentrationMedium
	ConcentrationHigh
)

func (c ConcentrationCategory) String() string {
	switch c {
	case ConcentrationLow:
		return "low"
	case ConcentrationMedium:
		return "medium"
	case ConcentrationHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c ConcentrationCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ClassifyDollarAge bands the TLM/lifetime ratio. Bounds are lower-inclusive.
func ClassifyDollarAge(dollarAge float64) AgeCategory {
	switch {
	case dollarAge < 1:
		return AgeNew
	case dollarAge < 3:
		return AgeDeveloping
	case dollarAge < 5:
		return AgeMidMature
	default:
		return AgeMature
	}
}

// ClassifyConcentration bands the top-five stream share. The medium band is
// closed on both ends.
func ClassifyConcentration(concentration float64) ConcentrationCategory {
	switch {
	case concentration < 0.2:
		return ConcentrationLow
	case concentration <= 0.5:
		return ConcentrationMedium
	default:
		return ConcentrationHigh
	}
}

// RevenueRange returns the table cell for an age/concentration pair.
// Values outside the enumerations land in the last row or column.
func RevenueRange(age AgeCategory, conc ConcentrationCategory) MultiplierRange {
	switch age {
	case AgeNew:
		switch conc {
		case ConcentrationLow:
			return MultiplierRange{Lower: 2, Upper: 4}
		case ConcentrationMedium:
			return MultiplierRange{Lower: 1.5, Upper: 3.5}
		default:
			return MultiplierRange{Lower: 1, Upper: 3}
		}
	case AgeDeveloping:
		switch conc {
		case ConcentrationLow:
			return MultiplierRange{Lower: 4, Upper: 8}
		case ConcentrationMedium:
			return MultiplierRange{Lower: 3, Upper: 6}
		default:
			return MultiplierRange{Lower: 2, Upper: 5}
		}
	case AgeMidMature:
		switch conc {
		case ConcentrationLow:
			return MultiplierRange{Lower: 6, Upper: 12}
		case ConcentrationMedium:
			return MultiplierRange{Lower: 5, Upper: 10}
		default:
			return MultiplierRange{Lower: 3, Upper: 7}
		}
	default:
		switch conc {
		case ConcentrationLow:
			return MultiplierRange{Lower: 8, Upper: 20}
		case ConcentrationMedium:
			return MultiplierRange{Lower: 7, Upper: 15}
		default:
			return MultiplierRange{Lower: 5, Upper: 10}
		}
	}
}

// RevenueInput holds the aggregate figures for the revenue multiplier.
type RevenueInput struct {
	TotalTLM       float64
	TotalLifetime  float64
	TotalStreams   float64
	TopFiveStreams float64
	// AdminFee is carried for completeness; it is applied in Value.
	AdminFee float64
}

// RevenueResult exposes the derived signals and the selected cell.
type RevenueResult struct {
	DollarAge             float64
	Concentration         float64
	AgeCategory           AgeCategory
	ConcentrationCategory ConcentrationCategory
	Range                 MultiplierRange
}

// RevenueMultiplier derives dollar age and concentration and looks up the
// revenue multiplier range. A non-positive lifetime total yields a dollar
// age of 0.
func RevenueMultiplier(in RevenueInput) RevenueResult {
	var res RevenueResult
	if in.TotalLifetime > 0 {
		res.DollarAge = finite(in.TotalTLM / in.TotalLifetime)
	}
	res.Concentration = finite(in.TopFiveStreams / math.Max(in.TotalStreams, 1))
	res.AgeCategory = ClassifyDollarAge(res.DollarAge)
	res.ConcentrationCategory = ClassifyConcentration(res.Concentration)
	res.Range = RevenueRange(res.AgeCategory, res.ConcentrationCategory)
	return res
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
