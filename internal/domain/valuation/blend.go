package valuation

import "math"

// BlendWeights splits the combined multiplier between the two sources.
type BlendWeights struct {
	Characteristic float64 `json:"characteristic"`
	Revenue        float64 `json:"revenue"`
}

// WeightsForSpan picks blend weights from the catalog span: older catalogs
// lean harder on revenue behaviour.
func WeightsForSpan(spanYears float64) BlendWeights {
	switch {
	case spanYears >= 10:
		return BlendWeights{Characteristic: 0.3, Revenue: 0.7}
	case spanYears >= 3:
		return BlendWeights{Characteristic: 0.4, Revenue: 0.6}
	default:
		return BlendWeights{Characteristic: 0.5, Revenue: 0.5}
	}
}

// BlendResult holds the rounded combined range and the final range after
// an optional manual recentre.
type BlendResult struct {
	Weights  BlendWeights
	Combined MultiplierRange
	Final    MultiplierRange
}

// Blend weights the characteristic and revenue ranges and rounds each bound
// to the nearest integer. A non-nil manual multiplier recentres the
// combined spread around it; the result is not clamped.
func Blend(spanYears float64, characteristic, revenue MultiplierRange, manual *float64) BlendResult {
	w := WeightsForSpan(spanYears)
	combined := MultiplierRange{
		Lower: math.Round(characteristic.Lower*w.Characteristic + revenue.Lower*w.Revenue),
		Upper: math.Round(characteristic.Upper*w.Characteristic + revenue.Upper*w.Revenue),
	}
	res := BlendResult{Weights: w, Combined: combined, Final: combined}
	if manual != nil {
		res.Final = Recentre(combined, *manual)
	}
	return res
}

// Recentre moves r so that its midpoint is m, keeping its spread.
func Recentre(r MultiplierRange, m float64) MultiplierRange {
	half := r.Spread() / 2
	return MultiplierRange{Lower: m - half, Upper: m + half}
}

// ValuationRange is a currency range.
type ValuationRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Value applies the final multiplier to trailing twelve month earnings net
// of the admin fee percentage. The fee is not range-checked.
func Value(final MultiplierRange, totalTLM, adminFee float64) ValuationRange {
	net := totalTLM * (1 - adminFee/100)
	return ValuationRange{
		Lower: final.Lower * net,
		Upper: final.Upper * net,
	}
}
