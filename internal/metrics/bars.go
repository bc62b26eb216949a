package metrics

import (
	"precio-luz/internal/dates"
	"precio-luz/internal/model"
)

// ToBarSeries projects raw items into a chart-friendly slice. The hour
// label prefers the UTC timestamp converted to Madrid (unambiguous on DST
// days), then the explicit hour index. Non-finite prices are dropped.
func ToBarSeries(items []model.PriceItem) []model.BarPoint {
	data, _ := Sanitize(items)
	stats := ComputeBasicStats(data)

	out := make([]model.BarPoint, 0, len(data))
	for _, it := range data {
		hour := it.HourIndex
		if t := it.Datetime(); !t.IsZero() {
			hour = dates.HourFromUTC(t)
		}
		out = append(out, model.BarPoint{
			HourIndex:   hour,
			DatetimeUTC: it.DatetimeUTC,
			PriceEurKwh: it.PriceEurKwh,
			Tier:        TierFor(it.PriceEurKwh, stats),
		})
	}
	return out
}

// TierFor buckets a price into low/medium/high by splitting the day's
// min..max spread into thirds. A flat day (min == max) is all low.
func TierFor(price float64, stats BasicStats) model.PriceTier {
	if stats.Min == nil || stats.Max == nil {
		return model.TierLow
	}
	span := *stats.Max - *stats.Min
	if span <= 0 {
		return model.TierLow
	}
	switch pos := (price - *stats.Min) / span; {
	case pos < 1.0/3:
		return model.TierLow
	case pos < 2.0/3:
		return model.TierMedium
	default:
		return model.TierHigh
	}
}
