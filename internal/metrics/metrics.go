// Package metrics derives per-day statistics from hourly price data:
// min/max/mean, the position of the current hour, and the cheapest
// contiguous 2- and 2-or-3-hour windows.
package metrics

import (
	"math"

	"precio-luz/internal/dates"
	"precio-luz/internal/model"
)

// Sanitize drops items whose price is not a finite number. incomplete is
// set when anything was dropped or when the remaining count is not a
// plausible day length (23, 24 or 25 hours; 23 and 25 cover the
// daylight-saving transitions).
func Sanitize(items []model.PriceItem) (data []model.PriceItem, incomplete bool) {
	data = make([]model.PriceItem, 0, len(items))
	for _, it := range items {
		if isFinite(it.PriceEurKwh) {
			data = append(data, it)
		}
	}
	filtered := len(data) != len(items)
	plausible := len(data) == 23 || len(data) == 24 || len(data) == 25
	return data, filtered || !plausible
}

// BasicStats holds the single-pass aggregates over sanitized items.
type BasicStats struct {
	Min   *float64
	Max   *float64
	Mean  *float64
	Count int
}

// ComputeBasicStats computes min, max and arithmetic mean in one pass.
// All three are nil for an empty input.
func ComputeBasicStats(data []model.PriceItem) BasicStats {
	if len(data) == 0 {
		return BasicStats{}
	}
	min := math.Inf(1)
	max := math.Inf(-1)
	sum := 0.0
	for _, it := range data {
		v := it.PriceEurKwh
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(data))
	return BasicStats{Min: &min, Max: &max, Mean: &mean, Count: len(data)}
}

// FindCurrentHourIndex locates the array position of the current Madrid
// hour, but only when day is today; for any other day it returns nil.
// Explicit hour indexes are matched first, then hours derived from each
// item's UTC timestamp. The first match wins.
func FindCurrentHourIndex(data []model.PriceItem, day string) *int {
	if len(data) == 0 || day == "" || !dates.IsToday(day) {
		return nil
	}
	hour := dates.CurrentHour()
	for i, it := range data {
		if it.HourIndex == hour {
			idx := i
			return &idx
		}
	}
	for i, it := range data {
		if t := it.Datetime(); !t.IsZero() && dates.HourFromUTC(t) == hour {
			idx := i
			return &idx
		}
	}
	return nil
}

// FindBest2hWindow returns the start index and summed price of the
// cheapest pair of adjacent hours. Ties keep the earliest window: only a
// strictly lower sum replaces the incumbent. Nil when fewer than 2 items.
func FindBest2hWindow(data []model.PriceItem) *model.Best2h {
	if len(data) < 2 {
		return nil
	}
	best := model.Best2h{StartIndex: 0, Total: data[0].PriceEurKwh + data[1].PriceEurKwh}
	for i := 1; i < len(data)-1; i++ {
		total := data[i].PriceEurKwh + data[i+1].PriceEurKwh
		if total < best.Total {
			best = model.Best2h{StartIndex: i, Total: total}
		}
	}
	return &best
}

// FindBest2or3hByAverage returns the cheapest contiguous window of length
// 2 or 3 by average price. The candidate starts as the first 2-hour
// window; replacement requires a strictly lower average, so an equal-mean
// 3-hour window never displaces a 2-hour one. Nil when fewer than 2 items.
func FindBest2or3hByAverage(data []model.PriceItem) *model.BestWindow {
	n := len(data)
	if n < 2 {
		return nil
	}
	best := model.BestWindow{
		StartIndex: 0,
		Duration:   2,
		Mean:       (data[0].PriceEurKwh + data[1].PriceEurKwh) / 2,
	}
	for i := 0; i < n-1; i++ {
		m2 := (data[i].PriceEurKwh + data[i+1].PriceEurKwh) / 2
		if m2 < best.Mean {
			best = model.BestWindow{StartIndex: i, Duration: 2, Mean: m2}
		}
	}
	if n >= 3 {
		for i := 0; i < n-2; i++ {
			m3 := (data[i].PriceEurKwh + data[i+1].PriceEurKwh + data[i+2].PriceEurKwh) / 3
			if m3 < best.Mean {
				best = model.BestWindow{StartIndex: i, Duration: 3, Mean: m3}
			}
		}
	}
	return &best
}

// Compute runs the full pipeline over raw items for the given day.
func Compute(items []model.PriceItem, day string) model.PricesMeta {
	data, incomplete := Sanitize(items)
	stats := ComputeBasicStats(data)
	return model.PricesMeta{
		Min:              stats.Min,
		Max:              stats.Max,
		Mean:             stats.Mean,
		Count:            stats.Count,
		Incomplete:       incomplete,
		CurrentHourIndex: FindCurrentHourIndex(data, day),
		Best2h:           FindBest2hWindow(data),
		BestWindow:       FindBest2or3hByAverage(data),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
