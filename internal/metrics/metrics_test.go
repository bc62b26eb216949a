package metrics

import (
	"math"
	"testing"
	"time"

	"precio-luz/internal/dates"
	"precio-luz/internal/model"
)

func items(prices ...float64) []model.PriceItem {
	out := make([]model.PriceItem, len(prices))
	for i, p := range prices {
		out[i] = model.PriceItem{HourIndex: i, PriceEurKwh: p}
	}
	return out
}

func fullDay(price float64) []model.PriceItem {
	out := make([]model.PriceItem, 24)
	for i := range out {
		out[i] = model.PriceItem{HourIndex: i, PriceEurKwh: price}
	}
	return out
}

func TestSanitizeAcceptsDSTLengths(t *testing.T) {
	for _, n := range []int{23, 24, 25} {
		data := make([]model.PriceItem, n)
		for i := range data {
			data[i] = model.PriceItem{HourIndex: i, PriceEurKwh: 0.1}
		}
		got, incomplete := Sanitize(data)
		if len(got) != n {
			t.Errorf("len = %d, want %d", len(got), n)
		}
		if incomplete {
			t.Errorf("length %d flagged incomplete", n)
		}
	}
}

func TestSanitizeFlagsOtherLengths(t *testing.T) {
	for _, n := range []int{0, 1, 12, 22, 26} {
		data := make([]model.PriceItem, n)
		for i := range data {
			data[i] = model.PriceItem{PriceEurKwh: 0.1}
		}
		if _, incomplete := Sanitize(data); !incomplete {
			t.Errorf("length %d not flagged incomplete", n)
		}
	}
}

func TestSanitizeDropsNonFinite(t *testing.T) {
	data := fullDay(0.1)
	data[5].PriceEurKwh = math.NaN()

	got, incomplete := Sanitize(data)
	if len(got) != 23 {
		t.Errorf("len = %d, want 23", len(got))
	}
	// 23 items would normally be a valid DST length, but a filtered item
	// always marks the day incomplete.
	if !incomplete {
		t.Error("filtered item must flag incomplete")
	}

	data = fullDay(0.1)
	data[0].PriceEurKwh = math.Inf(1)
	if got, _ := Sanitize(data); len(got) != 23 {
		t.Errorf("Inf not filtered, len = %d", len(got))
	}
}

func TestBasicStatsEmpty(t *testing.T) {
	stats := ComputeBasicStats(nil)
	if stats.Min != nil || stats.Max != nil || stats.Mean != nil || stats.Count != 0 {
		t.Errorf("empty stats = %+v, want all nil and count 0", stats)
	}
}

func TestBasicStats(t *testing.T) {
	stats := ComputeBasicStats(items(0.30, 0.10, 0.20))
	if stats.Count != 3 {
		t.Fatalf("count = %d", stats.Count)
	}
	if *stats.Min != 0.10 || *stats.Max != 0.30 {
		t.Errorf("min/max = %v/%v", *stats.Min, *stats.Max)
	}
	if math.Abs(*stats.Mean-0.20) > 1e-12 {
		t.Errorf("mean = %v, want 0.20", *stats.Mean)
	}
	if *stats.Min > *stats.Mean || *stats.Mean > *stats.Max {
		t.Error("expected min <= mean <= max")
	}
}

func TestBest2hWindow(t *testing.T) {
	got := FindBest2hWindow(items(0.10, 0.30, 0.05, 0.05))
	if got == nil {
		t.Fatal("expected a window")
	}
	if got.StartIndex != 2 {
		t.Errorf("startIndex = %d, want 2", got.StartIndex)
	}
	if math.Abs(got.Total-0.10) > 1e-12 {
		t.Errorf("total = %v, want 0.10", got.Total)
	}
}

func TestBest2hWindowEarliestTieWins(t *testing.T) {
	got := FindBest2hWindow(items(0.10, 0.10, 0.10, 0.10))
	if got.StartIndex != 0 {
		t.Errorf("startIndex = %d, want 0 on ties", got.StartIndex)
	}
}

func TestBest2hWindowTooFewItems(t *testing.T) {
	if got := FindBest2hWindow(items(0.10)); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestBestWindowEqualPricesKeeps2h(t *testing.T) {
	got := FindBest2or3hByAverage(items(0.1, 0.1, 0.1))
	if got == nil {
		t.Fatal("expected a window")
	}
	// An equal-average 3-hour window must not displace the 2-hour one.
	if got.StartIndex != 0 || got.Duration != 2 {
		t.Errorf("got start=%d duration=%d, want 0/2", got.StartIndex, got.Duration)
	}
	if math.Abs(got.Mean-0.1) > 1e-12 {
		t.Errorf("mean = %v, want 0.1", got.Mean)
	}
}

func TestBestWindowPrefersCheaper3h(t *testing.T) {
	// Hours 2-4 average ~0.0367; the best pair averages 0.04.
	got := FindBest2or3hByAverage(items(0.20, 0.20, 0.03, 0.05, 0.03, 0.20))
	if got == nil {
		t.Fatal("expected a window")
	}
	if got.StartIndex != 2 || got.Duration != 3 {
		t.Errorf("got start=%d duration=%d, want 2/3", got.StartIndex, got.Duration)
	}
}

func TestBestWindowTooFewItems(t *testing.T) {
	if got := FindBest2or3hByAverage(items(0.1)); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestCurrentHourIndexOnlyForToday(t *testing.T) {
	hour := dates.CurrentHour()
	data := fullDay(0.1)

	idx := FindCurrentHourIndex(data, dates.Today())
	if idx == nil {
		t.Fatal("expected an index for today")
	}
	if data[*idx].HourIndex != hour {
		t.Errorf("index %d has hour %d, want %d", *idx, data[*idx].HourIndex, hour)
	}

	if got := FindCurrentHourIndex(data, dates.Tomorrow()); got != nil {
		t.Errorf("got %v for tomorrow, want nil", got)
	}
	if got := FindCurrentHourIndex(data, ""); got != nil {
		t.Errorf("got %v for empty day, want nil", got)
	}
	if got := FindCurrentHourIndex(nil, dates.Today()); got != nil {
		t.Errorf("got %v for empty data, want nil", got)
	}
}

func TestCurrentHourIndexFallsBackToTimestamps(t *testing.T) {
	// An hour index that never matches, but a UTC timestamp for the
	// current hour that does.
	nowUTC := time.Now().UTC().Truncate(time.Hour)
	data := []model.PriceItem{
		{HourIndex: -1, PriceEurKwh: 0.1, DatetimeUTC: nowUTC.Format(time.RFC3339)},
	}
	idx := FindCurrentHourIndex(data, dates.Today())
	if idx == nil || *idx != 0 {
		t.Errorf("idx = %v, want 0", idx)
	}
}

func TestCompute(t *testing.T) {
	meta := Compute(fullDay(0.1), dates.Tomorrow())
	if meta.Incomplete {
		t.Error("full day flagged incomplete")
	}
	if meta.Count != 24 {
		t.Errorf("count = %d", meta.Count)
	}
	if meta.CurrentHourIndex != nil {
		t.Error("current hour set for tomorrow")
	}
	if meta.Best2h == nil || meta.BestWindow == nil {
		t.Error("windows missing")
	}

	meta = Compute(nil, dates.Today())
	if !meta.Incomplete {
		t.Error("empty day not flagged incomplete")
	}
	if meta.Min != nil || meta.Best2h != nil || meta.BestWindow != nil {
		t.Error("expected nil stats and windows for empty day")
	}
}
