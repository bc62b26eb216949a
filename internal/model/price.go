package model

import "time"

// PriceItem represents one hour of PVPC price data as returned by the
// upstream prices API.
//
// Example:
//
//	{
//	  "date": "2025-12-16",
//	  "hourIndex": 14,
//	  "datetimeUtc": "2025-12-16T13:00:00Z",
//	  "priceEurKwh": 0.08543,
//	  "zone": "PENINSULA",
//	  "source": "ESIOS"
//	}
type PriceItem struct {
	Date        string  `json:"date"`
	HourIndex   int     `json:"hourIndex"`
	DatetimeUTC string  `json:"datetimeUtc"`
	PriceEurKwh float64 `json:"priceEurKwh"`
	Zone        string  `json:"zone"`
	Source      string  `json:"source"`
}

// Datetime parses the item's UTC timestamp. Returns the zero time when the
// field is absent or malformed; callers decide whether that matters.
func (it PriceItem) Datetime() time.Time {
	if it.DatetimeUTC == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, it.DatetimeUTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// PricesResponse is one day's worth of hourly prices. Hour counts of 23 or
// 25 occur on daylight-saving transition days; anything else below 24 means
// the upstream has not published the full day yet.
type PricesResponse struct {
	Date  string      `json:"date"`
	Count int         `json:"count"`
	Data  []PriceItem `json:"data"`
}

// CompletenessInfo describes how many hours were received for a day.
// Count is nil when the upstream gave no usable count at all.
type CompletenessInfo struct {
	Count      *int `json:"count"`
	IsComplete bool `json:"isComplete"`
}

// CachePolicy classifies a requested date relative to "now" in the Spanish
// market timezone. It drives both client polling and HTTP cache headers.
type CachePolicy string

const (
	CacheToday    CachePolicy = "today"
	CacheTomorrow CachePolicy = "tomorrow"
	CachePast     CachePolicy = "past"
	CacheUnknown  CachePolicy = ""
)

// Best2h is the cheapest pair of consecutive hours.
type Best2h struct {
	StartIndex int     `json:"startIndex"`
	Total      float64 `json:"total"`
}

// BestWindow is the cheapest 2- or 3-hour contiguous window by average price.
type BestWindow struct {
	StartIndex int     `json:"startIndex"`
	Duration   int     `json:"duration"`
	Mean       float64 `json:"mean"`
}

// PricesMeta holds statistics derived from one day's sanitized prices.
// Min/Max/Mean are nil when no valid items exist; CurrentHourIndex is only
// set when the day under analysis is today.
type PricesMeta struct {
	Min              *float64    `json:"min"`
	Max              *float64    `json:"max"`
	Mean             *float64    `json:"mean"`
	Count            int         `json:"count"`
	Incomplete       bool        `json:"incomplete"`
	CurrentHourIndex *int        `json:"currentHourIndex"`
	Best2h           *Best2h     `json:"best2h"`
	BestWindow       *BestWindow `json:"bestWindow"`
}

// SlugType classifies a parsed URL date relative to today in Madrid.
type SlugType string

const (
	SlugToday    SlugType = "hoy"
	SlugTomorrow SlugType = "manana"
	SlugPast     SlugType = "pasado"
)

// ParsedSlug is the decoded form of a price-page URL segment.
type ParsedSlug struct {
	Type        SlugType `json:"type"`
	DateISO     string   `json:"dateIso"`
	DateDisplay string   `json:"dateDisplay"`
	Slug        string   `json:"slug"`
}

// PriceTier buckets an hourly price within the day's range. The thresholds
// split the min..max spread into thirds.
type PriceTier string

const (
	TierLow    PriceTier = "low"
	TierMedium PriceTier = "medium"
	TierHigh   PriceTier = "high"
)

// BarPoint is a chart-friendly projection of a PriceItem.
type BarPoint struct {
	HourIndex   int       `json:"hourIndex"`
	DatetimeUTC string    `json:"datetimeUtc,omitempty"`
	PriceEurKwh float64   `json:"priceEurKwh"`
	Tier        PriceTier `json:"tier"`
}
