package models

import "precio-luz/internal/model"

// DayResponse is the body for price queries: the shaped upstream payload
// plus everything the presentation layer derives from it.
type DayResponse struct {
	Date      string            `json:"date"`
	Count     int               `json:"count"`
	Data      []model.PriceItem `json:"data"`
	Meta      model.PricesMeta  `json:"meta"`
	Bars      []model.BarPoint  `json:"bars"`
	Policy    model.CachePolicy `json:"cachePolicy"`
	Complete  bool              `json:"isComplete"`
	ElapsedMs int64             `json:"elapsedMs"`
}

// SlugResponse resolves a URL segment to its date, with navigation slugs
// for the adjacent days.
type SlugResponse struct {
	Parsed      model.ParsedSlug `json:"parsed"`
	PreviousDay string           `json:"previousDaySlug"`
	NextDay     string           `json:"nextDaySlug"`
}

// EncodeSlugResponse is the inverse lookup: date to slug.
type EncodeSlugResponse struct {
	DateISO     string `json:"dateIso"`
	Slug        string `json:"slug"`
	PreviousDay string `json:"previousDaySlug"`
	NextDay     string `json:"nextDaySlug"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
