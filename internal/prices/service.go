// Package prices fetches one day of hourly electricity prices from the
// upstream API and shapes it for consumers: unit normalization, hour-index
// repair, completeness detection and cache-policy classification.
package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"precio-luz/internal/dates"
	"precio-luz/internal/fetch"
	"precio-luz/internal/model"
)

// ExpectedHours is the nominal number of price points per day.
const ExpectedHours = 24

// Options tunes a single request.
type Options struct {
	// NoCache bypasses the in-memory day cache for this call.
	NoCache bool
}

// DayResult is the shaped outcome of a price request. On failure Data is
// nil and Kind/Status carry the classified error from the fetch layer.
type DayResult struct {
	OK           bool
	Status       int
	Data         *model.PricesResponse
	Kind         fetch.Kind
	ElapsedMs    int64
	Completeness model.CompletenessInfo
	Policy       model.CachePolicy
}

// Err returns the typed fetch error for failed results, nil otherwise.
func (r *DayResult) Err() error {
	if r.OK {
		return nil
	}
	return &fetch.Error{Kind: r.Kind, Status: r.Status}
}

// Service wraps the fetch client with price-domain behavior.
type Service struct {
	baseURL string
	client  *fetch.Client
	cache   *dayCache
	log     *logrus.Entry
}

// NewService creates a price service. If baseURL is empty it defaults to
// the public API.
func NewService(baseURL string, client *fetch.Client, log *logrus.Entry) *Service {
	if baseURL == "" {
		baseURL = "https://api.precioluzhoy.app/api"
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		baseURL: baseURL,
		client:  client,
		cache:   newDayCache(),
		log:     log.WithField("component", "prices"),
	}
}

// BuildURL returns the upstream query URL for a date.
func (s *Service) BuildURL(date string) string {
	return fmt.Sprintf("%s/prices?date=%s", s.baseURL, url.QueryEscape(date))
}

// GetPricesForDate fetches, normalizes and classifies one day of prices.
// Retryable upstream failures are already resolved by the fetch client;
// whatever error remains is passed through unchanged.
func (s *Service) GetPricesForDate(ctx context.Context, date string, opts Options) *DayResult {
	policy := PolicyFor(date)

	if !opts.NoCache {
		if cached, ok := s.cache.get(date); ok {
			s.log.WithFields(logrus.Fields{"date": date, "policy": policy}).Debug("day cache hit")
			return cached
		}
	}

	reqURL := s.BuildURL(date)
	res := s.client.Do(ctx, reqURL)

	if !res.OK {
		s.log.WithFields(logrus.Fields{
			"date":   date,
			"status": res.Status,
			"kind":   res.Kind,
			"ms":     res.Elapsed.Milliseconds(),
		}).Warn("price fetch failed")
		return &DayResult{
			Status:       res.Status,
			Kind:         res.Kind,
			ElapsedMs:    res.Elapsed.Milliseconds(),
			Completeness: model.CompletenessInfo{},
			Policy:       policy,
		}
	}

	var payload model.PricesResponse
	if err := res.DecodeJSON(&payload); err != nil {
		s.log.WithError(err).WithField("date", date).Warn("malformed price payload")
		return &DayResult{
			Status:    res.Status,
			Kind:      fetch.KindMalformed,
			ElapsedMs: res.Elapsed.Milliseconds(),
			Policy:    policy,
		}
	}

	payload.Data = NormalizeItems(payload.Data)
	repairHourIndexes(payload.Data)
	if payload.Date == "" {
		payload.Date = date
	}

	info := completenessFromHeader(res.Header)
	if info.Count == nil {
		count := payload.Count
		if count == 0 {
			count = len(payload.Data)
		}
		info = model.CompletenessInfo{Count: &count, IsComplete: count >= ExpectedHours}
	}

	result := &DayResult{
		OK:           true,
		Status:       res.Status,
		Data:         &payload,
		ElapsedMs:    res.Elapsed.Milliseconds(),
		Completeness: info,
		Policy:       policy,
	}

	s.log.WithFields(logrus.Fields{
		"date":     date,
		"count":    len(payload.Data),
		"complete": info.IsComplete,
		"policy":   policy,
		"ms":       result.ElapsedMs,
	}).Info("prices fetched")

	if ttl := cacheTTL(policy); ttl > 0 && !opts.NoCache {
		s.cache.set(date, result, ttl)
	}
	return result
}

// GetToday fetches today's prices.
func (s *Service) GetToday(ctx context.Context, opts Options) *DayResult {
	return s.GetPricesForDate(ctx, dates.Today(), opts)
}

// GetTomorrow fetches tomorrow's prices.
func (s *Service) GetTomorrow(ctx context.Context, opts Options) *DayResult {
	return s.GetPricesForDate(ctx, dates.Tomorrow(), opts)
}

// NormalizeItems converts prices that look like EUR/MWh into EUR/kWh.
// Spanish retail prices sit well under 1 EUR/kWh, so any value above 10 is
// taken to be per-MWh and divided by 1000. Idempotent: already-normalized
// values pass through untouched.
func NormalizeItems(items []model.PriceItem) []model.PriceItem {
	out := make([]model.PriceItem, len(items))
	for i, it := range items {
		if it.PriceEurKwh > 10 {
			it.PriceEurKwh /= 1000
		}
		out[i] = it
	}
	return out
}

// repairHourIndexes recomputes each item's hour index from its UTC
// timestamp. The timestamp is authoritative; server-supplied indexes have
// been observed drifting on DST days.
func repairHourIndexes(items []model.PriceItem) {
	for i := range items {
		if t := items[i].Datetime(); !t.IsZero() {
			items[i].HourIndex = dates.HourFromUTC(t)
		}
	}
}

var completenessPattern = regexp.MustCompile(`^(\d+)/(\d+)$`)

// completenessFromHeader reads the X-Completeness header ("N/24").
func completenessFromHeader(h http.Header) model.CompletenessInfo {
	v := h.Get("X-Completeness")
	if v == "" {
		return model.CompletenessInfo{}
	}
	m := completenessPattern.FindStringSubmatch(v)
	if m == nil {
		return model.CompletenessInfo{}
	}
	count, _ := strconv.Atoi(m[1])
	expected, _ := strconv.Atoi(m[2])
	return model.CompletenessInfo{Count: &count, IsComplete: count >= expected}
}

// PolicyFor classifies a date for caching and polling purposes.
func PolicyFor(date string) model.CachePolicy {
	switch {
	case dates.IsToday(date):
		return model.CacheToday
	case dates.IsTomorrow(date):
		return model.CacheTomorrow
	case dates.IsPast(date):
		return model.CachePast
	}
	return model.CacheUnknown
}

// RevalidateFor returns the suggested client cache lifetime in seconds.
// Today's data keeps changing until ~20:30 CET (5 minutes), tomorrow's
// appears around 20:15 CET (no caching), past days are static (1 day).
func RevalidateFor(date string) int {
	switch PolicyFor(date) {
	case model.CacheToday:
		return 300
	case model.CachePast:
		return 86400
	}
	return 0
}
