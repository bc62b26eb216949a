package poller

import (
	"context"

	"precio-luz/internal/dates"
	"precio-luz/internal/model"
	"precio-luz/internal/prices"
	"precio-luz/internal/store"
)

// TomorrowAvailability is the outcome of a one-shot probe for tomorrow's
// prices. Available means the full day has been published.
type TomorrowAvailability struct {
	Date      string                 `json:"date"`
	Available bool                   `json:"available"`
	Info      model.CompletenessInfo `json:"info"`
}

// CheckTomorrow probes whether tomorrow's prices are complete. A failed
// fetch (upstream not yet publishing returns 404) reads as not available,
// not as an error.
func CheckTomorrow(ctx context.Context, fetcher Fetcher) TomorrowAvailability {
	date := dates.Tomorrow()
	res := fetcher.GetPricesForDate(ctx, date, prices.Options{NoCache: true})
	return TomorrowAvailability{
		Date:      date,
		Available: res.OK && res.Completeness.IsComplete,
		Info:      res.Completeness,
	}
}

// Watch binds the controller to an active-date store: it starts polling
// the store's current date and follows every change. The returned func
// detaches the subscription (the controller itself keeps running until
// Stop).
func (c *Controller) Watch(s *store.ActiveDate) (detach func()) {
	c.SetDate(s.Get())
	return s.Subscribe(func(ymd string) {
		c.SetDate(ymd)
	})
}
