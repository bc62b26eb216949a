// Package poller drives repeated fetching of a day's prices while the
// upstream is still publishing hours for it. It is an explicit state
// machine: one goroutine per watched date, cancelled through its context
// when the date changes or the controller stops, so results from a
// superseded date are never applied.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"precio-luz/internal/metrics"
	"precio-luz/internal/model"
	"precio-luz/internal/prices"
)

// DefaultInterval is the fixed delay between polls of an incomplete day.
const DefaultInterval = 15 * time.Second

// State names the phases of the polling lifecycle for one date.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StatePolling   State = "polling"
	StateComplete  State = "complete"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Fetcher is the slice of the price service the controller needs.
type Fetcher interface {
	GetPricesForDate(ctx context.Context, date string, opts prices.Options) *prices.DayResult
}

// Update carries one applied fetch outcome to the consumer. Meta is only
// set on success.
type Update struct {
	Date    string
	Result  *prices.DayResult
	Meta    *model.PricesMeta
	Attempt int
}

// Controller watches at most one date at a time.
type Controller struct {
	fetcher  Fetcher
	interval time.Duration
	log      *logrus.Entry

	// OnUpdate receives every applied result; OnStateChange every
	// transition. Both run on the polling goroutine.
	OnUpdate      func(Update)
	OnStateChange func(date string, state State)

	mu     sync.Mutex
	gen    int
	cancel context.CancelFunc
	date   string
	state  State
	wg     sync.WaitGroup
}

// New creates a controller. interval <= 0 means DefaultInterval.
func New(fetcher Fetcher, interval time.Duration, log *logrus.Entry) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Controller{
		fetcher:  fetcher,
		interval: interval,
		log:      log.WithField("component", "poller"),
		state:    StateIdle,
	}
}

// SetDate starts watching a new date, cancelling any previous watch.
func (c *Controller) SetDate(date string) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.date = date
	c.state = StateFetching
	c.mu.Unlock()

	c.notifyState(date, StateFetching)
	c.wg.Add(1)
	go c.run(ctx, gen, date)
}

// Stop cancels the active watch, if any, and waits for its goroutine.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Current returns the watched date and state.
func (c *Controller) Current() (string, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date, c.state
}

func (c *Controller) run(ctx context.Context, gen int, date string) {
	defer c.wg.Done()

	for attempt := 1; ; attempt++ {
		res := c.fetcher.GetPricesForDate(ctx, date, prices.Options{NoCache: true})

		// A result fetched for a superseded date is discarded, not applied.
		if !c.isCurrent(gen) || ctx.Err() != nil {
			c.log.WithField("date", date).Debug("discarding stale poll result")
			return
		}

		if res.OK {
			meta := metrics.Compute(res.Data.Data, res.Data.Date)
			c.emit(Update{Date: date, Result: res, Meta: &meta, Attempt: attempt})

			pollable := res.Policy == model.CacheToday || res.Policy == model.CacheTomorrow
			if res.Completeness.IsComplete || !pollable {
				c.transition(gen, date, StateComplete)
				return
			}
			c.transition(gen, date, StatePolling)
		} else if attempt == 1 {
			// The very first fetch failing settles the controller; the
			// consumer decides whether to re-request.
			c.emit(Update{Date: date, Result: res, Attempt: attempt})
			c.transition(gen, date, StateFailed)
			return
		} else {
			// Mid-poll failures are treated as transient: swallow and try
			// again on the next tick, same fixed interval. Attempt count
			// goes to the log so persistent failure is visible.
			c.log.WithFields(logrus.Fields{
				"date":    date,
				"status":  res.Status,
				"kind":    res.Kind,
				"attempt": attempt,
			}).Warn("poll failed, will retry")
		}

		select {
		case <-ctx.Done():
			c.transition(gen, date, StateCancelled)
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *Controller) isCurrent(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

func (c *Controller) transition(gen int, date string, st State) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = st
	c.mu.Unlock()
	c.notifyState(date, st)
}

func (c *Controller) notifyState(date string, st State) {
	c.log.WithFields(logrus.Fields{"date": date, "state": st}).Debug("state change")
	if c.OnStateChange != nil {
		c.OnStateChange(date, st)
	}
}

func (c *Controller) emit(u Update) {
	if c.OnUpdate != nil {
		c.OnUpdate(u)
	}
}
