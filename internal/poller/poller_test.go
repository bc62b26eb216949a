package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"precio-luz/internal/dates"
	"precio-luz/internal/fetch"
	"precio-luz/internal/model"
	"precio-luz/internal/prices"
	"precio-luz/internal/store"
)

// fakeFetcher replays a scripted sequence of results, repeating the last.
type fakeFetcher struct {
	mu      sync.Mutex
	results []*prices.DayResult
	calls   int
	delay   time.Duration
}

func (f *fakeFetcher) GetPricesForDate(ctx context.Context, date string, _ prices.Options) *prices.DayResult {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(f.delay):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i]
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func dayResult(date string, hours int, policy model.CachePolicy) *prices.DayResult {
	resp := &model.PricesResponse{Date: date, Count: hours}
	for i := 0; i < hours; i++ {
		resp.Data = append(resp.Data, model.PriceItem{Date: date, HourIndex: i, PriceEurKwh: 0.1})
	}
	count := hours
	return &prices.DayResult{
		OK:           true,
		Status:       200,
		Data:         resp,
		Completeness: model.CompletenessInfo{Count: &count, IsComplete: hours >= 24},
		Policy:       policy,
	}
}

func failResult(kind fetch.Kind, status int, policy model.CachePolicy) *prices.DayResult {
	return &prices.DayResult{Status: status, Kind: kind, Policy: policy}
}

func collect(c *Controller) (chan Update, chan State) {
	updates := make(chan Update, 16)
	states := make(chan State, 16)
	c.OnUpdate = func(u Update) { updates <- u }
	c.OnStateChange = func(_ string, s State) { states <- s }
	return updates, states
}

func waitState(t *testing.T, states chan State, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func TestPollsUntilComplete(t *testing.T) {
	today := dates.Today()
	fake := &fakeFetcher{results: []*prices.DayResult{
		dayResult(today, 20, model.CacheToday),
		dayResult(today, 24, model.CacheToday),
	}}

	c := New(fake, 10*time.Millisecond, nil)
	updates, states := collect(c)
	defer c.Stop()

	c.SetDate(today)
	waitState(t, states, StateComplete)

	u1 := <-updates
	if u1.Result.Completeness.IsComplete {
		t.Error("first update should be incomplete")
	}
	if u1.Meta == nil || !u1.Meta.Incomplete {
		t.Error("first update meta should flag incomplete")
	}
	u2 := <-updates
	if !u2.Result.Completeness.IsComplete {
		t.Error("second update should be complete")
	}

	// Terminal: no further fetches get scheduled.
	n := fake.callCount()
	time.Sleep(50 * time.Millisecond)
	if fake.callCount() != n {
		t.Errorf("controller kept fetching after completion: %d -> %d", n, fake.callCount())
	}
}

func TestCompleteFirstFetchSettlesImmediately(t *testing.T) {
	today := dates.Today()
	fake := &fakeFetcher{results: []*prices.DayResult{dayResult(today, 24, model.CacheToday)}}

	c := New(fake, 10*time.Millisecond, nil)
	_, states := collect(c)
	defer c.Stop()

	c.SetDate(today)
	waitState(t, states, StateComplete)

	if fake.callCount() != 1 {
		t.Errorf("calls = %d, want 1", fake.callCount())
	}
}

func TestPastDayNeverPolls(t *testing.T) {
	yesterday := dates.Yesterday()
	// Incomplete data for a past day still settles: only today/tomorrow poll.
	fake := &fakeFetcher{results: []*prices.DayResult{dayResult(yesterday, 20, model.CachePast)}}

	c := New(fake, 10*time.Millisecond, nil)
	_, states := collect(c)
	defer c.Stop()

	c.SetDate(yesterday)
	waitState(t, states, StateComplete)

	if fake.callCount() != 1 {
		t.Errorf("calls = %d, want 1", fake.callCount())
	}
}

func TestInitialFailureSettlesAsFailed(t *testing.T) {
	today := dates.Today()
	fake := &fakeFetcher{results: []*prices.DayResult{
		failResult(fetch.KindNetwork, 0, model.CacheToday),
	}}

	c := New(fake, 10*time.Millisecond, nil)
	updates, states := collect(c)
	defer c.Stop()

	c.SetDate(today)
	waitState(t, states, StateFailed)

	u := <-updates
	if u.Result.OK || u.Meta != nil {
		t.Errorf("update = %+v, want failure with nil meta", u)
	}
	if fake.callCount() != 1 {
		t.Errorf("calls = %d, want 1", fake.callCount())
	}
}

func TestMidPollFailureIsTransient(t *testing.T) {
	today := dates.Today()
	fake := &fakeFetcher{results: []*prices.DayResult{
		dayResult(today, 20, model.CacheToday),
		failResult(fetch.KindServerError, 500, model.CacheToday),
		failResult(fetch.KindTimeout, 408, model.CacheToday),
		dayResult(today, 24, model.CacheToday),
	}}

	c := New(fake, 10*time.Millisecond, nil)
	updates, states := collect(c)
	defer c.Stop()

	c.SetDate(today)
	waitState(t, states, StateComplete)

	// Failures are swallowed: only the two successful fetches surface.
	u1, u2 := <-updates, <-updates
	if u1.Result.Completeness.IsComplete || !u2.Result.Completeness.IsComplete {
		t.Errorf("updates = %+v, %+v", u1.Result.Completeness, u2.Result.Completeness)
	}
	select {
	case u := <-updates:
		t.Errorf("unexpected extra update: %+v", u)
	default:
	}
	if fake.callCount() != 4 {
		t.Errorf("calls = %d, want 4", fake.callCount())
	}
}

func TestSupersededDateResultsAreDiscarded(t *testing.T) {
	d1, d2 := dates.Yesterday(), dates.Today()
	fake := &fakeFetcher{
		delay:   30 * time.Millisecond,
		results: []*prices.DayResult{dayResult(d2, 24, model.CacheToday)},
	}

	c := New(fake, 10*time.Millisecond, nil)
	updates, states := collect(c)
	defer c.Stop()

	c.SetDate(d1)
	c.SetDate(d2) // supersedes before the first fetch returns
	waitState(t, states, StateComplete)

	for {
		select {
		case u := <-updates:
			if u.Date == d1 {
				t.Errorf("applied update for superseded date %s", d1)
			}
		default:
			return
		}
	}
}

func TestStopCancelsPolling(t *testing.T) {
	today := dates.Today()
	fake := &fakeFetcher{results: []*prices.DayResult{dayResult(today, 20, model.CacheToday)}}

	c := New(fake, 10*time.Millisecond, nil)
	collect(c)

	c.SetDate(today)
	time.Sleep(25 * time.Millisecond)
	c.Stop()

	n := fake.callCount()
	time.Sleep(50 * time.Millisecond)
	if fake.callCount() != n {
		t.Errorf("fetches continued after Stop: %d -> %d", n, fake.callCount())
	}
}

func TestWatchFollowsActiveDate(t *testing.T) {
	today := dates.Today()
	tomorrow := dates.Tomorrow()
	fake := &fakeFetcher{results: []*prices.DayResult{
		dayResult(today, 24, model.CacheToday),
		dayResult(tomorrow, 24, model.CacheTomorrow),
	}}

	c := New(fake, 10*time.Millisecond, nil)
	updates, _ := collect(c)
	defer c.Stop()

	s := store.NewActiveDate()
	detach := c.Watch(s)
	defer detach()

	u := <-updates
	if u.Date != today {
		t.Errorf("first watched date = %s, want %s", u.Date, today)
	}

	s.Set(tomorrow)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-updates:
			if u.Date == tomorrow {
				return
			}
		case <-deadline:
			t.Fatal("never saw update for new active date")
		}
	}
}

func TestCheckTomorrow(t *testing.T) {
	tomorrow := dates.Tomorrow()

	fake := &fakeFetcher{results: []*prices.DayResult{dayResult(tomorrow, 24, model.CacheTomorrow)}}
	avail := CheckTomorrow(context.Background(), fake)
	if !avail.Available || avail.Date != tomorrow {
		t.Errorf("avail = %+v", avail)
	}

	fake = &fakeFetcher{results: []*prices.DayResult{failResult(fetch.KindNotFound, 404, model.CacheTomorrow)}}
	avail = CheckTomorrow(context.Background(), fake)
	if avail.Available {
		t.Error("404 must read as not available")
	}

	fake = &fakeFetcher{results: []*prices.DayResult{dayResult(tomorrow, 12, model.CacheTomorrow)}}
	avail = CheckTomorrow(context.Background(), fake)
	if avail.Available {
		t.Error("partial day must read as not available")
	}
}
