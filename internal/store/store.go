// Package store holds the process-wide active-date selection. There is
// exactly one mutation entry point (Set / ResetToToday); readers either
// poll Get or subscribe for synchronous change notification.
package store

import (
	"sync"

	"precio-luz/internal/dates"
)

// ActiveDate is an observable single-value store for the date the
// presentation layer is currently showing.
type ActiveDate struct {
	mu     sync.RWMutex
	value  string
	nextID int
	subs   map[int]func(ymd string)
}

// NewActiveDate creates a store initialized to today in Madrid.
func NewActiveDate() *ActiveDate {
	return &ActiveDate{
		value: dates.Today(),
		subs:  make(map[int]func(string)),
	}
}

// Get returns the active date (YYYY-MM-DD).
func (s *ActiveDate) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the active date and notifies subscribers synchronously.
// Setting the current value again is a no-op.
func (s *ActiveDate) Set(ymd string) {
	s.mu.Lock()
	if ymd == s.value {
		s.mu.Unlock()
		return
	}
	s.value = ymd
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ymd)
	}
}

// ResetToToday sets the active date back to today in Madrid.
func (s *ActiveDate) ResetToToday() {
	s.Set(dates.Today())
}

// Subscribe registers a change callback and returns an unsubscribe func.
// Callbacks run synchronously on the mutating goroutine and must not call
// back into Set.
func (s *ActiveDate) Subscribe(fn func(ymd string)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
