package store

import (
	"testing"

	"precio-luz/internal/dates"
)

func TestNewActiveDateStartsAtToday(t *testing.T) {
	s := NewActiveDate()
	if got := s.Get(); got != dates.Today() {
		t.Errorf("Get() = %s, want %s", got, dates.Today())
	}
}

func TestSetNotifiesSubscribers(t *testing.T) {
	s := NewActiveDate()

	var got []string
	unsub := s.Subscribe(func(ymd string) { got = append(got, ymd) })
	defer unsub()

	s.Set("2025-12-16")
	s.Set("2025-12-17")
	if len(got) != 2 || got[0] != "2025-12-16" || got[1] != "2025-12-17" {
		t.Errorf("notifications = %v", got)
	}
	if s.Get() != "2025-12-17" {
		t.Errorf("Get() = %s", s.Get())
	}
}

func TestSetSameValueIsNoOp(t *testing.T) {
	s := NewActiveDate()

	calls := 0
	defer s.Subscribe(func(string) { calls++ })()

	s.Set("2025-12-16")
	s.Set("2025-12-16")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := NewActiveDate()

	calls := 0
	unsub := s.Subscribe(func(string) { calls++ })

	s.Set("2025-12-16")
	unsub()
	s.Set("2025-12-17")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestResetToToday(t *testing.T) {
	s := NewActiveDate()
	s.Set("2020-01-01")
	s.ResetToToday()
	if got := s.Get(); got != dates.Today() {
		t.Errorf("Get() = %s, want %s", got, dates.Today())
	}
}
