// Package dates provides timezone-correct calendar helpers for the Spanish
// electricity market. All "today"-relative logic in the repo goes through
// here so that the Europe/Madrid wall clock is applied consistently.
package dates

import (
	"fmt"
	"time"
	_ "time/tzdata" // keep Europe/Madrid resolvable on zoneless hosts
)

// SpainTZ is the market timezone. PVPC days are defined by Madrid wall time.
const SpainTZ = "Europe/Madrid"

// Layout is the canonical YYYY-MM-DD date format used across the repo.
const Layout = "2006-01-02"

var madrid *time.Location

// now is swapped out in tests to pin the clock.
var now = time.Now

func init() {
	loc, err := time.LoadLocation(SpainTZ)
	if err != nil {
		// tzdata is compiled in on all supported deploy targets; a missing
		// zone here is a build/platform problem, not a runtime condition.
		panic(fmt.Sprintf("dates: load %s: %v", SpainTZ, err))
	}
	madrid = loc
}

// Location returns the Europe/Madrid location.
func Location() *time.Location { return madrid }

// Today returns today's date as YYYY-MM-DD in Madrid.
func Today() string {
	return now().In(madrid).Format(Layout)
}

// Tomorrow returns tomorrow's date as YYYY-MM-DD in Madrid.
func Tomorrow() string {
	return now().In(madrid).AddDate(0, 0, 1).Format(Layout)
}

// Yesterday returns yesterday's date as YYYY-MM-DD in Madrid.
func Yesterday() string {
	return now().In(madrid).AddDate(0, 0, -1).Format(Layout)
}

// IsToday reports whether ymd is today in Madrid.
func IsToday(ymd string) bool { return ymd == Today() }

// IsTomorrow reports whether ymd is tomorrow in Madrid.
func IsTomorrow(ymd string) bool { return ymd == Tomorrow() }

// IsPast reports whether ymd is strictly before today in Madrid.
// Relies on ISO dates ordering lexically.
func IsPast(ymd string) bool { return ymd < Today() }

// CurrentHour returns the current hour (0-23) in Madrid.
func CurrentHour() int {
	return now().In(madrid).Hour()
}

// HourFromUTC converts a UTC instant to its Madrid wall-clock hour.
func HourFromUTC(t time.Time) int {
	return t.In(madrid).Hour()
}

// Parse validates a YYYY-MM-DD string and returns the date anchored at
// midnight Madrid time.
func Parse(ymd string) (time.Time, error) {
	return time.ParseInLocation(Layout, ymd, madrid)
}

// IsValid reports whether ymd is a well-formed calendar date.
func IsValid(ymd string) bool {
	_, err := Parse(ymd)
	return err == nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(ymd string, n int) (string, error) {
	t, err := Parse(ymd)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// MonthName returns the Spanish lowercase name for month 1-12, or "".
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// MonthNumber returns 1-12 for a Spanish lowercase month name, or 0.
func MonthNumber(name string) int {
	for i, n := range monthNames {
		if n == name {
			return i + 1
		}
	}
	return 0
}

// FormatDisplay renders a date for Spanish-language display,
// e.g. "16 de diciembre de 2025". Returns "" for invalid input.
func FormatDisplay(ymd string) string {
	t, err := Parse(ymd)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), MonthName(int(t.Month())), t.Year())
}

// FormatHourRange renders an hour index as a range label, e.g. "14-15h".
func FormatHourRange(hourIndex int) string {
	return fmt.Sprintf("%02d-%02dh", hourIndex%24, (hourIndex+1)%24)
}
