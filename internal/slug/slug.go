// Package slug converts between price-page URL segments and ISO dates.
//
// The canonical grammar encodes only the date, with the month spelled out
// in Spanish:
//
//	precio-luz-16-diciembre-2025  -> 2025-12-16
//	precio-luz-1-enero-2026       -> 2026-01-01
//
// Whether a slug refers to today, tomorrow or a past day is decided purely
// by comparing the decoded date against the Madrid calendar at parse time;
// the slug text itself carries no hoy/manana marker.
package slug

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"precio-luz/internal/dates"
	"precio-luz/internal/model"
)

const prefix = "precio-luz"

var pattern = regexp.MustCompile(
	`^precio-luz-(\d{1,2})-(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)-(\d{4})$`)

// Parse decodes a URL segment. Returns nil when the segment does not match
// the grammar or decodes to an impossible calendar date.
func Parse(s string) *model.ParsedSlug {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	month := dates.MonthNumber(m[2])
	year, _ := strconv.Atoi(m[3])

	dateISO := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	// Rejects impossible dates like 30 de febrero.
	if !dates.IsValid(dateISO) {
		return nil
	}

	typ := model.SlugPast
	switch {
	case dates.IsToday(dateISO):
		typ = model.SlugToday
	case dates.IsTomorrow(dateISO):
		typ = model.SlugTomorrow
	}

	return &model.ParsedSlug{
		Type:        typ,
		DateISO:     dateISO,
		DateDisplay: fmt.Sprintf("%d de %s de %d", day, m[2], year),
		Slug:        s,
	}
}

// Make encodes an ISO date as a URL segment. Returns "" for invalid dates.
func Make(dateISO string) string {
	t, err := dates.Parse(dateISO)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%d-%s-%d", prefix, t.Day(), dates.MonthName(int(t.Month())), t.Year())
}

// Today returns the slug for today's Madrid date.
func Today() string { return Make(dates.Today()) }

// Tomorrow returns the slug for tomorrow's Madrid date.
func Tomorrow() string { return Make(dates.Tomorrow()) }

// PreviousDay returns the slug for the day before dateISO, or "".
func PreviousDay(dateISO string) string {
	prev, err := dates.AddDays(dateISO, -1)
	if err != nil {
		return ""
	}
	return Make(prev)
}

// NextDay returns the slug for the day after dateISO, or "".
func NextDay(dateISO string) string {
	next, err := dates.AddDays(dateISO, 1)
	if err != nil {
		return ""
	}
	return Make(next)
}

// IsCanonical reports whether s is already in canonical form; parsing and
// re-encoding collapses variants like zero-padded days.
func IsCanonical(s string) bool {
	p := Parse(s)
	return p != nil && Make(p.DateISO) == strings.ToLower(s)
}
