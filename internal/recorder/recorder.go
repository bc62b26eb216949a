// Package recorder persists fetched price days for later analysis
// (history charts, completeness audits). The API and poller work without
// it; when no database is configured the noop implementation is used.
package recorder

import "precio-luz/internal/model"

// Recorder persists price data keyed by date.
type Recorder interface {
	// RecordDay upserts one day's prices and derived metrics. Re-recording
	// a date replaces its hours; partial days get overwritten as more
	// hours arrive.
	RecordDay(resp *model.PricesResponse, meta model.PricesMeta) error
	Close() error
}
