package recorder

import "precio-luz/internal/model"

// NoopRecorder is used when no SQLite path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDay(_ *model.PricesResponse, _ model.PricesMeta) error { return nil }
func (n *NoopRecorder) Close() error                                                { return nil }
