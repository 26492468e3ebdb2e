package recorder

import "SignalSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAlerts(_ []model.AlertRecord) error        { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleEvent) error                 { return nil }
func (n *NoopRecorder) RecentAlerts(_ int) ([]model.AlertRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                    { return nil }
