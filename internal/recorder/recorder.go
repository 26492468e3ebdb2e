package recorder

import "SignalSentinel/internal/model"

// CycleEvent summarises one orchestrator cycle for the history tables.
type CycleEvent struct {
	Evaluated    int
	Alerts       int
	Errors       int
	Insufficient int
	DurationMs   int64
	CommitError  string
}

// NewCycleEvent flattens a CycleReport.
func NewCycleEvent(r *model.CycleReport) *CycleEvent {
	evt := &CycleEvent{
		Evaluated:    r.Evaluated,
		Alerts:       r.Alerts,
		Errors:       len(r.Errors),
		Insufficient: len(r.Insufficient),
		DurationMs:   r.Duration.Milliseconds(),
	}
	if r.CommitErr != nil {
		evt.CommitError = r.CommitErr.Error()
	}
	return evt
}

// Recorder persists an unbounded alert history, independent of the capped ledger.
type Recorder interface {
	RecordAlerts(batch []model.AlertRecord) error
	RecordCycle(evt *CycleEvent) error
	RecentAlerts(limit int) ([]model.AlertRecord, error)
	Close() error
}
