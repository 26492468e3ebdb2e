// Package alert builds alert records from classified signals and commits them
// to a capacity-bounded, newest-first ledger.
//
// Identical alerts are not deduplicated: a condition that holds for several
// cycles is recorded once per cycle.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"SignalSentinel/internal/model"
)

// DefaultCapacity is the number of records a ledger keeps.
const DefaultCapacity = 100

var (
	ErrLedgerLoad  = errors.New("ledger load failed")
	ErrLedgerWrite = errors.New("ledger write failed")
)

// Ledger is the alert sink's persisted state. Load must return an empty slice
// and nil error when nothing has been stored yet.
type Ledger interface {
	Load(ctx context.Context) ([]model.AlertRecord, error)
	Save(ctx context.Context, records []model.AlertRecord) error
}

// Recorder turns evaluations into alert records and writes them to a Ledger.
type Recorder struct {
	ledger   Ledger
	capacity int
	log      zerolog.Logger
	now      func() time.Time
}

// NewRecorder creates a Recorder. capacity <= 0 selects DefaultCapacity.
func NewRecorder(ledger Ledger, capacity int, log zerolog.Logger) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{ledger: ledger, capacity: capacity, log: log, now: time.Now}
}

// Capacity returns the ledger cap.
func (r *Recorder) Capacity() int { return r.capacity }

// Record builds one AlertRecord per evaluation whose signal is not NONE, in input order.
func (r *Recorder) Record(evals []model.Evaluation) []model.AlertRecord {
	return Build(evals, r.now())
}

// Build is Record with an explicit emission time.
func Build(evals []model.Evaluation, now time.Time) []model.AlertRecord {
	emittedAt := now.UTC().Format(model.AlertTimeLayout)
	batch := make([]model.AlertRecord, 0, len(evals))
	for _, e := range evals {
		if e.Signal != model.SignalBuy && e.Signal != model.SignalSell {
			continue
		}
		trend := model.TrendBearish
		if e.Snapshot.Bullish() {
			trend = model.TrendBullish
		}
		batch = append(batch, model.AlertRecord{
			Symbol:    strings.ToUpper(e.Symbol),
			Signal:    e.Signal,
			Price:     round2(e.Price),
			RSI:       round2(e.Snapshot.RSI),
			Trend:     trend,
			EmittedAt: emittedAt,
		})
	}
	return batch
}

// Commit prepends batch to the stored ledger, truncates it to capacity and saves it.
// A failed or corrupt load is logged and treated as an empty ledger. The returned
// slice is the ledger as written; on write failure the error wraps ErrLedgerWrite.
func (r *Recorder) Commit(ctx context.Context, batch []model.AlertRecord) ([]model.AlertRecord, error) {
	prior, err := r.ledger.Load(ctx)
	if err != nil {
		r.log.Warn().Err(fmt.Errorf("%w: %w", ErrLedgerLoad, err)).Msg("alert ledger unreadable, starting empty")
		prior = nil
	}

	merged := Merge(batch, prior, r.capacity)
	if err := r.ledger.Save(ctx, merged); err != nil {
		return merged, fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}
	r.log.Info().Int("new", len(batch)).Int("total", len(merged)).Msg("alert ledger saved")
	return merged, nil
}

// Merge returns batch followed by prior, truncated to the newest capacity records.
// Prior records without a symbol or with a signal other than BUY or SELL are dropped.
func Merge(batch, prior []model.AlertRecord, capacity int) []model.AlertRecord {
	n := len(batch) + len(prior)
	if n > capacity {
		n = capacity
	}
	out := make([]model.AlertRecord, 0, n)
	out = append(out, batch...)
	for _, r := range prior {
		if valid(r) {
			out = append(out, r)
		}
	}
	if len(out) > capacity {
		out = out[:capacity]
	}
	return out
}

func valid(r model.AlertRecord) bool {
	return r.Symbol != "" && (r.Signal == model.SignalBuy || r.Signal == model.SignalSell)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
