// Package cycle runs one evaluation pass over the asset basket: fetch,
// normalise, compute indicators, classify, then record the alert batch once.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"SignalSentinel/internal/alert"
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/strategy"
)

// ErrNoAssets is returned by RunCycle when the basket is empty.
var ErrNoAssets = errors.New("asset basket is empty")

// Options configures what a cycle evaluates.
type Options struct {
	Assets      []string
	Interval    string
	Limit       int
	Concurrency int
}

// Option sets an optional collaborator.
type Option func(*Orchestrator)

func WithHistory(r recorder.Recorder) Option {
	return func(o *Orchestrator) { o.history = r }
}

func WithNotifier(n notifier.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator owns no configuration beyond what it is constructed with.
type Orchestrator struct {
	opts       Options
	fetcher    collector.Fetcher
	classifier *strategy.Classifier
	alerts     *alert.Recorder
	history    recorder.Recorder
	notifier   notifier.Notifier
	metrics    *metrics.Recorder
	log        zerolog.Logger

	// run serialises cycles so the ledger sees one read-modify-write at a time.
	run sync.Mutex

	mu   sync.RWMutex
	last *model.CycleReport
}

// New creates an Orchestrator.
func New(opts Options, fetcher collector.Fetcher, classifier *strategy.Classifier, alerts *alert.Recorder, log zerolog.Logger, options ...Option) *Orchestrator {
	if opts.Interval == "" {
		opts.Interval = "1h"
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	o := &Orchestrator{
		opts:       opts,
		fetcher:    fetcher,
		classifier: classifier,
		alerts:     alerts,
		history:    recorder.NewNoopRecorder(),
		log:        log,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Last returns the most recent completed cycle report, or nil.
func (o *Orchestrator) Last() *model.CycleReport {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// RunCycle evaluates every asset once. Per-asset failures land in the report and
// never abort the cycle. The alert ledger is written at most once, after all
// assets are evaluated; a cancelled cycle returns ctx.Err() without writing.
// Concurrent calls run one after another.
func (o *Orchestrator) RunCycle(ctx context.Context) (*model.CycleReport, error) {
	if len(o.opts.Assets) == 0 {
		return nil, ErrNoAssets
	}
	o.run.Lock()
	defer o.run.Unlock()
	start := time.Now()
	report := &model.CycleReport{StartedAt: start, Errors: map[string]error{}}

	results := make([]model.AssetResult, len(o.opts.Assets))
	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, symbol := range o.opts.Assets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = o.evaluate(ctx, symbol)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		o.log.Warn().Err(err).Msg("cycle interrupted, alert ledger untouched")
		return nil, err
	}

	evals := make([]model.Evaluation, 0, len(results))
	for _, res := range results {
		report.Results = append(report.Results, res)
		if res.Err != nil {
			report.Errors[res.Symbol] = res.Err
			o.metrics.RecordAssetError(errorKind(res.Err))
			continue
		}
		report.Evaluated++
		if !res.Evaluation.Snapshot.Complete() {
			report.Insufficient = append(report.Insufficient, res.Symbol)
			o.metrics.RecordAssetError("insufficient_history")
		}
		evals = append(evals, *res.Evaluation)
	}

	batch := o.alerts.Record(evals)
	report.Alerts = len(batch)
	if len(batch) > 0 {
		o.deliver(ctx, report, batch)
	} else {
		o.log.Info().Msg("no new signals")
	}

	report.Duration = time.Since(start)
	if err := o.history.RecordCycle(recorder.NewCycleEvent(report)); err != nil {
		o.log.Error().Err(err).Msg("record cycle")
	}
	o.metrics.ObserveCycle(report.Duration)

	o.mu.Lock()
	o.last = report
	o.mu.Unlock()

	o.log.Info().
		Int("evaluated", report.Evaluated).
		Int("alerts", report.Alerts).
		Int("errors", len(report.Errors)).
		Int("insufficient", len(report.Insufficient)).
		Dur("duration", report.Duration).
		Msg("cycle complete")
	return report, nil
}

func (o *Orchestrator) deliver(ctx context.Context, report *model.CycleReport, batch []model.AlertRecord) {
	if _, err := o.alerts.Commit(ctx, batch); err != nil {
		report.CommitErr = err
		o.metrics.RecordLedgerError()
		o.log.Error().Err(err).Int("alerts", len(batch)).Msg("alert batch not persisted")
	}
	for _, a := range batch {
		o.metrics.RecordAlert(a.Symbol, string(a.Signal))
	}
	if err := o.history.RecordAlerts(batch); err != nil {
		o.log.Error().Err(err).Msg("record alert history")
	}
	if o.notifier != nil {
		if err := o.notifier.Notify(ctx, batch); err != nil {
			o.log.Error().Err(err).Msg("notify alerts")
		}
	}
}

func (o *Orchestrator) evaluate(ctx context.Context, symbol string) model.AssetResult {
	res := model.AssetResult{Symbol: symbol}
	log := o.log.With().Str("symbol", strings.ToUpper(symbol)).Logger()

	raw, err := o.fetcher.FetchHistory(ctx, symbol, o.opts.Interval, o.opts.Limit)
	if err != nil {
		var nerr *collector.NormalizationError
		if !errors.As(err, &nerr) && !errors.Is(err, collector.ErrFetch) {
			err = fmt.Errorf("%w: %w", collector.ErrFetch, err)
		}
		log.Warn().Err(err).Msg("fetch failed, skipping asset")
		res.Err = err
		return res
	}

	series, err := collector.Normalize(raw)
	if err != nil {
		log.Warn().Err(err).Msg("normalize failed, skipping asset")
		res.Err = err
		return res
	}

	snap, err := calculator.Compute(series)
	if err != nil {
		log.Warn().Err(err).Int("points", len(series.Points)).Msg("indicators undefined")
	}
	latest, _ := series.Latest()
	sig := o.classifier.Classify(snap, latest.Price)
	o.metrics.RecordIndicators(strings.ToUpper(symbol), latest.Price, snap.RSI, snap.HasRSI)

	log.Info().
		Float64("price", latest.Price).
		Float64("rsi", snap.RSI).
		Float64("macd", snap.MACD).
		Float64("macd_signal", snap.MACDSignal).
		Str("signal", string(sig)).
		Msg("evaluated")

	res.Evaluation = &model.Evaluation{Symbol: symbol, Signal: sig, Snapshot: snap, Price: latest.Price}
	return res
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, collector.ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, collector.ErrEmptyFeed):
		return "empty_feed"
	case errors.Is(err, collector.ErrFetch):
		return "fetch"
	default:
		return "other"
	}
}
