package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the cycle metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	alerts        *prometheus.CounterVec
	assetErrors   *prometheus.CounterVec
	ledgerErrors  prometheus.Counter
	lastRSI       *prometheus.GaugeVec
	lastPrice     *prometheus.GaugeVec
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: "signalsentinel",
			Name:      "cycles_total",
			Help:      "Total number of evaluation cycles run",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "signalsentinel",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of evaluation cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalsentinel",
			Name:      "alerts_total",
			Help:      "Alerts emitted by symbol and signal",
		}, []string{"symbol", "signal"}),
		assetErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalsentinel",
			Name:      "asset_errors_total",
			Help:      "Per-asset evaluation failures by kind",
		}, []string{"kind"}),
		ledgerErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "signalsentinel",
			Name:      "ledger_write_errors_total",
			Help:      "Failed alert ledger writes",
		}),
		lastRSI: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signalsentinel",
			Name:      "last_rsi",
			Help:      "Last computed RSI per symbol",
		}, []string{"symbol"}),
		lastPrice: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signalsentinel",
			Name:      "last_price",
			Help:      "Last observed price per symbol",
		}, []string{"symbol"}),
	}
}

func (r *Recorder) ObserveCycle(d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.Inc()
	r.cycleDuration.Observe(d.Seconds())
}

func (r *Recorder) RecordAlert(symbol, signal string) {
	if r == nil {
		return
	}
	r.alerts.WithLabelValues(symbol, signal).Inc()
}

func (r *Recorder) RecordAssetError(kind string) {
	if r == nil {
		return
	}
	r.assetErrors.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLedgerError() {
	if r == nil {
		return
	}
	r.ledgerErrors.Inc()
}

func (r *Recorder) RecordIndicators(symbol string, price, rsi float64, hasRSI bool) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
	if hasRSI {
		r.lastRSI.WithLabelValues(symbol).Set(rsi)
	}
}
