package model

import "time"

// Signal is the classifier's verdict for one asset.
type Signal string

const (
	SignalNone Signal = "NONE"
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// Trend labels stored in AlertRecord.Trend.
const (
	TrendBullish = "Alcista"
	TrendBearish = "Bajista"
)

// AlertTimeLayout is the format of AlertRecord.EmittedAt.
const AlertTimeLayout = "2006-01-02 15:04:05 UTC"

// AlertRecord is one persisted alert. Field names are the canonical wire schema.
type AlertRecord struct {
	Symbol    string  `json:"symbol"`
	Signal    Signal  `json:"signal"`
	Price     float64 `json:"price"`
	RSI       float64 `json:"rsi"`
	Trend     string  `json:"trend"`
	EmittedAt string  `json:"emitted_at"`
}

// Evaluation is the outcome of running one asset through the indicator pipeline.
type Evaluation struct {
	Symbol   string
	Signal   Signal
	Snapshot IndicatorSnapshot
	Price    float64
}

// AssetResult is the per-asset line of a CycleReport.
type AssetResult struct {
	Symbol     string
	Evaluation *Evaluation
	Err        error
}

// CycleReport summarises one orchestrator cycle.
type CycleReport struct {
	StartedAt    time.Time
	Duration     time.Duration
	Evaluated    int
	Alerts       int
	Errors       map[string]error
	Insufficient []string
	Results      []AssetResult
	CommitErr    error
}
