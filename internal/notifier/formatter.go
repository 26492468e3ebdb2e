package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// FormatAlerts formats an alert batch into a Telegram HTML message.
func FormatAlerts(batch []model.AlertRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>RSI + MACD alerts</b> (%d)\n\n", len(batch)))
	for _, a := range batch {
		icon := "🟢"
		if a.Signal == model.SignalSell {
			icon = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", icon, a.Symbol, a.Signal))
		b.WriteString(fmt.Sprintf("   Price: %.2f | RSI: %.2f | MACD: %s\n", a.Price, a.RSI, a.Trend))
	}
	if len(batch) > 0 {
		b.WriteString(fmt.Sprintf("\n%s", batch[0].EmittedAt))
	}
	return b.String()
}

// FormatCycleReport formats a cycle summary for command replies.
func FormatCycleReport(r *model.CycleReport) string {
	if r == nil {
		return "No cycle has run yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Last cycle</b> | %s UTC\n\n", r.StartedAt.UTC().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Evaluated: %d\n", r.Evaluated))
	b.WriteString(fmt.Sprintf("Alerts: %d\n", r.Alerts))
	b.WriteString(fmt.Sprintf("Duration: %s\n", r.Duration.Round(time.Millisecond)))
	if len(r.Insufficient) > 0 {
		b.WriteString(fmt.Sprintf("Insufficient history: %s\n", strings.Join(r.Insufficient, ", ")))
	}
	if len(r.Errors) > 0 {
		symbols := make([]string, 0, len(r.Errors))
		for s := range r.Errors {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		b.WriteString("Errors:\n")
		for _, s := range symbols {
			b.WriteString(fmt.Sprintf("  • %s: %v\n", s, r.Errors[s]))
		}
	}
	if r.CommitErr != nil {
		b.WriteString(fmt.Sprintf("Ledger write failed: %v\n", r.CommitErr))
	}
	return b.String()
}
