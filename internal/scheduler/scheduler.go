package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/alert"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
)

// Runner executes one evaluation cycle.
type Runner interface {
	RunCycle(ctx context.Context) (*model.CycleReport, error)
	Last() *model.CycleReport
}

// Scheduler triggers cycles on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Ledger alert.Ledger
	Ctx    context.Context
	log    zerolog.Logger
}

// NewScheduler creates a Scheduler. Overlapping runs are skipped, so a slow
// cycle never races the next tick for the alert ledger.
func NewScheduler(ctx context.Context, runner Runner, ledger alert.Ledger, log zerolog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Runner: runner,
		Ledger: ledger,
		Ctx:    ctx,
		log:    log,
	}
}

// Register adds the cycle job. expr is a six-field cron expression or a descriptor
// such as "@every 10m".
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task %q: %w", expr, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes one cycle immediately (RUN_ON_START or a manual trigger).
func (s *Scheduler) RunNow() (*model.CycleReport, error) {
	return s.Runner.RunCycle(s.Ctx)
}

func (s *Scheduler) cycleTask() {
	if _, err := s.RunNow(); err != nil {
		s.log.Error().Err(err).Msg("cycle failed")
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	var verb string
	if fields := strings.Fields(command); len(fields) > 0 {
		verb = strings.ToLower(fields[0])
	}
	switch verb {
	case "/run":
		report, err := s.RunNow()
		if err != nil {
			return fmt.Sprintf("❌ cycle failed: %v", err)
		}
		return notifier.FormatCycleReport(report)
	case "/status":
		return notifier.FormatCycleReport(s.Runner.Last())
	case "/alerts":
		records, err := s.Ledger.Load(s.Ctx)
		if err != nil {
			return fmt.Sprintf("❌ alert ledger unavailable: %v", err)
		}
		if len(records) == 0 {
			return "No alerts recorded yet."
		}
		if len(records) > 10 {
			records = records[:10]
		}
		return notifier.FormatAlerts(records)
	default:
		return "Available commands:\n• /run\n• /status\n• /alerts"
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
