// Package api serves the status, alert ledger and metrics endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/alert"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
)

// StatusSource reports the most recent cycle.
type StatusSource interface {
	Last() *model.CycleReport
}

// Server wraps an echo instance.
type Server struct {
	echo    *echo.Echo
	addr    string
	status  StatusSource
	ledger  alert.Ledger
	history recorder.Recorder
	log     zerolog.Logger
}

// CycleSummary is the JSON view of a CycleReport.
type CycleSummary struct {
	StartedAt    time.Time         `json:"started_at"`
	DurationMs   int64             `json:"duration_ms"`
	Evaluated    int               `json:"evaluated"`
	Alerts       int               `json:"alerts"`
	Errors       map[string]string `json:"errors,omitempty"`
	Insufficient []string          `json:"insufficient,omitempty"`
	CommitError  string            `json:"commit_error,omitempty"`
}

type healthResponse struct {
	Status    string        `json:"status"`
	LastCycle *CycleSummary `json:"last_cycle"`
}

// NewServer builds the router. gatherer backs /metrics.
func NewServer(addr string, status StatusSource, ledger alert.Ledger, history recorder.Recorder, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, addr: addr, status: status, ledger: ledger, history: history, log: log}
	e.GET("/", s.health)
	e.GET("/healthz", s.health)
	e.GET("/alerts", s.alerts)
	e.GET("/history", s.recent)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return s
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server")
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", LastCycle: Summarize(s.status.Last())})
}

func (s *Server) alerts(c echo.Context) error {
	records, err := s.ledger.Load(c.Request().Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("load alert ledger")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "alert ledger unavailable")
	}
	if records == nil {
		records = []model.AlertRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) recent(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 1000")
		}
		limit = n
	}
	records, err := s.history.RecentAlerts(limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("load alert history")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "alert history unavailable")
	}
	if records == nil {
		records = []model.AlertRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// Summarize converts a report for JSON output; nil stays nil.
func Summarize(r *model.CycleReport) *CycleSummary {
	if r == nil {
		return nil
	}
	sum := &CycleSummary{
		StartedAt:    r.StartedAt.UTC(),
		DurationMs:   r.Duration.Milliseconds(),
		Evaluated:    r.Evaluated,
		Alerts:       r.Alerts,
		Insufficient: r.Insufficient,
	}
	if len(r.Errors) > 0 {
		sum.Errors = make(map[string]string, len(r.Errors))
		for symbol, err := range r.Errors {
			sum.Errors[symbol] = err.Error()
		}
	}
	if r.CommitErr != nil {
		sum.CommitError = r.CommitErr.Error()
	}
	return sum
}
