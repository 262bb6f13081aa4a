// Package monitor sweeps upcoming bookings on a schedule and re-runs the
// weather check for each, so holds are placed and released without anyone
// asking.
package monitor

import (
	"context"
	"time"

	models "flightguard/internal"
	"flightguard/internal/ports"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/logger"
)

// Horizon is how far ahead the sweep looks. Weather beyond two days is
// forecast noise, not something to hold a booking over.
const Horizon = 48 * time.Hour

type weatherChecker interface {
	RunWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error)
}

type Monitor struct {
	bookings ports.BookingRepository
	checker  weatherChecker
	cron     *cron.Cron
	spec     string
	logger   logger.Logger
	nowFn    func() time.Time
}

type Option func(*Monitor)

// WithClock overrides the time source; used by tests.
func WithClock(nowFn func() time.Time) Option {
	return func(m *Monitor) { m.nowFn = nowFn }
}

// New builds a monitor that runs on the given cron spec, e.g. "@every 30m".
func New(bookings ports.BookingRepository, checker weatherChecker, spec string, logger logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		bookings: bookings,
		checker:  checker,
		cron:     cron.New(),
		spec:     spec,
		logger:   logger,
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Start(ctx context.Context) error {
	_, err := m.cron.AddFunc(m.spec, func() {
		if _, err := m.RunOnce(ctx); err != nil {
			m.logger.Error("weather sweep failed",
				logger.String("error", err.Error()),
			)
		}
	})
	if err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("weather monitor started",
		logger.String("schedule", m.spec),
		logger.Duration("horizon", Horizon),
	)
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (m *Monitor) Stop() {
	stopCtx := m.cron.Stop()
	<-stopCtx.Done()
	m.logger.Info("weather monitor stopped")
}

// RunOnce sweeps every active booking inside the horizon. One booking's
// failure is logged and counted, never fatal to the sweep; only failure to
// list the candidates aborts.
func (m *Monitor) RunOnce(ctx context.Context) (models.MonitorSummary, error) {
	now := m.nowFn().UTC()
	candidates, err := m.bookings.ListActiveBetween(ctx, now, now.Add(Horizon))
	if err != nil {
		return models.MonitorSummary{}, err
	}

	summary := models.MonitorSummary{Considered: len(candidates)}
	for _, booking := range candidates {
		priorStatus := booking.Status

		result, err := m.checker.RunWeatherCheck(ctx, booking.ID)
		if err != nil {
			summary.Errors++
			m.logger.Error("weather check failed",
				logger.String("booking_id", booking.ID.String()),
				logger.String("error", err.Error()),
			)
			continue
		}

		summary.Completed++
		if !result.IsSafe && priorStatus == models.StatusConfirmed {
			summary.NewConflicts++
		}
	}

	m.logger.LogAttrs(ctx, logger.InfoLevel, "weather sweep complete",
		logger.Int("considered", summary.Considered),
		logger.Int("completed", summary.Completed),
		logger.Int("new_conflicts", summary.NewConflicts),
		logger.Int("errors", summary.Errors),
	)
	return summary, nil
}
