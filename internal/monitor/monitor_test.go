package monitor_test

import (
	"context"
	"testing"
	"time"

	models "flightguard/internal"
	"flightguard/internal/mocks"
	"flightguard/internal/monitor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger("slog", "test", "test", logger.WithLevel(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

func activeBooking(status models.BookingStatus, in time.Duration, now time.Time) models.Booking {
	return models.Booking{
		ID:           uuid.New(),
		StudentID:    uuid.New(),
		InstructorID: uuid.New(),
		AircraftID:   uuid.New(),
		ScheduledAt:  now.Add(in),
		Departure:    models.Location{Name: "KAUS"},
		Status:       status,
		Version:      1,
	}
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 6, 0, 0, 0, time.UTC)

	t.Run("counts new conflicts only for freshly held bookings", func(t *testing.T) {
		repo := new(mocks.MockBookingRepository)
		checker := new(mocks.MockBookingService)
		m := monitor.New(repo, checker, "@every 30m", newTestLogger(t),
			monitor.WithClock(func() time.Time { return now }))

		confirmed := activeBooking(models.StatusConfirmed, 12*time.Hour, now)
		alreadyHeld := activeBooking(models.StatusWeatherHold, 24*time.Hour, now)

		repo.On("ListActiveBetween", ctx, now, now.Add(monitor.Horizon)).
			Return([]models.Booking{confirmed, alreadyHeld}, nil)
		checker.On("RunWeatherCheck", ctx, confirmed.ID).
			Return(&models.WeatherCheckResult{IsSafe: false, Reason: "Thunderstorms reported in the area"}, nil)
		checker.On("RunWeatherCheck", ctx, alreadyHeld.ID).
			Return(&models.WeatherCheckResult{IsSafe: false, Reason: "Thunderstorms reported in the area"}, nil)

		summary, err := m.RunOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Considered)
		assert.Equal(t, 2, summary.Completed)
		assert.Equal(t, 1, summary.NewConflicts)
		assert.Equal(t, 0, summary.Errors)
	})

	t.Run("one failing booking does not stop the sweep", func(t *testing.T) {
		repo := new(mocks.MockBookingRepository)
		checker := new(mocks.MockBookingService)
		m := monitor.New(repo, checker, "@every 30m", newTestLogger(t),
			monitor.WithClock(func() time.Time { return now }))

		broken := activeBooking(models.StatusConfirmed, 6*time.Hour, now)
		healthy := activeBooking(models.StatusConfirmed, 30*time.Hour, now)

		repo.On("ListActiveBetween", ctx, now, now.Add(monitor.Horizon)).
			Return([]models.Booking{broken, healthy}, nil)
		checker.On("RunWeatherCheck", ctx, broken.ID).
			Return(nil, models.NewExternalError("weather service unavailable", assert.AnError))
		checker.On("RunWeatherCheck", ctx, healthy.ID).
			Return(&models.WeatherCheckResult{IsSafe: true, Reason: "Conditions meet STUDENT_PILOT minimums"}, nil)

		summary, err := m.RunOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Considered)
		assert.Equal(t, 1, summary.Completed)
		assert.Equal(t, 1, summary.Errors)
		assert.Equal(t, 0, summary.NewConflicts)
	})

	t.Run("listing failure aborts the sweep", func(t *testing.T) {
		repo := new(mocks.MockBookingRepository)
		checker := new(mocks.MockBookingService)
		m := monitor.New(repo, checker, "@every 30m", newTestLogger(t),
			monitor.WithClock(func() time.Time { return now }))

		repo.On("ListActiveBetween", ctx, now, now.Add(monitor.Horizon)).
			Return(nil, assert.AnError)

		summary, err := m.RunOnce(ctx)

		assert.Error(t, err)
		assert.Zero(t, summary.Considered)
		checker.AssertNotCalled(t, "RunWeatherCheck", mock.Anything, mock.Anything)
	})

	t.Run("empty horizon is a quiet no-op", func(t *testing.T) {
		repo := new(mocks.MockBookingRepository)
		checker := new(mocks.MockBookingService)
		m := monitor.New(repo, checker, "@every 30m", newTestLogger(t),
			monitor.WithClock(func() time.Time { return now }))

		repo.On("ListActiveBetween", ctx, now, now.Add(monitor.Horizon)).
			Return([]models.Booking{}, nil)

		summary, err := m.RunOnce(ctx)

		require.NoError(t, err)
		assert.Zero(t, summary.Considered)
		assert.Zero(t, summary.Errors)
	})
}
