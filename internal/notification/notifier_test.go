package notification_test

import (
	"context"
	"testing"
	"time"

	models "flightguard/internal"
	"flightguard/internal/mocks"
	"flightguard/internal/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
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

func testBooking() *models.Booking {
	return &models.Booking{
		ID:           uuid.New(),
		StudentID:    uuid.New(),
		InstructorID: uuid.New(),
		ScheduledAt:  time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC),
		Departure:    models.Location{Name: "KAUS"},
		Status:       models.StatusConfirmed,
	}
}

func TestStoreNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmation notifies the student only", func(t *testing.T) {
		store := new(mocks.MockNotificationRepository)
		n := notification.NewStoreNotifier(store, newTestLogger(t))
		booking := testBooking()

		store.On("CreateNotification", ctx, mock.AnythingOfType("*models.Notification")).
			Run(func(args mock.Arguments) {
				row := args.Get(1).(*models.Notification)
				assert.Equal(t, models.NotifyFlightConfirmed, row.Kind)
				assert.Equal(t, booking.StudentID, row.UserID)
				assert.Contains(t, row.Body, "KAUS")
			}).
			Return(nil)

		n.FlightConfirmed(ctx, booking)

		store.AssertNumberOfCalls(t, "CreateNotification", 1)
	})

	t.Run("weather alert notifies both participants", func(t *testing.T) {
		store := new(mocks.MockNotificationRepository)
		n := notification.NewStoreNotifier(store, newTestLogger(t))
		booking := testBooking()

		var recipients []uuid.UUID
		store.On("CreateNotification", ctx, mock.AnythingOfType("*models.Notification")).
			Run(func(args mock.Arguments) {
				row := args.Get(1).(*models.Notification)
				assert.Equal(t, models.NotifyWeatherAlert, row.Kind)
				assert.Contains(t, row.Body, "Wind 22 kt exceeds the 15 kt maximum")
				recipients = append(recipients, row.UserID)
			}).
			Return(nil)

		n.WeatherAlert(ctx, booking, "Wind 22 kt exceeds the 15 kt maximum")

		assert.ElementsMatch(t, []uuid.UUID{booking.StudentID, booking.InstructorID}, recipients)
	})

	t.Run("store failure does not panic or propagate", func(t *testing.T) {
		store := new(mocks.MockNotificationRepository)
		n := notification.NewStoreNotifier(store, newTestLogger(t))
		booking := testBooking()

		store.On("CreateNotification", ctx, mock.AnythingOfType("*models.Notification")).
			Return(assert.AnError)

		assert.NotPanics(t, func() { n.FlightCancelled(ctx, booking) })
	})

	t.Run("reschedule options list the offered times", func(t *testing.T) {
		store := new(mocks.MockNotificationRepository)
		n := notification.NewStoreNotifier(store, newTestLogger(t))
		booking := testBooking()

		options := []models.RescheduleOption{
			{Timestamp: "2026-04-03T14:00:00Z", Priority: 1, Confidence: 0.9},
			{Timestamp: "2026-04-04T16:00:00Z", Priority: 2, Confidence: 0.7},
			{Timestamp: "2026-04-05T10:00:00Z", Priority: 3, Confidence: 0.6},
		}
		store.On("CreateNotification", ctx, mock.AnythingOfType("*models.Notification")).
			Run(func(args mock.Arguments) {
				row := args.Get(1).(*models.Notification)
				assert.Equal(t, models.NotifyRescheduleOptions, row.Kind)
				for _, opt := range options {
					assert.Contains(t, row.Body, opt.Timestamp)
				}
			}).
			Return(nil)

		n.RescheduleOptionsReady(ctx, booking, options)

		store.AssertNumberOfCalls(t, "CreateNotification", 1)
	})
}
