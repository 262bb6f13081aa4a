// Package notification records delivery-ready notification rows for the
// people on a booking. Delivery itself (email, SMS) is a downstream concern;
// this layer guarantees the row exists and never fails the calling operation.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	models "flightguard/internal"
	"flightguard/internal/ports"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/logger"
)

const timeLayout = "Jan 2 2006 15:04 MST"

type StoreNotifier struct {
	store  ports.NotificationRepository
	logger logger.Logger
}

func NewStoreNotifier(store ports.NotificationRepository, logger logger.Logger) *StoreNotifier {
	return &StoreNotifier{store: store, logger: logger}
}

func (n *StoreNotifier) FlightConfirmed(ctx context.Context, booking *models.Booking) {
	body := fmt.Sprintf(
		"Your flight from %s on %s is confirmed.",
		booking.Departure.Name, booking.ScheduledAt.UTC().Format(timeLayout),
	)
	n.record(ctx, booking.StudentID, models.NotifyFlightConfirmed, "Flight confirmed", body)
}

// WeatherAlert goes to both participants: the student plans around it, the
// instructor decides whether to pursue a reschedule.
func (n *StoreNotifier) WeatherAlert(ctx context.Context, booking *models.Booking, reason string) {
	body := fmt.Sprintf(
		"Your flight on %s is on weather hold: %s",
		booking.ScheduledAt.UTC().Format(timeLayout), reason,
	)
	n.record(ctx, booking.StudentID, models.NotifyWeatherAlert, "Weather hold", body)
	n.record(ctx, booking.InstructorID, models.NotifyWeatherAlert, "Weather hold", body)
}

func (n *StoreNotifier) RescheduleOptionsReady(ctx context.Context, booking *models.Booking, options []models.RescheduleOption) {
	times := make([]string, 0, len(options))
	for _, opt := range options {
		times = append(times, opt.Timestamp)
	}
	body := fmt.Sprintf(
		"Reschedule options are ready for your flight on %s: %s",
		booking.ScheduledAt.UTC().Format(timeLayout), strings.Join(times, ", "),
	)
	n.record(ctx, booking.StudentID, models.NotifyRescheduleOptions, "Reschedule options ready", body)
}

func (n *StoreNotifier) RescheduleConfirmed(ctx context.Context, original, successor *models.Booking) {
	body := fmt.Sprintf(
		"Your flight has been rescheduled from %s to %s.",
		original.ScheduledAt.UTC().Format(timeLayout),
		successor.ScheduledAt.UTC().Format(timeLayout),
	)
	n.record(ctx, successor.StudentID, models.NotifyRescheduleConfirmed, "Flight rescheduled", body)
	n.record(ctx, successor.InstructorID, models.NotifyRescheduleConfirmed, "Flight rescheduled", body)
}

func (n *StoreNotifier) FlightCancelled(ctx context.Context, booking *models.Booking) {
	body := fmt.Sprintf(
		"Your flight on %s has been cancelled.",
		booking.ScheduledAt.UTC().Format(timeLayout),
	)
	n.record(ctx, booking.StudentID, models.NotifyFlightCancelled, "Flight cancelled", body)
	n.record(ctx, booking.InstructorID, models.NotifyFlightCancelled, "Flight cancelled", body)
}

func (n *StoreNotifier) record(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, subject, body string) {
	row := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.store.CreateNotification(ctx, row); err != nil {
		n.logger.Error("failed to record notification",
			logger.String("kind", string(kind)),
			logger.String("user_id", userID.String()),
			logger.String("error", err.Error()),
		)
		return
	}
	n.logger.Debug("notification recorded",
		logger.String("kind", string(kind)),
		logger.String("user_id", userID.String()),
	)
}
