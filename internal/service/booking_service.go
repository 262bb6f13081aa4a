package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	models "flightguard/internal"
	"flightguard/internal/cache"
	"flightguard/internal/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type bookingService struct {
	bookings     ports.BookingRepository
	students     ports.StudentRepository
	checks       ports.WeatherCheckRepository
	hours        ports.HoursRepository
	availability ports.AvailabilityService
	safety       ports.SafetyService
	ranker       ports.AdvisoryRanker
	notifier     ports.Notifier
	briefings    *cache.BriefingCache
	nowFn        func() time.Time
}

func NewBookingService(
	bookings ports.BookingRepository,
	students ports.StudentRepository,
	checks ports.WeatherCheckRepository,
	hours ports.HoursRepository,
	availability ports.AvailabilityService,
	safety ports.SafetyService,
	ranker ports.AdvisoryRanker,
	notifier ports.Notifier,
	briefings *cache.BriefingCache,
) *bookingService {
	return &bookingService{
		bookings:     bookings,
		students:     students,
		checks:       checks,
		hours:        hours,
		availability: availability,
		safety:       safety,
		ranker:       ranker,
		notifier:     notifier,
		briefings:    briefings,
		nowFn:        time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if _, err := s.students.GetStudentByID(ctx, req.StudentID); err != nil {
		return nil, err
	}
	if !req.ScheduledAt.After(s.nowFn()) {
		return nil, models.NewValidationError("scheduled date must be in the future")
	}

	if err := s.availability.CheckSlot(ctx, req.InstructorID, req.AircraftID, req.StudentID, req.ScheduledAt, uuid.Nil); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:             uuid.New(),
		StudentID:      req.StudentID,
		InstructorID:   req.InstructorID,
		AircraftID:     req.AircraftID,
		ScheduledAt:    req.ScheduledAt,
		Departure:      req.Departure,
		Destination:    req.Destination,
		FlightType:     req.FlightType,
		Status:         models.StatusConfirmed,
		Notes:          req.Notes,
		Version:        1,
		CreatedBy:      req.RequestedBy,
		LastModifiedBy: req.RequestedBy,
	}

	hist := historyEntry(booking.ID, models.ActionCreated, req.RequestedBy, nil, booking, "Booking created")
	saved, err := s.bookings.CreateBooking(ctx, booking, hist)
	if err != nil {
		return nil, err
	}

	s.notifier.FlightConfirmed(ctx, saved)
	return saved, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.bookings.GetBookingByID(ctx, id)
}

func (s *bookingService) AllBookings(ctx context.Context, req models.GetBookingsRequest) (*models.AllBookingsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	bookings, nextCursor, err := s.bookings.GetBookingsPaginated(ctx, req.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	return &models.AllBookingsResponse{Bookings: bookings, Limit: limit, Cursor: nextCursor}, nil
}

// UpdateBooking applies field changes from CONFIRMED or WEATHER_HOLD only.
// A date change re-validates future-dating and re-runs the triple-resource
// conflict check, excluding this booking's own window.
func (s *bookingService) UpdateBooking(ctx context.Context, id uuid.UUID, upd *models.BookingUpdate) (*models.Booking, error) {
	booking, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, models.NewInvalidStateError("cannot update a booking in status %s", booking.Status)
	}

	before := snapshot(booking)

	if upd.ScheduledAt != nil && !upd.ScheduledAt.Equal(booking.ScheduledAt) {
		if !upd.ScheduledAt.After(s.nowFn()) {
			return nil, models.NewValidationError("scheduled date must be in the future")
		}
		if err := s.availability.CheckSlot(ctx, booking.InstructorID, booking.AircraftID, booking.StudentID, *upd.ScheduledAt, booking.ID); err != nil {
			return nil, err
		}
		booking.ScheduledAt = *upd.ScheduledAt
	}
	if upd.FlightType != nil {
		booking.FlightType = *upd.FlightType
	}
	if upd.Notes != nil {
		booking.Notes = *upd.Notes
	}
	booking.LastModifiedBy = upd.ModifiedBy

	hist := historyEntryRaw(booking.ID, models.ActionUpdated, upd.ModifiedBy, before, snapshot(booking), "Booking updated")
	if err := s.bookings.UpdateBooking(ctx, booking, upd.ExpectedVersion, hist); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string) (*models.Booking, error) {
	booking, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.StatusCancelled {
		return nil, models.NewConflictError("booking is already cancelled")
	}
	if booking.Status == models.StatusCompleted {
		return nil, models.NewInvalidStateError("a completed flight cannot be cancelled")
	}

	before := snapshot(booking)
	booking.Status = models.StatusCancelled
	booking.LastModifiedBy = actor

	hist := historyEntryRaw(booking.ID, models.ActionCancelled, actor, before, snapshot(booking), "Booking cancelled")
	if err := s.bookings.UpdateBooking(ctx, booking, expectedVersion, hist); err != nil {
		return nil, err
	}

	s.notifier.FlightCancelled(ctx, booking)
	return booking, nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string, hours decimal.Decimal) (*models.Booking, error) {
	booking, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsActive() {
		return nil, models.NewInvalidStateError("cannot complete a booking in status %s", booking.Status)
	}
	if hours.LessThanOrEqual(decimal.Zero) {
		return nil, models.NewValidationError("logged hours must be positive")
	}

	before := snapshot(booking)
	booking.Status = models.StatusCompleted
	booking.LastModifiedBy = actor

	hist := historyEntryRaw(booking.ID, models.ActionCompleted, actor, before, snapshot(booking), "Flight completed")
	if err := s.bookings.UpdateBooking(ctx, booking, expectedVersion, hist); err != nil {
		return nil, err
	}

	entry := &models.FlightHoursEntry{
		StudentID: booking.StudentID,
		BookingID: booking.ID,
		Hours:     hours,
		LoggedAt:  s.nowFn().UTC(),
	}
	if err := s.hours.LogHours(ctx, entry); err != nil {
		return nil, fmt.Errorf("logging flight hours: %w", err)
	}
	return booking, nil
}

// RunWeatherCheck is the single re-evaluation path used by both the periodic
// monitor and manual checks: evaluate, append to the check log, invalidate
// cached briefings for the departure location, apply the verdict.
func (s *bookingService) RunWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error) {
	result, err := s.safety.CheckBookingSafety(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	check := &models.WeatherCheck{
		BookingID:  booking.ID,
		Conditions: result.Conditions,
		IsSafe:     result.IsSafe,
		Reason:     result.Reason,
		CreatedAt:  result.CheckedAt,
	}
	if err := s.checks.AppendWeatherCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("appending weather check: %w", err)
	}

	s.briefings.Invalidate(booking.Departure.Name)

	if err := s.applyWeatherVerdict(ctx, booking, result); err != nil {
		return nil, err
	}
	return result, nil
}

// applyWeatherVerdict drives the CONFIRMED <-> WEATHER_HOLD pair. All other
// (status, verdict) combinations are deliberate no-ops: a holding booking
// that is still unsafe already reflects the risk, and terminal bookings do
// not move.
func (s *bookingService) applyWeatherVerdict(ctx context.Context, booking *models.Booking, result *models.WeatherCheckResult) error {
	switch {
	case !result.IsSafe && booking.Status == models.StatusConfirmed:
		before := snapshot(booking)
		booking.Status = models.StatusWeatherHold
		booking.LastModifiedBy = "weather-monitor"

		hist := historyEntryRaw(booking.ID, models.ActionStatusChanged, "weather-monitor",
			before, snapshot(booking), "Weather hold: "+result.Reason)
		if err := s.bookings.UpdateBooking(ctx, booking, booking.Version, hist); err != nil {
			return err
		}
		s.notifier.WeatherAlert(ctx, booking, result.Reason)

	case result.IsSafe && booking.Status == models.StatusWeatherHold:
		before := snapshot(booking)
		booking.Status = models.StatusConfirmed
		booking.LastModifiedBy = "weather-monitor"

		hist := historyEntryRaw(booking.ID, models.ActionStatusChanged, "weather-monitor",
			before, snapshot(booking), "Weather cleared, booking confirmed")
		if err := s.bookings.UpdateBooking(ctx, booking, booking.Version, hist); err != nil {
			return err
		}
	}
	return nil
}

func (s *bookingService) RescheduleOptions(ctx context.Context, bookingID uuid.UUID) ([]models.RescheduleOption, error) {
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsActive() {
		return nil, models.NewInvalidStateError("only active bookings can be rescheduled")
	}
	student, err := s.students.GetStudentByID(ctx, booking.StudentID)
	if err != nil {
		return nil, err
	}

	var conflictReason string
	if latest, err := s.checks.LatestWeatherCheck(ctx, booking.ID); err == nil && !latest.IsSafe {
		conflictReason = latest.Reason
	}

	slots, err := s.availability.GenerateWeeklySlots(ctx, booking.InstructorID, booking.AircraftID, booking.StudentID, booking.ID)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, models.NewNotFoundError("no open slots available in the next seven days")
	}

	bundle := models.RescheduleContext{
		Booking:        *booking,
		Student:        *student,
		ConflictReason: conflictReason,
		OpenSlots:      slots,
		Preferences:    student.Availability,
	}
	options, err := s.ranker.Rank(ctx, bundle)
	if err != nil {
		return nil, err
	}

	s.notifier.RescheduleOptionsReady(ctx, booking, options)
	return options, nil
}

// ConfirmReschedule atomically cancels the original booking, creates the
// successor at the selected time, and links the two with a reschedule event.
// The slot is re-verified here because the offered list may be stale.
func (s *bookingService) ConfirmReschedule(ctx context.Context, req *models.RescheduleConfirmRequest) (*models.Booking, error) {
	original, err := s.bookings.GetBookingByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if original.Status == models.StatusCancelled {
		return nil, models.NewConflictError("booking is already cancelled")
	}
	if !original.Status.IsActive() {
		return nil, models.NewInvalidStateError("only active bookings can be rescheduled")
	}

	if err := s.availability.CheckSlot(ctx, original.InstructorID, original.AircraftID, original.StudentID, req.SelectedTime, original.ID); err != nil {
		return nil, err
	}

	now := s.nowFn().UTC()
	lineage := fmt.Sprintf("Rescheduled from flight originally scheduled %s",
		original.ScheduledAt.UTC().Format(time.RFC3339))

	successor := &models.Booking{
		ID:             uuid.New(),
		StudentID:      original.StudentID,
		InstructorID:   original.InstructorID,
		AircraftID:     original.AircraftID,
		ScheduledAt:    req.SelectedTime,
		Departure:      original.Departure,
		Destination:    original.Destination,
		FlightType:     original.FlightType,
		Status:         models.StatusConfirmed,
		Notes:          strings.TrimSpace(original.Notes + "\n" + lineage),
		Version:        1,
		CreatedBy:      req.ConfirmedBy,
		LastModifiedBy: req.ConfirmedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	beforeOriginal := snapshot(original)
	original.Status = models.StatusCancelled
	original.LastModifiedBy = req.ConfirmedBy

	event := &models.RescheduleEvent{
		ID:               uuid.New(),
		OriginalID:       original.ID,
		SuggestedOptions: req.Options,
		SelectedOption:   req.SelectedTime.UTC().Format(time.RFC3339),
		Status:           models.RescheduleConfirmed,
		NewBookingID:     &successor.ID,
		ConfirmedAt:      &now,
		CreatedAt:        now,
	}

	hists := []models.FlightHistory{
		*historyEntryRaw(original.ID, models.ActionRescheduled, req.ConfirmedBy,
			beforeOriginal, snapshot(original),
			fmt.Sprintf("Cancelled in favor of rescheduled booking %s", successor.ID)),
		*historyEntry(successor.ID, models.ActionCreated, req.ConfirmedBy, nil, successor,
			fmt.Sprintf("Created by reschedule of booking %s", original.ID)),
	}

	if err := s.bookings.Reschedule(ctx, original, req.ExpectedVersion, successor, event, hists); err != nil {
		return nil, err
	}

	s.notifier.RescheduleConfirmed(ctx, original, successor)
	return successor, nil
}

func snapshot(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func historyEntry(bookingID uuid.UUID, action models.HistoryAction, actor string, before []byte, after interface{}, note string) *models.FlightHistory {
	return historyEntryRaw(bookingID, action, actor, before, snapshot(after), note)
}

func historyEntryRaw(bookingID uuid.UUID, action models.HistoryAction, actor string, before, after []byte, note string) *models.FlightHistory {
	return &models.FlightHistory{
		ID:        uuid.New(),
		BookingID: bookingID,
		Action:    action,
		ActorID:   actor,
		Before:    before,
		After:     after,
		Note:      note,
	}
}
