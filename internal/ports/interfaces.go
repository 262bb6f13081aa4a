package ports

import (
	"context"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingRepository interface {
	// CreateBooking persists the booking and its CREATED audit row in one
	// transaction, re-checking resource overlap inside the transaction so
	// two concurrent creations cannot both pass the service-level check.
	CreateBooking(ctx context.Context, booking *models.Booking, hist *models.FlightHistory) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetBookingsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Booking, string, error)
	// UpdateBooking applies the new field values only if the stored version
	// equals expectedVersion, bumping the version and writing the audit row
	// atomically. A version mismatch is a Conflict.
	UpdateBooking(ctx context.Context, booking *models.Booking, expectedVersion int64, hist *models.FlightHistory) error
	// HasOverlap reports whether any active booking of the resource overlaps
	// [start, end), excluding the given booking id (uuid.Nil to exclude none).
	HasOverlap(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	// Reschedule cancels the original, inserts the successor, links them with
	// a reschedule event, and writes both audit rows, all or nothing.
	Reschedule(ctx context.Context, original *models.Booking, expectedVersion int64, successor *models.Booking, event *models.RescheduleEvent, hists []models.FlightHistory) error
}

type StudentRepository interface {
	GetStudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
}

type WeatherCheckRepository interface {
	AppendWeatherCheck(ctx context.Context, check *models.WeatherCheck) error
	LatestWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheck, error)
	ListWeatherChecks(ctx context.Context, bookingID uuid.UUID) ([]models.WeatherCheck, error)
}

type AuditRepository interface {
	AppendHistory(ctx context.Context, entry *models.FlightHistory) error
	ListHistory(ctx context.Context, bookingID uuid.UUID) ([]models.FlightHistory, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type HoursRepository interface {
	LogHours(ctx context.Context, entry *models.FlightHoursEntry) error
	TotalHours(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error)
}

type WeatherProvider interface {
	FetchCurrent(ctx context.Context, loc models.Location) (models.WeatherConditions, error)
}

type AdvisoryRanker interface {
	// Rank returns exactly three prioritized options or an external error.
	Rank(ctx context.Context, bundle models.RescheduleContext) ([]models.RescheduleOption, error)
}

type BriefingGenerator interface {
	GenerateBriefing(ctx context.Context, loc models.Location, at time.Time, level models.TrainingLevel, conditions models.WeatherConditions) (string, error)
}

// Notifier delivers one semantic event per method so each event's required
// fields are enforced by the signature. Delivery is fire and forget.
type Notifier interface {
	FlightConfirmed(ctx context.Context, booking *models.Booking)
	WeatherAlert(ctx context.Context, booking *models.Booking, reason string)
	RescheduleOptionsReady(ctx context.Context, booking *models.Booking, options []models.RescheduleOption)
	RescheduleConfirmed(ctx context.Context, original, successor *models.Booking)
	FlightCancelled(ctx context.Context, booking *models.Booking)
}

type AvailabilityService interface {
	IsResourceAvailable(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error)
	// CheckSlot verifies instructor, aircraft and (if non-nil) student are all
	// free at the instant; the returned Conflict names the contended resource.
	CheckSlot(ctx context.Context, instructorID, aircraftID, studentID uuid.UUID, at time.Time, exclude uuid.UUID) error
	GenerateWeeklySlots(ctx context.Context, instructorID, aircraftID, studentID uuid.UUID, exclude uuid.UUID) ([]models.TimeSlot, error)
}

type SafetyService interface {
	CheckBookingSafety(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error)
	CheckLocationSafety(ctx context.Context, loc models.Location, level models.TrainingLevel) (*models.WeatherCheckResult, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	AllBookings(ctx context.Context, req models.GetBookingsRequest) (*models.AllBookingsResponse, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, upd *models.BookingUpdate) (*models.Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string, hours decimal.Decimal) (*models.Booking, error)
	// RunWeatherCheck evaluates current weather for the booking, appends a
	// WeatherCheck record, invalidates cached briefings for the departure
	// location, and applies the verdict to the status machine.
	RunWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error)
	RescheduleOptions(ctx context.Context, bookingID uuid.UUID) ([]models.RescheduleOption, error)
	ConfirmReschedule(ctx context.Context, req *models.RescheduleConfirmRequest) (*models.Booking, error)
}

type BriefingService interface {
	GetBriefing(ctx context.Context, loc models.Location, at time.Time, level models.TrainingLevel) (string, error)
}
