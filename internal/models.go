package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TrainingLevel string

const (
	LevelStudentPilot    TrainingLevel = "STUDENT_PILOT"
	LevelPrivatePilot    TrainingLevel = "PRIVATE_PILOT"
	LevelInstrumentRated TrainingLevel = "INSTRUMENT_RATED"
)

type BookingStatus string

const (
	StatusConfirmed   BookingStatus = "CONFIRMED"
	StatusWeatherHold BookingStatus = "WEATHER_HOLD"
	StatusCancelled   BookingStatus = "CANCELLED"
	StatusCompleted   BookingStatus = "COMPLETED"
)

// IsActive reports whether the booking still occupies its resources.
func (s BookingStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusWeatherHold
}

// IsTerminal reports whether no further transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type ResourceKind string

const (
	ResourceInstructor ResourceKind = "instructor"
	ResourceAircraft   ResourceKind = "aircraft"
	ResourceStudent    ResourceKind = "student"
)

// OccupancyWindow is how long a booked slot blocks its three resources.
const OccupancyWindow = 2 * time.Hour

type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherConditions is an immutable observation snapshot. Optional fields are
// pointers; a nil Ceiling means no significant cloud base was reported.
type WeatherConditions struct {
	VisibilityMiles float64  `json:"visibility_miles"`
	CeilingFeet     *float64 `json:"ceiling_feet,omitempty"`
	WindSpeedKnots  float64  `json:"wind_speed_knots"`
	WindDirection   *float64 `json:"wind_direction,omitempty"`
	TemperatureF    float64  `json:"temperature_f"`
	HumidityPct     float64  `json:"humidity_pct"`
	Precipitation   bool     `json:"precipitation"`
	Thunderstorms   bool     `json:"thunderstorms"`
	Icing           bool     `json:"icing"`
	CloudCoverPct   *float64 `json:"cloud_cover_pct,omitempty"`
	Description     string   `json:"description,omitempty"`
	ObservedAt      time.Time `json:"observed_at"`
}

type AvailabilityPrefs struct {
	PreferredDays  []string `json:"preferred_days,omitempty"`
	PreferredTimes []string `json:"preferred_times,omitempty"`
}

type Student struct {
	ID            uuid.UUID         `json:"id"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Email         string            `json:"email"`
	TrainingLevel TrainingLevel     `json:"training_level"`
	Availability  AvailabilityPrefs `json:"availability"`
}

type Booking struct {
	ID             uuid.UUID     `json:"id"`
	StudentID      uuid.UUID     `json:"student_id"`
	InstructorID   uuid.UUID     `json:"instructor_id"`
	AircraftID     uuid.UUID     `json:"aircraft_id"`
	ScheduledAt    time.Time     `json:"scheduled_at"`
	Departure      Location      `json:"departure"`
	Destination    *Location     `json:"destination,omitempty"`
	FlightType     string        `json:"flight_type"`
	Status         BookingStatus `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	Version        int64         `json:"version"`
	CreatedBy      string        `json:"created_by"`
	LastModifiedBy string        `json:"last_modified_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Window returns the booking's occupancy window [start, end).
func (b *Booking) Window() (time.Time, time.Time) {
	return b.ScheduledAt, b.ScheduledAt.Add(OccupancyWindow)
}

type BookingRequest struct {
	StudentID    uuid.UUID `json:"student_id" validate:"required"`
	InstructorID uuid.UUID `json:"instructor_id" validate:"required"`
	AircraftID   uuid.UUID `json:"aircraft_id" validate:"required"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required,future_date"`
	Departure    Location  `json:"departure" validate:"required"`
	Destination  *Location `json:"destination,omitempty"`
	FlightType   string    `json:"flight_type" validate:"required,flight_type"`
	Notes        string    `json:"notes" validate:"max=2000"`
	RequestedBy  string    `json:"requested_by" validate:"required"`
}

type BookingUpdate struct {
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	FlightType      *string    `json:"flight_type,omitempty"`
	ExpectedVersion int64      `json:"expected_version" validate:"required,min=1"`
	ModifiedBy      string     `json:"modified_by" validate:"required"`
}

type GetBookingsRequest struct {
	Limit  int
	Cursor string
}

type AllBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Limit    int       `json:"limit"`
	Cursor   string    `json:"cursor"`
}

// WeatherCheck is one entry in a booking's append-only safety log.
type WeatherCheck struct {
	ID         uuid.UUID         `json:"id"`
	BookingID  uuid.UUID         `json:"booking_id"`
	Conditions WeatherConditions `json:"conditions"`
	IsSafe     bool              `json:"is_safe"`
	Reason     string            `json:"reason"`
	CreatedAt  time.Time         `json:"created_at"`
}

// WeatherCheckResult is the engine's verdict for a booking or location. The
// conditions snapshot is always the departure observation; per-location
// detail lives in Violations.
type WeatherCheckResult struct {
	IsSafe     bool              `json:"is_safe"`
	Conditions WeatherConditions `json:"conditions"`
	Violations []string          `json:"violations"`
	Reason     string            `json:"reason"`
	CheckedAt  time.Time         `json:"checked_at"`
}

type TimeSlot struct {
	Time      time.Time `json:"time"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

type RescheduleOption struct {
	Timestamp       string  `json:"timestamp"`
	Priority        int     `json:"priority"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
	ExpectedWeather string  `json:"expected_weather"`
}

type RescheduleStatus string

const (
	ReschedulePending   RescheduleStatus = "PENDING"
	RescheduleConfirmed RescheduleStatus = "CONFIRMED"
)

// RescheduleEvent links an original booking to its successor. It is written
// only at confirmation time, already CONFIRMED; PENDING never hits storage.
type RescheduleEvent struct {
	ID               uuid.UUID          `json:"id"`
	OriginalID       uuid.UUID          `json:"original_booking_id"`
	SuggestedOptions []RescheduleOption `json:"suggested_options"`
	SelectedOption   string             `json:"selected_option"`
	Status           RescheduleStatus   `json:"status"`
	NewBookingID     *uuid.UUID         `json:"new_booking_id,omitempty"`
	ConfirmedAt      *time.Time         `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// RescheduleContext is the bundle handed to the advisory ranker.
type RescheduleContext struct {
	Booking        Booking           `json:"booking"`
	Student        Student           `json:"student"`
	ConflictReason string            `json:"conflict_reason"`
	Violations     []string          `json:"violations"`
	OpenSlots      []TimeSlot        `json:"open_slots"`
	Preferences    AvailabilityPrefs `json:"preferences"`
}

type RescheduleConfirmRequest struct {
	BookingID       uuid.UUID          `json:"booking_id" validate:"required"`
	SelectedTime    time.Time          `json:"selected_time" validate:"required,future_date"`
	Options         []RescheduleOption `json:"options" validate:"required,min=1"`
	ExpectedVersion int64              `json:"expected_version" validate:"required,min=1"`
	ConfirmedBy     string             `json:"confirmed_by" validate:"required"`
}

type HistoryAction string

const (
	ActionCreated       HistoryAction = "CREATED"
	ActionUpdated       HistoryAction = "UPDATED"
	ActionStatusChanged HistoryAction = "STATUS_CHANGED"
	ActionCancelled     HistoryAction = "CANCELLED"
	ActionRescheduled   HistoryAction = "RESCHEDULED"
	ActionCompleted     HistoryAction = "COMPLETED"
)

// FlightHistory is one audit row; every status transition writes exactly one.
type FlightHistory struct {
	ID        uuid.UUID     `json:"id"`
	BookingID uuid.UUID     `json:"booking_id"`
	Action    HistoryAction `json:"action"`
	ActorID   string        `json:"actor_id"`
	Before    []byte        `json:"before,omitempty"`
	After     []byte        `json:"after,omitempty"`
	Note      string        `json:"note,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type NotificationKind string

const (
	NotifyFlightConfirmed     NotificationKind = "FLIGHT_CONFIRMED"
	NotifyWeatherAlert        NotificationKind = "WEATHER_ALERT"
	NotifyRescheduleOptions   NotificationKind = "RESCHEDULE_OPTIONS"
	NotifyRescheduleConfirmed NotificationKind = "RESCHEDULE_CONFIRMED"
	NotifyFlightCancelled     NotificationKind = "FLIGHT_CANCELLED"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
}

// FlightHoursEntry records logged training time. Hours are exact decimals so
// per-student totals never drift.
type FlightHoursEntry struct {
	ID        uuid.UUID       `json:"id"`
	StudentID uuid.UUID       `json:"student_id"`
	BookingID uuid.UUID       `json:"booking_id"`
	Hours     decimal.Decimal `json:"hours"`
	LoggedAt  time.Time       `json:"logged_at"`
}

// MonitorSummary is the outcome of one weather-monitor sweep.
type MonitorSummary struct {
	Considered   int `json:"considered"`
	Completed    int `json:"completed"`
	NewConflicts int `json:"new_conflicts"`
	Errors       int `json:"errors"`
}
