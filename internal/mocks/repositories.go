package mocks

import (
	"context"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateBooking(ctx context.Context, booking *models.Booking, hist *models.FlightHistory) (*models.Booking, error) {
	args := m.Called(ctx, booking, hist)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Booking, string, error) {
	args := m.Called(ctx, afterCursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]models.Booking), args.String(1), args.Error(2)
}

func (m *MockBookingRepository) UpdateBooking(ctx context.Context, booking *models.Booking, expectedVersion int64, hist *models.FlightHistory) error {
	args := m.Called(ctx, booking, expectedVersion, hist)
	return args.Error(0)
}

func (m *MockBookingRepository) HasOverlap(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, resourceID, start, end, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepository) Reschedule(ctx context.Context, original *models.Booking, expectedVersion int64, successor *models.Booking, event *models.RescheduleEvent, hists []models.FlightHistory) error {
	args := m.Called(ctx, original, expectedVersion, successor, event, hists)
	return args.Error(0)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) GetStudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

type MockWeatherCheckRepository struct {
	mock.Mock
}

func (m *MockWeatherCheckRepository) AppendWeatherCheck(ctx context.Context, check *models.WeatherCheck) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *MockWeatherCheckRepository) LatestWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheck, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherCheck), args.Error(1)
}

func (m *MockWeatherCheckRepository) ListWeatherChecks(ctx context.Context, bookingID uuid.UUID) ([]models.WeatherCheck, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WeatherCheck), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) AppendHistory(ctx context.Context, entry *models.FlightHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListHistory(ctx context.Context, bookingID uuid.UUID) ([]models.FlightHistory, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightHistory), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockHoursRepository struct {
	mock.Mock
}

func (m *MockHoursRepository) LogHours(ctx context.Context, entry *models.FlightHoursEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHoursRepository) TotalHours(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
