package mocks

import (
	"context"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) IsResourceAvailable(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, resourceID, at, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockAvailabilityService) CheckSlot(ctx context.Context, instructorID, aircraftID, studentID uuid.UUID, at time.Time, exclude uuid.UUID) error {
	args := m.Called(ctx, instructorID, aircraftID, studentID, at, exclude)
	return args.Error(0)
}

func (m *MockAvailabilityService) GenerateWeeklySlots(ctx context.Context, instructorID, aircraftID, studentID uuid.UUID, exclude uuid.UUID) ([]models.TimeSlot, error) {
	args := m.Called(ctx, instructorID, aircraftID, studentID, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimeSlot), args.Error(1)
}

type MockSafetyService struct {
	mock.Mock
}

func (m *MockSafetyService) CheckBookingSafety(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherCheckResult), args.Error(1)
}

func (m *MockSafetyService) CheckLocationSafety(ctx context.Context, loc models.Location, level models.TrainingLevel) (*models.WeatherCheckResult, error) {
	args := m.Called(ctx, loc, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherCheckResult), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) AllBookings(ctx context.Context, req models.GetBookingsRequest) (*models.AllBookingsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllBookingsResponse), args.Error(1)
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, id uuid.UUID, upd *models.BookingUpdate) (*models.Booking, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string) (*models.Booking, error) {
	args := m.Called(ctx, id, expectedVersion, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string, hours decimal.Decimal) (*models.Booking, error) {
	args := m.Called(ctx, id, expectedVersion, actor, hours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) RunWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherCheckResult), args.Error(1)
}

func (m *MockBookingService) RescheduleOptions(ctx context.Context, bookingID uuid.UUID) ([]models.RescheduleOption, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RescheduleOption), args.Error(1)
}

func (m *MockBookingService) ConfirmReschedule(ctx context.Context, req *models.RescheduleConfirmRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockBriefingService struct {
	mock.Mock
}

func (m *MockBriefingService) GetBriefing(ctx context.Context, loc models.Location, at time.Time, level models.TrainingLevel) (string, error) {
	args := m.Called(ctx, loc, at, level)
	return args.String(0), args.Error(1)
}
