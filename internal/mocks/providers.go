package mocks

import (
	"context"
	"time"

	models "flightguard/internal"

	"github.com/stretchr/testify/mock"
)

type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) FetchCurrent(ctx context.Context, loc models.Location) (models.WeatherConditions, error) {
	args := m.Called(ctx, loc)
	return args.Get(0).(models.WeatherConditions), args.Error(1)
}

type MockAdvisoryRanker struct {
	mock.Mock
}

func (m *MockAdvisoryRanker) Rank(ctx context.Context, bundle models.RescheduleContext) ([]models.RescheduleOption, error) {
	args := m.Called(ctx, bundle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RescheduleOption), args.Error(1)
}

type MockBriefingGenerator struct {
	mock.Mock
}

func (m *MockBriefingGenerator) GenerateBriefing(ctx context.Context, loc models.Location, at time.Time, level models.TrainingLevel, conditions models.WeatherConditions) (string, error) {
	args := m.Called(ctx, loc, at, level, conditions)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) FlightConfirmed(ctx context.Context, booking *models.Booking) {
	m.Called(ctx, booking)
}

func (m *MockNotifier) WeatherAlert(ctx context.Context, booking *models.Booking, reason string) {
	m.Called(ctx, booking, reason)
}

func (m *MockNotifier) RescheduleOptionsReady(ctx context.Context, booking *models.Booking, options []models.RescheduleOption) {
	m.Called(ctx, booking, options)
}

func (m *MockNotifier) RescheduleConfirmed(ctx context.Context, original, successor *models.Booking) {
	m.Called(ctx, original, successor)
}

func (m *MockNotifier) FlightCancelled(ctx context.Context, booking *models.Booking) {
	m.Called(ctx, booking)
}
