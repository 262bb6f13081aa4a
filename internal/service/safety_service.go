package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	models "flightguard/internal"
	"flightguard/internal/minimums"
	"flightguard/internal/ports"

	"github.com/google/uuid"
)

type safetyService struct {
	bookings ports.BookingRepository
	students ports.StudentRepository
	provider ports.WeatherProvider
	nowFn    func() time.Time
}

func NewSafetyService(bookings ports.BookingRepository, students ports.StudentRepository, provider ports.WeatherProvider) *safetyService {
	return &safetyService{
		bookings: bookings,
		students: students,
		provider: provider,
		nowFn:    time.Now,
	}
}

// CheckBookingSafety evaluates every location on the booking's route against
// the student's minimums. The verdict is safe only if all locations pass.
// The returned conditions snapshot is always the departure observation;
// per-location detail is carried in the violation strings.
func (s *safetyService) CheckBookingSafety(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheckResult, error) {
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	student, err := s.students.GetStudentByID(ctx, booking.StudentID)
	if err != nil {
		return nil, err
	}

	locations := []models.Location{booking.Departure}
	if booking.Destination != nil {
		locations = append(locations, *booking.Destination)
	}

	var representative models.WeatherConditions
	var violations []string
	for i, loc := range locations {
		conditions, err := s.provider.FetchCurrent(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("fetching conditions for %s: %w", loc.Name, err)
		}
		if i == 0 {
			representative = conditions
		}

		eval := minimums.Evaluate(conditions, student.TrainingLevel)
		for _, v := range eval.Violations {
			if len(locations) > 1 {
				v = loc.Name + ": " + v
			}
			violations = append(violations, v)
		}
	}

	return s.result(representative, violations, student.TrainingLevel), nil
}

// CheckLocationSafety is the ad hoc single-location variant with no booking
// context.
func (s *safetyService) CheckLocationSafety(ctx context.Context, loc models.Location, level models.TrainingLevel) (*models.WeatherCheckResult, error) {
	conditions, err := s.provider.FetchCurrent(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("fetching conditions for %s: %w", loc.Name, err)
	}
	eval := minimums.Evaluate(conditions, level)
	return s.result(conditions, eval.Violations, level), nil
}

func (s *safetyService) result(conditions models.WeatherConditions, violations []string, level models.TrainingLevel) *models.WeatherCheckResult {
	reason := fmt.Sprintf("Conditions meet %s minimums", level)
	if len(violations) > 0 {
		reason = strings.Join(violations, "; ")
	}
	return &models.WeatherCheckResult{
		IsSafe:     len(violations) == 0,
		Conditions: conditions,
		Violations: violations,
		Reason:     reason,
		CheckedAt:  s.nowFn().UTC(),
	}
}
