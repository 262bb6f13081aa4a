package service

import (
	"context"
	"fmt"
	"time"

	models "flightguard/internal"
	"flightguard/internal/ports"

	"github.com/google/uuid"
)

const (
	slotStartHour = 8
	slotEndHour   = 18
	slotStepHours = 2
	slotDays      = 7
)

type availabilityService struct {
	repo  ports.BookingRepository
	loc   *time.Location
	nowFn func() time.Time
}

type AvailabilityOption func(*availabilityService)

// WithTimeZone sets the local zone the slot grid is anchored to.
func WithTimeZone(loc *time.Location) AvailabilityOption {
	return func(s *availabilityService) { s.loc = loc }
}

// WithClock overrides the time source; used by tests.
func WithClock(nowFn func() time.Time) AvailabilityOption {
	return func(s *availabilityService) { s.nowFn = nowFn }
}

func NewAvailabilityService(repo ports.BookingRepository, opts ...AvailabilityOption) *availabilityService {
	s := &availabilityService{
		repo:  repo,
		loc:   time.Local,
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *availabilityService) IsResourceAvailable(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error) {
	occupied, err := s.repo.HasOverlap(ctx, kind, resourceID, at, at.Add(models.OccupancyWindow), exclude)
	if err != nil {
		return false, fmt.Errorf("checking %s availability: %w", kind, err)
	}
	return !occupied, nil
}

// CheckSlot verifies each resource independently so the returned conflict
// names the one actually contended. A nil student id skips the student check.
func (s *availabilityService) CheckSlot(ctx context.Context, instructorID, aircraftID, studentID uuid.UUID, at time.Time, exclude uuid.UUID) error {
	checks := []struct {
		kind models.ResourceKind
		id   uuid.UUID
	}{
		{models.ResourceInstructor, instructorID},
		{models.ResourceAircraft, aircraftID},
		{models.ResourceStudent, studentID},
	}
	for _, check := range checks {
		if check.id == uuid.Nil {
			continue
		}
		available, err := s.IsResourceAvailable(ctx, check.kind, check.id, at, exclude)
		if err != nil {
			return err
		}
		if !available {
			return models.NewResourceConflictError(check.kind)
		}
	}
	return nil
}

// GenerateWeeklySlots enumerates the 08:00-18:00 local grid in two-hour steps
// for the next seven days, skipping instants already in the past, and returns
// the slots where every supplied resource is free. Given the same active
// bookings the sequence is identical and chronologically ordered.
func (s *availabilityService) GenerateWeeklySlots(ctx context.Context, instructorID, aircraftID, studentID uuid.UUID, exclude uuid.UUID) ([]models.TimeSlot, error) {
	now := s.nowFn().In(s.loc)
	var open []models.TimeSlot

	for day := 0; day < slotDays; day++ {
		date := now.AddDate(0, 0, day)
		for hour := slotStartHour; hour <= slotEndHour; hour += slotStepHours {
			at := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, s.loc)
			if !at.After(now) {
				continue
			}

			slot := models.TimeSlot{Time: at, Available: true}
			if err := s.CheckSlot(ctx, instructorID, aircraftID, studentID, at, exclude); err != nil {
				if models.IsKind(err, models.KindConflict) {
					slot.Available = false
					slot.Reason = err.Error()
				} else {
					return nil, err
				}
			}
			if slot.Available {
				open = append(open, slot)
			}
		}
	}
	return open, nil
}
