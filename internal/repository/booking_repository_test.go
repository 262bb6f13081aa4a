package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	models "flightguard/internal"
	"flightguard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{
	"id", "student_id", "instructor_id", "aircraft_id", "scheduled_at",
	"departure", "destination", "flight_type", "status", "notes", "version",
	"created_by", "last_modified_by", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *repository.BookingRepository) {
	mockDb, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mockDb, repository.NewBookingRepository(mockDb)
}

func fixtureBooking() *models.Booking {
	return &models.Booking{
		ID:             uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		StudentID:      uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		InstructorID:   uuid.MustParse("00000000-0000-0000-0000-000000000003"),
		AircraftID:     uuid.MustParse("00000000-0000-0000-0000-000000000004"),
		ScheduledAt:    time.Date(2026, 4, 3, 14, 0, 0, 0, time.UTC),
		Departure:      models.Location{Name: "KAUS", Latitude: 30.19, Longitude: -97.67},
		FlightType:     "TRAINING",
		Status:         models.StatusConfirmed,
		Version:        1,
		CreatedBy:      "dispatch",
		LastModifiedBy: "dispatch",
		CreatedAt:      time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC),
	}
}

func fixtureHistory(bookingID uuid.UUID, action models.HistoryAction) *models.FlightHistory {
	return &models.FlightHistory{
		ID:        uuid.New(),
		BookingID: bookingID,
		Action:    action,
		ActorID:   "dispatch",
		Note:      "test entry",
	}
}

func noOverlapRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(false)
}

func lockResult() pgconn.CommandTag {
	return pgxmock.NewResult("SELECT", 1)
}

func TestCreateBooking(t *testing.T) {
	t.Run("inserts booking and audit row in one transaction", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := fixtureBooking()
		hist := fixtureHistory(booking.ID, models.ActionCreated)

		mockDb.ExpectBegin()
		// Advisory locks come first, in sorted id order, before any overlap read.
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(booking.StudentID.String()).
			WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(booking.InstructorID.String()).
			WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(booking.AircraftID.String()).
			WillReturnResult(lockResult())
		mockDb.ExpectQuery("SELECT EXISTS").WillReturnRows(noOverlapRows())
		mockDb.ExpectQuery("SELECT EXISTS").WillReturnRows(noOverlapRows())
		mockDb.ExpectQuery("SELECT EXISTS").WillReturnRows(noOverlapRows())
		mockDb.ExpectExec("INSERT INTO bookings").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectExec("INSERT INTO flight_history").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(context.Background(), booking, hist)

		require.NoError(t, err)
		assert.Equal(t, booking.ID, created.ID)
		assert.Equal(t, models.StatusConfirmed, created.Status)
		assert.Equal(t, int64(1), created.Version)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("occupied instructor aborts before any insert", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := fixtureBooking()
		hist := fixtureHistory(booking.ID, models.ActionCreated)

		mockDb.ExpectBegin()
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectQuery("SELECT EXISTS").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mockDb.ExpectRollback()

		created, err := repo.CreateBooking(context.Background(), booking, hist)

		assert.Nil(t, created)
		assert.True(t, models.IsKind(err, models.KindConflict))
		assert.Contains(t, err.Error(), "Instructor")
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})
}

func TestGetBookingByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := fixtureBooking()
		departure, err := json.Marshal(booking.Departure)
		require.NoError(t, err)

		rows := pgxmock.NewRows(bookingCols).AddRow(
			booking.ID, booking.StudentID, booking.InstructorID, booking.AircraftID, booking.ScheduledAt,
			departure, []byte(nil), booking.FlightType, booking.Status, booking.Notes, booking.Version,
			booking.CreatedBy, booking.LastModifiedBy, booking.CreatedAt, booking.UpdatedAt,
		)
		mockDb.ExpectQuery("SELECT(.+)FROM bookings WHERE id =").
			WithArgs(booking.ID).
			WillReturnRows(rows)

		got, err := repo.GetBookingByID(context.Background(), booking.ID)

		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
		assert.Equal(t, "KAUS", got.Departure.Name)
		assert.Nil(t, got.Destination)
	})

	t.Run("missing booking is a not-found", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		id := uuid.New()
		mockDb.ExpectQuery("SELECT(.+)FROM bookings WHERE id =").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetBookingByID(context.Background(), id)

		assert.Nil(t, got)
		assert.True(t, models.IsKind(err, models.KindNotFound))
	})
}

func TestUpdateBooking(t *testing.T) {
	t.Run("version match applies the update and bumps the version", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := fixtureBooking()
		booking.Version = 3
		hist := fixtureHistory(booking.ID, models.ActionUpdated)

		mockDb.ExpectBegin()
		mockDb.ExpectExec("UPDATE bookings").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockDb.ExpectExec("INSERT INTO flight_history").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		err := repo.UpdateBooking(context.Background(), booking, 3, hist)

		require.NoError(t, err)
		assert.Equal(t, int64(4), booking.Version)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("version mismatch on an existing row is a conflict", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := fixtureBooking()
		hist := fixtureHistory(booking.ID, models.ActionUpdated)

		mockDb.ExpectBegin()
		mockDb.ExpectExec("UPDATE bookings").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockDb.ExpectQuery("SELECT EXISTS").
			WithArgs(booking.ID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mockDb.ExpectRollback()

		err := repo.UpdateBooking(context.Background(), booking, 7, hist)

		assert.True(t, models.IsKind(err, models.KindConflict))
	})

	t.Run("vanished row is a not-found", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := fixtureBooking()
		hist := fixtureHistory(booking.ID, models.ActionUpdated)

		mockDb.ExpectBegin()
		mockDb.ExpectExec("UPDATE bookings").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockDb.ExpectQuery("SELECT EXISTS").
			WithArgs(booking.ID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mockDb.ExpectRollback()

		err := repo.UpdateBooking(context.Background(), booking, 1, hist)

		assert.True(t, models.IsKind(err, models.KindNotFound))
	})
}

func TestHasOverlap(t *testing.T) {
	mockDb, repo := setupMockDB(t)
	defer mockDb.Close()

	instructorID := uuid.New()
	start := time.Date(2026, 4, 3, 14, 0, 0, 0, time.UTC)

	mockDb.ExpectQuery("SELECT EXISTS").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	occupied, err := repo.HasOverlap(context.Background(),
		models.ResourceInstructor, instructorID, start, start.Add(2*time.Hour), uuid.Nil)

	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestReschedule(t *testing.T) {
	t.Run("cancel, re-check, insert and link atomically", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		original := fixtureBooking()
		original.Status = models.StatusCancelled
		successor := fixtureBooking()
		successor.ID = uuid.New()
		successor.ScheduledAt = original.ScheduledAt.Add(48 * time.Hour)

		now := time.Now().UTC()
		event := &models.RescheduleEvent{
			OriginalID:     original.ID,
			SelectedOption: successor.ScheduledAt.Format(time.RFC3339),
			Status:         models.RescheduleConfirmed,
			NewBookingID:   &successor.ID,
			ConfirmedAt:    &now,
			CreatedAt:      now,
		}
		hists := []models.FlightHistory{
			*fixtureHistory(original.ID, models.ActionRescheduled),
			*fixtureHistory(successor.ID, models.ActionCreated),
		}

		mockDb.ExpectBegin()
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("UPDATE bookings").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockDb.ExpectQuery("SELECT EXISTS").WillReturnRows(noOverlapRows())
		mockDb.ExpectQuery("SELECT EXISTS").WillReturnRows(noOverlapRows())
		mockDb.ExpectQuery("SELECT EXISTS").WillReturnRows(noOverlapRows())
		mockDb.ExpectExec("INSERT INTO bookings").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectExec("INSERT INTO reschedule_events").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectExec("INSERT INTO flight_history").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectExec("INSERT INTO flight_history").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		err := repo.Reschedule(context.Background(), original, 1, successor, event, hists)

		require.NoError(t, err)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("stale successor slot rolls everything back", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		original := fixtureBooking()
		original.Status = models.StatusCancelled
		successor := fixtureBooking()
		successor.ID = uuid.New()

		mockDb.ExpectBegin()
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(lockResult())
		mockDb.ExpectExec("UPDATE bookings").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockDb.ExpectQuery("SELECT EXISTS").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mockDb.ExpectRollback()

		err := repo.Reschedule(context.Background(), original, 1, successor,
			&models.RescheduleEvent{}, nil)

		assert.True(t, models.IsKind(err, models.KindConflict))
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})
}

func TestListActiveBetween(t *testing.T) {
	mockDb, repo := setupMockDB(t)
	defer mockDb.Close()

	booking := fixtureBooking()
	departure, err := json.Marshal(booking.Departure)
	require.NoError(t, err)

	from := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	rows := pgxmock.NewRows(bookingCols).AddRow(
		booking.ID, booking.StudentID, booking.InstructorID, booking.AircraftID, booking.ScheduledAt,
		departure, []byte(nil), booking.FlightType, booking.Status, booking.Notes, booking.Version,
		booking.CreatedBy, booking.LastModifiedBy, booking.CreatedAt, booking.UpdatedAt,
	)
	mockDb.ExpectQuery("SELECT(.+)FROM bookings").
		WillReturnRows(rows)

	bookings, err := repo.ListActiveBetween(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, booking.ID, bookings[0].ID)
}
