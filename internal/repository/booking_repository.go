package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

type BookingRepository struct {
	db DBConn
}

func NewBookingRepository(db DBConn) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
        id, student_id, instructor_id, aircraft_id, scheduled_at,
        departure, destination, flight_type, status, notes, version,
        created_by, last_modified_by, created_at, updated_at`

var activeStatuses = []string{string(models.StatusConfirmed), string(models.StatusWeatherHold)}

func resourceColumn(kind models.ResourceKind) (string, error) {
	switch kind {
	case models.ResourceInstructor:
		return "instructor_id", nil
	case models.ResourceAircraft:
		return "aircraft_id", nil
	case models.ResourceStudent:
		return "student_id", nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}
}

// CreateBooking inserts the booking together with its audit row. Writers take
// per-resource advisory locks before the overlap checks, so two concurrent
// creations for the same instructor, aircraft or student serialize instead of
// both reading an empty window and both inserting.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking, hist *models.FlightHistory) (*models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockResourcesTx(ctx, tx, booking.InstructorID, booking.AircraftID, booking.StudentID); err != nil {
		return nil, err
	}

	start, end := booking.Window()
	checks := []struct {
		kind models.ResourceKind
		id   uuid.UUID
	}{
		{models.ResourceInstructor, booking.InstructorID},
		{models.ResourceAircraft, booking.AircraftID},
		{models.ResourceStudent, booking.StudentID},
	}
	for _, check := range checks {
		occupied, err := hasOverlapTx(ctx, tx, check.kind, check.id, start, end, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if occupied {
			return nil, models.NewResourceConflictError(check.kind)
		}
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = models.StatusConfirmed
	booking.Version = 1
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt

	if err := insertBookingTx(ctx, tx, booking); err != nil {
		return nil, err
	}

	hist.BookingID = booking.ID
	if err := insertHistoryTx(ctx, tx, hist); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("booking %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Booking, string, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings`
	var args []interface{}

	if afterCursor != "" {
		afterTime, afterUUID, err := decodeCursor(afterCursor)
		if err != nil {
			return nil, "", models.NewValidationError("malformed pagination cursor")
		}
		query += ` WHERE (created_at, id) > ($1, $2)`
		args = append(args, afterTime, afterUUID)
	}

	query += ` ORDER BY created_at, id`
	query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, "", err
		}
		bookings = append(bookings, *booking)
	}
	if err = rows.Err(); err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(bookings) == limit {
		last := bookings[len(bookings)-1]
		nextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return bookings, nextCursor, nil
}

// UpdateBooking is a compare-and-swap on the version counter: the write lands
// only if nobody else has modified the row since the caller read it.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking *models.Booking, expectedVersion int64, hist *models.FlightHistory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateBookingTx(ctx, tx, booking, expectedVersion); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, hist); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *BookingRepository) HasOverlap(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	column, err := resourceColumn(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
        SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE %s = $1
              AND status = ANY($2)
              AND scheduled_at < $3
              AND scheduled_at + interval '2 hours' > $4
              AND id <> $5
        )`, column)

	var occupied bool
	row := r.db.QueryRow(ctx, query, resourceID, activeStatuses, end, start, exclude)
	if err := row.Scan(&occupied); err != nil {
		return false, err
	}
	return occupied, nil
}

func (r *BookingRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
        FROM bookings
        WHERE status = ANY($1) AND scheduled_at >= $2 AND scheduled_at <= $3
        ORDER BY scheduled_at, id`

	rows, err := r.db.Query(ctx, query, activeStatuses, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// Reschedule runs the cancel-original, insert-successor, link-event sequence
// as one transaction. Any failure rolls the whole thing back; the original is
// never left cancelled without its successor.
func (r *BookingRepository) Reschedule(ctx context.Context, original *models.Booking, expectedVersion int64, successor *models.Booking, event *models.RescheduleEvent, hists []models.FlightHistory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockResourcesTx(ctx, tx, successor.InstructorID, successor.AircraftID, successor.StudentID); err != nil {
		return err
	}

	if err := updateBookingTx(ctx, tx, original, expectedVersion); err != nil {
		return err
	}

	start, end := successor.Window()
	checks := []struct {
		kind models.ResourceKind
		id   uuid.UUID
	}{
		{models.ResourceInstructor, successor.InstructorID},
		{models.ResourceAircraft, successor.AircraftID},
		{models.ResourceStudent, successor.StudentID},
	}
	for _, check := range checks {
		occupied, err := hasOverlapTx(ctx, tx, check.kind, check.id, start, end, original.ID)
		if err != nil {
			return err
		}
		if occupied {
			return models.NewResourceConflictError(check.kind)
		}
	}

	if err := insertBookingTx(ctx, tx, successor); err != nil {
		return err
	}

	if err := insertRescheduleEventTx(ctx, tx, event); err != nil {
		return err
	}

	for i := range hists {
		if err := insertHistoryTx(ctx, tx, &hists[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// lockResourcesTx serializes writers on each resource for the rest of the
// transaction. Under READ COMMITTED a plain read-then-insert would let two
// transactions both see an empty window and both commit; the advisory locks
// force the second writer to wait until the first has committed its row.
// Locks are taken in sorted id order so competing transactions cannot
// deadlock.
func lockResourcesTx(ctx context.Context, tx pgx.Tx, ids ...uuid.UUID) error {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	for _, id := range sorted {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, id.String()); err != nil {
			return err
		}
	}
	return nil
}

func hasOverlapTx(ctx context.Context, tx pgx.Tx, kind models.ResourceKind, resourceID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	column, err := resourceColumn(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
        SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE %s = $1
              AND status = ANY($2)
              AND scheduled_at < $3
              AND scheduled_at + interval '2 hours' > $4
              AND id <> $5
        )`, column)

	var occupied bool
	if err := tx.QueryRow(ctx, query, resourceID, activeStatuses, end, start, exclude).Scan(&occupied); err != nil {
		return false, err
	}
	return occupied, nil
}

func insertBookingTx(ctx context.Context, tx pgx.Tx, booking *models.Booking) error {
	departure, err := json.Marshal(booking.Departure)
	if err != nil {
		return err
	}
	var destination []byte
	if booking.Destination != nil {
		if destination, err = json.Marshal(booking.Destination); err != nil {
			return err
		}
	}

	query := `
        INSERT INTO bookings (id, student_id, instructor_id, aircraft_id, scheduled_at,
            departure, destination, flight_type, status, notes, version,
            created_by, last_modified_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err = tx.Exec(ctx, query,
		booking.ID, booking.StudentID, booking.InstructorID, booking.AircraftID, booking.ScheduledAt,
		departure, destination, booking.FlightType, booking.Status, booking.Notes, booking.Version,
		booking.CreatedBy, booking.LastModifiedBy, booking.CreatedAt, booking.UpdatedAt)
	return err
}

func updateBookingTx(ctx context.Context, tx pgx.Tx, booking *models.Booking, expectedVersion int64) error {
	query := `
        UPDATE bookings
        SET scheduled_at = $1, flight_type = $2, status = $3, notes = $4,
            version = version + 1, last_modified_by = $5, updated_at = $6
        WHERE id = $7 AND version = $8
    `
	tag, err := tx.Exec(ctx, query,
		booking.ScheduledAt, booking.FlightType, booking.Status, booking.Notes,
		booking.LastModifiedBy, time.Now().UTC(), booking.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, booking.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError("booking %s not found", booking.ID)
		}
		return models.NewConflictError("booking was modified concurrently, reload and retry")
	}
	booking.Version = expectedVersion + 1
	return nil
}

func insertHistoryTx(ctx context.Context, tx pgx.Tx, hist *models.FlightHistory) error {
	if hist.ID == uuid.Nil {
		hist.ID = uuid.New()
	}
	if hist.CreatedAt.IsZero() {
		hist.CreatedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO flight_history (id, booking_id, action, actor_id, before, after, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := tx.Exec(ctx, query,
		hist.ID, hist.BookingID, hist.Action, hist.ActorID, hist.Before, hist.After, hist.Note, hist.CreatedAt)
	return err
}

func insertRescheduleEventTx(ctx context.Context, tx pgx.Tx, event *models.RescheduleEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	options, err := json.Marshal(event.SuggestedOptions)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO reschedule_events (id, original_booking_id, suggested_options, selected_option,
            status, new_booking_id, confirmed_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err = tx.Exec(ctx, query,
		event.ID, event.OriginalID, options, event.SelectedOption,
		event.Status, event.NewBookingID, event.ConfirmedAt, event.CreatedAt)
	return err
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row scannable) (*models.Booking, error) {
	var booking models.Booking
	var departure, destination []byte

	err := row.Scan(
		&booking.ID, &booking.StudentID, &booking.InstructorID, &booking.AircraftID, &booking.ScheduledAt,
		&departure, &destination, &booking.FlightType, &booking.Status, &booking.Notes, &booking.Version,
		&booking.CreatedBy, &booking.LastModifiedBy, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(departure, &booking.Departure); err != nil {
		return nil, fmt.Errorf("malformed departure location: %w", err)
	}
	if len(destination) > 0 {
		booking.Destination = &models.Location{}
		if err := json.Unmarshal(destination, booking.Destination); err != nil {
			return nil, fmt.Errorf("malformed destination location: %w", err)
		}
	}
	return &booking, nil
}
