package repository

import (
	"context"

	models "flightguard/internal"

	"github.com/google/uuid"
)

type AuditRepository struct {
	db DBConn
}

func NewAuditRepository(db DBConn) *AuditRepository {
	return &AuditRepository{db: db}
}

// AppendHistory writes a standalone audit row. Rows tied to a status change
// are written inside the owning transaction by BookingRepository instead.
func (r *AuditRepository) AppendHistory(ctx context.Context, entry *models.FlightHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `
        INSERT INTO flight_history (id, booking_id, action, actor_id, before, after, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now())
    `
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.BookingID, entry.Action, entry.ActorID, entry.Before, entry.After, entry.Note)
	return err
}

func (r *AuditRepository) ListHistory(ctx context.Context, bookingID uuid.UUID) ([]models.FlightHistory, error) {
	query := `
        SELECT id, booking_id, action, actor_id, before, after, note, created_at
        FROM flight_history
        WHERE booking_id = $1
        ORDER BY created_at, id
    `
	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.FlightHistory
	for rows.Next() {
		var e models.FlightHistory
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Action, &e.ActorID, &e.Before, &e.After, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
