package repository

import (
	"context"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoursRepository stores logged training time. Hours travel as exact decimal
// text into a NUMERIC column so totals never accumulate float drift.
type HoursRepository struct {
	db DBConn
}

func NewHoursRepository(db DBConn) *HoursRepository {
	return &HoursRepository{db: db}
}

func (r *HoursRepository) LogHours(ctx context.Context, entry *models.FlightHoursEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO flight_hours (id, student_id, booking_id, hours, logged_at)
        VALUES ($1, $2, $3, $4::numeric, $5)
    `
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.StudentID, entry.BookingID, entry.Hours.String(), entry.LoggedAt)
	return err
}

func (r *HoursRepository) TotalHours(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	query := `
        SELECT COALESCE(SUM(hours), 0)::text
        FROM flight_hours
        WHERE student_id = $1
    `
	var total string
	if err := r.db.QueryRow(ctx, query, studentID).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}
