package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WeatherCheckRepository is the append-only safety log. Rows are never
// updated or deleted.
type WeatherCheckRepository struct {
	db DBConn
}

func NewWeatherCheckRepository(db DBConn) *WeatherCheckRepository {
	return &WeatherCheckRepository{db: db}
}

func (r *WeatherCheckRepository) AppendWeatherCheck(ctx context.Context, check *models.WeatherCheck) error {
	if check.ID == uuid.Nil {
		check.ID = uuid.New()
	}
	if check.CreatedAt.IsZero() {
		check.CreatedAt = time.Now().UTC()
	}
	conditions, err := json.Marshal(check.Conditions)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO weather_checks (id, booking_id, conditions, is_safe, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err = r.db.Exec(ctx, query,
		check.ID, check.BookingID, conditions, check.IsSafe, check.Reason, check.CreatedAt)
	return err
}

func (r *WeatherCheckRepository) LatestWeatherCheck(ctx context.Context, bookingID uuid.UUID) (*models.WeatherCheck, error) {
	query := `
        SELECT id, booking_id, conditions, is_safe, reason, created_at
        FROM weather_checks
        WHERE booking_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	check, err := scanWeatherCheck(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("no weather checks recorded for booking %s", bookingID)
	}
	if err != nil {
		return nil, err
	}
	return check, nil
}

func (r *WeatherCheckRepository) ListWeatherChecks(ctx context.Context, bookingID uuid.UUID) ([]models.WeatherCheck, error) {
	query := `
        SELECT id, booking_id, conditions, is_safe, reason, created_at
        FROM weather_checks
        WHERE booking_id = $1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []models.WeatherCheck
	for rows.Next() {
		check, err := scanWeatherCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, *check)
	}
	return checks, rows.Err()
}

func scanWeatherCheck(row scannable) (*models.WeatherCheck, error) {
	var check models.WeatherCheck
	var conditions []byte

	err := row.Scan(&check.ID, &check.BookingID, &conditions, &check.IsSafe, &check.Reason, &check.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(conditions, &check.Conditions); err != nil {
		return nil, fmt.Errorf("malformed conditions snapshot: %w", err)
	}
	return &check, nil
}
