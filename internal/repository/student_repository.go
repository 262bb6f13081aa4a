package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	models "flightguard/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StudentRepository struct {
	db DBConn
}

func NewStudentRepository(db DBConn) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) GetStudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	query := `
        SELECT id, first_name, last_name, email, training_level, availability
        FROM students
        WHERE id = $1
    `
	var student models.Student
	var availability []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&student.ID, &student.FirstName, &student.LastName, &student.Email,
		&student.TrainingLevel, &availability)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("student %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &student.Availability); err != nil {
			return nil, fmt.Errorf("malformed availability preferences: %w", err)
		}
	}
	return &student, nil
}
