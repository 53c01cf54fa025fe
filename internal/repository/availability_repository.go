package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/homecare-backend/internal/models"
)

var ErrAvailabilityNotFound = errors.New("availability not found")

type AvailabilityRepository struct {
	db *sqlx.DB
}

func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Create сохраняет окно доступности.
func (r *AvailabilityRepository) Create(ctx context.Context, a *models.Availability) error {
	query := `
		INSERT INTO availabilities (professional_id, start_datetime, end_datetime, recurrence, weekly_recurrence)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		a.ProfessionalID, a.Start, a.End, a.Recurrence, pq.Array(a.WeeklyRecurrence),
	).Scan(&a.ID, &a.RegisteredAt)
	if err != nil {
		return fmt.Errorf("availability repository: create %w", err)
	}
	return nil
}

// GetByID возвращает окно доступности.
func (r *AvailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Availability, error) {
	var a models.Availability
	if err := r.db.GetContext(ctx, &a, `SELECT * FROM availabilities WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, fmt.Errorf("availability repository: get by id %w", err)
	}
	return &a, nil
}

// Update обновляет окно доступности.
func (r *AvailabilityRepository) Update(ctx context.Context, a *models.Availability) error {
	query := `
		UPDATE availabilities
		SET start_datetime = $2, end_datetime = $3, recurrence = $4, weekly_recurrence = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.Start, a.End, a.Recurrence, pq.Array(a.WeeklyRecurrence))
	if err != nil {
		return fmt.Errorf("availability repository: update %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAvailabilityNotFound
	}
	return nil
}

// Delete удаляет окно доступности.
func (r *AvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("availability repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAvailabilityNotFound
	}
	return nil
}

// ListByProfessional возвращает окна доступности специалиста.
func (r *AvailabilityRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Availability, error) {
	var availabilities []models.Availability
	err := r.db.SelectContext(ctx, &availabilities,
		`SELECT * FROM availabilities WHERE professional_id = $1 ORDER BY start_datetime`, professionalID)
	return availabilities, err
}
