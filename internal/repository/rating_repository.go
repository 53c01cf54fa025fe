package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homecare-backend/internal/models"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrRatingExists   = errors.New("rating already exists for this job")
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create сохраняет оценку. Уникальный индекс (client_id, job_id) — финальный
// арбитр: при гонке вторая вставка получает ErrRatingExists.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (client_id, job_id, grade)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, rating.ClientID, rating.JobID, rating.Grade).
		Scan(&rating.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRatingExists
		}
		return fmt.Errorf("rating repository: create %w", err)
	}
	return nil
}

// GetByJob возвращает оценку работы, nil если ещё не выставлена.
func (r *RatingRepository) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.GetContext(ctx, &rating, `SELECT * FROM ratings WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rating repository: get by job %w", err)
	}
	return &rating, nil
}

// GetAvgForProfessional считает средний балл специалиста по всем оценённым работам.
// nil, если оценок ещё нет.
func (r *RatingRepository) GetAvgForProfessional(ctx context.Context, professionalID uuid.UUID) (*float64, error) {
	var avg *float64
	query := `
		SELECT AVG(rt.grade)
		FROM ratings rt
		JOIN jobs j ON j.id = rt.job_id
		WHERE j.professional_id = $1
	`
	if err := r.db.GetContext(ctx, &avg, query, professionalID); err != nil {
		return nil, fmt.Errorf("rating repository: avg for professional %w", err)
	}
	return avg, nil
}
