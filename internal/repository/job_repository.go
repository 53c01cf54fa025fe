package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homecare-backend/internal/models"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrJobAlreadySet = errors.New("job timestamp already set")
	ErrJobExists     = errors.New("job already exists for proposal")
)

type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create порождает работу из принятого предложения.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (proposal_id, professional_id, client_id, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id, registered_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		job.ProposalID, job.ProfessionalID, job.ClientID, job.Value,
	).Scan(&job.ID, &job.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrJobExists
		}
		return fmt.Errorf("job repository: create %w", err)
	}
	return nil
}

// GetByID возвращает работу.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get by id %w", err)
	}
	return &job, nil
}

// GetByProposal возвращает работу по предложению, nil если ещё не создана.
func (r *JobRepository) GetByProposal(ctx context.Context, proposalID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE proposal_id = $1`, proposalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("job repository: get by proposal %w", err)
	}
	return &job, nil
}

// SetStart фиксирует фактическое начало работы. Поле устанавливается ровно
// один раз, повторная попытка получает ErrJobAlreadySet.
func (r *JobRepository) SetStart(ctx context.Context, id uuid.UUID, start time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET start_datetime = $2 WHERE id = $1 AND start_datetime IS NULL`, id, start)
	if err != nil {
		return fmt.Errorf("job repository: set start %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobAlreadySet
	}
	return nil
}

// SetEnd фиксирует фактическое окончание работы, также однократно.
func (r *JobRepository) SetEnd(ctx context.Context, id uuid.UUID, end time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET end_datetime = $2 WHERE id = $1 AND end_datetime IS NULL`, id, end)
	if err != nil {
		return fmt.Errorf("job repository: set end %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobAlreadySet
	}
	return nil
}

// Delete удаляет работу.
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("job repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// ListByClient возвращает работы клиента.
func (r *JobRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM jobs WHERE client_id = $1 ORDER BY registered_at DESC`, clientID)
	return jobs, err
}

// ListByProfessional возвращает работы специалиста.
func (r *JobRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM jobs WHERE professional_id = $1 ORDER BY registered_at DESC`, professionalID)
	return jobs, err
}
