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
	ErrProposalNotFound        = errors.New("proposal not found")
	ErrCounterProposalNotFound = errors.New("counter proposal not found")
	ErrAlreadyResolved         = errors.New("proposal already resolved")
	ErrCounterProposalExists   = errors.New("counter proposal already exists")
)

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет новое предложение.
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	query := `
		INSERT INTO proposals (client_id, professional_id, city, state, professional_type, service_type,
		                       start_datetime, end_datetime, value, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, registered_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ClientID, p.ProfessionalID, p.City, p.State, p.ProfessionalType, p.ServiceType,
		p.Start, p.End, p.Value, p.Description,
	).Scan(&p.ID, &p.RegisteredAt)
	if err != nil {
		return fmt.Errorf("proposal repository: create %w", err)
	}
	return nil
}

// GetByID возвращает предложение.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM proposals WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}
	return &p, nil
}

// Update обновляет редактируемые поля ещё не рассмотренного предложения.
func (r *ProposalRepository) Update(ctx context.Context, p *models.Proposal) error {
	query := `
		UPDATE proposals
		SET city = $2, state = $3, professional_type = $4, service_type = $5,
		    start_datetime = $6, end_datetime = $7, value = $8, description = $9
		WHERE id = $1 AND accepted IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.City, p.State, p.ProfessionalType, p.ServiceType,
		p.Start, p.End, p.Value, p.Description)
	if err != nil {
		return fmt.Errorf("proposal repository: update %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// Delete удаляет предложение вместе со встречным по каскаду.
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("proposal repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// Resolve фиксирует решение по предложению. Условие accepted IS NULL делает
// операцию однократной: проигравший конкурентный запрос получает
// ErrAlreadyResolved, а не перезаписывает чужое решение.
func (r *ProposalRepository) Resolve(ctx context.Context, id uuid.UUID, accepted bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET accepted = $2 WHERE id = $1 AND accepted IS NULL`, id, accepted)
	if err != nil {
		return fmt.Errorf("proposal repository: resolve %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// ListByClient возвращает предложения клиента, новые первыми.
func (r *ProposalRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals,
		`SELECT * FROM proposals WHERE client_id = $1 ORDER BY registered_at DESC`, clientID)
	return proposals, err
}

// ListByProfessional возвращает предложения, адресованные специалисту.
func (r *ProposalRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals,
		`SELECT * FROM proposals WHERE professional_id = $1 ORDER BY registered_at DESC`, professionalID)
	return proposals, err
}

// CreateCounter сохраняет встречное предложение. Уникальный индекс по
// proposal_id гарантирует не более одного встречного на предложение.
func (r *ProposalRepository) CreateCounter(ctx context.Context, cp *models.CounterProposal) error {
	query := `
		INSERT INTO counter_proposals (proposal_id, value, description)
		VALUES ($1, $2, $3)
		RETURNING id, registered_at
	`
	err := r.db.QueryRowxContext(ctx, query, cp.ProposalID, cp.Value, cp.Description).
		Scan(&cp.ID, &cp.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCounterProposalExists
		}
		return fmt.Errorf("proposal repository: create counter %w", err)
	}
	return nil
}

// GetCounterByID возвращает встречное предложение.
func (r *ProposalRepository) GetCounterByID(ctx context.Context, id uuid.UUID) (*models.CounterProposal, error) {
	var cp models.CounterProposal
	if err := r.db.GetContext(ctx, &cp, `SELECT * FROM counter_proposals WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCounterProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get counter by id %w", err)
	}
	return &cp, nil
}

// GetCounterByProposal возвращает встречное предложение по родительскому, nil если его нет.
func (r *ProposalRepository) GetCounterByProposal(ctx context.Context, proposalID uuid.UUID) (*models.CounterProposal, error) {
	var cp models.CounterProposal
	err := r.db.GetContext(ctx, &cp, `SELECT * FROM counter_proposals WHERE proposal_id = $1`, proposalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("proposal repository: get counter by proposal %w", err)
	}
	return &cp, nil
}

// UpdateCounter обновляет ещё не рассмотренное встречное предложение.
func (r *ProposalRepository) UpdateCounter(ctx context.Context, cp *models.CounterProposal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE counter_proposals SET value = $2, description = $3 WHERE id = $1 AND accepted IS NULL`,
		cp.ID, cp.Value, cp.Description)
	if err != nil {
		return fmt.Errorf("proposal repository: update counter %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// DeleteCounter удаляет ещё не рассмотренное встречное предложение.
func (r *ProposalRepository) DeleteCounter(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM counter_proposals WHERE id = $1 AND accepted IS NULL`, id)
	if err != nil {
		return fmt.Errorf("proposal repository: delete counter %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// RejectCounter однократно отклоняет встречное предложение.
func (r *ProposalRepository) RejectCounter(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE counter_proposals SET accepted = FALSE WHERE id = $1 AND accepted IS NULL`, id)
	if err != nil {
		return fmt.Errorf("proposal repository: reject counter %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// AcceptCounter принимает встречное предложение одной транзакцией:
// отмечает его принятым, принудительно принимает родительское предложение,
// если то ещё не рассмотрено, и создаёт ровно одну работу по встречной цене.
// Работа наследует всё от родительского предложения кроме стоимости.
func (r *ProposalRepository) AcceptCounter(ctx context.Context, counterID uuid.UUID) (*models.Job, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: begin tx %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE counter_proposals SET accepted = TRUE WHERE id = $1 AND accepted IS NULL`, counterID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: accept counter %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlreadyResolved
	}

	var cp models.CounterProposal
	if err := tx.GetContext(ctx, &cp, `SELECT * FROM counter_proposals WHERE id = $1`, counterID); err != nil {
		return nil, fmt.Errorf("proposal repository: reload counter %w", err)
	}

	// Родитель мог быть уже принят напрямую; тогда работа уже существует
	// и вставка ниже упрётся в уникальный индекс jobs.proposal_id.
	if _, err := tx.ExecContext(ctx,
		`UPDATE proposals SET accepted = TRUE WHERE id = $1 AND accepted IS NULL`, cp.ProposalID); err != nil {
		return nil, fmt.Errorf("proposal repository: force accept parent %w", err)
	}

	var job models.Job
	query := `
		INSERT INTO jobs (proposal_id, professional_id, client_id, value)
		SELECT p.id, p.professional_id, p.client_id, $2
		FROM proposals p
		WHERE p.id = $1
		RETURNING id, proposal_id, professional_id, client_id, value, start_datetime, end_datetime, registered_at
	`
	err = tx.QueryRowxContext(ctx, query, cp.ProposalID, cp.Value).StructScan(&job)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("proposal repository: create job from counter %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("proposal repository: commit %w", err)
	}
	return &job, nil
}
