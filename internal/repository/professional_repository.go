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

var (
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrProfessionalExists   = errors.New("professional profile already exists for user")
)

type ProfessionalRepository struct {
	db *sqlx.DB
}

func NewProfessionalRepository(db *sqlx.DB) *ProfessionalRepository {
	return &ProfessionalRepository{db: db}
}

// Create сохраняет профиль специалиста.
func (r *ProfessionalRepository) Create(ctx context.Context, p *models.Professional) error {
	query := `
		INSERT INTO professionals (user_id, about, avg_price, state, city, address, zip_code, cpf, rg, occupation, skills, coren)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.UserID, p.About, p.AvgPrice, p.State, p.City, p.Address, p.ZipCode,
		p.CPF, p.RG, p.Occupation, pq.Array(p.Skills), p.Coren,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProfessionalExists
		}
		return fmt.Errorf("professional repository: create %w", err)
	}
	return nil
}

// GetByID возвращает специалиста вместе со средним рейтингом.
func (r *ProfessionalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	var p models.Professional
	query := `
		SELECT p.*, AVG(rt.grade) AS avg_rating
		FROM professionals p
		LEFT JOIN jobs j ON j.professional_id = p.id
		LEFT JOIN ratings rt ON rt.job_id = j.id
		WHERE p.id = $1
		GROUP BY p.id
	`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("professional repository: get by id %w", err)
	}
	return &p, nil
}

// GetByUserID возвращает профиль специалиста по владельцу.
func (r *ProfessionalRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	var p models.Professional
	query := `
		SELECT p.*, AVG(rt.grade) AS avg_rating
		FROM professionals p
		LEFT JOIN jobs j ON j.professional_id = p.id
		LEFT JOIN ratings rt ON rt.job_id = j.id
		WHERE p.user_id = $1
		GROUP BY p.id
	`
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("professional repository: get by user id %w", err)
	}
	return &p, nil
}

// Update обновляет редактируемые поля профиля.
func (r *ProfessionalRepository) Update(ctx context.Context, p *models.Professional) error {
	query := `
		UPDATE professionals
		SET about = $2, avg_price = $3, state = $4, city = $5, address = $6,
		    zip_code = $7, occupation = $8, skills = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.About, p.AvgPrice, p.State, p.City, p.Address,
		p.ZipCode, p.Occupation, pq.Array(p.Skills),
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProfessionalNotFound
	}
	return err
}

// SetRecipient сохраняет идентификатор получателя выплат в шлюзе.
func (r *ProfessionalRepository) SetRecipient(ctx context.Context, id uuid.UUID, recipientID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE professionals SET recipient_id = $2, updated_at = NOW() WHERE id = $1`, id, recipientID)
	if err != nil {
		return fmt.Errorf("professional repository: set recipient %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProfessionalNotFound
	}
	return nil
}

// ListFilter параметры поиска специалистов.
type ListFilter struct {
	State       string
	City        string
	Occupation  string
	ServiceType string
	Limit       int
	Offset      int
}

// List возвращает специалистов по фильтрам с средним рейтингом.
func (r *ProfessionalRepository) List(ctx context.Context, f ListFilter) ([]models.Professional, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	query := `
		SELECT p.*, AVG(rt.grade) AS avg_rating
		FROM professionals p
		LEFT JOIN jobs j ON j.professional_id = p.id
		LEFT JOIN ratings rt ON rt.job_id = j.id
		WHERE ($1 = '' OR p.state = $1)
		  AND ($2 = '' OR LOWER(p.city) = LOWER($2))
		  AND ($3 = '' OR p.occupation = $3)
		  AND ($4 = '' OR $4 = ANY(p.skills))
		GROUP BY p.id
		ORDER BY p.created_at DESC
		LIMIT $5 OFFSET $6
	`
	var professionals []models.Professional
	err := r.db.SelectContext(ctx, &professionals, query,
		f.State, f.City, f.Occupation, f.ServiceType, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("professional repository: list %w", err)
	}
	return professionals, nil
}
