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
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentExists   = errors.New("payment already exists for this job")
	ErrAlreadyPaid     = errors.New("payment already marked as paid")
)

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create сохраняет намерение оплаты. Уникальный индекс по job_id
// обеспечивает один платёж на работу.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (client_id, professional_id, job_id, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id, paid, registered_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		payment.ClientID, payment.ProfessionalID, payment.JobID, payment.Value,
	).Scan(&payment.ID, &payment.Paid, &payment.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPaymentExists
		}
		return fmt.Errorf("payment repository: create %w", err)
	}
	return nil
}

// GetByID возвращает платёж.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, `SELECT * FROM payments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by id %w", err)
	}
	return &payment, nil
}

// GetByJob возвращает платёж работы, nil если платежа нет.
func (r *PaymentRepository) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `SELECT * FROM payments WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("payment repository: get by job %w", err)
	}
	return &payment, nil
}

// MarkPaid однократно фиксирует успешное списание и идентификатор транзакции.
// Условие paid = FALSE защищает от двойной записи при гонке.
func (r *PaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET paid = TRUE, transaction_id = $2 WHERE id = $1 AND paid = FALSE`,
		id, transactionID)
	if err != nil {
		return fmt.Errorf("payment repository: mark paid %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

// SumReceipts возвращает сумму оплаченных платежей в пользу специалиста.
func (r *PaymentRepository) SumReceipts(ctx context.Context, professionalID uuid.UUID) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(p.value), 0)
		FROM payments p
		JOIN jobs j ON j.id = p.job_id
		WHERE j.professional_id = $1 AND p.paid = TRUE
	`
	if err := r.db.GetContext(ctx, &total, query, professionalID); err != nil {
		return 0, fmt.Errorf("payment repository: sum receipts %w", err)
	}
	return total, nil
}

// ListByClient возвращает платежи клиента.
func (r *PaymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments,
		`SELECT * FROM payments WHERE client_id = $1 ORDER BY registered_at DESC`, clientID)
	return payments, err
}
