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
	ErrCashOutNotFound = errors.New("cash out not found")
	ErrBalanceChanged  = errors.New("balance changed during cash out")
)

type CashOutRepository struct {
	db *sqlx.DB
}

func NewCashOutRepository(db *sqlx.DB) *CashOutRepository {
	return &CashOutRepository{db: db}
}

// balanceQuery считает доступный баланс: оплаченные поступления минус все
// ранее созданные заявки на вывод, включая ещё не исполненные.
const balanceQuery = `
	SELECT COALESCE((
		SELECT SUM(p.value)
		FROM payments p
		JOIN jobs j ON j.id = p.job_id
		WHERE j.professional_id = $1 AND p.paid = TRUE
	), 0) - COALESCE((
		SELECT SUM(c.value)
		FROM cash_outs c
		WHERE c.professional_id = $1
	), 0)
`

// ComputeCash возвращает текущий доступный баланс специалиста.
func (r *CashOutRepository) ComputeCash(ctx context.Context, professionalID uuid.UUID) (float64, error) {
	var cash float64
	if err := r.db.GetContext(ctx, &cash, balanceQuery, professionalID); err != nil {
		return 0, fmt.Errorf("cashout repository: compute cash %w", err)
	}
	return cash, nil
}

// CreateWithBalanceCheck создаёт заявку на вывод атомарно относительно других
// заявок того же специалиста. Advisory-блокировка по специалисту сериализует
// конкурентные выводы, после чего баланс перечитывается под блокировкой и
// сверяется с заявленной суммой.
func (r *CashOutRepository) CreateWithBalanceCheck(ctx context.Context, cashOut *models.CashOut) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cashout repository: begin tx %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text))`, cashOut.ProfessionalID); err != nil {
		return fmt.Errorf("cashout repository: advisory lock %w", err)
	}

	var cash float64
	if err := tx.GetContext(ctx, &cash, balanceQuery, cashOut.ProfessionalID); err != nil {
		return fmt.Errorf("cashout repository: recheck balance %w", err)
	}
	if cashOut.Value != cash {
		return ErrBalanceChanged
	}

	query := `
		INSERT INTO cash_outs (professional_id, value)
		VALUES ($1, $2)
		RETURNING id, was_withdrawn, registered_at
	`
	err = tx.QueryRowxContext(ctx, query, cashOut.ProfessionalID, cashOut.Value).
		Scan(&cashOut.ID, &cashOut.WasWithdrawn, &cashOut.RegisteredAt)
	if err != nil {
		return fmt.Errorf("cashout repository: create %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cashout repository: commit %w", err)
	}
	return nil
}

// GetByID возвращает заявку на вывод.
func (r *CashOutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CashOut, error) {
	var cashOut models.CashOut
	if err := r.db.GetContext(ctx, &cashOut, `SELECT * FROM cash_outs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCashOutNotFound
		}
		return nil, fmt.Errorf("cashout repository: get by id %w", err)
	}
	return &cashOut, nil
}

// MarkWithdrawn фиксирует исполненный перевод и его идентификатор.
func (r *CashOutRepository) MarkWithdrawn(ctx context.Context, id uuid.UUID, transferID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cash_outs SET was_withdrawn = TRUE, transfer_id = $2 WHERE id = $1 AND was_withdrawn = FALSE`,
		id, transferID)
	if err != nil {
		return fmt.Errorf("cashout repository: mark withdrawn %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCashOutNotFound
	}
	return nil
}

// RevertWithdrawn снимает отметку исполнения после отмены перевода в шлюзе.
func (r *CashOutRepository) RevertWithdrawn(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cash_outs SET was_withdrawn = FALSE, transfer_id = NULL WHERE id = $1 AND was_withdrawn = TRUE`,
		id)
	if err != nil {
		return fmt.Errorf("cashout repository: revert withdrawn %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCashOutNotFound
	}
	return nil
}

// Delete удаляет заявку на вывод; сумма возвращается в доступный баланс.
func (r *CashOutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cash_outs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cashout repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCashOutNotFound
	}
	return nil
}

// ListByProfessional возвращает заявки специалиста.
func (r *CashOutRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.CashOut, error) {
	var cashOuts []models.CashOut
	err := r.db.SelectContext(ctx, &cashOuts,
		`SELECT * FROM cash_outs WHERE professional_id = $1 ORDER BY registered_at DESC`, professionalID)
	return cashOuts, err
}
