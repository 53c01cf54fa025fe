package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

// Payment — платёж по работе, один-к-одному. Факт списания фиксирует внешний
// платёжный шлюз; здесь хранится намерение и результат.
type Payment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	ProfessionalID *uuid.UUID `db:"professional_id" json:"professional_id,omitempty"`
	JobID          uuid.UUID  `db:"job_id" json:"job_id"`
	Value          float64    `db:"value" json:"value"`
	Paid           bool       `db:"paid" json:"paid"`
	TransactionID  *string    `db:"transaction_id" json:"transaction_id,omitempty"`
	RegisteredAt   time.Time  `db:"registered_at" json:"registered_at"`
}

// Validate проверяет точное совпадение суммы платежа со стоимостью работы.
func (p *Payment) Validate(job *Job) error {
	if p.Value != job.Value {
		return apperror.New(apperror.ErrCodeValidation, "сумма платежа должна совпадать со стоимостью работы")
	}
	return nil
}

// CashOut — заявка специалиста на вывод накопленного баланса целиком.
type CashOut struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	Value          float64   `db:"value" json:"value"`
	WasWithdrawn   bool      `db:"was_withdrawn" json:"was_withdrawn"`
	TransferID     *string   `db:"transfer_id" json:"transfer_id,omitempty"`
	RegisteredAt   time.Time `db:"registered_at" json:"registered_at"`
}

// Validate требует, чтобы сумма вывода в точности равнялась текущему балансу:
// частичные выводы не поддерживаются.
func (c *CashOut) Validate(currentCash float64) error {
	if c.Value != currentCash {
		return apperror.New(apperror.ErrCodeValidation, "сумма вывода должна равняться текущему балансу")
	}
	return nil
}
