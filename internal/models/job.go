package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

// Job — контракт на работу, порождаемый ровно один раз в момент принятия
// предложения или встречного предложения.
type Job struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ProposalID     uuid.UUID  `db:"proposal_id" json:"proposal_id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	Value          float64    `db:"value" json:"value"`
	Start          *time.Time `db:"start_datetime" json:"start_datetime,omitempty"`
	End            *time.Time `db:"end_datetime" json:"end_datetime,omitempty"`
	RegisteredAt   time.Time  `db:"registered_at" json:"registered_at"`
}

// Validate проверяет согласованность работы с породившим её предложением.
func (j *Job) Validate(proposal *Proposal, minValue float64) error {
	if j.ClientID != proposal.ClientID {
		return apperror.New(apperror.ErrCodeValidation, "клиент работы должен совпадать с клиентом предложения")
	}
	if j.ProfessionalID != proposal.ProfessionalID {
		return apperror.New(apperror.ErrCodeValidation, "специалист работы должен совпадать со специалистом предложения")
	}
	if j.Value < minValue {
		return apperror.New(apperror.ErrCodeValidation, "стоимость работы ниже минимальной цены услуги")
	}
	return nil
}

// Rating — оценка (1–5), которую клиент ставит выполненной работе.
// Уникальность пары (client, job) гарантирует ограничение в базе.
type Rating struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ClientID uuid.UUID `db:"client_id" json:"client_id"`
	JobID    uuid.UUID `db:"job_id" json:"job_id"`
	Grade    int       `db:"grade" json:"grade"`
}

// Validate проверяет, что оценку ставит клиент работы и не самому себе.
func (r *Rating) Validate(job *Job, professionalUserID uuid.UUID) error {
	if r.Grade < MinRatingGrade || r.Grade > MaxRatingGrade {
		return apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}
	if r.ClientID != job.ClientID {
		return apperror.New(apperror.ErrCodeValidation, "нельзя оценивать чужой наём")
	}
	if r.ClientID == professionalUserID {
		return apperror.New(apperror.ErrCodeValidation, "нельзя оценивать самого себя")
	}
	return nil
}
