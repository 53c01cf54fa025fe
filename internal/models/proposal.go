package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

// Proposal представляет предложение клиента специалисту на оказание услуги.
// Поле Accepted трёхзначно: nil — на рассмотрении, true — принято, false — отклонено.
type Proposal struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ClientID         uuid.UUID `db:"client_id" json:"client_id"`
	ProfessionalID   uuid.UUID `db:"professional_id" json:"professional_id"`
	City             string    `db:"city" json:"city"`
	State            string    `db:"state" json:"state"`
	ProfessionalType string    `db:"professional_type" json:"professional_type"`
	ServiceType      string    `db:"service_type" json:"service_type"`
	Start            time.Time `db:"start_datetime" json:"start_datetime"`
	End              time.Time `db:"end_datetime" json:"end_datetime"`
	Value            float64   `db:"value" json:"value"`
	Description      string    `db:"description" json:"description"`
	Accepted         *bool     `db:"accepted" json:"accepted"`
	RegisteredAt     time.Time `db:"registered_at" json:"registered_at"`
}

// Pending сообщает, что предложение ещё не принято и не отклонено.
func (p *Proposal) Pending() bool {
	return p.Accepted == nil
}

// Validate проверяет инварианты предложения относительно момента now.
// Вызывается перед каждым сохранением, а не только при создании.
func (p *Proposal) Validate(now time.Time, professionalUserID uuid.UUID, minValue float64) error {
	if p.Start.After(p.End) {
		return apperror.New(apperror.ErrCodeValidation, "начало должно быть раньше окончания")
	}
	if !p.Start.After(now) {
		return apperror.New(apperror.ErrCodeValidation, "дата начала уже прошла")
	}
	if !p.End.After(now) {
		return apperror.New(apperror.ErrCodeValidation, "дата окончания уже прошла")
	}
	if p.ClientID == professionalUserID {
		return apperror.New(apperror.ErrCodeValidation, "нельзя отправить предложение самому себе")
	}
	if p.Value < minValue {
		return apperror.New(apperror.ErrCodeValidation, "стоимость ниже минимальной цены услуги")
	}
	if _, ok := ValidStates[p.State]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый код штата")
	}
	if _, ok := ValidOccupations[p.ProfessionalType]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый тип специалиста")
	}
	if _, ok := ValidServices[p.ServiceType]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый тип услуги")
	}
	return nil
}

// CounterProposal представляет единственное встречное предложение специалиста
// к ещё не принятому предложению клиента. Accepted независим от родительского.
type CounterProposal struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProposalID   uuid.UUID `db:"proposal_id" json:"proposal_id"`
	Value        float64   `db:"value" json:"value"`
	Description  string    `db:"description" json:"description"`
	Accepted     *bool     `db:"accepted" json:"accepted"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// Pending сообщает, что встречное предложение ещё не рассмотрено.
func (cp *CounterProposal) Pending() bool {
	return cp.Accepted == nil
}

// Validate проверяет коридор цены: встречное значение должно лежать
// в пределах ±20% от исходного, границы включительно.
func (cp *CounterProposal) Validate(proposalValue float64) error {
	if cp.Value > CounterProposalMaxFactor*proposalValue {
		return apperror.New(apperror.ErrCodeValidation, "встречное предложение не может превышать исходную цену более чем на 20%")
	}
	if cp.Value < CounterProposalMinFactor*proposalValue {
		return apperror.New(apperror.ErrCodeValidation, "встречное предложение не может быть ниже исходной цены более чем на 20%")
	}
	return nil
}
