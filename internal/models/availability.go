package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

// Availability описывает окно доступности специалиста.
type Availability struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	ProfessionalID   uuid.UUID      `db:"professional_id" json:"professional_id"`
	Start            time.Time      `db:"start_datetime" json:"start_datetime"`
	End              time.Time      `db:"end_datetime" json:"end_datetime"`
	Recurrence       *string        `db:"recurrence" json:"recurrence,omitempty"`
	WeeklyRecurrence pq.StringArray `db:"weekly_recurrence" json:"weekly_recurrence,omitempty"`
	RegisteredAt     time.Time      `db:"registered_at" json:"registered_at"`
}

// Validate проверяет инварианты окна доступности относительно момента now.
func (a *Availability) Validate(now time.Time) error {
	if a.End.Before(a.Start) {
		return apperror.New(apperror.ErrCodeValidation, "окончание не может быть раньше начала")
	}
	if a.Start.Before(now) {
		return apperror.New(apperror.ErrCodeValidation, "дата начала уже прошла")
	}
	if a.Recurrence != nil {
		if _, ok := ValidRecurrences[*a.Recurrence]; !ok {
			return apperror.New(apperror.ErrCodeValidation, "недопустимая периодичность")
		}
	}
	for _, day := range a.WeeklyRecurrence {
		if _, ok := ValidWeekDays[day]; !ok {
			return apperror.New(apperror.ErrCodeValidation, "недопустимый день недели")
		}
	}
	return nil
}
