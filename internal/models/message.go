package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
)

// Message — сообщение чата, привязанного к работе. Чат открывается только
// между сторонами оплаченной работы.
type Message struct {
	ID           uuid.UUID `db:"id" json:"id"`
	JobID        uuid.UUID `db:"job_id" json:"job_id"`
	SenderID     uuid.UUID `db:"sender_id" json:"sender_id"`
	ReceiverID   uuid.UUID `db:"receiver_id" json:"receiver_id"`
	Content      string    `db:"content" json:"content"`
	Viewed       bool      `db:"viewed" json:"viewed"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// ValidateParticipants проверяет, что отправитель и получатель — стороны работы.
func (m *Message) ValidateParticipants(job *Job, professionalUserID uuid.UUID) error {
	if !isParticipant(m.SenderID, job.ClientID, professionalUserID) {
		return apperror.New(apperror.ErrCodeValidation, "отправитель не участвует в этом чате")
	}
	if !isParticipant(m.ReceiverID, job.ClientID, professionalUserID) {
		return apperror.New(apperror.ErrCodeValidation, "получатель не участвует в этом чате")
	}
	return nil
}

// ValidatePayment проверяет, что работа оплачена.
func (m *Message) ValidatePayment(payment *Payment) error {
	if payment == nil || !payment.Paid {
		return apperror.New(apperror.ErrCodeValidation, "для отправки сообщения требуется оплата работы")
	}
	return nil
}

func isParticipant(userID, clientID, professionalUserID uuid.UUID) bool {
	return userID == clientID || userID == professionalUserID
}
