package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homecare-backend/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create сохраняет сообщение чата работы.
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (job_id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, viewed, registered_at
	`
	err := r.db.QueryRowxContext(ctx, query, m.JobID, m.SenderID, m.ReceiverID, m.Content).
		Scan(&m.ID, &m.Viewed, &m.RegisteredAt)
	if err != nil {
		return fmt.Errorf("message repository: create %w", err)
	}
	return nil
}

// ListByJob возвращает историю чата работы в хронологическом порядке.
func (r *MessageRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.SelectContext(ctx, &messages,
		`SELECT * FROM messages WHERE job_id = $1 ORDER BY registered_at`, jobID)
	return messages, err
}

// MarkViewed отмечает прочитанными все входящие сообщения чата для получателя.
func (r *MessageRepository) MarkViewed(ctx context.Context, jobID, receiverID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET viewed = TRUE WHERE job_id = $1 AND receiver_id = $2 AND viewed = FALSE`,
		jobID, receiverID)
	return err
}

// CountUnread возвращает число непрочитанных входящих сообщений пользователя.
func (r *MessageRepository) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND viewed = FALSE`, receiverID)
	if err != nil {
		return 0, fmt.Errorf("message repository: count unread %w", err)
	}
	return count, nil
}
