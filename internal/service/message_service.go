package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
	"github.com/ignatzorin/homecare-backend/internal/validation"
)

// MessageRepository описывает операции над сообщениями.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Message, error)
	MarkViewed(ctx context.Context, jobID, receiverID uuid.UUID) error
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
}

// MessageJobRepository читает работу, к которой привязан чат.
type MessageJobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// MessagePaymentRepository читает платёж для проверки оплаты работы.
type MessagePaymentRepository interface {
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error)
}

// MessageProfessionalRepository сопоставляет профиль специалиста с пользователем.
type MessageProfessionalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error)
}

// MessageNotifier доставляет новое сообщение получателю в реальном времени.
type MessageNotifier interface {
	NotifyMessage(receiverID uuid.UUID, message *models.Message)
}

// MessageService ведёт чат сторон работы. Чат открывается только после оплаты.
type MessageService struct {
	messages      MessageRepository
	jobs          MessageJobRepository
	payments      MessagePaymentRepository
	professionals MessageProfessionalRepository
	notifier      MessageNotifier
}

// NewMessageService создаёт сервис сообщений.
func NewMessageService(
	messages MessageRepository,
	jobs MessageJobRepository,
	payments MessagePaymentRepository,
	professionals MessageProfessionalRepository,
	notifier MessageNotifier,
) *MessageService {
	return &MessageService{
		messages:      messages,
		jobs:          jobs,
		payments:      payments,
		professionals: professionals,
		notifier:      notifier,
	}
}

// Send отправляет сообщение в чат работы. Отправитель должен быть стороной
// работы, работа должна быть оплачена, получателем становится вторая сторона.
func (s *MessageService) Send(ctx context.Context, senderID, jobID uuid.UUID, content string) (*models.Message, error) {
	job, professionalUserID, err := s.getJobWithParties(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	var receiverID uuid.UUID
	switch senderID {
	case job.ClientID:
		receiverID = professionalUserID
	case professionalUserID:
		receiverID = job.ClientID
	default:
		return nil, apperror.ErrForbidden
	}

	message := &models.Message{
		JobID:      jobID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := message.ValidateParticipants(job, professionalUserID); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := message.ValidatePayment(payment); err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(receiverID, message)
	}

	return message, nil
}

// History возвращает историю чата работы её стороне и отмечает входящие
// сообщения прочитанными.
func (s *MessageService) History(ctx context.Context, userID, jobID uuid.UUID) ([]models.Message, error) {
	job, professionalUserID, err := s.getJobWithParties(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if userID != job.ClientID && userID != professionalUserID {
		return nil, apperror.ErrForbidden
	}

	messages, err := s.messages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkViewed(ctx, jobID, userID); err != nil {
		return nil, err
	}

	return messages, nil
}

// CountUnread возвращает число непрочитанных входящих сообщений пользователя.
func (s *MessageService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messages.CountUnread(ctx, userID)
}

func (s *MessageService) getJobWithParties(ctx context.Context, jobID uuid.UUID) (*models.Job, uuid.UUID, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, uuid.Nil, apperror.ErrJobNotFound
		}
		return nil, uuid.Nil, err
	}
	professional, err := s.professionals.GetByID(ctx, job.ProfessionalID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return job, professional.UserID, nil
}
