package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
)

// JobRepository описывает операции над работами.
type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	SetStart(ctx context.Context, id uuid.UUID, start time.Time) error
	SetEnd(ctx context.Context, id uuid.UUID, end time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Job, error)
}

// JobProfessionalRepository нужен для проверки владения профилем специалиста.
type JobProfessionalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error)
}

// JobRatingRepository сохраняет оценки выполненных работ.
type JobRatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Rating, error)
}

// JobPaymentRepository нужен для проверки платежа перед удалением работы.
type JobPaymentRepository interface {
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error)
}

// JobService управляет жизненным циклом работы: начало, завершение, оценка.
type JobService struct {
	jobs          JobRepository
	professionals JobProfessionalRepository
	ratings       JobRatingRepository
	payments      JobPaymentRepository
	now           func() time.Time
}

// NewJobService создаёт сервис работ.
func NewJobService(
	jobs JobRepository,
	professionals JobProfessionalRepository,
	ratings JobRatingRepository,
	payments JobPaymentRepository,
) *JobService {
	return &JobService{
		jobs:          jobs,
		professionals: professionals,
		ratings:       ratings,
		payments:      payments,
		now:           time.Now,
	}
}

// Get возвращает работу, доступную только её сторонам.
func (s *JobService) Get(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, userID, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Start фиксирует фактическое начало работы. Разрешено любой из сторон,
// устанавливается ровно один раз.
func (s *JobService) Start(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, userID, job); err != nil {
		return nil, err
	}

	if err := s.jobs.SetStart(ctx, jobID, s.now()); err != nil {
		if errors.Is(err, repository.ErrJobAlreadySet) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "работа уже начата")
		}
		return nil, err
	}
	return s.getJob(ctx, jobID)
}

// Finish фиксирует фактическое завершение работы. Требует начатой работы,
// устанавливается ровно один раз.
func (s *JobService) Finish(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, userID, job); err != nil {
		return nil, err
	}
	if job.Start == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "работа ещё не начата")
	}

	if err := s.jobs.SetEnd(ctx, jobID, s.now()); err != nil {
		if errors.Is(err, repository.ErrJobAlreadySet) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "работа уже завершена")
		}
		return nil, err
	}
	return s.getJob(ctx, jobID)
}

// Delete удаляет ещё не начатую и не оплаченную работу. Разрешено только
// клиенту; оплаченный платёж делает работу неудаляемой, иначе каскад стёр бы
// запись о поступлении и занизил баланс специалиста.
func (s *JobService) Delete(ctx context.Context, userID, jobID uuid.UUID) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != userID {
		return apperror.ErrForbidden
	}
	if job.Start != nil {
		return apperror.New(apperror.ErrCodeInvalidTransition, "начатую работу удалить нельзя")
	}
	payment, err := s.payments.GetByJob(ctx, jobID)
	if err != nil {
		return err
	}
	if payment != nil && payment.Paid {
		return apperror.New(apperror.ErrCodeInvalidTransition, "оплаченную работу удалить нельзя")
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return apperror.ErrJobNotFound
		}
		return err
	}
	return nil
}

// ListForClient возвращает работы пользователя как клиента.
func (s *JobService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	return s.jobs.ListByClient(ctx, clientID)
}

// ListForProfessional возвращает работы специалиста пользователя.
func (s *JobService) ListForProfessional(ctx context.Context, userID uuid.UUID) ([]models.Job, error) {
	professional, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}
	return s.jobs.ListByProfessional(ctx, professional.ID)
}

// Rate выставляет оценку завершённой работе. Оценивает только клиент работы,
// ровно один раз; уникальность пары (клиент, работа) гарантирует база.
func (s *JobService) Rate(ctx context.Context, clientID, jobID uuid.UUID, grade int) (*models.Rating, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if job.End == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "оценить можно только завершённую работу")
	}

	professional, err := s.professionals.GetByID(ctx, job.ProfessionalID)
	if err != nil {
		return nil, err
	}

	rating := &models.Rating{
		ClientID: clientID,
		JobID:    jobID,
		Grade:    grade,
	}
	if err := rating.Validate(job, professional.UserID); err != nil {
		return nil, err
	}

	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrRatingExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "работа уже оценена")
		}
		return nil, err
	}
	return rating, nil
}

// GetRating возвращает оценку работы, nil если ещё не выставлена.
func (s *JobService) GetRating(ctx context.Context, userID, jobID uuid.UUID) (*models.Rating, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, userID, job); err != nil {
		return nil, err
	}
	return s.ratings.GetByJob(ctx, jobID)
}

func (s *JobService) getJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// authorizeParty пропускает клиента работы либо владельца профиля специалиста.
func (s *JobService) authorizeParty(ctx context.Context, userID uuid.UUID, job *models.Job) error {
	if job.ClientID == userID {
		return nil
	}
	professional, err := s.professionals.GetByID(ctx, job.ProfessionalID)
	if err != nil {
		return err
	}
	if professional.UserID != userID {
		return apperror.ErrForbidden
	}
	return nil
}
