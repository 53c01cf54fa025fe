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

// AvailabilityRepository описывает операции над окнами доступности.
type AvailabilityRepository interface {
	Create(ctx context.Context, a *models.Availability) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Availability, error)
	Update(ctx context.Context, a *models.Availability) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Availability, error)
}

// AvailabilityProfessionalRepository сопоставляет профиль специалиста с пользователем.
type AvailabilityProfessionalRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error)
}

// AvailabilityService управляет календарём доступности специалиста.
type AvailabilityService struct {
	availabilities AvailabilityRepository
	professionals  AvailabilityProfessionalRepository
	now            func() time.Time
}

// NewAvailabilityService создаёт сервис календаря.
func NewAvailabilityService(
	availabilities AvailabilityRepository,
	professionals AvailabilityProfessionalRepository,
) *AvailabilityService {
	return &AvailabilityService{
		availabilities: availabilities,
		professionals:  professionals,
		now:            time.Now,
	}
}

// AvailabilityInput содержит данные окна доступности.
type AvailabilityInput struct {
	Start            time.Time
	End              time.Time
	Recurrence       *string
	WeeklyRecurrence []string
}

// Create добавляет окно доступности специалисту пользователя.
func (s *AvailabilityService) Create(ctx context.Context, userID uuid.UUID, in AvailabilityInput) (*models.Availability, error) {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}

	availability := &models.Availability{
		ProfessionalID:   professional.ID,
		Start:            in.Start,
		End:              in.End,
		Recurrence:       in.Recurrence,
		WeeklyRecurrence: in.WeeklyRecurrence,
	}
	if err := availability.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.availabilities.Create(ctx, availability); err != nil {
		return nil, err
	}
	return availability, nil
}

// Update изменяет окно доступности владельца.
func (s *AvailabilityService) Update(ctx context.Context, userID, availabilityID uuid.UUID, in AvailabilityInput) (*models.Availability, error) {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}

	availability, err := s.getOwned(ctx, professional, availabilityID)
	if err != nil {
		return nil, err
	}

	availability.Start = in.Start
	availability.End = in.End
	availability.Recurrence = in.Recurrence
	availability.WeeklyRecurrence = in.WeeklyRecurrence

	if err := availability.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.availabilities.Update(ctx, availability); err != nil {
		return nil, err
	}
	return availability, nil
}

// Delete удаляет окно доступности владельца.
func (s *AvailabilityService) Delete(ctx context.Context, userID, availabilityID uuid.UUID) error {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.getOwned(ctx, professional, availabilityID); err != nil {
		return err
	}
	return s.availabilities.Delete(ctx, availabilityID)
}

// ListByProfessional возвращает окна доступности специалиста. Доступно всем
// авторизованным пользователям для планирования предложений.
func (s *AvailabilityService) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Availability, error) {
	return s.availabilities.ListByProfessional(ctx, professionalID)
}

func (s *AvailabilityService) getProfessional(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	professional, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}
	return professional, nil
}

func (s *AvailabilityService) getOwned(ctx context.Context, professional *models.Professional, availabilityID uuid.UUID) (*models.Availability, error) {
	availability, err := s.availabilities.GetByID(ctx, availabilityID)
	if err != nil {
		if errors.Is(err, repository.ErrAvailabilityNotFound) {
			return nil, apperror.ErrAvailabilityNotFound
		}
		return nil, err
	}
	if availability.ProfessionalID != professional.ID {
		return nil, apperror.ErrForbidden
	}
	return availability, nil
}
