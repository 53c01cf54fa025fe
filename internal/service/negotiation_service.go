package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
	"github.com/ignatzorin/homecare-backend/internal/validation"
)

// NegotiationProposalRepository описывает операции над предложениями.
type NegotiationProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	Update(ctx context.Context, p *models.Proposal) error
	Delete(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, id uuid.UUID, accepted bool) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Proposal, error)
	CreateCounter(ctx context.Context, cp *models.CounterProposal) error
	GetCounterByID(ctx context.Context, id uuid.UUID) (*models.CounterProposal, error)
	GetCounterByProposal(ctx context.Context, proposalID uuid.UUID) (*models.CounterProposal, error)
	UpdateCounter(ctx context.Context, cp *models.CounterProposal) error
	DeleteCounter(ctx context.Context, id uuid.UUID) error
	RejectCounter(ctx context.Context, id uuid.UUID) error
	AcceptCounter(ctx context.Context, counterID uuid.UUID) (*models.Job, error)
}

// NegotiationProfessionalRepository нужен для проверки владения профилем специалиста.
type NegotiationProfessionalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error)
}

// NegotiationJobRepository создаёт работу при прямом принятии предложения.
type NegotiationJobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByProposal(ctx context.Context, proposalID uuid.UUID) (*models.Job, error)
}

// NegotiationService ведёт переговорный цикл: предложение, встречное
// предложение, решение и порождение работы.
type NegotiationService struct {
	proposals     NegotiationProposalRepository
	professionals NegotiationProfessionalRepository
	jobs          NegotiationJobRepository
	minPrice      float64
	now           func() time.Time
}

// NewNegotiationService создаёт переговорный сервис.
func NewNegotiationService(
	proposals NegotiationProposalRepository,
	professionals NegotiationProfessionalRepository,
	jobs NegotiationJobRepository,
	minPrice float64,
) *NegotiationService {
	return &NegotiationService{
		proposals:     proposals,
		professionals: professionals,
		jobs:          jobs,
		minPrice:      minPrice,
		now:           time.Now,
	}
}

// ProposalInput содержит данные предложения от клиента.
type ProposalInput struct {
	ProfessionalID   uuid.UUID
	City             string
	State            string
	ProfessionalType string
	ServiceType      string
	Start            time.Time
	End              time.Time
	Value            float64
	Description      string
}

// CreateProposal создаёт предложение клиента специалисту.
func (s *NegotiationService) CreateProposal(ctx context.Context, clientID uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	professional, err := s.professionals.GetByID(ctx, in.ProfessionalID)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}

	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	proposal := &models.Proposal{
		ClientID:         clientID,
		ProfessionalID:   in.ProfessionalID,
		City:             in.City,
		State:            in.State,
		ProfessionalType: in.ProfessionalType,
		ServiceType:      in.ServiceType,
		Start:            in.Start,
		End:              in.End,
		Value:            in.Value,
		Description:      in.Description,
	}

	if err := proposal.Validate(s.now(), professional.UserID, s.minPrice); err != nil {
		return nil, err
	}

	if err := s.proposals.Create(ctx, proposal); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"proposal_id":     proposal.ID,
		"client_id":       clientID,
		"professional_id": in.ProfessionalID,
		"value":           in.Value,
	}).Info("negotiation: предложение создано")

	return proposal, nil
}

// GetProposal возвращает предложение, доступное только его сторонам.
func (s *NegotiationService) GetProposal(ctx context.Context, userID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, userID, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// UpdateProposal редактирует ещё не рассмотренное предложение клиента.
func (s *NegotiationService) UpdateProposal(ctx context.Context, clientID, proposalID uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if !proposal.Pending() {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "предложение уже рассмотрено")
	}

	professional, err := s.professionals.GetByID(ctx, proposal.ProfessionalID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	proposal.City = in.City
	proposal.State = in.State
	proposal.ProfessionalType = in.ProfessionalType
	proposal.ServiceType = in.ServiceType
	proposal.Start = in.Start
	proposal.End = in.End
	proposal.Value = in.Value
	proposal.Description = in.Description

	if err := proposal.Validate(s.now(), professional.UserID, s.minPrice); err != nil {
		return nil, err
	}

	if err := s.proposals.Update(ctx, proposal); err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "предложение уже рассмотрено")
		}
		return nil, err
	}
	return proposal, nil
}

// DeleteProposal удаляет ещё не рассмотренное предложение клиента.
// Рассмотренное предложение удалить нельзя даже владельцу: за принятым
// стоит работа со своими платежами.
func (s *NegotiationService) DeleteProposal(ctx context.Context, clientID, proposalID uuid.UUID) error {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.ClientID != clientID {
		return apperror.ErrForbidden
	}
	if !proposal.Pending() {
		return apperror.New(apperror.ErrCodeInvalidTransition, "предложение уже рассмотрено")
	}
	if err := s.proposals.Delete(ctx, proposalID); err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return apperror.ErrProposalNotFound
		}
		return err
	}
	return nil
}

// ListClientProposals возвращает предложения, созданные клиентом.
func (s *NegotiationService) ListClientProposals(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error) {
	return s.proposals.ListByClient(ctx, clientID)
}

// ListProfessionalProposals возвращает предложения, адресованные специалисту пользователя.
func (s *NegotiationService) ListProfessionalProposals(ctx context.Context, userID uuid.UUID) ([]models.Proposal, error) {
	professional, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}
	return s.proposals.ListByProfessional(ctx, professional.ID)
}

// AcceptProposal принимает предложение от имени специалиста и порождает
// единственную работу по исходной цене. Решение однократно: проигравший
// конкурентный запрос получает INVALID_TRANSITION.
func (s *NegotiationService) AcceptProposal(ctx context.Context, userID, proposalID uuid.UUID) (*models.Job, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProfessional(ctx, userID, proposal); err != nil {
		return nil, err
	}

	job := &models.Job{
		ProposalID:     proposal.ID,
		ProfessionalID: proposal.ProfessionalID,
		ClientID:       proposal.ClientID,
		Value:          proposal.Value,
	}
	if err := job.Validate(proposal, s.minPrice); err != nil {
		return nil, err
	}

	if err := s.proposals.Resolve(ctx, proposalID, true); err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "предложение уже рассмотрено")
		}
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, repository.ErrJobExists) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "работа по предложению уже создана")
		}
		// Решение уже зафиксировано, но работа не создана. Предложение
		// остаётся принятым, вызывающий видит причину сбоя.
		logger.Log.WithFields(map[string]interface{}{
			"proposal_id": proposalID,
			"error":       err.Error(),
		}).Error("negotiation: предложение принято, но работа не создана")
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "предложение принято, но работа не создана")
	}

	logger.Log.WithFields(map[string]interface{}{
		"proposal_id": proposalID,
		"job_id":      job.ID,
		"value":       job.Value,
	}).Info("negotiation: предложение принято, работа создана")

	return job, nil
}

// RejectProposal отклоняет предложение от имени специалиста.
func (s *NegotiationService) RejectProposal(ctx context.Context, userID, proposalID uuid.UUID) error {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if err := s.authorizeProfessional(ctx, userID, proposal); err != nil {
		return err
	}

	if err := s.proposals.Resolve(ctx, proposalID, false); err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return apperror.New(apperror.ErrCodeInvalidTransition, "предложение уже рассмотрено")
		}
		return err
	}
	return nil
}

// CounterInput содержит данные встречного предложения.
type CounterInput struct {
	Value       float64
	Description string
}

// CreateCounterProposal создаёт единственное встречное предложение специалиста.
// Допустимо только к ещё не рассмотренному предложению, цена в пределах ±20%.
func (s *NegotiationService) CreateCounterProposal(ctx context.Context, userID, proposalID uuid.UUID, in CounterInput) (*models.CounterProposal, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProfessional(ctx, userID, proposal); err != nil {
		return nil, err
	}
	if !proposal.Pending() {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "предложение уже рассмотрено")
	}

	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	counter := &models.CounterProposal{
		ProposalID:  proposalID,
		Value:       in.Value,
		Description: in.Description,
	}
	if err := counter.Validate(proposal.Value); err != nil {
		return nil, err
	}

	if err := s.proposals.CreateCounter(ctx, counter); err != nil {
		if errors.Is(err, repository.ErrCounterProposalExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "встречное предложение уже существует")
		}
		return nil, err
	}
	return counter, nil
}

// GetCounterProposal возвращает встречное предложение по родительскому, nil если его нет.
func (s *NegotiationService) GetCounterProposal(ctx context.Context, userID, proposalID uuid.UUID) (*models.CounterProposal, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, userID, proposal); err != nil {
		return nil, err
	}
	return s.proposals.GetCounterByProposal(ctx, proposalID)
}

// UpdateCounterProposal редактирует ещё не рассмотренное встречное предложение
// специалиста. Цена заново проверяется относительно родительского предложения.
func (s *NegotiationService) UpdateCounterProposal(ctx context.Context, userID, counterID uuid.UUID, in CounterInput) (*models.CounterProposal, error) {
	counter, proposal, err := s.getCounterWithParent(ctx, counterID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProfessional(ctx, userID, proposal); err != nil {
		return nil, err
	}
	if !counter.Pending() {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
	}

	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	counter.Value = in.Value
	counter.Description = in.Description
	if err := counter.Validate(proposal.Value); err != nil {
		return nil, err
	}

	if err := s.proposals.UpdateCounter(ctx, counter); err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
		}
		return nil, err
	}
	return counter, nil
}

// DeleteCounterProposal удаляет ещё не рассмотренное встречное предложение.
// Разрешено только специалисту, которому адресовано родительское предложение.
func (s *NegotiationService) DeleteCounterProposal(ctx context.Context, userID, counterID uuid.UUID) error {
	counter, proposal, err := s.getCounterWithParent(ctx, counterID)
	if err != nil {
		return err
	}
	if err := s.authorizeProfessional(ctx, userID, proposal); err != nil {
		return err
	}
	if !counter.Pending() {
		return apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
	}

	if err := s.proposals.DeleteCounter(ctx, counterID); err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
		}
		return err
	}
	return nil
}

// AcceptCounterProposal принимает встречное предложение от имени клиента.
// Родительское предложение принудительно принимается, создаётся ровно одна
// работа по встречной цене.
func (s *NegotiationService) AcceptCounterProposal(ctx context.Context, clientID, counterID uuid.UUID) (*models.Job, error) {
	counter, proposal, err := s.getCounterWithParent(ctx, counterID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if !counter.Pending() {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
	}
	// Нижняя граница коридора ±20% может оказаться ниже минимальной цены
	// услуги; работа по такой цене не создаётся.
	if counter.Value < s.minPrice {
		return nil, apperror.New(apperror.ErrCodeValidation, "стоимость работы ниже минимальной цены услуги")
	}

	job, err := s.proposals.AcceptCounter(ctx, counterID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
		}
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"counter_id":  counterID,
		"proposal_id": proposal.ID,
		"job_id":      job.ID,
		"value":       job.Value,
	}).Info("negotiation: встречное предложение принято, работа создана")

	return job, nil
}

// RejectCounterProposal отклоняет встречное предложение; родительское
// предложение остаётся на рассмотрении.
func (s *NegotiationService) RejectCounterProposal(ctx context.Context, clientID, counterID uuid.UUID) error {
	counter, proposal, err := s.getCounterWithParent(ctx, counterID)
	if err != nil {
		return err
	}
	if proposal.ClientID != clientID {
		return apperror.ErrForbidden
	}
	if !counter.Pending() {
		return apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
	}

	if err := s.proposals.RejectCounter(ctx, counterID); err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return apperror.New(apperror.ErrCodeInvalidTransition, "встречное предложение уже рассмотрено")
		}
		return err
	}
	return nil
}

func (s *NegotiationService) getProposal(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

func (s *NegotiationService) getCounterWithParent(ctx context.Context, counterID uuid.UUID) (*models.CounterProposal, *models.Proposal, error) {
	counter, err := s.proposals.GetCounterByID(ctx, counterID)
	if err != nil {
		if errors.Is(err, repository.ErrCounterProposalNotFound) {
			return nil, nil, apperror.ErrCounterProposalNotFound
		}
		return nil, nil, err
	}
	proposal, err := s.getProposal(ctx, counter.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	return counter, proposal, nil
}

// authorizeProfessional проверяет, что пользователь владеет профилем
// специалиста, которому адресовано предложение.
func (s *NegotiationService) authorizeProfessional(ctx context.Context, userID uuid.UUID, proposal *models.Proposal) error {
	professional, err := s.professionals.GetByID(ctx, proposal.ProfessionalID)
	if err != nil {
		return err
	}
	if professional.UserID != userID {
		return apperror.ErrForbidden
	}
	return nil
}

// authorizeParty пропускает клиента предложения либо владельца профиля специалиста.
func (s *NegotiationService) authorizeParty(ctx context.Context, userID uuid.UUID, proposal *models.Proposal) error {
	if proposal.ClientID == userID {
		return nil
	}
	professional, err := s.professionals.GetByID(ctx, proposal.ProfessionalID)
	if err != nil {
		return err
	}
	if professional.UserID != userID {
		return apperror.ErrForbidden
	}
	return nil
}
