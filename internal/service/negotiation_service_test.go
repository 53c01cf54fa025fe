package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
)

type mockNegotiationProposals struct {
	mock.Mock
}

func (m *mockNegotiationProposals) Create(ctx context.Context, p *models.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockNegotiationProposals) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockNegotiationProposals) Update(ctx context.Context, p *models.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockNegotiationProposals) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNegotiationProposals) Resolve(ctx context.Context, id uuid.UUID, accepted bool) error {
	args := m.Called(ctx, id, accepted)
	return args.Error(0)
}

func (m *mockNegotiationProposals) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockNegotiationProposals) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, professionalID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockNegotiationProposals) CreateCounter(ctx context.Context, cp *models.CounterProposal) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *mockNegotiationProposals) GetCounterByID(ctx context.Context, id uuid.UUID) (*models.CounterProposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CounterProposal), args.Error(1)
}

func (m *mockNegotiationProposals) GetCounterByProposal(ctx context.Context, proposalID uuid.UUID) (*models.CounterProposal, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CounterProposal), args.Error(1)
}

func (m *mockNegotiationProposals) UpdateCounter(ctx context.Context, cp *models.CounterProposal) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *mockNegotiationProposals) DeleteCounter(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNegotiationProposals) RejectCounter(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNegotiationProposals) AcceptCounter(ctx context.Context, counterID uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, counterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

type mockNegotiationProfessionals struct {
	mock.Mock
}

func (m *mockNegotiationProfessionals) GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professional), args.Error(1)
}

func (m *mockNegotiationProfessionals) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professional), args.Error(1)
}

type mockNegotiationJobs struct {
	mock.Mock
}

func (m *mockNegotiationJobs) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockNegotiationJobs) GetByProposal(ctx context.Context, proposalID uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

type negotiationFixture struct {
	proposals     *mockNegotiationProposals
	professionals *mockNegotiationProfessionals
	jobs          *mockNegotiationJobs
	svc           *NegotiationService
}

func newNegotiationFixture() *negotiationFixture {
	f := &negotiationFixture{
		proposals:     new(mockNegotiationProposals),
		professionals: new(mockNegotiationProfessionals),
		jobs:          new(mockNegotiationJobs),
	}
	f.svc = NewNegotiationService(f.proposals, f.professionals, f.jobs, 65)
	return f
}

func pendingProposal(clientID uuid.UUID, professionalID uuid.UUID, value float64) *models.Proposal {
	return &models.Proposal{
		ID:               uuid.New(),
		ClientID:         clientID,
		ProfessionalID:   professionalID,
		City:             "Sao Paulo",
		State:            "SP",
		ProfessionalType: models.OccupationCaregiver,
		ServiceType:      models.ServiceHomeCare,
		Start:            time.Now().Add(24 * time.Hour),
		End:              time.Now().Add(30 * time.Hour),
		Value:            value,
		Description:      "уход за пожилым человеком на дому",
	}
}

func TestNegotiationService_CreateProposal_BelowMinPrice(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	professionalID := uuid.New()

	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: uuid.New()}, nil)

	_, err := f.svc.CreateProposal(ctx, clientID, ProposalInput{
		ProfessionalID:   professionalID,
		City:             "Sao Paulo",
		State:            "SP",
		ProfessionalType: models.OccupationCaregiver,
		ServiceType:      models.ServiceHomeCare,
		Start:            time.Now().Add(24 * time.Hour),
		End:              time.Now().Add(30 * time.Hour),
		Value:            64,
		Description:      "уход за пожилым человеком на дому",
	})
	assertCode(t, err, apperror.ErrCodeValidation)
}

func TestNegotiationService_CreateProposal_ToSelf(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	professionalID := uuid.New()

	// Профиль специалиста принадлежит самому клиенту.
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: clientID}, nil)

	_, err := f.svc.CreateProposal(ctx, clientID, ProposalInput{
		ProfessionalID:   professionalID,
		City:             "Sao Paulo",
		State:            "SP",
		ProfessionalType: models.OccupationCaregiver,
		ServiceType:      models.ServiceHomeCare,
		Start:            time.Now().Add(24 * time.Hour),
		End:              time.Now().Add(30 * time.Hour),
		Value:            300,
		Description:      "уход за пожилым человеком на дому",
	})
	assertCode(t, err, apperror.ErrCodeValidation)
}

func TestNegotiationService_DeleteProposal_Pending(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	proposal := pendingProposal(clientID, uuid.New(), 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.proposals.On("Delete", ctx, proposal.ID).Return(nil)

	err := f.svc.DeleteProposal(ctx, clientID, proposal.ID)
	assert.NoError(t, err)
	f.proposals.AssertExpectations(t)
}

func TestNegotiationService_DeleteProposal_ResolvedProposal(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()

	for _, accepted := range []bool{true, false} {
		proposal := pendingProposal(clientID, uuid.New(), 300)
		proposal.Accepted = boolPtr(accepted)
		f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

		err := f.svc.DeleteProposal(ctx, clientID, proposal.ID)
		assertCode(t, err, apperror.ErrCodeInvalidTransition)
	}
	// Принятое предложение держит работу и её платёж: удаление запрещено
	// даже владельцу.
	f.proposals.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestNegotiationService_AcceptProposal_CreatesJobAtProposalValue(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("Resolve", ctx, proposal.ID, true).Return(nil)
	f.jobs.On("Create", ctx, mock.AnythingOfType("*models.Job")).Return(nil)

	job, err := f.svc.AcceptProposal(ctx, userID, proposal.ID)
	assert.NoError(t, err)
	assert.Equal(t, float64(300), job.Value)
	assert.Equal(t, proposal.ID, job.ProposalID)
	assert.Equal(t, proposal.ClientID, job.ClientID)
	f.proposals.AssertExpectations(t)
	f.jobs.AssertExpectations(t)
}

func TestNegotiationService_AcceptProposal_LoserGetsInvalidTransition(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("Resolve", ctx, proposal.ID, true).Return(repository.ErrAlreadyResolved)

	_, err := f.svc.AcceptProposal(ctx, userID, proposal.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNegotiationService_AcceptProposal_BelowMinPrice(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	// Предложение сохранено до повышения минимальной цены услуги.
	proposal := pendingProposal(uuid.New(), professionalID, 50)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)

	_, err := f.svc.AcceptProposal(ctx, userID, proposal.ID)
	assertCode(t, err, apperror.ErrCodeValidation)
	f.proposals.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
	f.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNegotiationService_AcceptProposal_JobCreateFailureKeepsAccepted(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("Resolve", ctx, proposal.ID, true).Return(nil)
	f.jobs.On("Create", ctx, mock.AnythingOfType("*models.Job")).
		Return(errors.New("insert failed"))

	_, err := f.svc.AcceptProposal(ctx, userID, proposal.ID)
	assertCode(t, err, apperror.ErrCodeValidation)
	// Решение уже зафиксировано, откат не выполняется.
	f.proposals.AssertExpectations(t)
}

func TestNegotiationService_AcceptProposal_Forbidden(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: uuid.New()}, nil)

	_, err := f.svc.AcceptProposal(ctx, uuid.New(), proposal.ID)
	assertCode(t, err, apperror.ErrCodeForbidden)
}

func TestNegotiationService_RejectProposal_AfterAccept(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("Resolve", ctx, proposal.ID, false).Return(repository.ErrAlreadyResolved)

	err := f.svc.RejectProposal(ctx, userID, proposal.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestNegotiationService_CreateCounterProposal_Band(t *testing.T) {
	cases := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"нижняя граница включительно", 240, false},
		{"верхняя граница включительно", 360, false},
		{"ниже коридора", 239.99, true},
		{"выше коридора", 360.01, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newNegotiationFixture()
			ctx := context.Background()
			userID := uuid.New()
			professionalID := uuid.New()
			proposal := pendingProposal(uuid.New(), professionalID, 300)

			f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
			f.professionals.On("GetByID", ctx, professionalID).
				Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
			if !tc.wantErr {
				f.proposals.On("CreateCounter", ctx, mock.AnythingOfType("*models.CounterProposal")).Return(nil)
			}

			counter, err := f.svc.CreateCounterProposal(ctx, userID, proposal.ID, CounterInput{
				Value:       tc.value,
				Description: "готов выйти за другую сумму",
			})
			if tc.wantErr {
				assertCode(t, err, apperror.ErrCodeValidation)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.value, counter.Value)
			}
		})
	}
}

func TestNegotiationService_CreateCounterProposal_ResolvedProposal(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)
	proposal.Accepted = boolPtr(false)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)

	_, err := f.svc.CreateCounterProposal(ctx, userID, proposal.ID, CounterInput{
		Value:       300,
		Description: "готов выйти за другую сумму",
	})
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestNegotiationService_CreateCounterProposal_Duplicate(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("CreateCounter", ctx, mock.AnythingOfType("*models.CounterProposal")).
		Return(repository.ErrCounterProposalExists)

	_, err := f.svc.CreateCounterProposal(ctx, userID, proposal.ID, CounterInput{
		Value:       320,
		Description: "готов выйти за другую сумму",
	})
	assertCode(t, err, apperror.ErrCodeConflict)
}

func TestNegotiationService_UpdateCounterProposal_RevalidatesBand(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)
	counter := &models.CounterProposal{ID: uuid.New(), ProposalID: proposal.ID, Value: 320}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("UpdateCounter", ctx, mock.AnythingOfType("*models.CounterProposal")).Return(nil)

	got, err := f.svc.UpdateCounterProposal(ctx, userID, counter.ID, CounterInput{
		Value:       340,
		Description: "готов выйти за другую сумму",
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(340), got.Value)

	// Новая цена вне коридора ±20% от исходного предложения.
	_, err = f.svc.UpdateCounterProposal(ctx, userID, counter.ID, CounterInput{
		Value:       361,
		Description: "готов выйти за другую сумму",
	})
	assertCode(t, err, apperror.ErrCodeValidation)
}

func TestNegotiationService_UpdateCounterProposal_Resolved(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)
	counter := &models.CounterProposal{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		Value:      320,
		Accepted:   boolPtr(true),
	}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)

	_, err := f.svc.UpdateCounterProposal(ctx, userID, counter.ID, CounterInput{
		Value:       340,
		Description: "готов выйти за другую сумму",
	})
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.proposals.AssertNotCalled(t, "UpdateCounter", mock.Anything, mock.Anything)
}

func TestNegotiationService_DeleteCounterProposal_Pending(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)
	counter := &models.CounterProposal{ID: uuid.New(), ProposalID: proposal.ID, Value: 320}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.proposals.On("DeleteCounter", ctx, counter.ID).Return(nil)

	err := f.svc.DeleteCounterProposal(ctx, userID, counter.ID)
	assert.NoError(t, err)
	f.proposals.AssertExpectations(t)
}

func TestNegotiationService_DeleteCounterProposal_OnlyProfessional(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(clientID, professionalID, 300)
	counter := &models.CounterProposal{ID: uuid.New(), ProposalID: proposal.ID, Value: 320}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: uuid.New()}, nil)

	// Клиент родительского предложения не управляет встречным.
	err := f.svc.DeleteCounterProposal(ctx, clientID, counter.ID)
	assertCode(t, err, apperror.ErrCodeForbidden)
	f.proposals.AssertNotCalled(t, "DeleteCounter", mock.Anything, mock.Anything)
}

func TestNegotiationService_DeleteCounterProposal_Resolved(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(uuid.New(), professionalID, 300)
	counter := &models.CounterProposal{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		Value:      320,
		Accepted:   boolPtr(false),
	}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)

	err := f.svc.DeleteCounterProposal(ctx, userID, counter.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.proposals.AssertNotCalled(t, "DeleteCounter", mock.Anything, mock.Anything)
}

func TestNegotiationService_AcceptCounterProposal_CreatesJobAtCounterValue(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	professionalID := uuid.New()
	proposal := pendingProposal(clientID, professionalID, 300)
	counter := &models.CounterProposal{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		Value:      320,
	}
	job := &models.Job{
		ID:             uuid.New(),
		ProposalID:     proposal.ID,
		ProfessionalID: professionalID,
		ClientID:       clientID,
		Value:          320,
	}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.proposals.On("AcceptCounter", ctx, counter.ID).Return(job, nil)

	got, err := f.svc.AcceptCounterProposal(ctx, clientID, counter.ID)
	assert.NoError(t, err)
	assert.Equal(t, float64(320), got.Value)
	f.proposals.AssertExpectations(t)
}

func TestNegotiationService_AcceptCounterProposal_OnlyClient(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	proposal := pendingProposal(uuid.New(), uuid.New(), 300)
	counter := &models.CounterProposal{ID: uuid.New(), ProposalID: proposal.ID, Value: 320}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := f.svc.AcceptCounterProposal(ctx, uuid.New(), counter.ID)
	assertCode(t, err, apperror.ErrCodeForbidden)
	f.proposals.AssertNotCalled(t, "AcceptCounter", mock.Anything, mock.Anything)
}

func TestNegotiationService_AcceptCounterProposal_AlreadyResolved(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	proposal := pendingProposal(clientID, uuid.New(), 300)
	counter := &models.CounterProposal{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		Value:      320,
		Accepted:   boolPtr(false),
	}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := f.svc.AcceptCounterProposal(ctx, clientID, counter.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.proposals.AssertNotCalled(t, "AcceptCounter", mock.Anything, mock.Anything)
}

func TestNegotiationService_AcceptCounterProposal_BelowMinPrice(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	proposal := pendingProposal(clientID, uuid.New(), 80)
	// 64 в пределах коридора ±20% от 80, но ниже минимальной цены услуги.
	counter := &models.CounterProposal{ID: uuid.New(), ProposalID: proposal.ID, Value: 64}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := f.svc.AcceptCounterProposal(ctx, clientID, counter.ID)
	assertCode(t, err, apperror.ErrCodeValidation)
	f.proposals.AssertNotCalled(t, "AcceptCounter", mock.Anything, mock.Anything)
}

func TestNegotiationService_RejectCounterProposal_KeepsParentPending(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	proposal := pendingProposal(clientID, uuid.New(), 300)
	counter := &models.CounterProposal{ID: uuid.New(), ProposalID: proposal.ID, Value: 320}

	f.proposals.On("GetCounterByID", ctx, counter.ID).Return(counter, nil)
	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	f.proposals.On("RejectCounter", ctx, counter.ID).Return(nil)

	err := f.svc.RejectCounterProposal(ctx, clientID, counter.ID)
	assert.NoError(t, err)
	// Родительское предложение не трогаем.
	f.proposals.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestNegotiationService_UpdateProposal_ResolvedProposal(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	clientID := uuid.New()
	proposal := pendingProposal(clientID, uuid.New(), 300)
	proposal.Accepted = boolPtr(true)

	f.proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := f.svc.UpdateProposal(ctx, clientID, proposal.ID, ProposalInput{})
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
}
