package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
)

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockJobs) SetStart(ctx context.Context, id uuid.UUID, start time.Time) error {
	args := m.Called(ctx, id, start)
	return args.Error(0)
}

func (m *mockJobs) SetEnd(ctx context.Context, id uuid.UUID, end time.Time) error {
	args := m.Called(ctx, id, end)
	return args.Error(0)
}

func (m *mockJobs) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockJobs) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobs) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Job, error) {
	args := m.Called(ctx, professionalID)
	return args.Get(0).([]models.Job), args.Error(1)
}

type mockJobProfessionals struct {
	mock.Mock
}

func (m *mockJobProfessionals) GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professional), args.Error(1)
}

func (m *mockJobProfessionals) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professional), args.Error(1)
}

type mockJobRatings struct {
	mock.Mock
}

func (m *mockJobRatings) Create(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockJobRatings) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Rating, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

type mockJobPayments struct {
	mock.Mock
}

func (m *mockJobPayments) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type jobFixture struct {
	jobs          *mockJobs
	professionals *mockJobProfessionals
	ratings       *mockJobRatings
	payments      *mockJobPayments
	svc           *JobService
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		jobs:          new(mockJobs),
		professionals: new(mockJobProfessionals),
		ratings:       new(mockJobRatings),
		payments:      new(mockJobPayments),
	}
	f.svc = NewJobService(f.jobs, f.professionals, f.ratings, f.payments)
	return f
}

func TestJobService_Start_Once(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.jobs.On("SetStart", ctx, job.ID, mock.AnythingOfType("time.Time")).Return(nil)

	_, err := f.svc.Start(ctx, clientID, job.ID)
	assert.NoError(t, err)
	f.jobs.AssertExpectations(t)
}

func TestJobService_Start_AlreadyStarted(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.jobs.On("SetStart", ctx, job.ID, mock.AnythingOfType("time.Time")).Return(repository.ErrJobAlreadySet)

	_, err := f.svc.Start(ctx, clientID, job.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestJobService_Finish_BeforeStart(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := f.svc.Finish(ctx, clientID, job.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.jobs.AssertNotCalled(t, "SetEnd", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobService_Finish_AlreadyFinished(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	start := time.Now().Add(-2 * time.Hour)
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300, Start: &start}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.jobs.On("SetEnd", ctx, job.ID, mock.AnythingOfType("time.Time")).Return(repository.ErrJobAlreadySet)

	_, err := f.svc.Finish(ctx, clientID, job.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestJobService_Start_ByProfessional(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	userID := uuid.New()
	professionalID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: uuid.New(), ProfessionalID: professionalID, Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.professionals.On("GetByID", ctx, professionalID).
		Return(&models.Professional{ID: professionalID, UserID: userID}, nil)
	f.jobs.On("SetStart", ctx, job.ID, mock.AnythingOfType("time.Time")).Return(nil)

	_, err := f.svc.Start(ctx, userID, job.ID)
	assert.NoError(t, err)
}

func TestJobService_Delete_StartedJob(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	start := time.Now().Add(-time.Hour)
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300, Start: &start}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	err := f.svc.Delete(ctx, clientID, job.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.jobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestJobService_Delete_PaidPayment(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).
		Return(&models.Payment{ID: uuid.New(), JobID: job.ID, Value: 300, Paid: true}, nil)

	// Удаление стёрло бы оплаченный платёж и занизило баланс специалиста.
	err := f.svc.Delete(ctx, clientID, job.ID)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
	f.jobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestJobService_Delete_UnpaidPayment(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).
		Return(&models.Payment{ID: uuid.New(), JobID: job.ID, Value: 300, Paid: false}, nil)
	f.jobs.On("Delete", ctx, job.ID).Return(nil)

	err := f.svc.Delete(ctx, clientID, job.ID)
	assert.NoError(t, err)
	f.jobs.AssertExpectations(t)
}

func TestJobService_Delete_NoPayment(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).Return(nil, nil)
	f.jobs.On("Delete", ctx, job.ID).Return(nil)

	err := f.svc.Delete(ctx, clientID, job.ID)
	assert.NoError(t, err)
}

func TestJobService_Delete_OnlyClient(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	job := &models.Job{ID: uuid.New(), ClientID: uuid.New(), ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	err := f.svc.Delete(ctx, uuid.New(), job.ID)
	assertCode(t, err, apperror.ErrCodeForbidden)
}

func finishedJob(clientID uuid.UUID) *models.Job {
	start := time.Now().Add(-3 * time.Hour)
	end := time.Now().Add(-time.Hour)
	return &models.Job{
		ID:             uuid.New(),
		ClientID:       clientID,
		ProfessionalID: uuid.New(),
		Value:          300,
		Start:          &start,
		End:            &end,
	}
}

func TestJobService_Rate_Success(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := finishedJob(clientID)

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, UserID: uuid.New()}, nil)
	f.ratings.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := f.svc.Rate(ctx, clientID, job.ID, 5)
	assert.NoError(t, err)
	assert.Equal(t, 5, rating.Grade)
}

func TestJobService_Rate_GradeBounds(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := finishedJob(clientID)

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, UserID: uuid.New()}, nil)

	_, err := f.svc.Rate(ctx, clientID, job.ID, 0)
	assertCode(t, err, apperror.ErrCodeValidation)

	_, err = f.svc.Rate(ctx, clientID, job.ID, 6)
	assertCode(t, err, apperror.ErrCodeValidation)
}

func TestJobService_Rate_UnfinishedJob(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := f.svc.Rate(ctx, clientID, job.ID, 5)
	assertCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestJobService_Rate_NotClient(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	job := finishedJob(uuid.New())

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := f.svc.Rate(ctx, uuid.New(), job.ID, 5)
	assertCode(t, err, apperror.ErrCodeForbidden)
}

func TestJobService_Rate_Duplicate(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := finishedJob(clientID)

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, UserID: uuid.New()}, nil)
	f.ratings.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(repository.ErrRatingExists)

	_, err := f.svc.Rate(ctx, clientID, job.ID, 4)
	assertCode(t, err, apperror.ErrCodeConflict)
}

func TestJobService_GetRating_NilWhenAbsent(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := finishedJob(clientID)

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.ratings.On("GetByJob", ctx, job.ID).Return(nil, nil)

	rating, err := f.svc.GetRating(ctx, clientID, job.ID)
	assert.NoError(t, err)
	assert.Nil(t, rating)
}
