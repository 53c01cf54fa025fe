package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/homecare-backend/internal/gateway"
	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPayments) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPayments) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPayments) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error {
	args := m.Called(ctx, id, transactionID)
	return args.Error(0)
}

func (m *mockPayments) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Payment), args.Error(1)
}

type mockPaymentJobs struct {
	mock.Mock
}

func (m *mockPaymentJobs) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

type mockPaymentUsers struct {
	mock.Mock
}

func (m *mockPaymentUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockPaymentProfessionals struct {
	mock.Mock
}

func (m *mockPaymentProfessionals) GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professional), args.Error(1)
}

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) FindCustomer(ctx context.Context, email string) (*gateway.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Customer), args.Error(1)
}

func (m *mockPaymentGateway) CreateTransaction(ctx context.Context, charge *gateway.ChargeInput) (*gateway.Transaction, error) {
	args := m.Called(ctx, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Transaction), args.Error(1)
}

func (m *mockPaymentGateway) FindTransaction(ctx context.Context, id string) (*gateway.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Transaction), args.Error(1)
}

type paymentFixture struct {
	payments      *mockPayments
	jobs          *mockPaymentJobs
	users         *mockPaymentUsers
	professionals *mockPaymentProfessionals
	gateway       *mockPaymentGateway
	svc           *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments:      new(mockPayments),
		jobs:          new(mockPaymentJobs),
		users:         new(mockPaymentUsers),
		professionals: new(mockPaymentProfessionals),
		gateway:       new(mockPaymentGateway),
	}
	f.svc = NewPaymentService(f.payments, f.jobs, f.users, f.professionals, f.gateway, nil)
	return f
}

func readyCustomer() *gateway.Customer {
	return &gateway.Customer{
		ID:    "cus_1",
		Email: "client@example.com",
		Cards: []gateway.Card{{ID: "card_1"}},
		Address: &gateway.Address{
			ZipCode: "01310-000",
			Street:  "Avenida Paulista",
		},
	}
}

func paymentScenario(f *paymentFixture) (clientID uuid.UUID, job *models.Job) {
	clientID = uuid.New()
	job = &models.Job{
		ID:             uuid.New(),
		ClientID:       clientID,
		ProfessionalID: uuid.New(),
		Value:          300,
	}
	ctx := context.Background()
	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).Return(nil, nil).Once()
	f.users.On("GetByID", ctx, clientID).
		Return(&models.User{ID: clientID, Email: "client@example.com", SavedInGateway: true}, nil)
	return clientID, job
}

func TestPaymentService_Pay_Success(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID, job := paymentScenario(f)

	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, UserID: uuid.New(), RecipientID: strPtr("re_1")}, nil)
	f.gateway.On("FindCustomer", ctx, "client@example.com").Return(readyCustomer(), nil)
	f.payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)
	f.gateway.On("CreateTransaction", ctx, mock.AnythingOfType("*gateway.ChargeInput")).
		Return(&gateway.Transaction{ID: "tx_1", Status: gateway.TransactionStatusPaid, Amount: 300}, nil)
	f.payments.On("MarkPaid", ctx, mock.AnythingOfType("uuid.UUID"), "tx_1").Return(nil)

	result, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.NoError(t, err)
	assert.True(t, result.Payment.Paid)
	assert.Equal(t, float64(300), result.Payment.Value)
	assert.Equal(t, "tx_1", result.Transaction.ID)
	f.payments.AssertExpectations(t)
}

func TestPaymentService_Pay_NoGatewayProfile(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).Return(nil, nil)
	f.users.On("GetByID", ctx, clientID).
		Return(&models.User{ID: clientID, Email: "client@example.com", SavedInGateway: false}, nil)
	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, RecipientID: strPtr("re_1")}, nil)

	_, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.ErrorIs(t, err, apperror.ErrCustomerRequired)
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_NoCard(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID, job := paymentScenario(f)

	customer := readyCustomer()
	customer.Cards = nil

	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, RecipientID: strPtr("re_1")}, nil)
	f.gateway.On("FindCustomer", ctx, "client@example.com").Return(customer, nil)

	_, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.ErrorIs(t, err, apperror.ErrCardRequired)
}

func TestPaymentService_Pay_NoAddress(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID, job := paymentScenario(f)

	customer := readyCustomer()
	customer.Address = nil

	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, RecipientID: strPtr("re_1")}, nil)
	f.gateway.On("FindCustomer", ctx, "client@example.com").Return(customer, nil)

	_, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.ErrorIs(t, err, apperror.ErrAddressRequired)
}

func TestPaymentService_Pay_NoRecipient(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID, job := paymentScenario(f)

	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID}, nil)
	f.gateway.On("FindCustomer", ctx, "client@example.com").Return(readyCustomer(), nil)

	_, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.ErrorIs(t, err, apperror.ErrRecipientRequired)
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_Idempotent(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}
	txID := "tx_1"
	payment := &models.Payment{
		ID:            uuid.New(),
		ClientID:      clientID,
		JobID:         job.ID,
		Value:         300,
		Paid:          true,
		TransactionID: &txID,
	}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).Return(payment, nil)
	f.gateway.On("FindTransaction", ctx, txID).
		Return(&gateway.Transaction{ID: txID, Status: gateway.TransactionStatusPaid, Amount: 300}, nil)

	result, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.NoError(t, err)
	assert.Equal(t, payment, result.Payment)
	assert.Equal(t, txID, result.Transaction.ID)
	// Нового списания нет.
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_Refused(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID, job := paymentScenario(f)

	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, RecipientID: strPtr("re_1")}, nil)
	f.gateway.On("FindCustomer", ctx, "client@example.com").Return(readyCustomer(), nil)
	f.payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)
	f.gateway.On("CreateTransaction", ctx, mock.AnythingOfType("*gateway.ChargeInput")).
		Return(&gateway.Transaction{ID: "tx_2", Status: gateway.TransactionStatusRefused}, nil)

	_, err := f.svc.Pay(ctx, clientID, job.ID)
	assertCode(t, err, apperror.ErrCodeValidation)
	f.payments.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_CreateRaceResolvedAsPaid(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}
	txID := "tx_1"
	existing := &models.Payment{
		ID:            uuid.New(),
		ClientID:      clientID,
		JobID:         job.ID,
		Value:         300,
		Paid:          true,
		TransactionID: &txID,
	}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).Return(nil, nil).Once()
	f.users.On("GetByID", ctx, clientID).
		Return(&models.User{ID: clientID, Email: "client@example.com", SavedInGateway: true}, nil)
	f.professionals.On("GetByID", ctx, job.ProfessionalID).
		Return(&models.Professional{ID: job.ProfessionalID, RecipientID: strPtr("re_1")}, nil)
	f.gateway.On("FindCustomer", ctx, "client@example.com").Return(readyCustomer(), nil)
	f.payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(repository.ErrPaymentExists)
	f.payments.On("GetByJob", ctx, job.ID).Return(existing, nil).Once()
	f.gateway.On("FindTransaction", ctx, txID).
		Return(&gateway.Transaction{ID: txID, Status: gateway.TransactionStatusPaid}, nil)

	result, err := f.svc.Pay(ctx, clientID, job.ID)
	assert.NoError(t, err)
	assert.Equal(t, existing, result.Payment)
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_Forbidden(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	job := &models.Job{ID: uuid.New(), ClientID: uuid.New(), ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := f.svc.Pay(ctx, uuid.New(), job.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestPaymentService_GetByJob_NotFound(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	clientID := uuid.New()
	job := &models.Job{ID: uuid.New(), ClientID: clientID, ProfessionalID: uuid.New(), Value: 300}

	f.jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	f.payments.On("GetByJob", ctx, job.ID).Return(nil, nil)

	_, err := f.svc.GetByJob(ctx, clientID, job.ID)
	assert.ErrorIs(t, err, apperror.ErrPaymentNotFound)
}
