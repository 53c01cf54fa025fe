package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/gateway"
	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
)

// PaymentRepository описывает операции над платежами.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error)
	MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error)
}

// PaymentJobRepository читает работы при оплате.
type PaymentJobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// PaymentUserRepository читает платёжное состояние клиента.
type PaymentUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PaymentProfessionalRepository читает получателя выплат специалиста.
type PaymentProfessionalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error)
}

// PaymentGateway описывает вызовы платёжного шлюза, нужные для оплаты.
type PaymentGateway interface {
	FindCustomer(ctx context.Context, email string) (*gateway.Customer, error)
	CreateTransaction(ctx context.Context, charge *gateway.ChargeInput) (*gateway.Transaction, error)
	FindTransaction(ctx context.Context, id string) (*gateway.Transaction, error)
}

// PaymentService проводит оплату работы через платёжный шлюз.
// Все предусловия проверяются до первого обращения к шлюзу, повторная
// оплата идемпотентна.
type PaymentService struct {
	payments      PaymentRepository
	jobs          PaymentJobRepository
	users         PaymentUserRepository
	professionals PaymentProfessionalRepository
	gateway       PaymentGateway
	cache         *CacheService
}

// NewPaymentService создаёт платёжный сервис.
func NewPaymentService(
	payments PaymentRepository,
	jobs PaymentJobRepository,
	users PaymentUserRepository,
	professionals PaymentProfessionalRepository,
	gw PaymentGateway,
	cache *CacheService,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		jobs:          jobs,
		users:         users,
		professionals: professionals,
		gateway:       gw,
		cache:         cache,
	}
}

// PayResult итог оплаты.
type PayResult struct {
	Payment     *models.Payment
	Transaction *gateway.Transaction
}

// Pay проводит оплату работы клиентом. Сумма всегда равна стоимости работы.
// Предусловия: платёжный профиль в шлюзе, сохранённая карта, платёжный адрес,
// зарегистрированный получатель у специалиста. Повторный вызов по оплаченной
// работе возвращает сохранённую транзакцию без нового списания.
func (s *PaymentService) Pay(ctx context.Context, clientID, jobID uuid.UUID) (*PayResult, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}

	payment, err := s.payments.GetByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if payment != nil && payment.Paid {
		return s.paidResult(ctx, payment)
	}

	user, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	professional, err := s.professionals.GetByID(ctx, job.ProfessionalID)
	if err != nil {
		return nil, err
	}

	customer, err := s.checkPreconditions(ctx, user, professional)
	if err != nil {
		return nil, err
	}

	if payment == nil {
		payment = &models.Payment{
			ClientID:       clientID,
			ProfessionalID: &job.ProfessionalID,
			JobID:          jobID,
			Value:          job.Value,
		}
		if err := payment.Validate(job); err != nil {
			return nil, err
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrPaymentExists) {
				// Гонка с параллельной оплатой: перечитываем и действуем по факту.
				payment, err = s.payments.GetByJob(ctx, jobID)
				if err != nil {
					return nil, err
				}
				if payment != nil && payment.Paid {
					return s.paidResult(ctx, payment)
				}
			} else {
				return nil, err
			}
		}
	}

	transaction, err := s.gateway.CreateTransaction(ctx, &gateway.ChargeInput{
		CustomerID: customer.ID,
		CardID:     customer.Cards[0].ID,
		Amount:     payment.Value,
		Reference:  payment.ID.String(),
	})
	if err != nil {
		return nil, err
	}
	if transaction.Status != gateway.TransactionStatusPaid {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("шлюз отклонил списание, статус %q", transaction.Status))
	}

	if err := s.payments.MarkPaid(ctx, payment.ID, transaction.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyPaid) {
			return s.paidResult(ctx, payment)
		}
		// Списание прошло, запись не обновилась. Фиксируем в логе для сверки.
		logger.Log.WithFields(map[string]interface{}{
			"payment_id":     payment.ID,
			"transaction_id": transaction.ID,
			"error":          err.Error(),
		}).Error("payment: списание проведено, но платёж не отмечен оплаченным")
		return nil, err
	}

	payment.Paid = true
	payment.TransactionID = &transaction.ID

	logger.Log.WithFields(map[string]interface{}{
		"payment_id":     payment.ID,
		"job_id":         jobID,
		"transaction_id": transaction.ID,
		"value":          payment.Value,
	}).Info("payment: работа оплачена")

	return &PayResult{Payment: payment, Transaction: transaction}, nil
}

// GetByJob возвращает платёж работы для её сторон.
func (s *PaymentService) GetByJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Payment, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if job.ClientID != userID {
		professional, err := s.professionals.GetByID(ctx, job.ProfessionalID)
		if err != nil {
			return nil, err
		}
		if professional.UserID != userID {
			return nil, apperror.ErrForbidden
		}
	}

	payment, err := s.payments.GetByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.ErrPaymentNotFound
	}
	return payment, nil
}

// ListForClient возвращает платежи клиента.
func (s *PaymentService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error) {
	return s.payments.ListByClient(ctx, clientID)
}

// checkPreconditions проверяет готовность сторон к оплате и возвращает
// платёжный профиль клиента. Порядок проверок фиксирован: профиль, карта,
// адрес, получатель.
func (s *PaymentService) checkPreconditions(ctx context.Context, user *models.User, professional *models.Professional) (*gateway.Customer, error) {
	if !user.SavedInGateway {
		return nil, apperror.ErrCustomerRequired
	}

	customer, err := s.findCustomer(ctx, user)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.ErrCustomerRequired
	}
	if len(customer.Cards) == 0 {
		return nil, apperror.ErrCardRequired
	}
	if customer.Address == nil {
		return nil, apperror.ErrAddressRequired
	}
	if professional.RecipientID == nil || *professional.RecipientID == "" {
		return nil, apperror.ErrRecipientRequired
	}
	return customer, nil
}

// findCustomer ищет профиль клиента в шлюзе с коротким кэшем.
func (s *PaymentService) findCustomer(ctx context.Context, user *models.User) (*gateway.Customer, error) {
	if s.cache == nil {
		return s.gateway.FindCustomer(ctx, user.Email)
	}

	value, err := s.cache.GetOrSet(ctx, GatewayCustomerCacheKey(user.ID), time.Minute,
		func() (interface{}, error) {
			return s.gateway.FindCustomer(ctx, user.Email)
		})
	if err != nil {
		return nil, err
	}
	customer, _ := value.(*gateway.Customer)
	return customer, nil
}

// paidResult собирает идемпотентный ответ по уже оплаченной работе.
func (s *PaymentService) paidResult(ctx context.Context, payment *models.Payment) (*PayResult, error) {
	result := &PayResult{Payment: payment}
	if payment.TransactionID != nil {
		transaction, err := s.gateway.FindTransaction(ctx, *payment.TransactionID)
		if err == nil {
			result.Transaction = transaction
		}
	}
	return result, nil
}
