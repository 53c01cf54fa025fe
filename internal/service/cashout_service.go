package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/gateway"
	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
)

// CashOutRepository описывает операции над заявками на вывод средств.
type CashOutRepository interface {
	ComputeCash(ctx context.Context, professionalID uuid.UUID) (float64, error)
	CreateWithBalanceCheck(ctx context.Context, cashOut *models.CashOut) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CashOut, error)
	MarkWithdrawn(ctx context.Context, id uuid.UUID, transferID string) error
	RevertWithdrawn(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.CashOut, error)
}

// CashOutProfessionalRepository читает профиль специалиста и получателя выплат.
type CashOutProfessionalRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error)
}

// CashOutGateway описывает вызовы шлюза для переводов.
type CashOutGateway interface {
	CreateTransfer(ctx context.Context, transfer *gateway.TransferInput) (*gateway.Transfer, error)
	CancelTransfer(ctx context.Context, id string) (*gateway.Transfer, error)
}

// CashOutService выводит накопленный баланс специалиста через шлюз.
// Вывод всегда полный: сумма заявки должна в точности равняться балансу.
type CashOutService struct {
	cashOuts      CashOutRepository
	professionals CashOutProfessionalRepository
	gateway       CashOutGateway
}

// NewCashOutService создаёт сервис вывода средств.
func NewCashOutService(
	cashOuts CashOutRepository,
	professionals CashOutProfessionalRepository,
	gw CashOutGateway,
) *CashOutService {
	return &CashOutService{
		cashOuts:      cashOuts,
		professionals: professionals,
		gateway:       gw,
	}
}

// Balance возвращает текущий доступный баланс специалиста пользователя.
func (s *CashOutService) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.cashOuts.ComputeCash(ctx, professional.ID)
}

// Withdraw создаёт заявку на вывод всей суммы и запрашивает перевод в шлюзе.
// Если перевод не прошёл, заявка остаётся неисполненной и возвращается вместе
// с ошибкой: баланс уже зарезервирован, повтор перевода отдельной операцией.
func (s *CashOutService) Withdraw(ctx context.Context, userID uuid.UUID, value float64) (*models.CashOut, error) {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}
	if professional.RecipientID == nil || *professional.RecipientID == "" {
		return nil, apperror.ErrRecipientRequired
	}

	cash, err := s.cashOuts.ComputeCash(ctx, professional.ID)
	if err != nil {
		return nil, err
	}
	if cash <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нет средств для вывода")
	}

	cashOut := &models.CashOut{
		ProfessionalID: professional.ID,
		Value:          value,
	}
	if err := cashOut.Validate(cash); err != nil {
		return nil, err
	}

	if err := s.cashOuts.CreateWithBalanceCheck(ctx, cashOut); err != nil {
		if errors.Is(err, repository.ErrBalanceChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "баланс изменился, повторите запрос")
		}
		return nil, err
	}

	transfer, err := s.gateway.CreateTransfer(ctx, &gateway.TransferInput{
		RecipientID: *professional.RecipientID,
		Amount:      cashOut.Value,
		Reference:   cashOut.ID.String(),
	})
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"cashout_id":      cashOut.ID,
			"professional_id": professional.ID,
			"error":           err.Error(),
		}).Error("cashout: заявка создана, но перевод не прошёл")
		return cashOut, err
	}

	if err := s.cashOuts.MarkWithdrawn(ctx, cashOut.ID, transfer.ID); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"cashout_id":  cashOut.ID,
			"transfer_id": transfer.ID,
			"error":       err.Error(),
		}).Error("cashout: перевод запрошен, но заявка не отмечена исполненной")
		return cashOut, err
	}

	cashOut.WasWithdrawn = true
	cashOut.TransferID = &transfer.ID

	logger.Log.WithFields(map[string]interface{}{
		"cashout_id":  cashOut.ID,
		"transfer_id": transfer.ID,
		"value":       cashOut.Value,
	}).Info("cashout: вывод средств запрошен")

	return cashOut, nil
}

// Retry повторяет перевод по заявке, у которой первый перевод не прошёл.
func (s *CashOutService) Retry(ctx context.Context, userID, cashOutID uuid.UUID) (*models.CashOut, error) {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}
	if professional.RecipientID == nil || *professional.RecipientID == "" {
		return nil, apperror.ErrRecipientRequired
	}

	cashOut, err := s.getOwnedCashOut(ctx, professional, cashOutID)
	if err != nil {
		return nil, err
	}
	if cashOut.WasWithdrawn {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "вывод уже исполнен")
	}

	transfer, err := s.gateway.CreateTransfer(ctx, &gateway.TransferInput{
		RecipientID: *professional.RecipientID,
		Amount:      cashOut.Value,
		Reference:   cashOut.ID.String(),
	})
	if err != nil {
		return cashOut, err
	}

	if err := s.cashOuts.MarkWithdrawn(ctx, cashOut.ID, transfer.ID); err != nil {
		return cashOut, err
	}

	cashOut.WasWithdrawn = true
	cashOut.TransferID = &transfer.ID
	return cashOut, nil
}

// Cancel отменяет ещё не исполненный в шлюзе перевод и возвращает сумму
// в доступный баланс.
func (s *CashOutService) Cancel(ctx context.Context, userID, cashOutID uuid.UUID) error {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return err
	}

	cashOut, err := s.getOwnedCashOut(ctx, professional, cashOutID)
	if err != nil {
		return err
	}

	if cashOut.WasWithdrawn && cashOut.TransferID != nil {
		transfer, err := s.gateway.CancelTransfer(ctx, *cashOut.TransferID)
		if err != nil {
			return err
		}
		if transfer.Status != gateway.TransferStatusCanceled {
			return apperror.New(apperror.ErrCodeInvalidTransition, "перевод уже исполнен и не может быть отменён")
		}
		if err := s.cashOuts.RevertWithdrawn(ctx, cashOut.ID); err != nil {
			return err
		}
	}

	return s.cashOuts.Delete(ctx, cashOut.ID)
}

// List возвращает заявки специалиста пользователя.
func (s *CashOutService) List(ctx context.Context, userID uuid.UUID) ([]models.CashOut, error) {
	professional, err := s.getProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.cashOuts.ListByProfessional(ctx, professional.ID)
}

func (s *CashOutService) getProfessional(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	professional, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}
	return professional, nil
}

func (s *CashOutService) getOwnedCashOut(ctx context.Context, professional *models.Professional, cashOutID uuid.UUID) (*models.CashOut, error) {
	cashOut, err := s.cashOuts.GetByID(ctx, cashOutID)
	if err != nil {
		if errors.Is(err, repository.ErrCashOutNotFound) {
			return nil, apperror.ErrCashOutNotFound
		}
		return nil, err
	}
	if cashOut.ProfessionalID != professional.ID {
		return nil, apperror.ErrForbidden
	}
	return cashOut, nil
}
