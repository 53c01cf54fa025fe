package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/gateway"
	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/models"
	"github.com/ignatzorin/homecare-backend/internal/pkg/apperror"
	"github.com/ignatzorin/homecare-backend/internal/repository"
	"github.com/ignatzorin/homecare-backend/internal/validation"
)

// ProfileUserRepository описывает операции над пользователями для профиля.
type ProfileUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetSavedInGateway(ctx context.Context, id uuid.UUID) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarPath *string) error
}

// ProfileProfessionalRepository описывает операции над профилями специалистов.
type ProfileProfessionalRepository interface {
	Create(ctx context.Context, p *models.Professional) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error)
	Update(ctx context.Context, p *models.Professional) error
	SetRecipient(ctx context.Context, id uuid.UUID, recipientID string) error
	List(ctx context.Context, f repository.ListFilter) ([]models.Professional, error)
}

// ProfileGateway описывает вызовы шлюза для платёжного профиля.
type ProfileGateway interface {
	CreateCustomer(ctx context.Context, customer *gateway.Customer) (*gateway.Customer, error)
	FindCustomer(ctx context.Context, email string) (*gateway.Customer, error)
	CreateCard(ctx context.Context, card *gateway.CardInput) (*gateway.Card, error)
	CreateRecipient(ctx context.Context, account *gateway.BankAccount) (*gateway.Recipient, error)
}

// AvatarStorage сохраняет файлы аватаров.
type AvatarStorage interface {
	Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// ProfileService управляет профилями пользователей и специалистов,
// включая их платёжные представления в шлюзе.
type ProfileService struct {
	users         ProfileUserRepository
	professionals ProfileProfessionalRepository
	gateway       ProfileGateway
	storage       AvatarStorage
	cache         *CacheService
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(
	users ProfileUserRepository,
	professionals ProfileProfessionalRepository,
	gw ProfileGateway,
	storage AvatarStorage,
	cache *CacheService,
) *ProfileService {
	return &ProfileService{
		users:         users,
		professionals: professionals,
		gateway:       gw,
		storage:       storage,
		cache:         cache,
	}
}

// GetUser возвращает пользователя.
func (s *ProfileService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput редактируемые поля пользователя.
type UpdateUserInput struct {
	FullName  string
	Born      *time.Time
	Celphone  *string
	Telephone *string
}

// UpdateUser обновляет профиль пользователя.
func (s *ProfileService) UpdateUser(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateNonEmpty("имя", in.FullName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user.FullName = in.FullName
	user.Born = in.Born
	user.Celphone = in.Celphone
	user.Telephone = in.Telephone

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar сохраняет файл аватара и путь к нему. Старый файл удаляется.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	path, _, err := s.storage.Save(ctx, userID, originalName, r)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось сохранить файл")
	}

	if err := s.users.UpdateAvatar(ctx, userID, &path); err != nil {
		return "", err
	}

	if user.AvatarPath != nil {
		if err := s.storage.Delete(ctx, *user.AvatarPath); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"user_id": userID,
				"path":    *user.AvatarPath,
			}).Warn("profile: не удалось удалить старый аватар")
		}
	}

	return path, nil
}

// ProfessionalInput содержит данные профиля специалиста.
type ProfessionalInput struct {
	About      *string
	AvgPrice   float64
	State      string
	City       string
	Address    string
	ZipCode    string
	CPF        string
	RG         string
	Occupation string
	Skills     []string
	Coren      string
}

// CreateProfessional создаёт профиль специалиста для пользователя.
// Один профиль на пользователя; COREN обязателен для сестринских профессий.
func (s *ProfileService) CreateProfessional(ctx context.Context, userID uuid.UUID, in ProfessionalInput) (*models.Professional, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if existing, err := s.professionals.GetByUserID(ctx, userID); err == nil && existing != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "профиль специалиста уже существует")
	} else if err != nil && !errors.Is(err, repository.ErrProfessionalNotFound) {
		return nil, err
	}

	if err := s.validateProfessionalInput(in); err != nil {
		return nil, err
	}

	professional := &models.Professional{
		UserID:     userID,
		About:      in.About,
		AvgPrice:   in.AvgPrice,
		State:      in.State,
		City:       in.City,
		Address:    in.Address,
		ZipCode:    in.ZipCode,
		CPF:        validation.UnmaskCPF(in.CPF),
		RG:         in.RG,
		Occupation: in.Occupation,
		Skills:     in.Skills,
		Coren:      in.Coren,
	}

	if err := s.professionals.Create(ctx, professional); err != nil {
		if errors.Is(err, repository.ErrProfessionalExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "профиль специалиста уже существует")
		}
		return nil, err
	}
	return professional, nil
}

// GetProfessional возвращает профиль специалиста по идентификатору.
func (s *ProfileService) GetProfessional(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	professional, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}
	return professional, nil
}

// GetOwnProfessional возвращает профиль специалиста пользователя.
func (s *ProfileService) GetOwnProfessional(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	professional, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfessionalNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, err
	}
	return professional, nil
}

// UpdateProfessional обновляет редактируемые поля профиля. CPF, RG и COREN
// после создания не меняются.
func (s *ProfileService) UpdateProfessional(ctx context.Context, userID uuid.UUID, in ProfessionalInput) (*models.Professional, error) {
	professional, err := s.GetOwnProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}

	in.CPF = professional.CPF
	in.Coren = professional.Coren
	in.Occupation = valueOrDefault(in.Occupation, professional.Occupation)
	if err := s.validateProfessionalInput(in); err != nil {
		return nil, err
	}

	professional.About = in.About
	professional.AvgPrice = in.AvgPrice
	professional.State = in.State
	professional.City = in.City
	professional.Address = in.Address
	professional.ZipCode = in.ZipCode
	professional.Occupation = in.Occupation
	professional.Skills = in.Skills

	if err := s.professionals.Update(ctx, professional); err != nil {
		return nil, err
	}
	return professional, nil
}

// ListProfessionals возвращает специалистов по фильтрам.
func (s *ProfileService) ListProfessionals(ctx context.Context, f repository.ListFilter) ([]models.Professional, error) {
	return s.professionals.List(ctx, f)
}

// SaveCustomerInput данные платёжного профиля клиента.
type SaveCustomerInput struct {
	DocumentNumber string
	Address        gateway.Address
	Phone          gateway.Phone
}

// SaveCustomer регистрирует платёжный профиль клиента в шлюзе.
// Флаг saved_in_gateway взводится после успешного ответа шлюза.
func (s *ProfileService) SaveCustomer(ctx context.Context, userID uuid.UUID, in SaveCustomerInput) (*gateway.Customer, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateCPF(in.DocumentNumber); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateZipCode(in.Address.ZipCode); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if user.SavedInGateway {
		existing, err := s.gateway.FindCustomer(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	customer, err := s.gateway.CreateCustomer(ctx, &gateway.Customer{
		Email:          user.Email,
		Name:           user.FullName,
		DocumentNumber: validation.UnmaskCPF(in.DocumentNumber),
		Address:        &in.Address,
		Phone:          &in.Phone,
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.SetSavedInGateway(ctx, userID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(GatewayCustomerCacheKey(userID))
	}

	return customer, nil
}

// AddCard сохраняет карту клиента в шлюзе. Требует платёжного профиля.
func (s *ProfileService) AddCard(ctx context.Context, userID uuid.UUID, card gateway.CardInput) (*gateway.Card, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.SavedInGateway {
		return nil, apperror.ErrCustomerRequired
	}

	customer, err := s.gateway.FindCustomer(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.ErrCustomerRequired
	}

	card.CustomerID = customer.ID
	created, err := s.gateway.CreateCard(ctx, &card)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(GatewayCustomerCacheKey(userID))
	}

	return created, nil
}

// SaveRecipient регистрирует получателя выплат для специалиста пользователя.
func (s *ProfileService) SaveRecipient(ctx context.Context, userID uuid.UUID, account gateway.BankAccount) (*gateway.Recipient, error) {
	professional, err := s.GetOwnProfessional(ctx, userID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.gateway.CreateRecipient(ctx, &account)
	if err != nil {
		return nil, err
	}

	if err := s.professionals.SetRecipient(ctx, professional.ID, recipient.ID); err != nil {
		return nil, err
	}

	return recipient, nil
}

// validateProfessionalInput проверяет поля профиля специалиста.
func (s *ProfileService) validateProfessionalInput(in ProfessionalInput) error {
	if err := validation.ValidateChoice("профессия", in.Occupation, models.ValidOccupations); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateChoice("штат", in.State, models.ValidStates); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("город", in.City); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("адрес", in.Address); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateZipCode(in.ZipCode); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCPF(in.CPF); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("RG", in.RG); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if len(in.Skills) > models.MaxProfessionalSkills {
		return apperror.New(apperror.ErrCodeValidation, "у специалиста не может быть больше трёх услуг")
	}
	for _, skill := range in.Skills {
		if err := validation.ValidateChoice("услуга", skill, models.ValidServices); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	// Сестринские профессии работают только с номером COREN.
	needsCoren := in.Occupation == models.OccupationNursingTech || in.Occupation == models.OccupationNurse
	if needsCoren {
		if err := validation.ValidateCoren(in.Coren); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	if in.About != nil {
		if err := validation.ValidateLength("о себе", *in.About, 0, validation.MaxAboutLength); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.AvgPrice < 0 {
		return apperror.New(apperror.ErrCodeValidation, "средняя цена не может быть отрицательной")
	}
	return nil
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
