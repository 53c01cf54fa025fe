package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/homecare-backend/internal/gateway"
	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// ProfileHandler предоставляет HTTP слой для профиля пользователя
// и его платёжного представления в шлюзе.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMe обрабатывает GET /profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	user, err := h.profiles.GetUser(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe обрабатывает PUT /profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		FullName  string  `json:"full_name" binding:"required"`
		Born      *string `json:"born"`
		Celphone  *string `json:"celphone"`
		Telephone *string `json:"telephone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var born *time.Time
	if req.Born != nil {
		parsed, err := time.Parse("2006-01-02", *req.Born)
		if err != nil {
			common.RespondBadRequest(c, "дата рождения должна быть в формате 2006-01-02")
			return
		}
		born = &parsed
	}

	user, err := h.profiles.UpdateUser(c.Request.Context(), userID, service.UpdateUserInput{
		FullName:  req.FullName,
		Born:      born,
		Celphone:  req.Celphone,
		Telephone: req.Telephone,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UploadAvatar обрабатывает POST /profile/avatar.
// Тип файла определяется по содержимому, не по расширению.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		common.RespondBadRequest(c, "файл photo обязателен")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	head := make([]byte, 261)
	n, _ := file.Read(head)
	if !filetype.IsImage(head[:n]) {
		common.RespondBadRequest(c, "файл должен быть изображением")
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	path, err := h.profiles.UploadAvatar(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"avatar_path": path})
}

// SaveCustomer обрабатывает POST /profile/gateway/customer.
func (h *ProfileHandler) SaveCustomer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		DocumentNumber string `json:"document_number" binding:"required"`
		Address        struct {
			ZipCode      string `json:"zipcode" binding:"required"`
			Neighborhood string `json:"neighborhood" binding:"required"`
			Street       string `json:"street" binding:"required"`
			StreetNumber string `json:"street_number" binding:"required"`
		} `json:"address" binding:"required"`
		Phone struct {
			DDD    string `json:"ddd" binding:"required"`
			Number string `json:"number" binding:"required"`
		} `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	customer, err := h.profiles.SaveCustomer(c.Request.Context(), userID, service.SaveCustomerInput{
		DocumentNumber: req.DocumentNumber,
		Address: gateway.Address{
			ZipCode:      req.Address.ZipCode,
			Neighborhood: req.Address.Neighborhood,
			Street:       req.Address.Street,
			StreetNumber: req.Address.StreetNumber,
		},
		Phone: gateway.Phone{
			DDD:    req.Phone.DDD,
			Number: req.Phone.Number,
		},
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// AddCard обрабатывает POST /profile/gateway/cards.
func (h *ProfileHandler) AddCard(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		Number         string `json:"card_number" binding:"required"`
		CVV            string `json:"card_cvv" binding:"required"`
		HolderName     string `json:"card_holder_name" binding:"required"`
		ExpirationDate string `json:"card_expiration_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	card, err := h.profiles.AddCard(c.Request.Context(), userID, gateway.CardInput{
		Number:         req.Number,
		CVV:            req.CVV,
		HolderName:     req.HolderName,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"card": card})
}

// SaveRecipient обрабатывает POST /profile/gateway/recipient.
func (h *ProfileHandler) SaveRecipient(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		BankCode  string `json:"bank_code" binding:"required"`
		Agency    string `json:"agencia" binding:"required"`
		AgencyDV  string `json:"agencia_dv" binding:"required"`
		Account   string `json:"conta" binding:"required"`
		AccountDV string `json:"conta_dv" binding:"required"`
		LegalName string `json:"legal_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	recipient, err := h.profiles.SaveRecipient(c.Request.Context(), userID, gateway.BankAccount{
		BankCode:  req.BankCode,
		Agency:    req.Agency,
		AgencyDV:  req.AgencyDV,
		Account:   req.Account,
		AccountDV: req.AccountDV,
		LegalName: req.LegalName,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipient": recipient})
}
