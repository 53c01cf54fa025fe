package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/repository"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// ProfessionalHandler предоставляет HTTP слой для профилей специалистов.
type ProfessionalHandler struct {
	profiles *service.ProfileService
}

// NewProfessionalHandler создаёт хэндлер.
func NewProfessionalHandler(profiles *service.ProfileService) *ProfessionalHandler {
	return &ProfessionalHandler{profiles: profiles}
}

type professionalRequest struct {
	About      *string  `json:"about"`
	AvgPrice   float64  `json:"avg_price"`
	State      string   `json:"state" binding:"required"`
	City       string   `json:"city" binding:"required"`
	Address    string   `json:"address" binding:"required"`
	ZipCode    string   `json:"zip_code" binding:"required"`
	CPF        string   `json:"cpf"`
	RG         string   `json:"rg"`
	Occupation string   `json:"occupation"`
	Skills     []string `json:"skills"`
	Coren      string   `json:"coren"`
}

// Create обрабатывает POST /professionals.
func (h *ProfessionalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req professionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	professional, err := h.profiles.CreateProfessional(c.Request.Context(), userID, service.ProfessionalInput{
		About:      req.About,
		AvgPrice:   req.AvgPrice,
		State:      req.State,
		City:       req.City,
		Address:    req.Address,
		ZipCode:    req.ZipCode,
		CPF:        req.CPF,
		RG:         req.RG,
		Occupation: req.Occupation,
		Skills:     req.Skills,
		Coren:      req.Coren,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"professional": professional})
}

// GetMine обрабатывает GET /professionals/me.
func (h *ProfessionalHandler) GetMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	professional, err := h.profiles.GetOwnProfessional(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professional": professional})
}

// Get обрабатывает GET /professionals/:id.
func (h *ProfessionalHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	professional, err := h.profiles.GetProfessional(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professional": professional})
}

// Update обрабатывает PUT /professionals/me.
func (h *ProfessionalHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req professionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	professional, err := h.profiles.UpdateProfessional(c.Request.Context(), userID, service.ProfessionalInput{
		About:      req.About,
		AvgPrice:   req.AvgPrice,
		State:      req.State,
		City:       req.City,
		Address:    req.Address,
		ZipCode:    req.ZipCode,
		Occupation: req.Occupation,
		Skills:     req.Skills,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professional": professional})
}

// List обрабатывает GET /professionals с фильтрами поиска.
func (h *ProfessionalHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	professionals, err := h.profiles.ListProfessionals(c.Request.Context(), repository.ListFilter{
		State:       c.Query("state"),
		City:        c.Query("city"),
		Occupation:  c.Query("occupation"),
		ServiceType: c.Query("service"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professionals": professionals})
}
