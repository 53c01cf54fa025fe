package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// AvailabilityHandler предоставляет HTTP слой для календаря доступности.
type AvailabilityHandler struct {
	availabilities *service.AvailabilityService
}

// NewAvailabilityHandler создаёт хэндлер.
func NewAvailabilityHandler(availabilities *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilities: availabilities}
}

type availabilityRequest struct {
	Start            time.Time `json:"start_datetime" binding:"required"`
	End              time.Time `json:"end_datetime" binding:"required"`
	Recurrence       *string   `json:"recurrence"`
	WeeklyRecurrence []string  `json:"weekly_recurrence"`
}

// Create обрабатывает POST /availabilities.
func (h *AvailabilityHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	availability, err := h.availabilities.Create(c.Request.Context(), userID, service.AvailabilityInput{
		Start:            req.Start,
		End:              req.End,
		Recurrence:       req.Recurrence,
		WeeklyRecurrence: req.WeeklyRecurrence,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"availability": availability})
}

// Update обрабатывает PUT /availabilities/:id.
func (h *AvailabilityHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	availabilityID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	availability, err := h.availabilities.Update(c.Request.Context(), userID, availabilityID, service.AvailabilityInput{
		Start:            req.Start,
		End:              req.End,
		Recurrence:       req.Recurrence,
		WeeklyRecurrence: req.WeeklyRecurrence,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"availability": availability})
}

// Delete обрабатывает DELETE /availabilities/:id.
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	availabilityID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.availabilities.Delete(c.Request.Context(), userID, availabilityID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "окно доступности удалено"})
}

// ListByProfessional обрабатывает GET /professionals/:id/availabilities.
func (h *AvailabilityHandler) ListByProfessional(c *gin.Context) {
	professionalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	availabilities, err := h.availabilities.ListByProfessional(c.Request.Context(), professionalID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"availabilities": availabilities})
}
