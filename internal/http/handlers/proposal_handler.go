package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// ProposalHandler предоставляет HTTP слой переговорного цикла.
type ProposalHandler struct {
	negotiations *service.NegotiationService
}

// NewProposalHandler создаёт хэндлер.
func NewProposalHandler(negotiations *service.NegotiationService) *ProposalHandler {
	return &ProposalHandler{negotiations: negotiations}
}

type proposalRequest struct {
	ProfessionalID   string    `json:"professional_id" binding:"required,uuid"`
	City             string    `json:"city" binding:"required"`
	State            string    `json:"state" binding:"required"`
	ProfessionalType string    `json:"professional_type" binding:"required"`
	ServiceType      string    `json:"service_type" binding:"required"`
	Start            time.Time `json:"start_datetime" binding:"required"`
	End              time.Time `json:"end_datetime" binding:"required"`
	Value            float64   `json:"value" binding:"required"`
	Description      string    `json:"description" binding:"required"`
}

func (r *proposalRequest) toInput() (service.ProposalInput, error) {
	professionalID, err := parseUUIDField(r.ProfessionalID)
	if err != nil {
		return service.ProposalInput{}, err
	}
	return service.ProposalInput{
		ProfessionalID:   professionalID,
		City:             r.City,
		State:            r.State,
		ProfessionalType: r.ProfessionalType,
		ServiceType:      r.ServiceType,
		Start:            r.Start,
		End:              r.End,
		Value:            r.Value,
		Description:      r.Description,
	}, nil
}

// Create обрабатывает POST /proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.negotiations.CreateProposal(c.Request.Context(), userID, in)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"proposal": proposal})
}

// Get обрабатывает GET /proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.negotiations.GetProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// Update обрабатывает PUT /proposals/:id.
func (h *ProposalHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.negotiations.UpdateProposal(c.Request.Context(), userID, proposalID, in)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// Delete обрабатывает DELETE /proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.negotiations.DeleteProposal(c.Request.Context(), userID, proposalID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "предложение удалено"})
}

// ListMine обрабатывает GET /proposals/my — предложения пользователя как клиента.
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposals, err := h.negotiations.ListClientProposals(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// ListIncoming обрабатывает GET /proposals/incoming — предложения специалисту.
func (h *ProposalHandler) ListIncoming(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposals, err := h.negotiations.ListProfessionalProposals(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// Accept обрабатывает POST /proposals/:id/accept.
func (h *ProposalHandler) Accept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.negotiations.AcceptProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// Reject обрабатывает POST /proposals/:id/reject.
func (h *ProposalHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.negotiations.RejectProposal(c.Request.Context(), userID, proposalID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "предложение отклонено"})
}

// CreateCounter обрабатывает POST /proposals/:id/counter.
func (h *ProposalHandler) CreateCounter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Value       float64 `json:"value" binding:"required"`
		Description string  `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	counter, err := h.negotiations.CreateCounterProposal(c.Request.Context(), userID, proposalID, service.CounterInput{
		Value:       req.Value,
		Description: req.Description,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"counter_proposal": counter})
}

// GetCounter обрабатывает GET /proposals/:id/counter.
func (h *ProposalHandler) GetCounter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	counter, err := h.negotiations.GetCounterProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	if counter == nil {
		common.RespondError(c, http.StatusNotFound, "встречное предложение не найдено")
		return
	}

	c.JSON(http.StatusOK, gin.H{"counter_proposal": counter})
}

// UpdateCounter обрабатывает PUT /counter-proposals/:id.
func (h *ProposalHandler) UpdateCounter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	counterID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Value       float64 `json:"value" binding:"required"`
		Description string  `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	counter, err := h.negotiations.UpdateCounterProposal(c.Request.Context(), userID, counterID, service.CounterInput{
		Value:       req.Value,
		Description: req.Description,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counter_proposal": counter})
}

// DeleteCounter обрабатывает DELETE /counter-proposals/:id.
func (h *ProposalHandler) DeleteCounter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	counterID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.negotiations.DeleteCounterProposal(c.Request.Context(), userID, counterID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "встречное предложение удалено"})
}

// AcceptCounter обрабатывает POST /counter-proposals/:id/accept.
func (h *ProposalHandler) AcceptCounter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	counterID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.negotiations.AcceptCounterProposal(c.Request.Context(), userID, counterID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// RejectCounter обрабатывает POST /counter-proposals/:id/reject.
func (h *ProposalHandler) RejectCounter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	counterID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.negotiations.RejectCounterProposal(c.Request.Context(), userID, counterID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "встречное предложение отклонено"})
}
