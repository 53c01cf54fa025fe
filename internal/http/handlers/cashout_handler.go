package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// CashOutHandler предоставляет HTTP слой вывода средств специалиста.
type CashOutHandler struct {
	cashOuts *service.CashOutService
}

// NewCashOutHandler создаёт хэндлер.
func NewCashOutHandler(cashOuts *service.CashOutService) *CashOutHandler {
	return &CashOutHandler{cashOuts: cashOuts}
}

// Balance обрабатывает GET /cashouts/balance.
func (h *CashOutHandler) Balance(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	balance, err := h.cashOuts.Balance(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// Withdraw обрабатывает POST /cashouts.
func (h *CashOutHandler) Withdraw(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		Value float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	cashOut, err := h.cashOuts.Withdraw(c.Request.Context(), userID, req.Value)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"cash_out": cashOut})
}

// Retry обрабатывает POST /cashouts/:id/retry.
func (h *CashOutHandler) Retry(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	cashOutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	cashOut, err := h.cashOuts.Retry(c.Request.Context(), userID, cashOutID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash_out": cashOut})
}

// Cancel обрабатывает DELETE /cashouts/:id.
func (h *CashOutHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	cashOutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.cashOuts.Cancel(c.Request.Context(), userID, cashOutID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "заявка на вывод отменена"})
}

// ListMine обрабатывает GET /cashouts.
func (h *CashOutHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	cashOuts, err := h.cashOuts.List(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash_outs": cashOuts})
}
