package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// ChatHandler предоставляет HTTP слой чата сторон работы.
type ChatHandler struct {
	messages *service.MessageService
}

// NewChatHandler создаёт хэндлер.
func NewChatHandler(messages *service.MessageService) *ChatHandler {
	return &ChatHandler{messages: messages}
}

// Send обрабатывает POST /jobs/:id/messages.
func (h *ChatHandler) Send(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.messages.Send(c.Request.Context(), userID, jobID, req.Content)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// History обрабатывает GET /jobs/:id/messages.
func (h *ChatHandler) History(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	messages, err := h.messages.History(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CountUnread обрабатывает GET /messages/unread/count.
func (h *ChatHandler) CountUnread(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	count, err := h.messages.CountUnread(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
