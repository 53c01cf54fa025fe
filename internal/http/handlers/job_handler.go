package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/http/handlers/common"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

// JobHandler предоставляет HTTP слой жизненного цикла работы.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler создаёт хэндлер.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Get обрабатывает GET /jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
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

	job, err := h.jobs.Get(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// Start обрабатывает POST /jobs/:id/start.
func (h *JobHandler) Start(c *gin.Context) {
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

	job, err := h.jobs.Start(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// Finish обрабатывает POST /jobs/:id/finish.
func (h *JobHandler) Finish(c *gin.Context) {
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

	job, err := h.jobs.Finish(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// Delete обрабатывает DELETE /jobs/:id.
func (h *JobHandler) Delete(c *gin.Context) {
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

	if err := h.jobs.Delete(c.Request.Context(), userID, jobID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "работа удалена"})
}

// ListMine обрабатывает GET /jobs/my — работы пользователя как клиента.
func (h *JobHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	jobs, err := h.jobs.ListForClient(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListIncoming обрабатывает GET /jobs/incoming — работы специалиста.
func (h *JobHandler) ListIncoming(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	jobs, err := h.jobs.ListForProfessional(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Rate обрабатывает POST /jobs/:id/rating.
func (h *JobHandler) Rate(c *gin.Context) {
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
		Grade int `json:"grade" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, err := h.jobs.Rate(c.Request.Context(), userID, jobID, req.Grade)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rating": rating})
}

// GetRating обрабатывает GET /jobs/:id/rating.
func (h *JobHandler) GetRating(c *gin.Context) {
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

	rating, err := h.jobs.GetRating(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	if rating == nil {
		common.RespondError(c, http.StatusNotFound, "оценка не найдена")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating})
}
