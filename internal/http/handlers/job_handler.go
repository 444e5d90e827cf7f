package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/http/handlers/common"
	"github.com/artisanhub/backend/internal/service"
)

type JobHandler struct {
	svc *service.JobService
}

func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

// CreateBooking POST /jobs
func (h *JobHandler) CreateBooking(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		ArtisanID   uuid.UUID  `json:"artisan_id" binding:"required"`
		ServiceType string     `json:"service_type" binding:"required"`
		Description *string    `json:"description"`
		Date        string     `json:"date"`
		StartAt     *time.Time `json:"scheduled_start_at"`
		EndAt       *time.Time `json:"scheduled_end_at"`
		Amount      float64    `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.svc.CreateBooking(c.Request.Context(), clientID, service.CreateBookingInput{
		ArtisanID:   req.ArtisanID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Date:        req.Date,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Amount:      req.Amount,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// GetJob GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.svc.GetJob(c.Request.Context(), jobID, userID, role)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListMyJobs GET /jobs/my
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	jobs, err := h.svc.ListUserJobs(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// UpdateStatus PUT /jobs/:id/status
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status        string  `json:"status" binding:"required"`
		Rating        *int    `json:"rating"`
		ReviewComment *string `json:"review_comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.svc.UpdateStatus(c.Request.Context(), jobID, userID, req.Status, req.Rating, req.ReviewComment)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetInvoice GET /jobs/:id/invoice
func (h *JobHandler) GetInvoice(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	invoice, err := h.svc.GetInvoice(c.Request.Context(), jobID, userID, role)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
