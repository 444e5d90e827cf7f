package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/http/handlers/common"
	"github.com/artisanhub/backend/internal/service"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Initialize POST /payments/initialize
func (h *PaymentHandler) Initialize(c *gin.Context) {
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

	result, err := h.svc.Initialize(c.Request.Context(), clientID, service.InitializePaymentInput{
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
	c.JSON(http.StatusCreated, result)
}

// Verify GET /payments/verify/:reference
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		common.RespondBadRequest(c, "parameter reference is required")
		return
	}

	job, err := h.svc.Verify(c.Request.Context(), reference)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Callback GET /payments/callback
// The gateway redirects the payer here; verification runs on the embedded
// reference so a payment confirms even if the client never calls verify.
func (h *PaymentHandler) Callback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	if reference == "" {
		common.RespondBadRequest(c, "query parameter reference is required")
		return
	}

	job, err := h.svc.Verify(c.Request.Context(), reference)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
