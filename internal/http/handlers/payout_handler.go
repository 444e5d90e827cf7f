package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artisanhub/backend/internal/http/handlers/common"
	"github.com/artisanhub/backend/internal/service"
)

type PayoutHandler struct {
	svc *service.PayoutService
}

func NewPayoutHandler(svc *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{svc: svc}
}

// RequestPayout POST /payouts
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req struct {
		Amount     float64 `json:"amount" binding:"required"`
		MomoNumber string  `json:"momo_number" binding:"required"`
		Network    string  `json:"network" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payout, err := h.svc.RequestPayout(c.Request.Context(), userID, role, service.RequestPayoutInput{
		Amount:     req.Amount,
		MomoNumber: req.MomoNumber,
		Network:    req.Network,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payout)
}

// ListMyPayouts GET /payouts
func (h *PayoutHandler) ListMyPayouts(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	payouts, err := h.svc.ListMyPayouts(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payouts)
}

// ListPending GET /admin/payouts/pending
func (h *PayoutHandler) ListPending(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	payouts, err := h.svc.ListPendingPayouts(c.Request.Context(), role, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payouts)
}

// Complete POST /admin/payouts/:id/complete
func (h *PayoutHandler) Complete(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	payoutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payout, err := h.svc.CompletePayout(c.Request.Context(), payoutID, role)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}

// Reject POST /admin/payouts/:id/reject
func (h *PayoutHandler) Reject(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	payoutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Reason *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payout, err := h.svc.RejectPayout(c.Request.Context(), payoutID, role, req.Reason)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}
