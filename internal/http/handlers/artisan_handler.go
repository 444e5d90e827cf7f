package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/artisanhub/backend/internal/http/handlers/common"
	"github.com/artisanhub/backend/internal/service"
)

type ArtisanHandler struct {
	svc *service.ArtisanService
}

func NewArtisanHandler(svc *service.ArtisanService) *ArtisanHandler {
	return &ArtisanHandler{svc: svc}
}

// Browse GET /artisans
func (h *ArtisanHandler) Browse(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	artisans, err := h.svc.Browse(c.Request.Context(), c.Query("service_type"), c.Query("location"), limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artisans)
}

// GetArtisan GET /artisans/:id
func (h *ArtisanHandler) GetArtisan(c *gin.Context) {
	artisanID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	artisan, err := h.svc.GetArtisan(c.Request.Context(), artisanID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artisan)
}

// ListBusySlots GET /artisans/:id/busy-slots
func (h *ArtisanHandler) ListBusySlots(c *gin.Context) {
	artisanID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	slots, err := h.svc.ListBusySlots(c.Request.Context(), artisanID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// AddBusySlot POST /busy-slots
func (h *ArtisanHandler) AddBusySlot(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req struct {
		StartsAt time.Time `json:"starts_at" binding:"required"`
		EndsAt   time.Time `json:"ends_at" binding:"required"`
		Note     *string   `json:"note"`
		Location *string   `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	slot, err := h.svc.AddBusySlot(c.Request.Context(), userID, role, service.BusySlotInput{
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Note:     req.Note,
		Location: req.Location,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// RemoveBusySlot DELETE /busy-slots/:id
func (h *ArtisanHandler) RemoveBusySlot(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	slotID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.RemoveBusySlot(c.Request.Context(), userID, slotID, role); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetVerified PUT /admin/artisans/:id/verify
func (h *ArtisanHandler) SetVerified(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	artisanID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Verified bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.SetVerified(c.Request.Context(), artisanID, role, req.Verified); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": req.Verified})
}
