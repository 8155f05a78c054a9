package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/slot-scheduler/internal/middleware"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/slots"
)

// ======================================================
// HANDLER
// ======================================================

type AvailabilityHandler struct {
	configs catalog.ConfigSource
	update  *slots.UpdateProviderConfig
}

func NewAvailabilityHandler(
	configs catalog.ConfigSource,
	update *slots.UpdateProviderConfig,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		configs: configs,
		update:  update,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type UpdateAvailabilityRequest struct {
	Timezone        string                  `json:"timezone" binding:"required"`
	IntervalMinutes int                     `json:"interval_minutes" binding:"required"`
	MaxAdvanceDays  int                     `json:"max_advance_days"`
	AutoConfirm     bool                    `json:"auto_confirm"`
	Weekly          []availability.DayHours `json:"weekly"`
}

// ======================================================
// GET
// ======================================================

func (h *AvailabilityHandler) Get(c *gin.Context) {
	providerID, ok := providerParam(c)
	if !ok {
		return
	}

	cfg, err := h.configs.ProviderConfig(c.Request.Context(), providerID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, cfg)
}

// ======================================================
// PUT
// ======================================================

func (h *AvailabilityHandler) Update(c *gin.Context) {
	providerID, ok := providerParam(c)
	if !ok {
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request body")
		return
	}

	cfg := availability.ProviderConfig{
		ProviderID:      providerID,
		Timezone:        req.Timezone,
		IntervalMinutes: req.IntervalMinutes,
		MaxAdvanceDays:  req.MaxAdvanceDays,
		AutoConfirm:     req.AutoConfirm,
		Weekly:          req.Weekly,
	}

	res, err := h.update.Execute(c.Request.Context(), cfg, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"config":       cfg,
		"regeneration": res,
	})
}
