package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/slot-scheduler/internal/middleware"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/slots"
)

// ======================================================
// HANDLER
// ======================================================

type SlotsHandler struct {
	generate   *slots.GenerateSlots
	regenerate *slots.RegenerateSlots
	available  *slots.GetAvailableSlots
}

func NewSlotsHandler(
	generate *slots.GenerateSlots,
	regenerate *slots.RegenerateSlots,
	available *slots.GetAvailableSlots,
) *SlotsHandler {
	return &SlotsHandler{
		generate:   generate,
		regenerate: regenerate,
		available:  available,
	}
}

// ======================================================
// GENERATE
// ======================================================

func (h *SlotsHandler) Generate(c *gin.Context) {
	providerID, ok := providerParam(c)
	if !ok {
		return
	}

	horizon := slots.ConfiguredHorizon
	if raw := c.Query("horizon_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_horizon", "horizon_days must be an integer")
			return
		}
		if n < 0 {
			httperr.FromError(c, httperr.Validation("invalid_horizon"))
			return
		}
		horizon = n
	}

	res, err := h.generate.Execute(c.Request.Context(), providerID, horizon)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// REGENERATE
// ======================================================

func (h *SlotsHandler) Regenerate(c *gin.Context) {
	providerID, ok := providerParam(c)
	if !ok {
		return
	}

	res, err := h.regenerate.ExecuteAs(c.Request.Context(), providerID, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// AVAILABLE (public)
// ======================================================

type availableSlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *SlotsHandler) Available(c *gin.Context) {
	providerID, ok := providerParam(c)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil || serviceID == 0 {
		httperr.BadRequest(c, "invalid_service_id", "service_id is required")
		return
	}

	date, err := availability.ParseDate(c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	got, err := h.available.Execute(c.Request.Context(), slots.GetAvailableSlotsInput{
		ProviderID: providerID,
		ServiceID:  uint(serviceID),
		Date:       date,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]availableSlotResponse, 0, len(got))
	for _, b := range got {
		out = append(out, availableSlotResponse{
			Start: b.Start.Format(timeLayout),
			End:   b.End.Format(timeLayout),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date.String(),
		"slots": out,
	})
}
