package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// --------------------------------------------------
// Path params. On failure the response is already written.
// --------------------------------------------------

func providerParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("providerId"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_provider_id", "invalid provider id")
		return 0, false
	}
	return uint(id), true
}

func bookingParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}
