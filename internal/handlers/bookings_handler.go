package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/slot-scheduler/internal/middleware"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/booking"
)

const timeLayout = time.RFC3339

// ======================================================
// HANDLER
// ======================================================

type BookingsHandler struct {
	create   *booking.CreateBooking
	confirm  *booking.ConfirmBooking
	cancel   *booking.CancelBooking
	complete *booking.CompleteBooking
	get      *booking.GetBooking
}

func NewBookingsHandler(
	create *booking.CreateBooking,
	confirm *booking.ConfirmBooking,
	cancel *booking.CancelBooking,
	complete *booking.CompleteBooking,
	get *booking.GetBooking,
) *BookingsHandler {
	return &BookingsHandler{
		create:   create,
		confirm:  confirm,
		cancel:   cancel,
		complete: complete,
		get:      get,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ClientID  uint   `json:"client_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	Start     string `json:"start" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingsHandler) Create(c *gin.Context) {
	providerID, ok := providerParam(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request body")
		return
	}

	start, err := time.Parse(timeLayout, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "start must be an RFC 3339 instant")
		return
	}

	res, err := h.create.Execute(c.Request.Context(), booking.CreateBookingInput{
		ProviderID:     providerID,
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		Start:          start,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		Actor:          middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if res.Replayed {
		httpresp.OK(c, res.Booking)
		return
	}
	httpresp.Created(c, res.Booking)
}

// ======================================================
// GET
// ======================================================

func (h *BookingsHandler) Get(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}

	b, err := h.get.Execute(c.Request.Context(), id, middleware.ProviderScope(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, b)
}

// ======================================================
// TRANSITIONS
// ======================================================

type transitionFunc func(*gin.Context, booking.TransitionInput) (*domain.Booking, error)

func (h *BookingsHandler) transition(run transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingParam(c)
		if !ok {
			return
		}

		b, err := run(c, booking.TransitionInput{
			BookingID:  id,
			ProviderID: middleware.ProviderScope(c),
			Actor:      middleware.Actor(c),
		})
		if err != nil {
			httperr.FromError(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

func (h *BookingsHandler) Confirm() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, in booking.TransitionInput) (*domain.Booking, error) {
		return h.confirm.Execute(c.Request.Context(), in)
	})
}

func (h *BookingsHandler) Cancel() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, in booking.TransitionInput) (*domain.Booking, error) {
		return h.cancel.Execute(c.Request.Context(), in)
	})
}

func (h *BookingsHandler) Complete() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, in booking.TransitionInput) (*domain.Booking, error) {
		return h.complete.Execute(c.Request.Context(), in)
	})
}
