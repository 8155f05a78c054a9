package slots

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// ======================================================
// INPUT
// ======================================================

type GetAvailableSlotsInput struct {
	ProviderID uint
	ServiceID  uint
	Date       availability.Date
}

// ======================================================
// USE CASE
// ======================================================

// GetAvailableSlots lists the starts on a local date where the service
// fits inside a run of contiguous free slots, would pass validation, and
// does not overlap an active booking.
type GetAvailableSlots struct {
	configs   catalog.ConfigSource
	services  catalog.ServiceCatalog
	slots     slot.Store
	bookings  booking.Repository
	validator *availability.Validator
}

func NewGetAvailableSlots(
	configs catalog.ConfigSource,
	services catalog.ServiceCatalog,
	slots slot.Store,
	bookings booking.Repository,
	validator *availability.Validator,
) *GetAvailableSlots {
	return &GetAvailableSlots{
		configs:   configs,
		services:  services,
		slots:     slots,
		bookings:  bookings,
		validator: validator,
	}
}

func (uc *GetAvailableSlots) Execute(
	ctx context.Context,
	in GetAvailableSlotsInput,
) ([]availability.Boundary, error) {

	ctx, span := tracer.Start(ctx, "slots.available")
	defer span.End()
	span.SetAttributes(
		attribute.Int("provider.id", int(in.ProviderID)),
		attribute.String("date", in.Date.String()),
	)

	cfg, err := uc.configs.ProviderConfig(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}

	service, err := uc.services.GetService(ctx, in.ProviderID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if service.DurationMinutes <= 0 {
		return nil, httperr.Configuration("invalid_duration", "service duration must be positive")
	}
	duration := time.Duration(service.DurationMinutes) * time.Minute

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Local day window
	// --------------------------------------------------
	dayStart := in.Date.At(0, loc)
	dayEnd := in.Date.AddDays(1).At(0, loc)

	free, err := uc.slots.FindByProviderAndRange(
		ctx,
		in.ProviderID,
		dayStart,
		dayEnd,
		slot.StatusFree,
	)
	if err != nil {
		return nil, err
	}

	active, err := uc.bookings.ListActiveInRange(ctx, in.ProviderID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Candidates
	// --------------------------------------------------
	out := []availability.Boundary{}
	for i, s := range free {
		if s.Start.Before(dayStart) {
			continue
		}

		start := s.Start
		end := start.Add(duration)

		if !coveredFrom(free, i, end) {
			continue
		}

		reason, err := uc.validator.Check(cfg, start, duration)
		if err != nil {
			return nil, err
		}
		if reason != availability.ReasonNone {
			continue
		}

		if overlapsAny(active, start, end) {
			continue
		}

		out = append(out, availability.Boundary{Start: start.UTC(), End: end.UTC()})
	}

	span.SetAttributes(attribute.Int("slots.available", len(out)))
	return out, nil
}

// coveredFrom reports whether free[i:] is gapless from free[i].Start up to
// end.
func coveredFrom(free []slot.Slot, i int, end time.Time) bool {
	cursor := free[i].Start
	for j := i; j < len(free); j++ {
		if !free[j].Start.Equal(cursor) {
			return false
		}
		cursor = free[j].End
		if !cursor.Before(end) {
			return true
		}
	}
	return false
}

func overlapsAny(active []booking.Booking, start, end time.Time) bool {
	for _, b := range active {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
