package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
	"github.com/BruksfildServices01/slot-scheduler/internal/metrics"
)

// ======================================================
// INPUT
// ======================================================

type TransitionInput struct {
	BookingID uuid.UUID

	// ProviderID scopes the lookup. Zero allows any provider.
	ProviderID uint
	Actor      string
}

// ======================================================
// SHARED
// ======================================================

type transition struct {
	bookings   domain.Repository
	reconciler *SlotReconciler
	audit      *audit.Dispatcher
	metrics    *metrics.SchedulingMetrics
	logger     *zap.Logger
	now        func() time.Time
}

func newTransition(
	bookings domain.Repository,
	reconciler *SlotReconciler,
	audit *audit.Dispatcher,
	metrics *metrics.SchedulingMetrics,
	logger *zap.Logger,
	now func() time.Time,
) transition {
	if now == nil {
		now = time.Now
	}
	return transition{
		bookings:   bookings,
		reconciler: reconciler,
		audit:      audit,
		metrics:    metrics,
		logger:     logging.Or(logger),
		now:        now,
	}
}

func (t transition) apply(
	ctx context.Context,
	in TransitionInput,
	operation string,
	action func(*domain.Booking, time.Time) error,
) (*domain.Booking, error) {

	ctx, span := tracer.Start(ctx, "booking."+operation)
	defer span.End()

	b, err := t.run(ctx, in, action)
	t.metrics.ObserveBooking(operation, outcome(err))
	if err != nil {
		return nil, err
	}

	if t.reconciler != nil {
		_ = t.reconciler.Sync(ctx, *b)
	}

	t.audit.Dispatch(audit.Event{
		ProviderID: b.ProviderID,
		Actor:      in.Actor,
		Action:     "booking_" + string(b.Status),
		Entity:     "booking",
		EntityID:   b.ID.String(),
	})

	t.logger.Info("booking "+operation,
		zap.String("booking_id", b.ID.String()),
		zap.Uint("provider_id", b.ProviderID),
		zap.String("status", string(b.Status)),
	)
	return b, nil
}

func (t transition) run(
	ctx context.Context,
	in TransitionInput,
	action func(*domain.Booking, time.Time) error,
) (*domain.Booking, error) {

	b, err := t.bookings.Get(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if in.ProviderID != 0 && b.ProviderID != in.ProviderID {
		return nil, httperr.NotFound("booking_not_found")
	}

	from := b.Status
	if err := action(b, t.now().UTC()); err != nil {
		return nil, err
	}

	// A concurrent transition from the same state loses here.
	if err := t.bookings.UpdateStatus(ctx, b, from); err != nil {
		return nil, err
	}
	return b, nil
}

// ======================================================
// CONFIRM
// ======================================================

// ConfirmBooking moves a pending booking to confirmed and its reserved
// slots to booked.
type ConfirmBooking struct{ transition }

func NewConfirmBooking(
	bookings domain.Repository,
	reconciler *SlotReconciler,
	audit *audit.Dispatcher,
	metrics *metrics.SchedulingMetrics,
	logger *zap.Logger,
	now func() time.Time,
) *ConfirmBooking {
	return &ConfirmBooking{newTransition(bookings, reconciler, audit, metrics, logger, now)}
}

func (uc *ConfirmBooking) Execute(ctx context.Context, in TransitionInput) (*domain.Booking, error) {
	return uc.apply(ctx, in, "confirm", domain.Confirm)
}

// ======================================================
// CANCEL
// ======================================================

// CancelBooking cancels a pending or confirmed booking. Its interval is
// immediately bookable again; the linked slots are released best-effort.
type CancelBooking struct{ transition }

func NewCancelBooking(
	bookings domain.Repository,
	reconciler *SlotReconciler,
	audit *audit.Dispatcher,
	metrics *metrics.SchedulingMetrics,
	logger *zap.Logger,
	now func() time.Time,
) *CancelBooking {
	return &CancelBooking{newTransition(bookings, reconciler, audit, metrics, logger, now)}
}

func (uc *CancelBooking) Execute(ctx context.Context, in TransitionInput) (*domain.Booking, error) {
	return uc.apply(ctx, in, "cancel", domain.Cancel)
}

// ======================================================
// COMPLETE
// ======================================================

type CompleteBooking struct{ transition }

func NewCompleteBooking(
	bookings domain.Repository,
	reconciler *SlotReconciler,
	audit *audit.Dispatcher,
	metrics *metrics.SchedulingMetrics,
	logger *zap.Logger,
	now func() time.Time,
) *CompleteBooking {
	return &CompleteBooking{newTransition(bookings, reconciler, audit, metrics, logger, now)}
}

func (uc *CompleteBooking) Execute(ctx context.Context, in TransitionInput) (*domain.Booking, error) {
	return uc.apply(ctx, in, "complete", domain.Complete)
}

// ======================================================
// GET
// ======================================================

type GetBooking struct {
	bookings domain.Repository
}

func NewGetBooking(bookings domain.Repository) *GetBooking {
	return &GetBooking{bookings: bookings}
}

func (uc *GetBooking) Execute(ctx context.Context, id uuid.UUID, providerID uint) (*domain.Booking, error) {
	b, err := uc.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if providerID != 0 && b.ProviderID != providerID {
		return nil, httperr.NotFound("booking_not_found")
	}
	return b, nil
}
