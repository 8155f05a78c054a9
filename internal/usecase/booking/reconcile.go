package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
	"github.com/BruksfildServices01/slot-scheduler/internal/metrics"
)

const (
	defaultSyncAttempts = 3
	defaultSyncBackoff  = 50 * time.Millisecond
)

// SlotReconciler brings the slot projection in line with bookings. A
// booking is never rolled back because its slots could not be updated.
type SlotReconciler struct {
	slots    slot.Store
	bookings domain.Repository
	metrics  *metrics.SchedulingMetrics
	logger   *zap.Logger

	attempts int
	backoff  time.Duration
}

func NewSlotReconciler(
	slots slot.Store,
	bookings domain.Repository,
	metrics *metrics.SchedulingMetrics,
	logger *zap.Logger,
) *SlotReconciler {
	return &SlotReconciler{
		slots:    slots,
		bookings: bookings,
		metrics:  metrics,
		logger:   logging.Or(logger),
		attempts: defaultSyncAttempts,
		backoff:  defaultSyncBackoff,
	}
}

// WithRetry overrides the attempt count and the base backoff.
func (r *SlotReconciler) WithRetry(attempts int, backoff time.Duration) *SlotReconciler {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.backoff = backoff
	return r
}

// ======================================================
// SYNC
// ======================================================

// Sync projects one booking onto its slots, retrying lost races. The
// final error is logged and returned; callers treat it as advisory.
func (r *SlotReconciler) Sync(ctx context.Context, b domain.Booking) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = r.syncOnce(ctx, b); err == nil {
			return nil
		}
		if attempt == r.attempts || ctx.Err() != nil {
			break
		}

		select {
		case <-time.After(r.backoff * time.Duration(attempt)):
		case <-ctx.Done():
		}
	}

	r.metrics.ObserveReconcileFailure()
	r.logger.Warn("slot projection out of sync",
		zap.String("booking_id", b.ID.String()),
		zap.Uint("provider_id", b.ProviderID),
		zap.String("status", string(b.Status)),
		zap.Error(err),
	)
	return err
}

func (r *SlotReconciler) syncOnce(ctx context.Context, b domain.Booking) error {
	switch {
	case b.Status.Active():
		return r.claim(ctx, b)
	case b.Status == domain.StatusCancelled:
		return r.release(ctx, b)
	}
	// Completed bookings keep their booked slots.
	return nil
}

func (r *SlotReconciler) claim(ctx context.Context, b domain.Booking) error {
	target := slot.StatusBooked
	if b.Status == domain.StatusPending {
		target = slot.StatusReserved
	}

	covering, err := r.slots.FindByProviderAndRange(ctx, b.ProviderID, b.Start, b.End)
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range covering {
		switch {
		case s.Status == slot.StatusFree:
			err = r.slots.Transition(ctx, s.ID, slot.StatusFree, target, &b.ID)

		case linkedTo(s, b):
			if s.Status == target {
				continue
			}
			err = r.slots.Transition(ctx, s.ID, s.Status, target, &b.ID)

		case s.BookingID != nil:
			err = r.takeOver(ctx, s, b, target)

		default:
			// Blocked by the provider.
			continue
		}

		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// takeOver moves a slot still linked to a booking that is no longer
// active.
func (r *SlotReconciler) takeOver(ctx context.Context, s slot.Slot, b domain.Booking, target slot.Status) error {
	owner, err := r.bookings.Get(ctx, *s.BookingID)
	if err != nil {
		return err
	}
	if owner.Status.Active() {
		r.logger.Error("active bookings share a slot",
			zap.String("slot_id", s.ID.String()),
			zap.String("booking_id", b.ID.String()),
			zap.String("other_booking_id", owner.ID.String()),
		)
		return nil
	}

	if err := r.slots.Transition(ctx, s.ID, s.Status, slot.StatusFree, nil); err != nil {
		return err
	}
	return r.slots.Transition(ctx, s.ID, slot.StatusFree, target, &b.ID)
}

func (r *SlotReconciler) release(ctx context.Context, b domain.Booking) error {
	linked, err := r.slots.FindByBooking(ctx, b.ID)
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range linked {
		if !s.Status.Linked() {
			continue
		}
		if err := r.slots.Transition(ctx, s.ID, s.Status, slot.StatusFree, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func linkedTo(s slot.Slot, b domain.Booking) bool {
	return s.BookingID != nil && *s.BookingID == b.ID
}

// ======================================================
// SWEEP
// ======================================================

// Sweep re-syncs every active booking of a provider inside [from, to).
// It returns how many bookings were synced cleanly.
func (r *SlotReconciler) Sweep(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
) (int, error) {

	active, err := r.bookings.ListActiveInRange(ctx, providerID, from, to)
	if err != nil {
		return 0, err
	}

	synced := 0
	var errs []error
	for _, b := range active {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := r.syncOnce(ctx, b); err != nil {
			r.metrics.ObserveReconcileFailure()
			errs = append(errs, err)
			continue
		}
		synced++
	}

	return synced, errors.Join(errs...)
}
