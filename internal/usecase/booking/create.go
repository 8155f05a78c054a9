package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/audit"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	domain "github.com/BruksfildServices01/slot-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
	"github.com/BruksfildServices01/slot-scheduler/internal/metrics"
)

var tracer = otel.Tracer("slot-scheduler/usecase/booking")

const defaultCommitTimeout = 3 * time.Second

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ProviderID uint
	ClientID   uint
	ServiceID  uint
	Start      time.Time

	// IdempotencyKey makes retries return the first booking.
	IdempotencyKey string
	Actor          string
}

type CreateBookingResult struct {
	Booking  *domain.Booking
	Replayed bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateBookingDeps struct {
	Configs       catalog.ConfigSource
	Services      catalog.ServiceCatalog
	Bookings      domain.Repository
	Validator     *availability.Validator
	Reconciler    *SlotReconciler
	Audit         *audit.Dispatcher
	Metrics       *metrics.SchedulingMetrics
	Logger        *zap.Logger
	CommitTimeout time.Duration
	Now           func() time.Time
}

type CreateBooking struct {
	configs       catalog.ConfigSource
	services      catalog.ServiceCatalog
	bookings      domain.Repository
	validator     *availability.Validator
	reconciler    *SlotReconciler
	audit         *audit.Dispatcher
	metrics       *metrics.SchedulingMetrics
	logger        *zap.Logger
	commitTimeout time.Duration
	now           func() time.Time
}

func NewCreateBooking(d CreateBookingDeps) *CreateBooking {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.CommitTimeout <= 0 {
		d.CommitTimeout = defaultCommitTimeout
	}
	if d.Validator == nil {
		d.Validator = availability.NewValidator(d.Now)
	}
	return &CreateBooking{
		configs:       d.Configs,
		services:      d.Services,
		bookings:      d.Bookings,
		validator:     d.Validator,
		reconciler:    d.Reconciler,
		audit:         d.Audit,
		metrics:       d.Metrics,
		logger:        logging.Or(d.Logger),
		commitTimeout: d.CommitTimeout,
		now:           d.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (CreateBookingResult, error) {

	ctx, span := tracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int("provider.id", int(in.ProviderID)),
		attribute.Int("service.id", int(in.ServiceID)),
	)

	res, err := uc.execute(ctx, in)

	uc.metrics.ObserveBooking("create", outcome(err))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if httperr.IsKind(err, httperr.KindConflict) {
			uc.audit.Dispatch(audit.Event{
				ProviderID: in.ProviderID,
				Actor:      in.Actor,
				Action:     "booking_conflict",
				Entity:     "booking",
				Metadata: map[string]any{
					"service_id": in.ServiceID,
					"start":      in.Start.UTC(),
				},
			})
		}
		return res, err
	}

	span.SetAttributes(attribute.Bool("booking.replayed", res.Replayed))
	return res, nil
}

func (uc *CreateBooking) execute(
	ctx context.Context,
	in CreateBookingInput,
) (CreateBookingResult, error) {

	// --------------------------------------------------
	// 1️⃣ Provider config
	// --------------------------------------------------
	cfg, err := uc.configs.ProviderConfig(ctx, in.ProviderID)
	if err != nil {
		return CreateBookingResult{}, err
	}

	// --------------------------------------------------
	// 2️⃣ Service
	// --------------------------------------------------
	service, err := uc.services.GetService(ctx, in.ProviderID, in.ServiceID)
	if err != nil {
		return CreateBookingResult{}, err
	}
	duration := time.Duration(service.DurationMinutes) * time.Minute

	// --------------------------------------------------
	// 3️⃣ Availability rules
	// --------------------------------------------------
	if err := uc.validator.Validate(cfg, in.Start, duration); err != nil {
		return CreateBookingResult{}, err
	}

	start := in.Start.UTC()
	end := start.Add(duration)

	// --------------------------------------------------
	// 4️⃣ Fast path. A keyed retry must reach Insert to be replayed.
	// --------------------------------------------------
	if in.IdempotencyKey == "" {
		taken, err := uc.bookings.HasOverlap(ctx, in.ProviderID, start, end)
		if err != nil {
			return CreateBookingResult{}, err
		}
		if taken {
			return CreateBookingResult{}, httperr.Conflict(httperr.CodeConflict)
		}
	}

	// --------------------------------------------------
	// 5️⃣ Guarded commit
	// --------------------------------------------------
	b := &domain.Booking{
		ID:         uuid.New(),
		ProviderID: in.ProviderID,
		ClientID:   in.ClientID,
		ServiceID:  in.ServiceID,
		Start:      start,
		End:        end,
		Status:     domain.InitialStatus(cfg.AutoConfirm),
	}
	if b.Status == domain.StatusConfirmed {
		now := uc.now().UTC()
		b.ConfirmedAt = &now
	}

	stored, replayed, err := uc.commit(ctx, b, in.IdempotencyKey)
	if err != nil {
		return CreateBookingResult{}, err
	}

	if replayed {
		uc.logger.Info("booking replayed",
			zap.String("booking_id", stored.ID.String()),
			zap.String("idempotency_key", in.IdempotencyKey),
		)
		return CreateBookingResult{Booking: stored, Replayed: true}, nil
	}

	// --------------------------------------------------
	// 6️⃣ Slot projection
	// --------------------------------------------------
	if uc.reconciler != nil {
		_ = uc.reconciler.Sync(ctx, *stored)
	}

	// --------------------------------------------------
	// 7️⃣ Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ProviderID: stored.ProviderID,
		Actor:      in.Actor,
		Action:     "booking_created",
		Entity:     "booking",
		EntityID:   stored.ID.String(),
		Metadata: map[string]any{
			"service_id": stored.ServiceID,
			"client_id":  stored.ClientID,
			"start":      stored.Start,
			"end":        stored.End,
			"status":     stored.Status,
		},
	})

	uc.logger.Info("booking created",
		zap.String("booking_id", stored.ID.String()),
		zap.Uint("provider_id", stored.ProviderID),
		zap.Time("start", stored.Start),
		zap.String("status", string(stored.Status)),
	)

	return CreateBookingResult{Booking: stored}, nil
}

// commit bounds the guarded insert. Running out of time is a timeout, not
// a conflict.
func (uc *CreateBooking) commit(
	ctx context.Context,
	b *domain.Booking,
	key string,
) (*domain.Booking, bool, error) {

	commitCtx, cancel := context.WithTimeout(ctx, uc.commitTimeout)
	defer cancel()

	started := time.Now()
	stored, replayed, err := uc.bookings.Insert(commitCtx, b, key)
	uc.metrics.ObserveCommit(time.Since(started).Seconds())

	if err != nil {
		if httperr.IsKind(err, httperr.KindConflict) {
			return nil, false, err
		}
		if errors.Is(commitCtx.Err(), context.DeadlineExceeded) {
			return nil, false, httperr.Timeout(httperr.CodeTimeout)
		}
		return nil, false, err
	}

	return stored, replayed, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := httperr.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
