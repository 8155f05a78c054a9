package slots

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
	"github.com/BruksfildServices01/slot-scheduler/internal/metrics"
)

var tracer = otel.Tracer("slot-scheduler/usecase/slots")

// ======================================================
// RESULT
// ======================================================

// DayError records a day that could not be fully generated. Other days of
// the same run are unaffected.
type DayError struct {
	Date    string `json:"date"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type GenerateResult struct {
	Generated int        `json:"generated"`
	Errors    []DayError `json:"errors"`
}

// ======================================================
// USE CASE
// ======================================================

type GenerateSlots struct {
	configs catalog.ConfigSource
	slots   slot.Store
	metrics *metrics.SchedulingMetrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewGenerateSlots(
	configs catalog.ConfigSource,
	slots slot.Store,
	metrics *metrics.SchedulingMetrics,
	logger *zap.Logger,
	now func() time.Time,
) *GenerateSlots {
	if now == nil {
		now = time.Now
	}
	return &GenerateSlots{
		configs: configs,
		slots:   slots,
		metrics: metrics,
		logger:  logging.Or(logger),
		now:     now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// ConfiguredHorizon asks Execute to use the provider's MaxAdvanceDays.
const ConfiguredHorizon = -1

// Execute materializes free slots for day offsets 0..horizonDays in the
// provider's zone. Running it again inserts nothing new.
func (uc *GenerateSlots) Execute(
	ctx context.Context,
	providerID uint,
	horizonDays int,
) (GenerateResult, error) {

	if horizonDays != ConfiguredHorizon &&
		(horizonDays < 0 || horizonDays > availability.MaxAdvanceDays) {
		return GenerateResult{}, httperr.Validation("invalid_horizon")
	}

	cfg, err := uc.configs.ProviderConfig(ctx, providerID)
	if err != nil {
		return GenerateResult{}, err
	}

	if horizonDays == ConfiguredHorizon {
		horizonDays = cfg.Horizon()
	}

	return uc.ForProvider(ctx, cfg, horizonDays)
}

// ForProvider runs generation against an already loaded snapshot. A bad
// config fails the whole call; storage errors only fail their day.
func (uc *GenerateSlots) ForProvider(
	ctx context.Context,
	cfg availability.ProviderConfig,
	horizonDays int,
) (GenerateResult, error) {

	ctx, span := tracer.Start(ctx, "slots.generate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("provider.id", int(cfg.ProviderID)),
		attribute.Int("horizon.days", horizonDays),
	)

	result := GenerateResult{Errors: []DayError{}}

	// --------------------------------------------------
	// Config
	// --------------------------------------------------
	if err := cfg.Validate(); err != nil {
		uc.metrics.ObserveGenerationError(string(httperr.KindConfiguration))
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return result, err
	}

	now := uc.now()
	today := availability.DateOf(now.In(loc))

	// --------------------------------------------------
	// Days
	// --------------------------------------------------
	for offset := 0; offset <= horizonDays; offset++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		date := today.AddDays(offset)
		n, err := uc.generateDay(ctx, cfg, date, now)
		result.Generated += n

		if err != nil {
			kind := httperr.KindOf(err)
			if kind == "" {
				kind = httperr.KindStorage
			}
			result.Errors = append(result.Errors, DayError{
				Date:    date.String(),
				Kind:    string(kind),
				Message: err.Error(),
			})
			uc.metrics.ObserveGenerationError(string(kind))
			uc.logger.Warn("slot generation failed for day",
				zap.Uint("provider_id", cfg.ProviderID),
				zap.String("date", date.String()),
				zap.Error(err),
			)
		}
	}

	uc.metrics.AddGenerated(result.Generated)
	span.SetAttributes(attribute.Int("slots.generated", result.Generated))

	uc.logger.Info("slots generated",
		zap.Uint("provider_id", cfg.ProviderID),
		zap.Int("horizon_days", horizonDays),
		zap.Int("generated", result.Generated),
		zap.Int("failed_days", len(result.Errors)),
	)

	return result, nil
}

func (uc *GenerateSlots) generateDay(
	ctx context.Context,
	cfg availability.ProviderConfig,
	date availability.Date,
	now time.Time,
) (int, error) {

	boundaries, err := availability.GenerateDayBoundaries(cfg, date)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, b := range boundaries {
		if !b.Start.After(now) {
			continue
		}

		ok, err := uc.slots.UpsertIfAbsent(ctx, slot.NewFree(cfg.ProviderID, b))
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	return inserted, nil
}
