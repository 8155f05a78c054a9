package schedule

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/slots"
)

var tracer = otel.Tracer("slot-scheduler/usecase/schedule")

// ProviderReport is the outcome of one provider in a daily run.
type ProviderReport struct {
	ProviderID uint             `json:"provider_id"`
	Generated  int              `json:"generated"`
	DayErrors  []slots.DayError `json:"day_errors,omitempty"`
	Synced     int              `json:"synced"`
	Error      string           `json:"error,omitempty"`
}

type Report struct {
	StartedAt time.Time        `json:"started_at"`
	Providers int              `json:"providers"`
	Failed    int              `json:"failed"`
	Generated int              `json:"generated"`
	Cleaned   int64            `json:"cleaned"`
	Results   []ProviderReport `json:"results"`
}

// DailyGeneration extends every provider's horizon by one day. A failing
// provider is recorded and the run moves on.
type DailyGeneration struct {
	providers  catalog.ProviderLister
	configs    catalog.ConfigSource
	generate   *slots.GenerateSlots
	reconciler *booking.SlotReconciler
	cleanup    *slots.CleanupSlots
	logger     *zap.Logger
	now        func() time.Time
}

func NewDailyGeneration(
	providers catalog.ProviderLister,
	configs catalog.ConfigSource,
	generate *slots.GenerateSlots,
	reconciler *booking.SlotReconciler,
	cleanup *slots.CleanupSlots,
	logger *zap.Logger,
	now func() time.Time,
) *DailyGeneration {
	if now == nil {
		now = time.Now
	}
	return &DailyGeneration{
		providers:  providers,
		configs:    configs,
		generate:   generate,
		reconciler: reconciler,
		cleanup:    cleanup,
		logger:     logging.Or(logger),
		now:        now,
	}
}

// Run returns an error only when the provider list cannot be read or ctx
// ends. Per-provider failures are in the report.
func (uc *DailyGeneration) Run(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "schedule.daily_generation")
	defer span.End()

	report := Report{StartedAt: uc.now().UTC(), Results: []ProviderReport{}}

	ids, err := uc.providers.ListProviderIDs(ctx)
	if err != nil {
		return report, err
	}
	report.Providers = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pr := uc.runProvider(ctx, id)
		if pr.Error != "" {
			report.Failed++
		}
		report.Generated += pr.Generated
		report.Results = append(report.Results, pr)
	}

	if uc.cleanup != nil {
		n, err := uc.cleanup.Execute(ctx)
		if err != nil {
			uc.logger.Warn("slot cleanup failed", zap.Error(err))
		}
		report.Cleaned = n
	}

	span.SetAttributes(
		attribute.Int("providers", report.Providers),
		attribute.Int("failed", report.Failed),
		attribute.Int("slots.generated", report.Generated),
	)

	uc.logger.Info("daily generation finished",
		zap.Int("providers", report.Providers),
		zap.Int("failed", report.Failed),
		zap.Int("generated", report.Generated),
		zap.Int64("cleaned", report.Cleaned),
	)

	return report, nil
}

func (uc *DailyGeneration) runProvider(ctx context.Context, providerID uint) ProviderReport {
	pr := ProviderReport{ProviderID: providerID}

	cfg, err := uc.configs.ProviderConfig(ctx, providerID)
	if err != nil {
		uc.fail(&pr, "load config", err)
		return pr
	}

	res, err := uc.generate.ForProvider(ctx, cfg, cfg.Horizon())
	if err != nil {
		uc.fail(&pr, "generate", err)
		return pr
	}
	pr.Generated = res.Generated
	if len(res.Errors) > 0 {
		pr.DayErrors = res.Errors
	}

	if uc.reconciler != nil {
		now := uc.now()
		to := now.AddDate(0, 0, cfg.Horizon()+1)
		synced, err := uc.reconciler.Sweep(ctx, providerID, now, to)
		pr.Synced = synced
		if err != nil {
			uc.logger.Warn("slot sweep incomplete",
				zap.Uint("provider_id", providerID),
				zap.Error(err),
			)
		}
	}

	return pr
}

func (uc *DailyGeneration) fail(pr *ProviderReport, stage string, err error) {
	pr.Error = err.Error()
	uc.logger.Error("daily generation failed for provider",
		zap.Uint("provider_id", pr.ProviderID),
		zap.String("stage", stage),
		zap.Error(err),
	)
}
