package slots

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/audit"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
)

type RegenerateResult struct {
	GenerateResult
	Deleted int64 `json:"deleted"`
}

// RegenerateSlots rebuilds the free future after a config change. Slots
// that are reserved, booked or blocked are left alone.
type RegenerateSlots struct {
	configs  catalog.ConfigSource
	slots    slot.Store
	generate *GenerateSlots
	audit    *audit.Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

func NewRegenerateSlots(
	configs catalog.ConfigSource,
	slots slot.Store,
	generate *GenerateSlots,
	logger *zap.Logger,
	now func() time.Time,
) *RegenerateSlots {
	if now == nil {
		now = time.Now
	}
	return &RegenerateSlots{
		configs:  configs,
		slots:    slots,
		generate: generate,
		logger:   logging.Or(logger),
		now:      now,
	}
}

// WithAudit records every regeneration on d.
func (uc *RegenerateSlots) WithAudit(d *audit.Dispatcher) *RegenerateSlots {
	uc.audit = d
	return uc
}

func (uc *RegenerateSlots) Execute(
	ctx context.Context,
	providerID uint,
) (RegenerateResult, error) {
	return uc.ExecuteAs(ctx, providerID, "system")
}

func (uc *RegenerateSlots) ExecuteAs(
	ctx context.Context,
	providerID uint,
	actor string,
) (RegenerateResult, error) {

	cfg, err := uc.configs.ProviderConfig(ctx, providerID)
	if err != nil {
		return RegenerateResult{}, err
	}

	return uc.FromConfig(ctx, cfg, actor)
}

// FromConfig regenerates against cfg as given, without reading the
// provider's stored settings again.
func (uc *RegenerateSlots) FromConfig(
	ctx context.Context,
	cfg availability.ProviderConfig,
	actor string,
) (RegenerateResult, error) {

	providerID := cfg.ProviderID

	// Refuse before deleting anything.
	if err := cfg.Validate(); err != nil {
		return RegenerateResult{}, err
	}

	deleted, err := uc.slots.DeleteFutureFree(ctx, providerID, uc.now())
	if err != nil {
		return RegenerateResult{}, err
	}

	res, err := uc.generate.ForProvider(ctx, cfg, cfg.Horizon())
	if err != nil {
		return RegenerateResult{Deleted: deleted}, err
	}

	uc.logger.Info("slots regenerated",
		zap.Uint("provider_id", providerID),
		zap.Int64("deleted", deleted),
		zap.Int("generated", res.Generated),
	)

	uc.audit.Dispatch(audit.Event{
		ProviderID: providerID,
		Actor:      actor,
		Action:     "slots_regenerated",
		Entity:     "slot",
		Metadata: map[string]any{
			"deleted":     deleted,
			"generated":   res.Generated,
			"failed_days": len(res.Errors),
		},
	})

	return RegenerateResult{GenerateResult: res, Deleted: deleted}, nil
}
