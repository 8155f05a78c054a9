package slots

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
)

// ConfigInvalidator drops a cached provider snapshot.
type ConfigInvalidator interface {
	Invalidate(ctx context.Context, providerID uint) error
}

// UpdateProviderConfig saves new scheduling settings and rebuilds the free
// future from them.
type UpdateProviderConfig struct {
	repo       catalog.Repository
	cache      ConfigInvalidator
	regenerate *RegenerateSlots
	logger     *zap.Logger
}

func NewUpdateProviderConfig(
	repo catalog.Repository,
	cache ConfigInvalidator,
	regenerate *RegenerateSlots,
	logger *zap.Logger,
) *UpdateProviderConfig {
	return &UpdateProviderConfig{
		repo:       repo,
		cache:      cache,
		regenerate: regenerate,
		logger:     logging.Or(logger),
	}
}

func (uc *UpdateProviderConfig) Execute(
	ctx context.Context,
	cfg availability.ProviderConfig,
	actor string,
) (RegenerateResult, error) {

	if err := cfg.Validate(); err != nil {
		return RegenerateResult{}, err
	}

	if err := uc.repo.SaveProviderConfig(ctx, cfg); err != nil {
		return RegenerateResult{}, err
	}

	// Readers must not see the old snapshot once slots follow the new one.
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, cfg.ProviderID); err != nil {
			uc.logger.Error("provider config cache invalidation failed",
				zap.Uint("provider_id", cfg.ProviderID),
				zap.Error(err),
			)
			return RegenerateResult{}, httperr.Storage(err)
		}
	}

	return uc.regenerate.FromConfig(ctx, cfg, actor)
}
