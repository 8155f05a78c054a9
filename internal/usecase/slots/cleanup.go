package slots

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
)

// CleanupSlots deletes free and blocked slots that ended before the
// retention window. Slots tied to a booking are never touched.
type CleanupSlots struct {
	slots     slot.Store
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewCleanupSlots(
	slots slot.Store,
	retention time.Duration,
	logger *zap.Logger,
	now func() time.Time,
) *CleanupSlots {
	if now == nil {
		now = time.Now
	}
	return &CleanupSlots{
		slots:     slots,
		retention: retention,
		logger:    logging.Or(logger),
		now:       now,
	}
}

func (uc *CleanupSlots) Execute(ctx context.Context) (int64, error) {
	cutoff := uc.now().Add(-uc.retention)

	n, err := uc.slots.DeleteStale(ctx, cutoff, slot.CleanupStatuses()...)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		uc.logger.Info("stale slots removed",
			zap.Int64("deleted", n),
			zap.Time("cutoff", cutoff),
		)
	}
	return n, nil
}
