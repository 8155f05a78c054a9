package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/schedule"
)

const TypeDailyGeneration = "slots:daily_generation"

// DailyRunner is satisfied by schedule.DailyGeneration.
type DailyRunner interface {
	Run(ctx context.Context) (schedule.Report, error)
}

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

type dailyPayload struct {
	Trigger string `json:"trigger"`
}

func NewDailyGenerationTask(trigger string) (*asynq.Task, error) {
	b, err := json.Marshal(dailyPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDailyGeneration, b, asynq.MaxRetry(2), asynq.Timeout(30*time.Minute)), nil
}

func handleDailyGeneration(runner DailyRunner, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p dailyPayload
		if len(task.Payload()) > 0 {
			if err := json.Unmarshal(task.Payload(), &p); err != nil {
				logger.Error("invalid daily generation payload", zap.Error(err))
				return asynq.SkipRetry
			}
		}

		report, err := runner.Run(ctx)
		if err != nil {
			logger.Error("daily generation aborted",
				zap.String("trigger", p.Trigger),
				zap.Error(err),
			)
			return err
		}

		logger.Info("daily generation task done",
			zap.String("trigger", p.Trigger),
			zap.Int("providers", report.Providers),
			zap.Int("failed", report.Failed),
			zap.Int("generated", report.Generated),
		)
		return nil
	}
}
