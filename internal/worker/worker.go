package worker

import (
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
)

type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Cron          string
	Concurrency   int
}

// Worker owns the asynq scheduler that enqueues the daily run and the
// server that executes it.
type Worker struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
	cron      string
	logger    *zap.Logger
}

func New(opts Options, runner DailyRunner, logger *zap.Logger) *Worker {
	logger = logging.Or(logger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
		Logger: logger.Sugar(),
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   logger.Sugar(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDailyGeneration, handleDailyGeneration(runner, logger))

	return &Worker{
		scheduler: scheduler,
		server:    server,
		mux:       mux,
		cron:      opts.Cron,
		logger:    logger,
	}
}

// Start registers the cron entry and starts both halves without blocking.
func (w *Worker) Start() error {
	task, err := NewDailyGenerationTask(TriggerCron)
	if err != nil {
		return err
	}

	entryID, err := w.scheduler.Register(w.cron, task)
	if err != nil {
		return err
	}

	if err := w.scheduler.Start(); err != nil {
		return err
	}
	if err := w.server.Start(w.mux); err != nil {
		w.scheduler.Shutdown()
		return err
	}

	w.logger.Info("worker started",
		zap.String("cron", w.cron),
		zap.String("entry_id", entryID),
	)
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("worker stopped")
}
