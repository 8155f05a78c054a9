package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/audit"
	"github.com/BruksfildServices01/slot-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/slot-scheduler/internal/db"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/handlers"
	"github.com/BruksfildServices01/slot-scheduler/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/slot-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/slot-scheduler/internal/metrics"
	"github.com/BruksfildServices01/slot-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/slot-scheduler/internal/usecase/booking"
	ucSchedule "github.com/BruksfildServices01/slot-scheduler/internal/usecase/schedule"
	ucSlots "github.com/BruksfildServices01/slot-scheduler/internal/usecase/slots"
)

// Infra is what main opens before routing.
type Infra struct {
	Config   *config.Config
	DB       *dbpkg.Databases
	Redis    *redis.Client
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// App exposes the singletons main still needs after routing.
type App struct {
	Daily       *ucSchedule.DailyGeneration
	Audit       *audit.Dispatcher
	RateLimiter *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, in Infra) *App {
	cfg := in.Config
	logger := in.Logger
	now := time.Now

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.CORSMiddleware(),
		middleware.RequestLogger(logger),
	)

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	catalogRepo := infraRepo.NewCatalogGormRepository(in.DB.Gorm)
	slotRepo := infraRepo.NewSlotPgxRepository(in.DB.Pool)
	bookingRepo := infraRepo.NewBookingPgxRepository(in.DB.Pool, cfg.BookingCommitTimeout)

	configCache := cache.NewProviderConfigCache(in.Redis, catalogRepo, cfg.ConfigCacheTTL, logger)

	auditLogger := audit.New(in.DB.Gorm)
	auditDispatcher := audit.NewDispatcher(auditLogger, logger, 256)

	schedMetrics := metrics.NewSchedulingMetrics(in.Registry)
	validator := availability.NewValidator(now)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// ======================================================
	// USE CASES: SLOTS
	// ======================================================
	generateUC := ucSlots.NewGenerateSlots(configCache, slotRepo, schedMetrics, logger, now)
	regenerateUC := ucSlots.NewRegenerateSlots(configCache, slotRepo, generateUC, logger, now).
		WithAudit(auditDispatcher)
	availableUC := ucSlots.NewGetAvailableSlots(configCache, catalogRepo, slotRepo, bookingRepo, validator)
	cleanupUC := ucSlots.NewCleanupSlots(slotRepo, cfg.SlotRetention(), logger, now)
	updateConfigUC := ucSlots.NewUpdateProviderConfig(catalogRepo, configCache, regenerateUC, logger)

	// ======================================================
	// USE CASES: BOOKINGS
	// ======================================================
	reconciler := ucBooking.NewSlotReconciler(slotRepo, bookingRepo, schedMetrics, logger)

	createBookingUC := ucBooking.NewCreateBooking(ucBooking.CreateBookingDeps{
		Configs:       configCache,
		Services:      catalogRepo,
		Bookings:      bookingRepo,
		Validator:     validator,
		Reconciler:    reconciler,
		Audit:         auditDispatcher,
		Metrics:       schedMetrics,
		Logger:        logger,
		CommitTimeout: cfg.BookingCommitTimeout,
		Now:           now,
	})
	confirmUC := ucBooking.NewConfirmBooking(bookingRepo, reconciler, auditDispatcher, schedMetrics, logger, now)
	cancelUC := ucBooking.NewCancelBooking(bookingRepo, reconciler, auditDispatcher, schedMetrics, logger, now)
	completeUC := ucBooking.NewCompleteBooking(bookingRepo, reconciler, auditDispatcher, schedMetrics, logger, now)
	getUC := ucBooking.NewGetBooking(bookingRepo)

	// ======================================================
	// USE CASES: SCHEDULE
	// ======================================================
	dailyUC := ucSchedule.NewDailyGeneration(
		catalogRepo,
		configCache,
		generateUC,
		reconciler,
		cleanupUC,
		logger,
		now,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	slotsHandler := handlers.NewSlotsHandler(generateUC, regenerateUC, availableUC)
	bookingsHandler := handlers.NewBookingsHandler(createBookingUC, confirmUC, cancelUC, completeUC, getUC)
	availabilityHandler := handlers.NewAvailabilityHandler(configCache, updateConfigUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(auditLogger)
	opsHandler := handlers.NewOpsHandler(dailyUC)
	healthHandler := handlers.NewHealthHandler(
		handlers.Check{Name: "postgres", Probe: in.DB.Ready},
		handlers.Check{Name: "redis", Probe: configCache.Ping},
	)

	// ======================================================
	// PUBLIC
	// ======================================================
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(in.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	api.GET("/providers/:providerId/availability/slots", slotsHandler.Available)

	// ======================================================
	// AUTHENTICATED
	// ======================================================
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	provider := api.Group("/providers/:providerId", auth, middleware.RequireProviderAccess())
	{
		provider.POST("/slots/generate", slotsHandler.Generate)
		provider.POST("/slots/regenerate", slotsHandler.Regenerate)

		provider.GET("/availability", availabilityHandler.Get)
		provider.PUT("/availability", availabilityHandler.Update)

		provider.POST("/bookings", rateLimiter.Middleware(logger), bookingsHandler.Create)

		provider.GET("/audit-logs", auditLogsHandler.List)
	}

	bookings := api.Group("/bookings/:id", auth)
	{
		bookings.GET("", bookingsHandler.Get)
		bookings.POST("/confirm", bookingsHandler.Confirm())
		bookings.POST("/cancel", bookingsHandler.Cancel())
		bookings.POST("/complete", bookingsHandler.Complete())
	}

	ops := api.Group("/ops", auth, middleware.RequireRole(middleware.RoleOps))
	{
		ops.POST("/daily-generation", opsHandler.RunDaily)
	}

	return &App{
		Daily:       dailyUC,
		Audit:       auditDispatcher,
		RateLimiter: rateLimiter,
	}
}
