package router

import (
	"time"

	"campus-intake/internal/api/handlers"
	"campus-intake/internal/api/middleware"
	"campus-intake/internal/config"
	"campus-intake/internal/infrastructure/cache"
	"campus-intake/internal/infrastructure/notify"
	"campus-intake/internal/infrastructure/queue"
	"campus-intake/internal/infrastructure/repository"
	interfaces "campus-intake/internal/interfaces/infrastructure"
	"campus-intake/internal/service"
	"campus-intake/pkg/logger"
	"campus-intake/pkg/regcode"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterComponents bundles the router with the long-lived services the
// server command must shut down with it.
type RouterComponents struct {
	Router       *gin.Engine
	QueueService interfaces.QueueService
	CacheService interfaces.CacheService
}

// NewIntakeRouter wires repositories, services and handlers into the
// HTTP surface.
func NewIntakeRouter(db *gorm.DB) (*RouterComponents, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(cors.Default())
	r.Use(gin.Recovery())
	r.Use(middleware.IdempotencyMiddleware())

	cfg := config.Get()

	slotRepo := repository.NewSlotRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	levelRepo := repository.NewLevelRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	statsRepo, err := repository.NewStatsRepository(db)
	if err != nil {
		return nil, err
	}

	var cacheService interfaces.CacheService
	var idempotencyRepo interfaces.IdempotencyRepository
	if cfg.Cache.Type == "memory" {
		cacheService = cache.NewMemoryCache()
		idempotencyRepo = repository.NewIdempotencyRepository(db)
		logger.Info("Using in-memory cache")
	} else {
		redisCache := cache.NewRedisCacheWithConfig(&cfg.Cache)
		cacheService = redisCache
		idempotencyRepo = repository.NewRedisIdempotencyRepository(redisCache.Client())
		logger.Info("Using Redis cache at %s:%d", cfg.Cache.Host, cfg.Cache.Port)
	}

	sender := notify.NewLogSender()
	var queueService interfaces.QueueService
	if cfg.Queue.Type == "redis" {
		queueService = queue.NewRedisQueue(&cfg.Cache, cfg.Queue.Workers, sender)
		logger.Info("Using Redis notification queue")
	} else {
		queueService = queue.NewInMemoryQueue(cfg.Queue.BufferSize, cfg.Queue.Workers, sender)
		logger.Info("Using in-memory notification queue")
	}
	queueService.StartWorkers()

	codes := regcode.NewGenerator(cfg.Registration.CodePrefix)

	enrollmentService := service.NewEnrollmentService(
		slotRepo,
		levelRepo,
		settingsRepo,
		idempotencyRepo,
		cacheService,
		queueService,
		codes,
		cfg.Registration.ReserveMaxRetries,
	)
	availabilityService := service.NewAvailabilityService(slotRepo, settingsRepo, cacheService)
	checkinService := service.NewCheckInService(studentRepo)
	scheduleService := service.NewScheduleService(slotRepo, studentRepo, levelRepo, settingsRepo, statsRepo, cacheService)
	wizardService := service.NewWizardService(
		enrollmentService,
		slotRepo,
		cacheService,
		time.Duration(cfg.Registration.WizardSessionTTL)*time.Minute,
	)

	staffRepo := repository.NewMockStaffRepository()
	staffService := service.NewStaffService(staffRepo)

	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService, availabilityService, wizardService, scheduleService)
	checkinHandler := handlers.NewCheckInHandler(checkinService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	staffHandler := handlers.NewStaffHandler(staffService)
	healthHandler := handlers.NewHealthHandler(db, cacheService)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ready", healthHandler.ReadinessCheck)
	r.GET("/live", healthHandler.LivenessCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/levels", enrollmentHandler.GetLevels)

		availability := v1.Group("/availability")
		{
			availability.GET("/dates", enrollmentHandler.GetAvailableDates)
			availability.GET("/slots", enrollmentHandler.GetAvailableSlots)
		}

		v1.POST("/reserve", enrollmentHandler.Reserve)

		wizard := v1.Group("/wizard")
		{
			wizard.POST("", enrollmentHandler.StartWizard)
			wizard.GET("/:token", enrollmentHandler.GetWizard)
			wizard.POST("/:token/profile", enrollmentHandler.SubmitWizardProfile)
			wizard.POST("/:token/slot", enrollmentHandler.SelectWizardSlot)
			wizard.POST("/:token/back", enrollmentHandler.WizardBack)
			wizard.POST("/:token/confirm", enrollmentHandler.ConfirmWizard)
			wizard.DELETE("/:token", enrollmentHandler.AbandonWizard)
		}

		admin := v1.Group("/admin")
		{
			students := admin.Group("/students")
			{
				students.GET("", checkinHandler.ListStudents)
				students.GET("/search", checkinHandler.SearchStudent)
				students.POST("/:student_id/checkin", checkinHandler.CheckIn)
			}

			slots := admin.Group("/slots")
			{
				slots.GET("", scheduleHandler.ListSlots)
				slots.POST("", scheduleHandler.CreateSlot)
				slots.GET("/:slot_id", scheduleHandler.GetSlot)
				slots.PUT("/:slot_id", scheduleHandler.UpdateSlot)
				slots.DELETE("/:slot_id", scheduleHandler.DeleteSlot)
			}

			levels := admin.Group("/levels")
			{
				levels.GET("", scheduleHandler.ListLevels)
				levels.POST("", scheduleHandler.CreateLevel)
				levels.PUT("/:level_id", scheduleHandler.UpdateLevel)
				levels.DELETE("/:level_id", scheduleHandler.DeleteLevel)
			}

			admin.GET("/settings", scheduleHandler.GetSettings)
			admin.PUT("/settings", scheduleHandler.UpdateSettings)
			admin.GET("/dashboard", scheduleHandler.GetDashboard)

			staffRoutes := admin.Group("/staff")
			{
				staffRoutes.GET("", staffHandler.ListMembers)
				staffRoutes.POST("", staffHandler.CreateMember)
				staffRoutes.GET("/:id", staffHandler.GetMember)
				staffRoutes.PUT("/:id", staffHandler.UpdateMember)
				staffRoutes.DELETE("/:id", staffHandler.DeleteMember)
			}
		}
	}

	return &RouterComponents{
		Router:       r,
		QueueService: queueService,
		CacheService: cacheService,
	}, nil
}
