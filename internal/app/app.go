package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/controller"
	"wellbeing_backend/internal/repository"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/pkg/database"
	"wellbeing_backend/pkg/logger"
	"wellbeing_backend/pkg/monitoring"
	"wellbeing_backend/pkg/security"
	"wellbeing_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	student    *repository.StudentRepository
	attendance *repository.AttendanceRepository
	assessment *repository.AssessmentRepository
	survey     *repository.SurveyRepository
	analytics  *repository.AnalyticsRepository
	retention  *repository.RetentionRepository
}

type services struct {
	auth      *service.AuthService
	scope     *service.ScopeService
	records   *service.RecordsService
	analytics *service.AnalyticsService
	retention *service.RetentionService
	export    *service.ExportService
}

type controllers struct {
	auth       *controller.AuthController
	student    *controller.StudentController
	attendance *controller.AttendanceController
	assessment *controller.AssessmentController
	survey     *controller.SurveyController
	analytics  *controller.AnalyticsController
	retention  *controller.RetentionController
	export     *controller.ExportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig fans a reloaded config out to every registered callback.
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		student:    repository.NewStudentRepository(db),
		attendance: repository.NewAttendanceRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		survey:     repository.NewSurveyRepository(db),
		analytics:  repository.NewAnalyticsRepository(db),
		retention:  repository.NewRetentionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	locks := service.NewStudentLocks(cfg.Store.LockTimeout)
	cache := service.NewAnalyticsCache(rdb, logger.Log, cfg.Analytics.CacheTTL)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.scope = service.NewScopeService(repos.course)
	s.records = service.NewRecordsService(
		repos.student,
		repos.course,
		repos.attendance,
		repos.assessment,
		repos.survey,
		locks,
		cache,
		logger.Log,
	)
	s.analytics = service.NewAnalyticsService(
		repos.analytics,
		repos.student,
		repos.course,
		cache,
		logger.Log,
		cfg.Analytics,
	)
	a.RegisterConfigCallback(s.analytics.ApplyConfig)

	s.retention = service.NewRetentionService(
		repos.retention,
		locks,
		cache,
		logger.Log,
		cfg.Retention.BatchLimit,
	)

	storage, err := service.NewStorageProvider(cfg.Export, logger.Log)
	if err != nil {
		logger.Log.Warn("export storage unavailable, exports served inline only", zap.Error(err))
		storage = nil
	}
	s.export = service.NewExportService(
		repos.student,
		repos.attendance,
		repos.analytics,
		repos.course,
		storage,
		logger.Log,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		student:    controller.NewStudentController(s.records, s.scope),
		attendance: controller.NewAttendanceController(s.records),
		assessment: controller.NewAssessmentController(s.records),
		survey:     controller.NewSurveyController(s.records),
		analytics:  controller.NewAnalyticsController(s.analytics),
		retention:  controller.NewRetentionController(s.retention),
		export:     controller.NewExportController(s.export),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, analytics caching disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("wellbeing-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
