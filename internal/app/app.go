package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mdla_service/internal/config"
	"mdla_service/internal/controller"
	"mdla_service/internal/middleware"
	"mdla_service/internal/repository"
	"mdla_service/internal/service"
	"mdla_service/pkg/configwatcher"
	"mdla_service/pkg/database"
	"mdla_service/pkg/logger"
	"mdla_service/pkg/monitoring"
	"mdla_service/pkg/security"
	"mdla_service/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile is watched for log level changes while the server runs.
const ConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	scheduler       *cron.Cron
	limiter         *security.Limiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	curriculum *repository.CurriculumRepository
	enrollment *repository.EnrollmentRepository
	product    *repository.ProductRepository
	order      *repository.OrderRepository
	sourcing   *repository.SourcingRepository
	contact    *repository.ContactRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	course     *service.CourseService
	curriculum *service.CurriculumService
	enrollment *service.EnrollmentService
	product    *service.ProductService
	order      *service.OrderService
	sourcing   *service.SourcingService
	contact    *service.ContactService
	storage    *service.StorageService
	upload     *service.UploadService
	dashboard  *service.DashboardService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	course     *controller.CourseController
	curriculum *controller.CurriculumController
	enrollment *controller.EnrollmentController
	product    *controller.ProductController
	order      *controller.OrderController
	sourcing   *controller.SourcingController
	contact    *controller.ContactController
	upload     *controller.UploadController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		curriculum: repository.NewCurriculumRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		product:    repository.NewProductRepository(db),
		order:      repository.NewOrderRepository(db),
		sourcing:   repository.NewSourcingRepository(db),
		contact:    repository.NewContactRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	cache := service.NewCourseCache(rdb, cfg.Redis.CacheTTL())

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.auth)
	s.course = service.NewCourseService(db, repos.course, cache)
	s.curriculum = service.NewCurriculumService(db, repos.course, repos.curriculum, cache)
	s.enrollment = service.NewEnrollmentService(db, repos.enrollment, repos.course, repos.curriculum)
	s.product = service.NewProductService(repos.product)
	s.order = service.NewOrderService(db, repos.order, repos.product)
	s.sourcing = service.NewSourcingService(repos.sourcing)
	s.contact = service.NewContactService(repos.contact, service.NewNotifier(&cfg.Mail))
	s.storage = service.NewStorageService(&cfg.Storage)
	s.upload = service.NewUploadService(s.storage, cfg.Storage.MaxUploadBytes())
	s.dashboard = service.NewDashboardService(repos.user, repos.course, repos.order, repos.sourcing, repos.contact, s.enrollment)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		course:     controller.NewCourseController(s.course),
		curriculum: controller.NewCurriculumController(s.curriculum),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		product:    controller.NewProductController(s.product),
		order:      controller.NewOrderController(s.order),
		sourcing:   controller.NewSourcingController(s.sourcing),
		contact:    controller.NewContactController(s.contact),
		upload:     controller.NewUploadController(s.upload),
		dashboard:  controller.NewDashboardController(s.dashboard),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware(middleware.RateLimitKey(cfg)))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks schedules the periodic metrics refresh and the rate
// limiter sweep. An invalid metrics cron expression is logged and leaves the
// gauge unrefreshed.
func (a *App) startBackgroundTasks(s *services) {
	a.scheduler = cron.New()
	_, err := a.scheduler.AddFunc(a.Config.Metrics.RefreshCron, func() {
		if err := s.dashboard.RefreshCourseGauge(); err != nil {
			logger.Log.Error("Failed to refresh course metrics", zap.Error(err))
		}
	})
	if err != nil {
		logger.Log.Error("Invalid metrics refresh schedule",
			zap.String("cron", a.Config.Metrics.RefreshCron), zap.Error(err))
	}
	if a.limiter != nil {
		a.scheduler.Schedule(cron.Every(time.Minute), cron.FuncJob(func() {
			if n := a.limiter.Sweep(); n > 0 {
				logger.Log.Debug("Swept idle rate limit buckets", zap.Int("dropped", n))
			}
		}))
	}
	a.scheduler.Start()
}

// NewApp connects to the database and redis, migrates when asked to and builds
// the router. With cfg.MigrateOnly set it returns before building the router.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		if err := database.SeedAdmin(db, &cfg.Seed); err != nil {
			logger.Log.Fatal("Failed to seed admin account", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := newApp(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if cfg.Storage.Type == "local" {
		app.Router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
	})

	return app
}

// newApp wires repositories, services and routes on top of existing connections.
// rdb may be nil.
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) watchConfig(ctx context.Context) {
	if len(a.configCallbacks) == 0 {
		return
	}
	if _, err := os.Stat(ConfigFile); err != nil {
		return
	}
	path, _ := filepath.Abs(ConfigFile)
	go func() {
		err := configwatcher.WatchConfig(ctx, path, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a.startBackgroundTasks(a.services)
	a.watchConfig(ctx)

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// wait for an interrupt, then give in-flight requests 5 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	stop()
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
}
