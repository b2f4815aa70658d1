package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/controller"
	"skillsim_backend/internal/repository"
	"skillsim_backend/internal/service"
	"skillsim_backend/pkg/database"
	"skillsim_backend/pkg/logger"
	"skillsim_backend/pkg/monitoring"
	"skillsim_backend/pkg/security"
	"skillsim_backend/pkg/tracing"
	"syscall"
	"time"

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
	scenario   *repository.ScenarioRepository
	session    *repository.SessionRepository
	turn       *repository.TurnRepository
	assessment *repository.AssessmentRepository
	competency *repository.CompetencyRepository
	progress   *repository.ProgressRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	scenario   *service.ScenarioService
	generator  *service.GeneratorService
	assessment *service.AssessmentService
	competency *service.CompetencyService
	session    *service.SessionService
	report     *service.ReportService
}

type controllers struct {
	auth       *controller.AuthController
	scenario   *controller.ScenarioController
	session    *controller.SessionController
	assessment *controller.AssessmentController
	competency *controller.CompetencyController
	report     *controller.ReportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新可在线调整的配置段
func (a *App) ApplyConfig(cfg *config.Config) {
	cfg.Engine.ApplyDefaults()
	a.services.assessment.UpdateEngineConfig(cfg.Engine)
	a.services.generator.UpdateConfig(cfg.Generator)
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("engine configuration reloaded",
		zap.Int("triggerMinTurns", cfg.Engine.TriggerMinTurns),
		zap.Int("triggerEveryTurns", cfg.Engine.TriggerEveryTurns),
		zap.Int("maxAssessments", cfg.Engine.MaxAssessments))
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		scenario:   repository.NewScenarioRepository(db),
		session:    repository.NewSessionRepository(db),
		turn:       repository.NewTurnRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		competency: repository.NewCompetencyRepository(db),
		progress:   repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.scenario = service.NewScenarioService(repos.scenario)
	s.generator = service.NewGeneratorService(cfg.Generator)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.turn, repos.scenario, s.generator, cfg.Engine)
	s.competency = service.NewCompetencyService(repos.competency, repos.session, rdb, cfg.Engine)
	s.session = service.NewSessionService(repos.session, repos.turn, repos.scenario, repos.progress, repos.user, s.assessment, s.competency)
	s.report = service.NewReportService(repos.session, repos.competency, repos.scenario, repos.turn, s.generator, s.storage, cfg.Engine)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		scenario:   controller.NewScenarioController(s.scenario),
		session:    controller.NewSessionController(s.session),
		assessment: controller.NewAssessmentController(s.assessment, s.session),
		competency: controller.NewCompetencyController(s.competency, s.session),
		report:     controller.NewReportController(s.report),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 6000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// 空闲超过 24 小时的进行中会话定期转为放弃
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		for range ticker.C {
			n, err := s.session.AbandonStaleSessions(24 * time.Hour)
			if err != nil {
				logger.Log.Error("stale session sweep error", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("abandoned stale sessions", zap.Int("count", n))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
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

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("skillsim-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
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
