package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/learnbridge-backend/internal/data/db"
	httpx "github.com/yungbote/learnbridge-backend/internal/http"
	httpMW "github.com/yungbote/learnbridge-backend/internal/http/middleware"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *httpx.Server
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	gdb := pg.DB()

	repoSet := wireRepos(gdb, log)
	serviceSet, err := wireServices(ctx, gdb, log, cfg, repoSet)
	if err != nil {
		log.Sync()
		return nil, err
	}
	handlerSet := wireHandlers(log, serviceSet)

	server := httpx.NewServer(httpx.RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, serviceSet.Auth),
		AllowedOrigins: cfg.AllowedOrigins,

		AuthHandler:         handlerSet.Auth,
		SubscriptionHandler: handlerSet.Subscription,
		LearningHandler:     handlerSet.Learning,
		ContentHandler:      handlerSet.Content,
		DashboardHandler:    handlerSet.Dashboard,
		HealthHandler:       handlerSet.Health,
	})

	return &App{
		Log:      log,
		DB:       gdb,
		Cfg:      cfg,
		Repos:    repoSet,
		Services: serviceSet,
		Server:   server,
	}, nil
}

func (a *App) Run() error {
	a.Log.Info("starting server", "port", a.Cfg.Port)
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Server.Shutdown(ctx)
}
