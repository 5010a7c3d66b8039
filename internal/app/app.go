package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weedx-backend/internal/config"
	"weedx-backend/internal/database"
	"weedx-backend/internal/handler"
	"weedx-backend/internal/metrics"
	"weedx-backend/internal/middleware"
	"weedx-backend/internal/repository"
	"weedx-backend/internal/route"
	"weedx-backend/internal/router"
	"weedx-backend/internal/service"
	"weedx-backend/internal/token"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	deviceTokenRepo := repository.NewDeviceTokenRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	detectionRepo := repository.NewDetectionRepository(pool)
	robotRepo := repository.NewRobotRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	slog.Info("database ready")

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	activityService, err := service.NewActivityService(cfg.ActivityLogDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize activity log: %w", err)
	}

	appMetrics := metrics.New()
	authMiddleware := middleware.NewAuthMiddleware(codec,
		middleware.WithAuthObserver(appMetrics),
		middleware.WithAuthRecorder(activityService),
		middleware.WithEndpoint(route.ResolvedPath),
	)

	authService := service.NewAuthService(userRepo, codec)
	profileService := service.NewProfileService(userRepo, settingsRepo, deviceTokenRepo)
	alertService := service.NewAlertService(alertRepo)
	fieldService := service.NewFieldService(detectionRepo, robotRepo)
	reportService := service.NewReportService(detectionRepo, sessionRepo)
	monitoringService := service.NewMonitoringService(robotRepo, detectionRepo, sessionRepo, alertRepo)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Profile:    handler.NewProfileHandler(profileService),
		Alert:      handler.NewAlertHandler(alertService),
		Field:      handler.NewFieldHandler(fieldService),
		Report:     handler.NewReportHandler(reportService),
		Monitoring: handler.NewMonitoringHandler(monitoringService),
	}, appMetrics, activityService, db)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// The pool closes after in-flight requests have drained.
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
