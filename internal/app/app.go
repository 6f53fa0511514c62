package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rar-studio/internal/config"
	"rar-studio/internal/database"
	"rar-studio/internal/handler"
	"rar-studio/internal/llm"
	"rar-studio/internal/metrics"
	"rar-studio/internal/provider"
	"rar-studio/internal/repository"
	"rar-studio/internal/router"
	"rar-studio/internal/service/conversation"
	"rar-studio/internal/service/outbound"
	"rar-studio/internal/service/scheduler"
	"rar-studio/internal/service/studio"
	"rar-studio/internal/service/usage"
)

// App holds the wired components of the service
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Queue     *outbound.Queue
	Scheduler *scheduler.Scheduler
	Router    *gin.Engine
}

// New wires every component on top of an initialized store
func New(cfg *config.Config, db *gorm.DB, reg prometheus.Registerer) *App {
	m := metrics.NewMetrics(reg)
	repo := repository.New(db)

	registry := provider.NewRegistry(cfg.Outbound.DryRun, cfg.Outbound.SendTimeout,
		provider.NewTwilio(cfg.Twilio),
		provider.NewSendGrid(cfg.SendGrid),
	)
	generator := llm.New(cfg.OpenAI)

	meter := usage.NewMeter(repo, m)
	queue := outbound.NewQueue(repo, registry, m, cfg.Outbound.BatchLimit)
	orch := conversation.NewOrchestrator(repo, meter, queue, generator, m, conversation.Brand{
		Name:     cfg.Brand.Name,
		Audience: cfg.Brand.Audience,
	})
	studioSvc := studio.NewService(repo, generator, registry, studio.Brand{
		Name:     cfg.Brand.Name,
		Audience: cfg.Brand.Audience,
	})
	sched := scheduler.New(cfg.Outbound.IntervalMinutes, cfg.Outbound.BatchLimit, queue)

	h := handler.NewHandlers(repo, studioSvc, meter, queue, orch, sched)

	return &App{
		Config:    cfg,
		DB:        db,
		Queue:     queue,
		Scheduler: sched,
		Router:    router.SetupRouter(h, gin.ReleaseMode),
	}
}

// Load reads configuration, sets up logging and opens the store
func Load() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	SetupLogging(cfg.Log)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Outbound.DryRun {
		logrus.Warn("Outbound dry run enabled, provider sends are simulated")
	}
	return cfg, db, nil
}

// Run initializes and starts the application
func Run() error {
	cfg, db, err := Load()
	if err != nil {
		return err
	}

	logrus.Infof("Starting %s", cfg.Brand.Name)

	a := New(cfg, db, prometheus.DefaultRegisterer)
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Outbound.SchedulerEnabled {
		if err := a.Scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	go func() {
		logrus.Infof("Starting HTTP server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Scheduler.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}
	a.Scheduler.Wait()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

// RunOutboundOnce drains one outbound batch and exits. It is meant for an
// external scheduler such as a cron job.
func RunOutboundOnce(ctx context.Context, limit int) (outbound.RunResult, error) {
	cfg, db, err := Load()
	if err != nil {
		return outbound.RunResult{}, err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if limit < 1 {
		limit = cfg.Outbound.BatchLimit
	}

	a := New(cfg, db, prometheus.NewRegistry())
	return a.Queue.Run(ctx, limit)
}
