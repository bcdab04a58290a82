package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/docuflow/docuflow/internal/application/service"
	"github.com/docuflow/docuflow/internal/config"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/email"
	"github.com/docuflow/docuflow/internal/infrastructure/external"
	"github.com/docuflow/docuflow/internal/infrastructure/external/extract"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/repository"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/sqlite"
	"github.com/docuflow/docuflow/internal/infrastructure/worker"
	httpserver "github.com/docuflow/docuflow/internal/interfaces/http"
	"github.com/docuflow/docuflow/pkg/database"
	"github.com/docuflow/docuflow/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting document workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database and migrations
	rawDB, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer rawDB.Close()

	migrator := database.NewMigrator(rawDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(rawDB.DB, logger)

	// Repositories
	statusRepo := repository.NewStatusRepository(db, logger)
	defRepo := repository.NewWorkflowDefinitionRepository(db, logger)
	docRepo := repository.NewDocumentRepository(db, logger)
	versionRepo := repository.NewDocumentVersionRepository(db, logger)
	runRepo := repository.NewAiRunRepository(db, logger)
	activityRepo := repository.NewActivityRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	notificationRepo := repository.NewNotificationRepository(db, logger)
	settingRepo := repository.NewAISettingRepository(db, logger)
	jobRepo := repository.NewJobRepository(db, logger)

	// External adapters
	emailSender := email.NewSender(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, logger)
	summarizers := external.NewSummarizerFactory(cfg.AI.Temperature, logger)
	extractor := extract.NewExtractor(logger)

	// Application services
	policy := service.NewDocumentPolicy()
	audit := service.NewAuditService(activityRepo, logger)

	aiTrigger := service.NewAiTriggerService(docRepo, settingRepo, runRepo, jobRepo, db,
		service.AiTriggerConfig{
			PromptVersion: cfg.AI.PromptVersion,
			DefaultModels: cfg.AI.DefaultModels,
		}, logger)

	versionHook := func(ctx context.Context, version *entity.DocumentVersion, actor *entity.User) error {
		return aiTrigger.EnqueueVersionCreated(ctx, version, actor.ID)
	}

	lifecycle := service.NewLifecycleService(db, docRepo, versionRepo, statusRepo, userRepo,
		jobRepo, audit, versionHook, logger)
	transitions := service.NewTransitionService(docRepo, statusRepo, defRepo, lifecycle, audit, logger)
	catalog := service.NewCatalogService(db, statusRepo, defRepo, logger)
	notifications := service.NewNotificationService(docRepo, userRepo, notificationRepo, policy, emailSender, logger)
	runs := service.NewAiRunService(runRepo, versionRepo, docRepo, settingRepo, summarizers, logger)

	// Queue workers
	workerCfg := func(queue string) worker.QueueWorkerConfig {
		return worker.QueueWorkerConfig{
			Queue:          queue,
			PollInterval:   cfg.Workers.PollInterval,
			BatchSize:      cfg.Workers.BatchSize,
			ProcessTimeout: cfg.Workers.ProcessTimeout,
			BackoffBase:    cfg.Workers.BackoffBase,
		}
	}
	manager := worker.NewWorkerManager(logger)
	manager.Register(worker.NewNotificationWorker(workerCfg(entity.QueueNotifications), jobRepo, notifications, logger))
	manager.Register(worker.NewAiWorker(workerCfg(entity.QueueAiProcessing), jobRepo, runs, aiTrigger, versionRepo, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	// HTTP server
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, lifecycle, transitions, catalog, docRepo, userRepo, activityRepo, notificationRepo, policy, extractor, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	cancel()
	if err := manager.StopAll(); err != nil {
		logger.Error("Failed to stop workers", zap.Error(err))
	}
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
