package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/auth"
	"github.com/vigil-intel/vigil-engine/pkg/config"
	"github.com/vigil-intel/vigil-engine/pkg/database"
	"github.com/vigil-intel/vigil-engine/pkg/handlers"
	"github.com/vigil-intel/vigil-engine/pkg/llm"
	"github.com/vigil-intel/vigil-engine/pkg/logging"
	"github.com/vigil-intel/vigil-engine/pkg/middleware"
	"github.com/vigil-intel/vigil-engine/pkg/repositories"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("llm_provider", cfg.LLM.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Migrations run over database/sql; the pool below is pgx-native.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	llmClient, err := llm.NewFromProvider(cfg.LLM.Provider, &llm.Config{
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	scanRepo := repositories.NewScanResultRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	threadRepo := repositories.NewCaseThreadRepository(db)

	scanService := services.NewScanService(scanRepo, clientRepo, cfg.Analysis, logger)
	clientService := services.NewClientService(clientRepo, logger)
	correlationService := services.NewCorrelationService(scanRepo, threadRepo, cfg.Analysis, logger)
	attributionService := services.NewAttributionService(logger)
	classificationService := services.NewClassificationService(llmClient, logger)

	api := http.NewServeMux()
	handlers.NewScanHandler(scanService, logger).RegisterRoutes(api)
	handlers.NewEntityHandler(classificationService, cfg.Analysis, logger).RegisterRoutes(api)
	handlers.NewCorrelationHandler(correlationService, logger).RegisterRoutes(api)
	handlers.NewAttributionHandler(attributionService, scanService, logger).RegisterRoutes(api)
	handlers.NewThreatHandler(classificationService, logger).RegisterRoutes(api)
	handlers.NewClientHandler(clientService, logger).RegisterRoutes(api)

	authMiddleware := auth.NewMiddleware(cfg.Auth.JWTSecret, cfg.Auth.EnableVerification, logger)

	root := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(root)
	root.Handle("/api/", authMiddleware.RequireAuth(api))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(root),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting vigil-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
