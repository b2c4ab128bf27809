package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/importer"
	"github.com/diewo77/go-printshop/internal/logger"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	configFlag      = flag.String("config", "", "Path to an optional config file")
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	importFlag      = flag.String("import", "", "Import a legacy JSON export and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.App.Dev,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	dbConn, err := db.Connect(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	// Handle migrate-only flag
	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations completed successfully")
		return nil
	}

	// Handle seed-only flag
	if *seedOnlyFlag {
		if err := db.Seed(dbConn, cfg, log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seeding completed successfully")
		return nil
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := db.Migrate(dbConn, cfg, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Make sure an admin account exists
	if err := db.Seed(dbConn, cfg, log); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if *importFlag != "" {
		return importFile(dbConn, cfg, log, *importFlag)
	}

	auth.Configure(cfg.Auth.SessionSecret, time.Duration(cfg.Auth.SessionTTL)*time.Hour)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	routerCfg := policy.NewRouterConfig(dbConn, cfg, log, m)

	// Reject sessions of deleted accounts
	auth.SetUserVerifier(routerCfg.Users.Exists)

	appHandler := NewApp(dbConn, routerCfg, log, m)

	// Create server with config timeouts
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("timezone", cfg.App.Location().String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
	return nil
}

// importFile loads a legacy JSON export into the database.
func importFile(dbConn *gorm.DB, cfg *config.Config, log *zap.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	res, err := importer.New(dbConn, log, cfg.App.Location()).Import(context.Background(), f)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	log.Info("import completed",
		zap.String("file", path),
		zap.Int("materials", res.Materials),
		zap.Int("products", res.Products),
		zap.Int("clients", res.Clients),
		zap.Int("orders", res.Orders),
		zap.Int("skipped", res.Skipped))
	return nil
}
