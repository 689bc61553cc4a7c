package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/tejusbharadwaj/availability/internal/api"
	"github.com/tejusbharadwaj/availability/internal/availability"
	"github.com/tejusbharadwaj/availability/internal/cache"
	"github.com/tejusbharadwaj/availability/internal/config"
	"github.com/tejusbharadwaj/availability/internal/database"
	server "github.com/tejusbharadwaj/availability/internal/grpc"
	"github.com/tejusbharadwaj/availability/internal/rest"
	"github.com/tejusbharadwaj/availability/internal/scheduler"
)

// Command availability serves data availability summaries of an
// observation store.
//
// The service supports:
//   - Legacy (one record per constellation) and offering-aware responses
//   - Parent offerings synthesized from their children
//   - Precompiled, timing table and observation scan time extent strategies
//   - Optional observation counts and result times
//   - gRPC and HTTP transports with Prometheus metrics
//
// Usage:
//
//	availability [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//	-migrate
//	      apply database migrations before serving
func main() {
	// Parse command line flags
	cfg := parseFlags()

	// Load configuration
	appConfig, err := config.Load(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := newLogger(appConfig.Logging)

	logger.WithFields(logrus.Fields{
		"port":      appConfig.Server.Port,
		"http_port": appConfig.Server.HTTPPort,
	}).Info("Starting server")

	repo, err := database.NewPostgresRepo(appConfig.Database.DSN(), appConfig.Database.MaxConnections)
	if err != nil {
		logger.Fatalf("Failed to create repository: %v", err)
	}

	// Create a context that will be canceled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Migrate || appConfig.Database.Migrate {
		if err := repo.Migrate(ctx, logger); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize components
	offerings := cache.New(repo)
	if err := offerings.Refresh(ctx); err != nil {
		logger.Fatalf("Failed to load offering cache: %v", err)
	}
	refresher := scheduler.NewScheduler(ctx, offerings, appConfig.Availability.CacheRefresh, logger)

	var features availability.FeatureResolver
	if url := appConfig.Availability.FeatureServiceURL; url != "" {
		fetcher, err := api.NewFeatureFetcher(url, appConfig.Availability.FeatureCacheSize, appConfig.Availability.FeatureTimeout, logger)
		if err != nil {
			logger.Fatalf("Failed to create feature client: %v", err)
		}
		features = fetcher
	}

	service := availability.NewService(repo, offerings, features, availability.Config{
		PrecompiledQuery: appConfig.Availability.PrecompiledQuery,
		Formats:          formatRegistry(appConfig.Availability.Encodings),
	}, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Create and setup gRPC server
	serverConfig := server.ServerConfig{
		RateLimit:      appConfig.RateLimit.RPS,
		RateLimitBurst: appConfig.RateLimit.Burst,
	}
	srv, health, err := server.SetupServer(service, serverConfig, logger, registry)
	if err != nil {
		logger.Fatalf("Failed to setup server: %v", err)
	}
	health.SetProbe(repo.Ping)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.HTTPPort),
		Handler:           rest.New(service, repo, registry, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start listening
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port))
	if err != nil {
		logger.Fatalf("Failed to listen: %v", err)
	}

	// Start background services
	errChan := make(chan error, 3)

	if err := refresher.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	// Handle shutdown gracefully
	go handleShutdown(ctx, srv, health, httpServer, refresher, logger, repo)

	logger.WithFields(logrus.Fields{
		"port": appConfig.Server.Port,
	}).Info("Starting gRPC server")
	go func() {
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"port": appConfig.Server.HTTPPort,
	}).Info("Starting HTTP server")
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// Wait for any error
	if err := <-errChan; err != nil {
		logger.Fatalf("Service error: %v", err)
	}
}

type Config struct {
	ConfigPath string
	Migrate    bool
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigPath, "config", "config.yaml", "Path to the config file")
	flag.BoolVar(&cfg.Migrate, "migrate", false, "Apply database migrations before serving")

	flag.Parse()

	return cfg
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// formatRegistry returns nil when no encodings are configured so the
// service falls back to its built-in registry.
func formatRegistry(encodings []config.EncodingConfig) availability.FormatRegistry {
	if len(encodings) == 0 {
		return nil
	}
	registry := availability.FormatRegistry{}
	for _, e := range encodings {
		registry[e.ObservationType] = append(registry[e.ObservationType], e.ResponseFormats...)
	}
	return registry
}

// Handle graceful shutdown
func handleShutdown(
	ctx context.Context,
	srv *grpc.Server,
	health *server.HealthChecker,
	httpServer *http.Server,
	refresher *scheduler.Scheduler,
	logger *logrus.Logger,
	repo *database.PostgresRepo,
) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Received signal, initiating shutdown")
	}

	// Perform graceful shutdown
	health.Shutdown()
	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}

	logger.Info("Gracefully stopping server...")
	srv.GracefulStop()
	logger.Info("Server stopped")

	// Clean up the repository
	if err := repo.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close repository")
	}
	os.Exit(0)
}
