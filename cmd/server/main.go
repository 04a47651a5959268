// Package main provides the entry point for the trivia API server.
// It sets up the HTTP server, database connection, middleware, and API routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"triviaapi/internal/config"
	"triviaapi/internal/di"
	"triviaapi/internal/handlers"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"
	"triviaapi/internal/version"

	"github.com/gin-gonic/gin"
)

// Application wires the container's services into an HTTP server
type Application struct {
	container di.ServiceContainerInterface
	router    *gin.Engine
	server    *http.Server
}

// NewApplication creates a new application instance
func NewApplication(container di.ServiceContainerInterface) (*Application, error) {
	categoryService, err := container.GetCategoryService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get category service")
	}

	questionService, err := container.GetQuestionService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get question service")
	}

	quizService, err := container.GetQuizService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get quiz service")
	}

	healthService, err := container.GetHealthService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get health service")
	}

	router, err := handlers.NewRouter(
		container.GetConfig(),
		categoryService,
		questionService,
		quizService,
		healthService,
		container.GetLogger(),
	)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to build router")
	}

	return &Application{
		container: container,
		router:    router,
		server: &http.Server{
			Addr:              ":" + container.GetConfig().Server.Port,
			Handler:           router,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
	}, nil
}

// Run serves HTTP until the server stops; a graceful Shutdown returns nil
func (a *Application) Run() error {
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return contextutils.WrapError(err, "server failed")
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the container's services
func (a *Application) Shutdown(ctx context.Context) error {
	serverErr := a.server.Shutdown(ctx)
	return errors.Join(serverErr, a.container.Shutdown(ctx))
}

func main() {
	os.Exit(run())
}

// run starts the server and blocks until a shutdown signal or server failure,
// returning the process exit code
func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if cfg.OpenTelemetry.ServiceVersion == "" {
		cfg.OpenTelemetry.ServiceVersion = version.Version
	}

	// Setup observability (tracing/metrics/logging)
	tp, mp, logger, err := observability.SetupObservability(cfg, config.DefaultServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer shutdownCancel()

		if provider, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
		_ = logger.Shutdown(shutdownCtx)
	}()

	build := version.Get(cfg.OpenTelemetry.ServiceName)
	logger.Info(ctx, "Starting trivia API", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.Server.LogLevel,
		"version":  build.Version,
		"commit":   build.Commit,
		"database": contextutils.MaskDatabaseURL(cfg.Database.URL),
	})

	container := di.NewServiceContainer(cfg, logger)
	if err := container.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize services", err, nil)
		return 1
	}

	app, err := NewApplication(container)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err, nil)
		_ = container.Shutdown(ctx)
		return 1
	}

	appErr := make(chan error, 1)
	go func() {
		appErr <- app.Run()
	}()

	exitCode := 0
	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully", nil)
	case err := <-appErr:
		if err != nil {
			logger.Error(ctx, "Application failed", err, nil)
			exitCode = 1
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during application shutdown", err, nil)
		exitCode = 1
	}

	logger.Info(ctx, "Shutdown completed", map[string]interface{}{"exit_code": exitCode})
	return exitCode
}
