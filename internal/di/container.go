// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"triviaapi/internal/config"
	"triviaapi/internal/database"
	"triviaapi/internal/observability"
	"triviaapi/internal/services"
	serviceinterfaces "triviaapi/internal/services/interfaces"
	contextutils "triviaapi/internal/utils"
)

// Service names registered in the container
const (
	CategoryServiceName = "category"
	QuestionServiceName = "question"
	QuizServiceName     = "quiz"
	HealthServiceName   = "health"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetCategoryService() (services.CategoryServiceInterface, error)
	GetQuestionService() (services.QuestionServiceInterface, error)
	GetQuizService() (services.QuizServiceInterface, error)
	GetHealthService() (services.HealthServiceInterface, error)
	GetDatabase() *sql.DB
	GetDatabaseManager() *database.Manager
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	order         []string
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

var _ ServiceContainerInterface = (*ServiceContainer)(nil)

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize opens and migrates the database, builds every service and starts the
// services that implement serviceinterfaces.Lifecycle
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDB(ctx, sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	sc.initializeServices()

	if err := sc.startupServices(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to startup services")
	}

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetCategoryService returns the category service
func (sc *ServiceContainer) GetCategoryService() (services.CategoryServiceInterface, error) {
	return GetServiceAs[services.CategoryServiceInterface](sc, CategoryServiceName)
}

// GetQuestionService returns the question service
func (sc *ServiceContainer) GetQuestionService() (services.QuestionServiceInterface, error) {
	return GetServiceAs[services.QuestionServiceInterface](sc, QuestionServiceName)
}

// GetQuizService returns the quiz service
func (sc *ServiceContainer) GetQuizService() (services.QuizServiceInterface, error) {
	return GetServiceAs[services.QuizServiceInterface](sc, QuizServiceName)
}

// GetHealthService returns the health service
func (sc *ServiceContainer) GetHealthService() (services.HealthServiceInterface, error) {
	return GetServiceAs[services.HealthServiceInterface](sc, HealthServiceName)
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetDatabaseManager returns the manager that opened the database
func (sc *ServiceContainer) GetDatabaseManager() *database.Manager {
	return sc.dbManager
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown stops lifecycle services and closes the database
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// register stores a service and remembers registration order for startup and shutdown
func (sc *ServiceContainer) register(name string, service interface{}) {
	if _, exists := sc.services[name]; !exists {
		sc.order = append(sc.order, name)
	}
	sc.services[name] = service
}

// startupServices starts, in registration order, every service implementing Lifecycle
func (sc *ServiceContainer) startupServices(ctx context.Context) error {
	for _, name := range sc.order {
		lifecycleService, ok := sc.services[name].(serviceinterfaces.Lifecycle)
		if !ok {
			continue
		}
		sc.logger.Info(ctx, "Starting service", map[string]interface{}{"service": name})
		if err := lifecycleService.Startup(ctx); err != nil {
			return contextutils.WrapErrorf(err, "failed to startup service %s", name)
		}
		sc.logger.Info(ctx, "Service started successfully", map[string]interface{}{"service": name})
	}
	return nil
}

// cleanup shuts lifecycle services down in reverse order, then runs the shutdown funcs
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	for i := len(sc.order) - 1; i >= 0; i-- {
		name := sc.order[i]
		lifecycleService, ok := sc.services[name].(serviceinterfaces.Lifecycle)
		if !ok {
			continue
		}
		sc.logger.Info(ctx, "Shutting down service", map[string]interface{}{"service": name})
		if err := lifecycleService.Shutdown(ctx); err != nil {
			sc.logger.Error(ctx, "Failed to shutdown service", err, map[string]interface{}{"service": name})
			errors = append(errors, contextutils.WrapErrorf(err, "service %s shutdown failed", name))
		} else {
			sc.logger.Info(ctx, "Service shutdown successfully", map[string]interface{}{"service": name})
		}
	}

	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices() {
	sc.register(CategoryServiceName, services.NewCategoryServiceWithLogger(sc.db, sc.cfg, sc.logger))
	sc.register(QuestionServiceName, services.NewQuestionServiceWithLogger(sc.db, sc.cfg, sc.logger))
	sc.register(QuizServiceName, services.NewQuizServiceWithLogger(sc.db, sc.cfg, sc.logger))
	sc.register(HealthServiceName, services.NewHealthServiceWithLogger(sc.db, sc.logger))
}
