package services

import (
	"context"
	"database/sql"
	"sync/atomic"

	"triviaapi/internal/config"
	"triviaapi/internal/observability"
	serviceinterfaces "triviaapi/internal/services/interfaces"
	contextutils "triviaapi/internal/utils"
)

// HealthServiceInterface combines the lifecycle hooks with a database check
type HealthServiceInterface interface {
	serviceinterfaces.Lifecycle
	serviceinterfaces.HealthChecker
}

// HealthService tracks readiness and pings the database
type HealthService struct {
	db     *sql.DB
	logger *observability.Logger
	ready  atomic.Bool
}

var _ HealthServiceInterface = (*HealthService)(nil)

// NewHealthServiceWithLogger creates a new HealthService
func NewHealthServiceWithLogger(db *sql.DB, logger *observability.Logger) *HealthService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &HealthService{db: db, logger: logger}
}

// Startup verifies the database is reachable and marks the service ready
func (s *HealthService) Startup(ctx context.Context) error {
	if err := s.Check(ctx); err != nil {
		return err
	}
	s.ready.Store(true)
	return nil
}

// Shutdown marks the service as not ready so health checks fail during drain
func (s *HealthService) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.logger.Info(ctx, "Health service stopped")
	return nil
}

// IsReady reports whether Startup succeeded and Shutdown has not run
func (s *HealthService) IsReady() bool {
	return s.ready.Load()
}

// Check pings the database with a bounded timeout
func (s *HealthService) Check(ctx context.Context) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "health_check")
	defer observability.FinishSpan(span, &err)

	ctx, cancel := context.WithTimeout(ctx, config.HealthCheckTimeout)
	defer cancel()

	if err = s.db.PingContext(ctx); err != nil {
		return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeServiceUnavailable, contextutils.SeverityError,
			"database unreachable", err.Error(), err)
	}
	return nil
}
