// Package database provides database connection, migration, seeding and maintenance functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"triviaapi/internal/config"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	// Import PostgreSQL driver for database/sql
	_ "github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// OpenTelemetry SQL instrumentation
	"go.nhat.io/otelsql"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Manager handles database operations with proper logging
type Manager struct {
	logger *observability.Logger
}

var (
	otelDriverNameCache string
	otelDriverOnce      sync.Once
	otelDriverErr       error
)

// NewManager creates a new database manager with the provided logger
func NewManager(logger *observability.Logger) *Manager {
	return &Manager{
		logger: logger,
	}
}

// DefaultDatabaseConfig returns the default pool settings, pointed at TEST_DATABASE_URL when set
func DefaultDatabaseConfig() config.DatabaseConfig {
	cfg := config.DatabaseConfig{
		URL:             config.DefaultDatabaseURL,
		MaxOpenConns:    config.DefaultMaxOpenConns,
		MaxIdleConns:    config.DefaultMaxIdleConns,
		ConnMaxLifetime: config.DatabaseConnMaxLifetime,
	}

	if testURL := os.Getenv("TEST_DATABASE_URL"); testURL != "" {
		cfg.URL = testURL
	}

	return cfg
}

// InitDB opens a connection pool and applies all pending migrations
func (dm *Manager) InitDB(ctx context.Context, cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "InitDB",
		attribute.String("db.name", extractDatabaseName(cfg.URL)),
		attribute.String("db.system", "postgresql"),
		attribute.Bool("migrations.enabled", true),
		attribute.Int("db.max_open_conns", cfg.MaxOpenConns),
		attribute.Int("db.max_idle_conns", cfg.MaxIdleConns),
		attribute.String("db.conn_max_lifetime", cfg.ConnMaxLifetime.String()),
	)
	defer observability.FinishSpan(span, &err)

	db, err := dm.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := dm.RunMigrations(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			dm.logger.Error(ctx, "Failed to close database after migration failure", closeErr)
		}
		return nil, err
	}

	return db, nil
}

// extractDatabaseName extracts the database name from a PostgreSQL connection string
func extractDatabaseName(databaseURL string) string {
	if u, err := url.Parse(databaseURL); err == nil && u.Scheme != "" {
		if dbName := strings.TrimPrefix(u.Path, "/"); dbName != "" {
			return dbName
		}
	}

	// key=value DSN form: "host=localhost dbname=trivia sslmode=disable"
	for _, field := range strings.Fields(databaseURL) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok && name != "" {
			return name
		}
	}

	return "trivia"
}

// Open returns a connection pool through the otelsql-instrumented driver without running migrations
func (dm *Manager) Open(ctx context.Context, cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "Open",
		attribute.String("db.name", extractDatabaseName(cfg.URL)),
	)
	defer observability.FinishSpan(span, &err)

	// Register OpenTelemetry SQL driver once per process and reuse the name
	otelDriverOnce.Do(func() {
		otelDriverNameCache, otelDriverErr = otelsql.Register("postgres",
			otelsql.WithDatabaseName(extractDatabaseName(cfg.URL)),
			otelsql.TraceQueryWithArgs(),
			otelsql.WithSystem(semconv.DBSystemPostgreSQL),
			otelsql.TraceRowsAffected(),
		)
	})
	if otelDriverErr != nil {
		return nil, contextutils.WrapError(otelDriverErr, "failed to register otelsql driver")
	}

	db, err := sql.Open(otelDriverNameCache, cfg.URL)
	if err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeDatabaseConnection, contextutils.SeverityError,
			"failed to open database connection", err.Error(), err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, config.DatabasePingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			dm.logger.Error(ctx, "Failed to close database connection after ping failure", closeErr)
		}
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeDatabaseConnection, contextutils.SeverityError,
			"failed to ping database", err.Error(), err)
	}

	if err := otelsql.RecordStats(db); err != nil {
		dm.logger.Warn(ctx, "Failed to register connection pool metrics", map[string]interface{}{"error": err.Error()})
	}

	dm.logger.Info(ctx, "Database connection established", map[string]interface{}{
		"db_url":            contextutils.MaskDatabaseURL(cfg.URL),
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})

	return db, nil
}

// migrateLogger routes golang-migrate output through the structured logger
type migrateLogger struct {
	ctx    context.Context
	logger *observability.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(l.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), map[string]interface{}{"component": "migrate"})
}

func (l migrateLogger) Verbose() bool {
	return false
}

// newMigrate builds a migrate instance over the embedded migrations bound to a dedicated
// connection from db. The returned close func releases that connection but leaves db open.
func (dm *Manager) newMigrate(ctx context.Context, db *sql.DB) (*migrate.Migrate, func(), error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, contextutils.WrapError(err, "failed to load embedded migrations")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, nil, contextutils.WrapError(err, "failed to acquire migration connection")
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, nil, contextutils.WrapError(err, "failed to initialize migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return nil, nil, contextutils.WrapError(err, "failed to initialize golang-migrate")
	}
	m.Log = migrateLogger{ctx: ctx, logger: dm.logger}

	closeFn := func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			dm.logger.Error(ctx, "Error closing migration", errors.Join(srcErr, dbErr))
		}
	}
	return m, closeFn, nil
}

// RunMigrations applies every pending up migration
func (dm *Manager) RunMigrations(ctx context.Context, db *sql.DB) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "RunMigrations",
		attribute.String("db.system", "postgresql"),
		attribute.String("migration.type", "golang_migrate"),
	)
	defer observability.FinishSpan(span, &err)

	m, closeFn, err := dm.newMigrate(ctx, db)
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		dm.logger.Info(ctx, "No new migrations to apply")
		return nil
	}
	if err != nil {
		return contextutils.WrapError(err, "golang-migrate up failed")
	}

	dm.logger.Info(ctx, "Database migrations applied successfully")
	return nil
}

// MigrateDown rolls back the given number of migrations; steps <= 0 rolls back everything
func (dm *Manager) MigrateDown(ctx context.Context, db *sql.DB, steps int) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "MigrateDown",
		attribute.Int("migration.steps", steps),
	)
	defer observability.FinishSpan(span, &err)

	m, closeFn, err := dm.newMigrate(ctx, db)
	if err != nil {
		return err
	}
	defer closeFn()

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return contextutils.WrapError(err, "golang-migrate down failed")
	}

	dm.logger.Info(ctx, "Database migrations rolled back", map[string]interface{}{"steps": steps})
	return nil
}

// MigrationVersion reports the applied schema version. applied is false on an empty database.
func (dm *Manager) MigrationVersion(ctx context.Context, db *sql.DB) (version uint, dirty bool, applied bool, err error) {
	m, closeFn, err := dm.newMigrate(ctx, db)
	if err != nil {
		return 0, false, false, err
	}
	defer closeFn()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, contextutils.WrapError(err, "failed to read migration version")
	}
	return version, dirty, true, nil
}
