//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"triviaapi/internal/config"
	"triviaapi/internal/database"
	"triviaapi/internal/observability"

	"github.com/stretchr/testify/require"
)

// SharedTestDBSetup provides a migrated database reset to the bundled seed for each integration test
func SharedTestDBSetup(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Fatal("TEST_DATABASE_URL environment variable must be set for integration tests")
	}

	ctx := context.Background()
	dbManager := database.NewManager(observability.NewNopLogger())

	db, err := dbManager.InitDB(ctx, database.DefaultDatabaseConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	CleanupTestDatabase(db, t)
	require.NoError(t, dbManager.Seed(ctx, db, database.DefaultSeed()))

	return db
}

// CleanupTestDatabase empties both trivia tables
func CleanupTestDatabase(db *sql.DB, t *testing.T) {
	t.Helper()
	dbManager := database.NewManager(observability.NewNopLogger())
	require.NoError(t, dbManager.Reset(context.Background(), db))
}

// newIntegrationServices builds every service over db with the default config
func newIntegrationServices(db *sql.DB) (*CategoryService, *QuestionService, *QuizService) {
	cfg := config.Default()
	logger := observability.NewNopLogger()
	return NewCategoryServiceWithLogger(db, cfg, logger),
		NewQuestionServiceWithLogger(db, cfg, logger),
		NewQuizServiceWithLogger(db, cfg, logger)
}
