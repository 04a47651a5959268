package commands

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"triviaapi/internal/config"
	"triviaapi/internal/database"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"golang.org/x/term"
)

// Runtime carries the configuration, logger and lazily opened database shared by commands
type Runtime struct {
	Config    *config.Config
	Logger    *observability.Logger
	DBManager *database.Manager

	db         *sql.DB
	migrated   bool
	stdin      io.Reader
	isTerminal func() bool
}

// NewRuntime creates a runtime; the database is opened by the first command that needs it
func NewRuntime(cfg *config.Config, logger *observability.Logger) *Runtime {
	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		DBManager: database.NewManager(logger),
		stdin:     os.Stdin,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// DB returns the database, opening it on first use. With migrate set, pending migrations
// are applied first.
func (r *Runtime) DB(ctx context.Context, migrate bool) (*sql.DB, error) {
	if r.db == nil {
		db, err := r.DBManager.Open(ctx, r.Config.Database)
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to connect to %s", contextutils.MaskDatabaseURL(r.Config.Database.URL))
		}
		r.db = db
	}
	if migrate && !r.migrated {
		if err := r.DBManager.RunMigrations(ctx, r.db); err != nil {
			return nil, err
		}
		r.migrated = true
	}
	return r.db, nil
}

// Close releases the database if one was opened
func (r *Runtime) Close(ctx context.Context) {
	if r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil {
		r.Logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{
			"error":  err.Error(),
			"db_url": contextutils.MaskDatabaseURL(r.Config.Database.URL),
		})
	}
	r.db = nil
}

// confirm asks a yes/no question on an interactive terminal. Without a terminal the
// caller must pass --yes instead.
func (r *Runtime) confirm(out io.Writer, prompt string) (bool, error) {
	if !r.isTerminal() {
		return false, contextutils.ErrorWithContextf("stdin is not a terminal; pass --yes to confirm")
	}

	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(r.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, contextutils.WrapError(err, "failed to read confirmation")
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// getDatabaseInfo returns database connection information
func getDatabaseInfo(ctx context.Context, db *sql.DB) string {
	if db == nil {
		return "Not connected"
	}

	var dbName string
	err := db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName)
	if err != nil {
		return "Connected (unknown database)"
	}

	var host string
	err = db.QueryRowContext(ctx, "SELECT COALESCE(inet_server_addr()::text, 'local socket')").Scan(&host)
	if err != nil {
		return fmt.Sprintf("Connected to %s", dbName)
	}

	return fmt.Sprintf("Connected to %s on %s", dbName, host)
}
