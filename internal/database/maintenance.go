package database

import (
	"context"
	"database/sql"

	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"
)

// Stats summarises table contents and connection pool usage
type Stats struct {
	Categories          int
	Questions           int
	QuestionsByCategory map[int]int
	Uncategorized       int
	Pool                sql.DBStats
}

// Reset deletes every question and category and restarts both id sequences
func (dm *Manager) Reset(ctx context.Context, db *sql.DB) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "Reset")
	defer observability.FinishSpan(span, &err)

	if _, err = db.ExecContext(ctx, `TRUNCATE TABLE questions, categories RESTART IDENTITY`); err != nil {
		return contextutils.WrapError(err, "failed to truncate trivia tables")
	}

	dm.logger.Warn(ctx, "Trivia tables truncated")
	return nil
}

// Stats counts categories and questions, grouping questions by category
func (dm *Manager) Stats(ctx context.Context, db *sql.DB) (result0 *Stats, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "Stats")
	defer observability.FinishSpan(span, &err)

	stats := &Stats{QuestionsByCategory: map[int]int{}}

	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&stats.Categories); err != nil {
		return nil, contextutils.WrapError(err, "failed to count categories")
	}

	rows, err := db.QueryContext(ctx, `SELECT category, COUNT(*) FROM questions GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to count questions")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			dm.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	for rows.Next() {
		var category sql.NullInt64
		var count int
		if err = rows.Scan(&category, &count); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan question count")
		}
		stats.Questions += count
		if category.Valid {
			stats.QuestionsByCategory[int(category.Int64)] = count
		} else {
			stats.Uncategorized = count
		}
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate question counts")
	}

	stats.Pool = db.Stats()
	return stats, nil
}
