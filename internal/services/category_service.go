package services

import (
	"context"
	"database/sql"
	"errors"

	"triviaapi/internal/config"
	"triviaapi/internal/models"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// CategoryServiceInterface defines the interface for category lookups.
// This allows for easier mocking in tests.
type CategoryServiceInterface interface {
	GetCategoryMap(ctx context.Context) (models.CategoryMap, error)
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
}

// CategoryService reads the categories table
type CategoryService struct {
	db     *sql.DB
	logger *observability.Logger
	cfg    *config.Config
}

// NewCategoryServiceWithLogger creates a new CategoryService
func NewCategoryServiceWithLogger(db *sql.DB, cfg *config.Config, logger *observability.Logger) *CategoryService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &CategoryService{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
}

// GetCategoryMap loads every category ordered by id. An empty table yields an empty map.
func (s *CategoryService) GetCategoryMap(ctx context.Context) (result0 models.CategoryMap, err error) {
	ctx, span := observability.TraceCategoryFunction(ctx, "get_category_map")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT id, type FROM categories ORDER BY id`)
	if err != nil {
		return models.CategoryMap{}, storeError(err, "failed to query categories")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close category rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var label sql.NullString
		if err = rows.Scan(&c.ID, &label); err != nil {
			return models.CategoryMap{}, storeError(err, "failed to scan category")
		}
		c.Type = label.String
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return models.CategoryMap{}, storeError(err, "failed to iterate categories")
	}

	span.SetAttributes(attribute.Int("categories.count", len(categories)))
	return models.NewCategoryMap(categories), nil
}

// GetCategoryByID returns a single category or a CATEGORY_NOT_FOUND error
func (s *CategoryService) GetCategoryByID(ctx context.Context, id int) (result0 *models.Category, err error) {
	ctx, span := observability.TraceCategoryFunction(ctx, "get_category_by_id", observability.AttributeCategoryID(id))
	defer observability.FinishSpan(span, &err)

	c := &models.Category{}
	var label sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT id, type FROM categories WHERE id = $1`, id).Scan(&c.ID, &label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contextutils.WrapErrorf(contextutils.ErrCategoryNotFound, "category with ID %d not found", id)
	}
	if err != nil {
		return nil, storeError(err, "failed to query category")
	}
	c.Type = label.String
	return c, nil
}
