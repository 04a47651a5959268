package handlers

import (
	"net/http"

	"triviaapi/internal/config"
	"triviaapi/internal/observability"
	"triviaapi/internal/services"
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves the category routes
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
	questionService services.QuestionServiceInterface
	cfg             *config.Config
	logger          *observability.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(
	categoryService services.CategoryServiceInterface,
	questionService services.QuestionServiceInterface,
	cfg *config.Config,
	logger *observability.Logger,
) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		questionService: questionService,
		cfg:             cfg,
		logger:          logger,
	}
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_categories")
	defer span.End()

	categories, err := h.categoryService.GetCategoryMap(ctx)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}
	if categories.Len() == 0 {
		HandleAppError(c, h.logger, contextutils.ErrNoCategories)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// GetCategoryQuestions handles GET /categories/:id/questions
func (h *CategoryHandler) GetCategoryQuestions(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	page := ParsePage(c)

	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_category_questions",
		observability.AttributeCategoryID(categoryID), observability.AttributePage(page))
	defer span.End()

	result, err := h.questionService.GetQuestionsByCategory(ctx, categoryID, page)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(ctx, categoryID)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":        result.Questions,
		"total_questions":  result.Total,
		"current_category": category.Type,
	})
}
