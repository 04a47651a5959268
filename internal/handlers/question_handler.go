package handlers

import (
	"encoding/json"
	"net/http"

	"triviaapi/internal/config"
	"triviaapi/internal/models"
	"triviaapi/internal/observability"
	"triviaapi/internal/services"
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// QuestionHandler serves the question routes
type QuestionHandler struct {
	questionService services.QuestionServiceInterface
	categoryService services.CategoryServiceInterface
	cfg             *config.Config
	logger          *observability.Logger
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(
	questionService services.QuestionServiceInterface,
	categoryService services.CategoryServiceInterface,
	cfg *config.Config,
	logger *observability.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		categoryService: categoryService,
		cfg:             cfg,
		logger:          logger,
	}
}

func (h *QuestionHandler) currentCategoryID() int {
	if h.cfg != nil {
		return h.cfg.Trivia.CurrentCategoryID
	}
	return config.DefaultCurrentCategoryID
}

// GetQuestions handles GET /questions
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	page := ParsePage(c)

	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_questions",
		observability.AttributePage(page))
	defer span.End()

	result, err := h.questionService.ListQuestions(ctx, page)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	categories, err := h.categoryService.GetCategoryMap(ctx)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}
	if categories.Len() == 0 {
		HandleAppError(c, h.logger, contextutils.ErrNoCategories)
		return
	}

	var currentCategory *string
	if label, ok := categories.Get(h.currentCategoryID()); ok {
		currentCategory = &label
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":       result.Questions,
		"total_questions": result.Total,
		"categories":      categories,
		"currentCategory": currentCategory,
	})
}

// DeleteQuestion handles DELETE /questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		NotFound(c)
		return
	}

	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_question",
		observability.AttributeQuestionID(questionID))
	defer span.End()

	if err := h.questionService.DeleteQuestion(ctx, questionID); err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"deleted_question": questionID,
	})
}

// CreateOrSearchQuestions handles POST /questions. A non-empty searchTerm searches
// question text; any other body creates a question.
func (h *QuestionHandler) CreateOrSearchQuestions(c *gin.Context) {
	var req models.QuestionRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		BadRequest(c, err)
		return
	}

	if req.IsSearch() {
		h.searchQuestions(c, *req.SearchTerm)
		return
	}
	h.createQuestion(c, req)
}

func (h *QuestionHandler) searchQuestions(c *gin.Context, term string) {
	page := ParsePage(c)

	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "search_questions",
		observability.AttributeSearch(term), observability.AttributePage(page))
	defer span.End()

	result, err := h.questionService.SearchQuestions(ctx, term, page)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	// The first question on the page names the current category
	var currentCategory *string
	if categoryID, ok := result.Questions[0].CategoryID(); ok {
		category, err := h.categoryService.GetCategoryByID(ctx, categoryID)
		switch {
		case err == nil:
			currentCategory = &category.Type
		case !contextutils.IsError(err, contextutils.ErrCategoryNotFound):
			HandleAppError(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":        result.Questions,
		"total_questions":  result.Total,
		"current_category": currentCategory,
	})
}

func (h *QuestionHandler) createQuestion(c *gin.Context, req models.QuestionRequest) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_question")
	defer span.End()

	id, err := h.questionService.CreateQuestion(ctx, req.ToQuestion())
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": id,
	})
}
