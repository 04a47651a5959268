package handlers

import (
	"encoding/json"
	"net/http"

	"triviaapi/internal/models"
	"triviaapi/internal/observability"
	"triviaapi/internal/services"

	"github.com/gin-gonic/gin"
)

// QuizHandler serves POST /quizzes
type QuizHandler struct {
	quizService services.QuizServiceInterface
	logger      *observability.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(quizService services.QuizServiceInterface, logger *observability.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		logger:      logger,
	}
}

// PlayQuiz handles POST /quizzes
func (h *QuizHandler) PlayQuiz(c *gin.Context) {
	var req models.QuizRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		BadRequest(c, err)
		return
	}

	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "play_quiz",
		observability.AttributePreviousCount(len(req.PreviousQuestions)))
	defer span.End()

	result, err := h.quizService.NextQuestion(ctx, req)
	if err != nil {
		HandleAppError(c, h.logger, err)
		return
	}

	if result.Finished {
		c.JSON(http.StatusOK, gin.H{
			"question": nil,
			"finished": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": result.Question,
	})
}
