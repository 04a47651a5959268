package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"

	"triviaapi/internal/config"
	"triviaapi/internal/models"
	"triviaapi/internal/observability"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

// QuizServiceInterface defines the interface for playing a quiz
type QuizServiceInterface interface {
	NextQuestion(ctx context.Context, req models.QuizRequest) (*models.QuizResult, error)
}

// QuizService picks random unplayed questions
type QuizService struct {
	db      *sql.DB
	logger  *observability.Logger
	cfg     *config.Config
	metrics *observability.TriviaMetrics
	pick    func(n int) int
}

// NewQuizServiceWithLogger creates a new QuizService that picks uniformly at random
func NewQuizServiceWithLogger(db *sql.DB, cfg *config.Config, logger *observability.Logger) *QuizService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &QuizService{
		db:      db,
		logger:  logger,
		cfg:     cfg,
		metrics: observability.Metrics(),
		pick:    rand.Intn,
	}
}

// WithPicker replaces the random index function; pick receives the candidate count
func (s *QuizService) WithPicker(pick func(n int) int) *QuizService {
	s.pick = pick
	return s
}

func (s *QuizService) allCategoriesID() int {
	if s.cfg != nil {
		return s.cfg.Trivia.AllCategoriesID
	}
	return config.AllCategoriesID
}

func (s *QuizService) maxQuestions() int {
	if s.cfg != nil {
		return s.cfg.Trivia.QuizMaxQuestions
	}
	return 0
}

// NextQuestion picks a random question outside req.PreviousQuestions, restricted to the
// requested category unless it is the all-categories id. Once the configured quiz length
// is reached the result is Finished with no question.
func (s *QuizService) NextQuestion(ctx context.Context, req models.QuizRequest) (result0 *models.QuizResult, err error) {
	categoryID := req.CategoryFilter(s.allCategoriesID())
	ctx, span := observability.TraceQuizFunction(ctx, "next_question",
		observability.AttributeCategoryID(categoryID),
		observability.AttributePreviousCount(len(req.PreviousQuestions)),
	)
	defer observability.FinishSpan(span, &err)

	if limit := s.maxQuestions(); limit > 0 && len(req.PreviousQuestions) >= limit {
		span.SetAttributes(attribute.Bool("quiz.finished", true))
		return &models.QuizResult{Finished: true}, nil
	}

	previous := make([]int64, len(req.PreviousQuestions))
	for i, id := range req.PreviousQuestions {
		previous[i] = int64(id)
	}

	query := fmt.Sprintf("SELECT %s FROM questions WHERE NOT (id = ANY($1))", questionSelectFields)
	args := []interface{}{pq.Array(previous)}
	if categoryID != s.allCategoriesID() {
		query += " AND category = $2"
		args = append(args, categoryID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query quiz candidates")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close quiz rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var candidates []models.Question
	for rows.Next() {
		var q models.Question
		if err = rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty); err != nil {
			return nil, storeError(err, "failed to scan quiz candidate")
		}
		candidates = append(candidates, q)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError(err, "failed to iterate quiz candidates")
	}

	span.SetAttributes(attribute.Int("quiz.candidates", len(candidates)))
	if len(candidates) == 0 {
		return nil, &NoQuestionsAvailableError{CategoryID: categoryID, PreviousCount: len(req.PreviousQuestions)}
	}

	chosen := candidates[s.pick(len(candidates))]
	observability.Add(ctx, s.metrics.QuizzesPlayed, 1,
		observability.AttributeCategoryID(categoryID))

	return &models.QuizResult{Question: &chosen}, nil
}
