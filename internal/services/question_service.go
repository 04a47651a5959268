package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"triviaapi/internal/config"
	"triviaapi/internal/models"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// QuestionServiceInterface defines the interface for question-related operations.
// This allows for easier mocking in tests.
type QuestionServiceInterface interface {
	ListQuestions(ctx context.Context, page int) (*models.QuestionPage, error)
	GetQuestionByID(ctx context.Context, id int) (*models.Question, error)
	CreateQuestion(ctx context.Context, question models.Question) (int, error)
	DeleteQuestion(ctx context.Context, id int) error
	SearchQuestions(ctx context.Context, term string, page int) (*models.QuestionPage, error)
	GetQuestionsByCategory(ctx context.Context, categoryID, page int) (*models.QuestionPage, error)
	PageSize() int
}

// QuestionService provides methods for question management.
type QuestionService struct {
	db      *sql.DB
	logger  *observability.Logger
	cfg     *config.Config
	metrics *observability.TriviaMetrics
}

// questionSelectFields contains all question fields for SELECT queries
const questionSelectFields = `id, question, answer, category, difficulty`

// NewQuestionServiceWithLogger creates a new QuestionService
func NewQuestionServiceWithLogger(db *sql.DB, cfg *config.Config, logger *observability.Logger) *QuestionService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &QuestionService{
		db:      db,
		logger:  logger,
		cfg:     cfg,
		metrics: observability.Metrics(),
	}
}

// PageSize returns the configured number of questions per page, defaulting to 10
func (s *QuestionService) PageSize() int {
	if s.cfg != nil && s.cfg.Trivia.PageSize > 0 {
		return s.cfg.Trivia.PageSize
	}
	return config.DefaultQuestionsPerPage
}

// scanQuestions reads every row into a slice of questions
func (s *QuestionService) scanQuestions(ctx context.Context, rows *sql.Rows) ([]models.Question, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close question rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty); err != nil {
			return nil, storeError(err, "failed to scan question")
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "failed to iterate questions")
	}
	return questions, nil
}

// pager selects one page of a listing or returns the error for an unservable page
type pager func(items []models.Question, page, size int, notFound error) ([]models.Question, error)

// queryPage runs query, then classifies the requested page of its results
func (s *QuestionService) queryPage(ctx context.Context, paginate pager, page int, notFound error, query string, args ...interface{}) (*models.QuestionPage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query questions")
	}
	all, err := s.scanQuestions(ctx, rows)
	if err != nil {
		return nil, err
	}

	current, err := paginate(all, page, s.PageSize(), notFound)
	if err != nil {
		return nil, err
	}
	return &models.QuestionPage{Questions: current, Total: len(all), Page: page}, nil
}

// ListQuestions returns one page of all questions ordered by id
func (s *QuestionService) ListQuestions(ctx context.Context, page int) (result0 *models.QuestionPage, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "list_questions",
		observability.AttributePage(page), observability.AttributePageSize(s.PageSize()))
	defer observability.FinishSpan(span, &err)

	query := fmt.Sprintf("SELECT %s FROM questions ORDER BY id", questionSelectFields)
	return s.queryPage(ctx, pageOf[models.Question], page,
		contextutils.WrapError(contextutils.ErrQuestionNotFound, "no questions stored"), query)
}

// GetQuestionByID retrieves a question by its ID
func (s *QuestionService) GetQuestionByID(ctx context.Context, id int) (result0 *models.Question, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "get_question_by_id", observability.AttributeQuestionID(id))
	defer observability.FinishSpan(span, &err)

	q := &models.Question{}
	query := fmt.Sprintf("SELECT %s FROM questions WHERE id = $1", questionSelectFields)
	err = s.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "question with ID %d not found", id)
	}
	if err != nil {
		return nil, storeError(err, "failed to query question")
	}
	return q, nil
}

// CreateQuestion inserts question as given, NULL columns included, and returns the new id.
// The category is not checked against the categories table.
func (s *QuestionService) CreateQuestion(ctx context.Context, question models.Question) (result0 int, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "create_question")
	defer observability.FinishSpan(span, &err)

	var id int
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO questions (question, answer, category, difficulty) VALUES ($1, $2, $3, $4) RETURNING id`,
		question.Question, question.Answer, question.Category, question.Difficulty,
	).Scan(&id)
	if err != nil {
		return 0, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeUnprocessable, contextutils.SeverityWarn,
			"failed to insert question", err.Error(), err)
	}

	span.SetAttributes(observability.AttributeQuestionID(id))
	observability.Add(ctx, s.metrics.QuestionsCreated, 1)
	s.logger.Info(ctx, "Question created", map[string]interface{}{"question_id": id})
	return id, nil
}

// DeleteQuestion removes a question by id. A missing row, including one deleted by a
// concurrent request, is QUESTION_NOT_FOUND.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int) (err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "delete_question", observability.AttributeQuestionID(id))
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return storeError(err, "failed to delete question")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "question with ID %d not found", id)
	}

	observability.Add(ctx, s.metrics.QuestionsDeleted, 1)
	s.logger.Info(ctx, "Question deleted", map[string]interface{}{"question_id": id})
	return nil
}

// SearchQuestions returns one page of questions whose text contains term, case-insensitively.
// LIKE wildcards in term match literally.
func (s *QuestionService) SearchQuestions(ctx context.Context, term string, page int) (result0 *models.QuestionPage, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "search_questions",
		observability.AttributeSearch(term), observability.AttributePage(page))
	defer observability.FinishSpan(span, &err)

	observability.Add(ctx, s.metrics.Searches, 1)

	query := fmt.Sprintf(`SELECT %s FROM questions WHERE question ILIKE $1 ESCAPE '\' ORDER BY id`, questionSelectFields)
	pattern := "%" + contextutils.EscapeLikePattern(term) + "%"
	result, err := s.queryPage(ctx, filteredPageOf[models.Question], page,
		contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "no questions match %q on page %d", term, page), query, pattern)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.total", result.Total))
	return result, nil
}

// GetQuestionsByCategory returns one page of the questions in a category ordered by id
func (s *QuestionService) GetQuestionsByCategory(ctx context.Context, categoryID, page int) (result0 *models.QuestionPage, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "get_questions_by_category",
		observability.AttributeCategoryID(categoryID), observability.AttributePage(page))
	defer observability.FinishSpan(span, &err)

	query := fmt.Sprintf("SELECT %s FROM questions WHERE category = $1 ORDER BY id", questionSelectFields)
	return s.queryPage(ctx, filteredPageOf[models.Question], page,
		contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "no questions in category %d on page %d", categoryID, page),
		query, categoryID)
}
