package handlers

import (
	"context"

	"triviaapi/internal/models"
	"triviaapi/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockCategoryService implements services.CategoryServiceInterface for handler tests
type MockCategoryService struct {
	mock.Mock
}

var _ services.CategoryServiceInterface = (*MockCategoryService)(nil)

func (m *MockCategoryService) GetCategoryMap(ctx context.Context) (models.CategoryMap, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.CategoryMap), args.Error(1)
}

func (m *MockCategoryService) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

// MockQuestionService implements services.QuestionServiceInterface for handler tests
type MockQuestionService struct {
	mock.Mock
}

var _ services.QuestionServiceInterface = (*MockQuestionService)(nil)

func (m *MockQuestionService) ListQuestions(ctx context.Context, page int) (*models.QuestionPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionPage), args.Error(1)
}

func (m *MockQuestionService) GetQuestionByID(ctx context.Context, id int) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) CreateQuestion(ctx context.Context, question models.Question) (int, error) {
	args := m.Called(ctx, question)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionService) DeleteQuestion(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionService) SearchQuestions(ctx context.Context, term string, page int) (*models.QuestionPage, error) {
	args := m.Called(ctx, term, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionPage), args.Error(1)
}

func (m *MockQuestionService) GetQuestionsByCategory(ctx context.Context, categoryID, page int) (*models.QuestionPage, error) {
	args := m.Called(ctx, categoryID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionPage), args.Error(1)
}

func (m *MockQuestionService) PageSize() int {
	return 10
}

// MockQuizService implements services.QuizServiceInterface for handler tests
type MockQuizService struct {
	mock.Mock
}

var _ services.QuizServiceInterface = (*MockQuizService)(nil)

func (m *MockQuizService) NextQuestion(ctx context.Context, req models.QuizRequest) (*models.QuizResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizResult), args.Error(1)
}

// MockHealthChecker reports a fixed health result
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
