package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"triviaapi/internal/config"
	"triviaapi/internal/middleware"
	"triviaapi/internal/models"
	"triviaapi/internal/observability"
	"triviaapi/internal/services"
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type routerMocks struct {
	categories *MockCategoryService
	questions  *MockQuestionService
	quiz       *MockQuizService
	health     *MockHealthChecker
}

func newTestRouter(t *testing.T) (*gin.Engine, *routerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mocks := &routerMocks{
		categories: &MockCategoryService{},
		questions:  &MockQuestionService{},
		quiz:       &MockQuizService{},
		health:     &MockHealthChecker{},
	}
	router, err := NewRouter(config.Default(), mocks.categories, mocks.questions, mocks.quiz,
		mocks.health, observability.NewNopLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		mocks.categories.AssertExpectations(t)
		mocks.questions.AssertExpectations(t)
		mocks.quiz.AssertExpectations(t)
		mocks.health.AssertExpectations(t)
	})
	return router, mocks
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func assertErrorBody(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(status), body["error"])
	assert.Equal(t, message, body["message"])
}

func testCategoryMap() models.CategoryMap {
	return models.NewCategoryMap([]models.Category{
		{ID: 1, Type: "Science"},
		{ID: 2, Type: "Art"},
		{ID: 3, Type: "Geography"},
	})
}

func testQuestion(id, category int) models.Question {
	return models.Question{
		ID:         id,
		Question:   models.NewNullString("Question?"),
		Answer:     models.NewNullString("Answer"),
		Category:   models.NewNullInt64(category),
		Difficulty: models.NewNullInt64(2),
	}
}

func TestRouter_GetCategories(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.categories.On("GetCategoryMap", mock.Anything).Return(testCategoryMap(), nil)

	w := serve(router, http.MethodGet, "/categories", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":{"1":"Science","2":"Art","3":"Geography"}}`, w.Body.String())
}

func TestRouter_GetCategories_Empty(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.categories.On("GetCategoryMap", mock.Anything).Return(models.CategoryMap{}, nil)

	w := serve(router, http.MethodGet, "/categories", "")

	assertErrorBody(t, w, http.StatusBadRequest, "Bad Request")
}

func TestRouter_GetCategories_StoreFailure(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.categories.On("GetCategoryMap", mock.Anything).
		Return(models.CategoryMap{}, contextutils.WrapError(contextutils.ErrDatabaseQuery, "boom"))

	w := serve(router, http.MethodGet, "/categories", "")

	assertErrorBody(t, w, http.StatusUnprocessableEntity, "Unprocessable")
}

func TestRouter_GetQuestions(t *testing.T) {
	router, mocks := newTestRouter(t)
	page := &models.QuestionPage{
		Questions: []models.Question{testQuestion(2, 1), testQuestion(4, 2)},
		Total:     19,
		Page:      2,
	}
	mocks.questions.On("ListQuestions", mock.Anything, 2).Return(page, nil)
	mocks.categories.On("GetCategoryMap", mock.Anything).Return(testCategoryMap(), nil)

	w := serve(router, http.MethodGet, "/questions?page=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(19), body["total_questions"])
	assert.Equal(t, "Science", body["currentCategory"])
	assert.Len(t, body["questions"], 2)
	assert.Equal(t, map[string]interface{}{"1": "Science", "2": "Art", "3": "Geography"}, body["categories"])

	first := body["questions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(2), first["id"])
	assert.Equal(t, "Question?", first["question"])
	assert.Equal(t, "Answer", first["answer"])
	assert.Equal(t, float64(1), first["category"])
	assert.Equal(t, float64(2), first["difficulty"])
}

func TestRouter_GetQuestions_InvalidPageFallsBackToFirst(t *testing.T) {
	router, mocks := newTestRouter(t)
	page := &models.QuestionPage{Questions: []models.Question{testQuestion(2, 1)}, Total: 1, Page: 1}
	mocks.questions.On("ListQuestions", mock.Anything, 1).Return(page, nil).Twice()
	mocks.categories.On("GetCategoryMap", mock.Anything).Return(testCategoryMap(), nil).Twice()

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/questions?page=abc", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/questions?page=-4", "").Code)
}

func TestRouter_GetQuestions_CurrentCategoryMissing(t *testing.T) {
	router, mocks := newTestRouter(t)
	page := &models.QuestionPage{Questions: []models.Question{testQuestion(2, 2)}, Total: 1, Page: 1}
	mocks.questions.On("ListQuestions", mock.Anything, 1).Return(page, nil)
	mocks.categories.On("GetCategoryMap", mock.Anything).
		Return(models.NewCategoryMap([]models.Category{{ID: 2, Type: "Art"}}), nil)

	w := serve(router, http.MethodGet, "/questions", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body, "currentCategory")
	assert.Nil(t, body["currentCategory"])
}

func TestRouter_GetQuestions_PageBeyondEnd(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("ListQuestions", mock.Anything, 1000).
		Return(nil, &services.InvalidPageError{Page: 1000, Total: 19})

	w := serve(router, http.MethodGet, "/questions?page=1000", "")

	assertErrorBody(t, w, http.StatusBadRequest, "Bad Request")
}

func TestRouter_GetQuestions_NoneStored(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("ListQuestions", mock.Anything, 1).
		Return(nil, contextutils.WrapError(contextutils.ErrQuestionNotFound, "no questions stored"))

	w := serve(router, http.MethodGet, "/questions", "")

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_DeleteQuestion(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("DeleteQuestion", mock.Anything, 5).Return(nil)

	w := serve(router, http.MethodDelete, "/questions/5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"deleted_question":5}`, w.Body.String())
}

func TestRouter_DeleteQuestion_NotFound(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("DeleteQuestion", mock.Anything, 1000).
		Return(contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "question with ID %d not found", 1000))

	w := serve(router, http.MethodDelete, "/questions/1000", "")

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_DeleteQuestion_NonIntegerID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodDelete, "/questions/abc", "")

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_CreateQuestion(t *testing.T) {
	router, mocks := newTestRouter(t)
	expected := models.Question{
		Question:   models.NewNullString("Who wrote Hamlet?"),
		Answer:     models.NewNullString("Shakespeare"),
		Category:   models.NewNullInt64(4),
		Difficulty: models.NewNullInt64(1),
	}
	mocks.questions.On("CreateQuestion", mock.Anything, expected).Return(24, nil)

	w := serve(router, http.MethodPost, "/questions",
		`{"question":"Who wrote Hamlet?","answer":"Shakespeare","difficulty":1,"category":"4"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"created":24}`, w.Body.String())
}

func TestRouter_CreateQuestion_MissingFieldsStayNull(t *testing.T) {
	router, mocks := newTestRouter(t)
	expected := models.Question{Question: models.NewNullString("Only text")}
	mocks.questions.On("CreateQuestion", mock.Anything, expected).Return(25, nil)

	w := serve(router, http.MethodPost, "/questions", `{"question":"Only text","searchTerm":""}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"created":25}`, w.Body.String())
}

func TestRouter_CreateQuestion_StoreFailure(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("CreateQuestion", mock.Anything, mock.Anything).
		Return(0, contextutils.WrapError(contextutils.ErrUnprocessable, "insert failed"))

	w := serve(router, http.MethodPost, "/questions", `{"question":"Q","answer":"A","difficulty":1,"category":999}`)

	assertErrorBody(t, w, http.StatusUnprocessableEntity, "Unprocessable")
}

func TestRouter_CreateQuestion_SchemaViolation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodPost, "/questions", `{"question":"Q","difficulty":"hard"}`)
	assertErrorBody(t, w, http.StatusBadRequest, "Bad Request")

	w = serve(router, http.MethodPost, "/questions", `{not json`)
	assertErrorBody(t, w, http.StatusBadRequest, "Bad Request")
}

func TestRouter_SearchQuestions(t *testing.T) {
	router, mocks := newTestRouter(t)
	page := &models.QuestionPage{
		Questions: []models.Question{testQuestion(5, 4), testQuestion(6, 5)},
		Total:     2,
		Page:      1,
	}
	mocks.questions.On("SearchQuestions", mock.Anything, "title", 1).Return(page, nil)
	mocks.categories.On("GetCategoryByID", mock.Anything, 4).Return(&models.Category{ID: 4, Type: "History"}, nil)

	w := serve(router, http.MethodPost, "/questions", `{"searchTerm":"title"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["total_questions"])
	assert.Equal(t, "History", body["current_category"])
	assert.Len(t, body["questions"], 2)
}

func TestRouter_SearchQuestions_UncategorizedFirstMatch(t *testing.T) {
	router, mocks := newTestRouter(t)
	uncategorized := models.Question{ID: 30, Question: models.NewNullString("Loose title")}
	page := &models.QuestionPage{Questions: []models.Question{uncategorized}, Total: 1, Page: 1}
	mocks.questions.On("SearchQuestions", mock.Anything, "loose", 1).Return(page, nil)

	w := serve(router, http.MethodPost, "/questions", `{"searchTerm":"loose"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Nil(t, body["current_category"])
	first := body["questions"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, first["category"])
	assert.Nil(t, first["answer"])
}

func TestRouter_SearchQuestions_DeletedCategory(t *testing.T) {
	router, mocks := newTestRouter(t)
	page := &models.QuestionPage{Questions: []models.Question{testQuestion(5, 9)}, Total: 1, Page: 1}
	mocks.questions.On("SearchQuestions", mock.Anything, "title", 1).Return(page, nil)
	mocks.categories.On("GetCategoryByID", mock.Anything, 9).
		Return(nil, contextutils.WrapError(contextutils.ErrCategoryNotFound, "category 9"))

	w := serve(router, http.MethodPost, "/questions", `{"searchTerm":"title"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody(t, w)["current_category"])
}

func TestRouter_SearchQuestions_NoMatches(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("SearchQuestions", mock.Anything, "zzz", 1).
		Return(nil, contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "no questions match %q", "zzz"))

	w := serve(router, http.MethodPost, "/questions", `{"searchTerm":"zzz"}`)

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_GetCategoryQuestions(t *testing.T) {
	router, mocks := newTestRouter(t)
	page := &models.QuestionPage{
		Questions: []models.Question{testQuestion(20, 1), testQuestion(21, 1), testQuestion(22, 1)},
		Total:     3,
		Page:      1,
	}
	mocks.questions.On("GetQuestionsByCategory", mock.Anything, 1, 1).Return(page, nil)
	mocks.categories.On("GetCategoryByID", mock.Anything, 1).Return(&models.Category{ID: 1, Type: "Science"}, nil)

	w := serve(router, http.MethodGet, "/categories/1/questions", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["total_questions"])
	assert.Equal(t, "Science", body["current_category"])
	assert.Len(t, body["questions"], 3)
}

func TestRouter_GetCategoryQuestions_UnknownCategory(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.questions.On("GetQuestionsByCategory", mock.Anything, 1000, 1).
		Return(nil, contextutils.WrapErrorf(contextutils.ErrQuestionNotFound, "no questions in category %d", 1000))

	w := serve(router, http.MethodGet, "/categories/1000/questions", "")

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_GetCategoryQuestions_NonIntegerID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/categories/science/questions", "")

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_PlayQuiz(t *testing.T) {
	router, mocks := newTestRouter(t)
	question := testQuestion(16, 2)
	matchesRequest := mock.MatchedBy(func(req models.QuizRequest) bool {
		return len(req.PreviousQuestions) == 2 && req.QuizCategory != nil && req.QuizCategory.ID.Int() == 2
	})
	mocks.quiz.On("NextQuestion", mock.Anything, matchesRequest).
		Return(&models.QuizResult{Question: &question}, nil)

	w := serve(router, http.MethodPost, "/quizzes",
		`{"previous_questions":[17,18],"quiz_category":{"id":"2","type":"Art"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	played := body["question"].(map[string]interface{})
	assert.Equal(t, float64(16), played["id"])
	assert.NotContains(t, body, "finished")
}

func TestRouter_PlayQuiz_Finished(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.quiz.On("NextQuestion", mock.Anything, mock.Anything).Return(&models.QuizResult{Finished: true}, nil)

	w := serve(router, http.MethodPost, "/quizzes", `{"previous_questions":[1,2,3,4,5],"quiz_category":null}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"question":null,"finished":true}`, w.Body.String())
}

func TestRouter_PlayQuiz_Exhausted(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.quiz.On("NextQuestion", mock.Anything, mock.Anything).
		Return(nil, &services.NoQuestionsAvailableError{CategoryID: 6, PreviousCount: 2})

	w := serve(router, http.MethodPost, "/quizzes", `{"previous_questions":[10,11],"quiz_category":{"id":6}}`)

	assertErrorBody(t, w, http.StatusBadRequest, "Bad Request")
}

func TestRouter_PlayQuiz_UnexpectedFailure(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.quiz.On("NextQuestion", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	w := serve(router, http.MethodPost, "/quizzes", `{"previous_questions":[]}`)

	assertErrorBody(t, w, http.StatusInternalServerError, "Internal Server Error")
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/nothing-here", "")

	assertErrorBody(t, w, http.StatusNotFound, "Page not found")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/categories"},
		{http.MethodPatch, "/questions/5"},
		{http.MethodGet, "/quizzes"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(router, tc.method, tc.path, "")
			assertErrorBody(t, w, http.StatusMethodNotAllowed, "Method Not Allowed")
		})
	}
}

func TestRouter_CORSHeaders(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.categories.On("GetCategoryMap", mock.Anything).Return(testCategoryMap(), nil)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/questions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "content-type")
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.health.On("Check", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRouter_Health(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.health.On("Check", mock.Anything).Return(nil)

	w := serve(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"trivia-api","database":"ok"}`, w.Body.String())
}

func TestRouter_Health_DatabaseDown(t *testing.T) {
	router, mocks := newTestRouter(t)
	mocks.health.On("Check", mock.Anything).Return(contextutils.ErrServiceUnavailable)

	w := serve(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "unreachable", body["database"])
}

func TestRouter_Version(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/version", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "trivia-api", body["service"])
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "commit")
	assert.Contains(t, body, "goVersion")
}

func TestNewCORSConfig(t *testing.T) {
	allowAll := newCORSConfig([]string{"*"})
	assert.True(t, allowAll.AllowAllOrigins)

	restricted := newCORSConfig([]string{"https://trivia.example.com"})
	assert.False(t, restricted.AllowAllOrigins)
	assert.Equal(t, []string{"https://trivia.example.com"}, restricted.AllowOrigins)
	assert.Equal(t, config.CORSAllowedMethods, restricted.AllowMethods)
}

func TestRouter_DocumentedRoutesAreRegistered(t *testing.T) {
	router, _ := newTestRouter(t)
	loader, err := middleware.DefaultSchemaLoader()
	require.NoError(t, err)

	registered := map[string]bool{}
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	documented := loader.Routes()
	require.NotEmpty(t, documented)
	for _, route := range documented {
		assert.True(t, registered[route], "documented route %s is not registered", route)
	}
}
