package handlers

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"triviaapi/internal/config"
	"triviaapi/internal/middleware"
	"triviaapi/internal/observability"
	"triviaapi/internal/services"
	serviceinterfaces "triviaapi/internal/services/interfaces"
	contextutils "triviaapi/internal/utils"
)

// NewRouter creates the gin engine with the middleware stack and every trivia route
func NewRouter(
	cfg *config.Config,
	categoryService services.CategoryServiceInterface,
	questionService services.QuestionServiceInterface,
	quizService services.QuizServiceInterface,
	health serviceinterfaces.HealthChecker,
	logger *observability.Logger,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	schemaLoader, err := middleware.DefaultSchemaLoader()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load request schemas")
	}

	serviceName := cfg.OpenTelemetry.ServiceName
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}

	router := gin.New()

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestIDMiddleware())

	// OpenTelemetry tracing with error attributes on 4xx/5xx spans
	router.Use(observability.GinMiddlewareWithErrorHandling(serviceName)...)
	router.Use(observability.AccessLogMiddleware(logger))
	router.Use(middleware.ErrorRecoveryMiddleware(logger))

	if cfg.Server.CORSEnabled {
		router.Use(cors.New(newCORSConfig(cfg.Server.CORSOrigins)))
	}

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.Use(middleware.RequestValidationMiddleware(logger, schemaLoader))

	systemHandler := NewSystemHandler(serviceName, health, logger)
	categoryHandler := NewCategoryHandler(categoryService, questionService, cfg, logger)
	questionHandler := NewQuestionHandler(questionService, categoryService, cfg, logger)
	quizHandler := NewQuizHandler(quizService, logger)

	router.GET("/health", systemHandler.Health)
	router.GET("/version", systemHandler.Version)

	router.GET("/categories", categoryHandler.GetCategories)
	router.GET("/categories/:id/questions", categoryHandler.GetCategoryQuestions)

	router.GET("/questions", questionHandler.GetQuestions)
	router.POST("/questions", questionHandler.CreateOrSearchQuestions)
	router.DELETE("/questions/:id", questionHandler.DeleteQuestion)

	router.POST("/quizzes", quizHandler.PlayQuiz)

	router.NoRoute(NotFound)
	router.NoMethod(MethodNotAllowed)

	return router, nil
}

// newCORSConfig allows the configured origins; "*" allows every origin
func newCORSConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowHeaders = config.CORSAllowedHeaders
	corsConfig.AllowMethods = config.CORSAllowedMethods
	return corsConfig
}
