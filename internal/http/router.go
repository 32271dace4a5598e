package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/learnbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnbridge-backend/internal/http/middleware"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware
	AllowedOrigins []string

	AuthHandler         *httpH.AuthHandler
	SubscriptionHandler *httpH.SubscriptionHandler
	LearningHandler     *httpH.LearningHandler
	ContentHandler      *httpH.ContentHandler
	DashboardHandler    *httpH.DashboardHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Public: login flow and signed-URL redemption carry their own
	// credentials.
	auth := r.Group("/auth")
	{
		auth.GET("/google/start", cfg.AuthHandler.StartGoogle)
		auth.GET("/google/callback", cfg.AuthHandler.GoogleCallback)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
		auth.POST("/logout", cfg.AuthHandler.Logout)
	}
	if cfg.ContentHandler != nil {
		r.GET("/content/:provider/*key", cfg.ContentHandler.Download)
	}

	protected := r.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", cfg.AuthHandler.Me)

		protected.GET("/subscription/me", cfg.SubscriptionHandler.Me)
		protected.POST("/subscription/plan", cfg.SubscriptionHandler.SetPlan)

		lms := protected.Group("/lms")
		{
			lms.POST("/courses", cfg.LearningHandler.CreateCourse)
			lms.POST("/modules", cfg.LearningHandler.CreateModule)
			lms.POST("/lessons", cfg.LearningHandler.CreateLesson)
			lms.POST("/enrollments", cfg.LearningHandler.CreateEnrollment)
			lms.PATCH("/progress", cfg.LearningHandler.UpdateProgress)
			lms.GET("/enrollments/:id/completion", cfg.LearningHandler.Completion)

			lms.PUT("/lessons/:id/content", cfg.ContentHandler.Attach)
			lms.GET("/lessons/:id/content-url", cfg.ContentHandler.ContentURL)
			lms.POST("/content-url/verify", cfg.ContentHandler.Verify)

			lms.GET("/instructor/dashboard/:courseId", cfg.DashboardHandler.CourseDashboard)
		}
	}

	return r
}
