package app

import (
	"interview_prep_backend/docs"
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/middleware"
	"interview_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.GetProfile)

		authGroup.PUT("/users/profile", c.user.UpdateProfile)
		authGroup.PUT("/users/password", c.user.ChangePassword)

		documents := authGroup.Group("/documents")
		{
			documents.POST("", c.document.CreateDocument)
			documents.POST("/upload", c.document.UploadDocument)
			documents.GET("", c.document.ListDocuments)
			documents.GET("/:id", c.document.GetDocument)
			documents.DELETE("/:id", c.document.DeleteDocument)
		}

		interviews := authGroup.Group("/interviews")
		{
			interviews.POST("/sessions", c.interview.CreateSession)
			interviews.GET("/sessions", c.interview.ListSessions)
			interviews.GET("/sessions/:id", c.interview.GetSession)
			interviews.POST("/sessions/:id/responses", c.interview.SaveResponse)
			interviews.PUT("/sessions/:id/end", c.interview.EndSession)
			interviews.POST("/questions/generate", c.interview.GenerateQuestions)
		}

		feedback := authGroup.Group("/feedback")
		{
			feedback.POST("/generate/:sessionId", c.feedback.GenerateFeedback)
			feedback.GET("/session/:sessionId", c.feedback.GetFeedbackBySession)
			feedback.GET("/:id", c.feedback.GetFeedback)
			feedback.GET("", c.feedback.ListFeedback)
		}
	}
}
