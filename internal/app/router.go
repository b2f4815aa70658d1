package app

import (
	"skillsim_backend/docs"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/middleware"
	"skillsim_backend/internal/model"

	"skillsim_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerCoachRoutes(authGroup, c)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 场景目录
	rg.GET("/scenarios", c.scenario.ListScenarios)
	rg.GET("/scenarios/:id", c.scenario.GetScenario)

	// 训练会话生命周期
	rg.POST("/sessions", c.session.StartSession)
	rg.GET("/sessions", c.session.ListSessions)
	rg.GET("/sessions/:id", c.session.GetSession)
	rg.POST("/sessions/:id/turns", c.session.RecordTurn)
	rg.POST("/sessions/:id/pause", c.session.PauseSession)
	rg.POST("/sessions/:id/resume", c.session.ResumeSession)
	rg.POST("/sessions/:id/abandon", c.session.AbandonSession)
	rg.POST("/sessions/:id/complete", c.session.CompleteSession)
	rg.GET("/sessions/:id/transcript", c.session.GetTranscript)

	// 评估题目与答案
	rg.POST("/sessions/:id/assessment", c.assessment.RequestAssessment)
	rg.POST("/sessions/:id/answers", c.assessment.SubmitAnswer)
	rg.GET("/sessions/:id/answers", c.assessment.ListAnswers)

	// 能力与报告
	rg.GET("/competencies/summary", c.competency.GetSummary)
	rg.GET("/sessions/:id/competencies", c.competency.ListSessionScores)
	rg.GET("/sessions/:id/comparison", c.report.GetComparison)
	rg.GET("/sessions/:id/recommendations", c.report.GetRecommendations)
	rg.GET("/sessions/:id/summary", c.report.GetSummary)
	rg.POST("/sessions/:id/export", c.report.ExportReport)
}

func (a *App) registerCoachRoutes(rg *gin.RouterGroup, c *controllers) {
	coach := rg.Group("/coach")
	coach.Use(middleware.RoleMiddleware(model.Coach))
	{
		coach.POST("/scenarios", c.scenario.CreateScenario)
		coach.PUT("/scenarios/:id", c.scenario.UpdateScenario)
		coach.GET("/scenarios/:id/questions", c.assessment.ListQuestions)
		coach.POST("/questions", c.assessment.CreateQuestion)
	}
}
