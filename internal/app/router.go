package app

import (
	"wellbeing_backend/docs"
	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/model"
	"wellbeing_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// Everything else runs behind auth with the caller's scope resolved once
	// per request.
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ScopeMiddleware(a.services.scope))
	{
		a.registerRecordRoutes(authGroup, c)
		a.registerAnalyticsRoutes(authGroup, c)
		a.registerExportRoutes(authGroup, c)
		a.registerRetentionRoutes(authGroup, c)
	}
}

func (a *App) registerRecordRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/courses", c.student.ListCourses)
	group.GET("/courses/:courseId/assessments", c.assessment.ListByCourse)
	group.POST("/courses/:courseId/directors",
		middleware.RoleMiddleware(model.WellbeingOfficer), c.student.AssignDirector)

	group.GET("/students", c.student.List)
	group.GET("/students/:id", c.student.Get)
	group.POST("/students", c.student.Create)
	group.POST("/students/import", c.student.BulkIntake)
	group.PUT("/students/:id", c.student.Update)
	group.POST("/students/:id/enrollments", c.student.Enroll)
	group.DELETE("/students/:id/enrollments/:courseId", c.student.Unenroll)

	group.GET("/attendance", c.attendance.List)
	group.POST("/attendance", c.attendance.Record)

	group.POST("/assessments", c.assessment.Create)
	group.GET("/assessments/:id/submissions", c.assessment.ListSubmissions)
	group.POST("/assessments/:id/submissions", c.assessment.RecordSubmission)

	group.GET("/surveys", c.survey.ListSurveys)
	group.POST("/surveys/responses", c.survey.LogResponse)
	group.GET("/students/:id/surveys", c.survey.ListResponses)
}

func (a *App) registerAnalyticsRoutes(group *gin.RouterGroup, c *controllers) {
	analytics := group.Group("/analytics")
	{
		analytics.GET("/students/:id/attendance", c.analytics.AttendanceRate)
		analytics.GET("/students/:id/stress", c.analytics.StressTrend)
		analytics.GET("/students/:id/risk", c.analytics.RiskFlags)
		analytics.GET("/at-risk", c.analytics.AtRisk)
		analytics.GET("/courses/attendance", c.analytics.CourseAttendance)
		analytics.GET("/surveys/stress", c.analytics.SurveyStress)
		analytics.GET("/correlation", c.analytics.Correlation)
		analytics.GET("/correlation/stress", c.analytics.StressCorrelation)
	}
}

func (a *App) registerExportRoutes(group *gin.RouterGroup, c *controllers) {
	export := group.Group("/export")
	{
		export.GET("/students", c.export.Students)
		export.GET("/attendance", c.export.Attendance)
		export.GET("/surveys", c.export.Surveys)
	}
}

func (a *App) registerRetentionRoutes(group *gin.RouterGroup, c *controllers) {
	retention := group.Group("/retention")
	retention.Use(middleware.RoleMiddleware(model.WellbeingOfficer))
	{
		retention.POST("/purge", c.retention.Purge)
	}
}
