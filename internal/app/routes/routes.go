package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luct/reporting/internal/app/controllers"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/middleware"
	"github.com/luct/reporting/internal/pkg/websocket"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth    *controllers.AuthController
	Reports *controllers.ReportController
	Catalog *controllers.CatalogController
	Search  *controllers.SearchController
	Export  *controllers.ExportController
	// Events may be nil when realtime updates are disabled
	Events *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	// Role checks happen in the services, not here
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/profile", ctrl.Auth.Profile)

		reports := authenticated.Group("/reports")
		{
			reports.GET("", ctrl.Reports.ListReports)
			reports.POST("", ctrl.Reports.SubmitReport)
			reports.GET("/:id", ctrl.Reports.GetReport)
			reports.GET("/:id/annotations", ctrl.Reports.ListAnnotations)
			reports.POST("/:id/feedback", ctrl.Reports.AddFeedback)
			reports.POST("/:id/rating", ctrl.Reports.AddRating)
		}

		courses := authenticated.Group("/courses")
		{
			courses.GET("", ctrl.Catalog.ListCourses)
			courses.POST("", ctrl.Catalog.CreateCourse)
		}

		classes := authenticated.Group("/classes")
		{
			classes.GET("", ctrl.Catalog.ListClasses)
			classes.POST("", ctrl.Catalog.CreateClass)
			classes.PUT("/:id/lecturer", ctrl.Catalog.AssignLecturer)
			classes.POST("/:id/students", ctrl.Catalog.EnrollStudent)
		}

		authenticated.GET("/search", ctrl.Search.Search)
		authenticated.GET("/export/reports", ctrl.Export.ExportReports)
	}

	if ctrl.Events != nil {
		v1.GET("/ws", authMiddleware.WebSocketAuth(), ctrl.Events.HandleConnection)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if ctrl.Events != nil {
			status["subscribers"] = ctrl.Events.ConnectedClients()
		}
		c.JSON(http.StatusOK, dto.APIResponse{Data: status})
	})
}
