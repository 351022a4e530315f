package api

import (
	"alcyxob/coach-plans/internal/logging"
	"alcyxob/coach-plans/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services bundles everything the router dispatches to.
type Services struct {
	Auth      service.AuthService
	Identity  service.IdentityResolver
	Clients   service.ClientService
	Plans     service.PlanService
	Templates service.PlanTemplateService
	Exercises service.ExerciseService
	Catalog   service.CatalogService
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(svc Services, logger zerolog.Logger, metricsEnabled bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(logger))
	if metricsEnabled {
		router.Use(MetricsMiddleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	SetupRoutes(router, svc, logger)
	return router
}

func SetupRoutes(router *gin.Engine, svc Services, logger zerolog.Logger) {
	authHandler := NewAuthHandler(svc.Auth, logger)
	clientHandler := NewClientHandler(svc.Clients, svc.Plans, logger)
	planHandler := NewPlanHandler(svc.Plans, logger)
	templateHandler := NewTemplateHandler(svc.Templates, logger)
	catalogHandler := NewCatalogHandler(svc.Exercises, svc.Catalog, logger)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	// Role and ownership checks live in the services; this group only
	// establishes who the caller is.
	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth, svc.Identity, logger))
	{
		protected.GET("/me", authHandler.Me)

		clients := protected.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/:clientId", clientHandler.GetClient)
			clients.PATCH("/:clientId", clientHandler.UpdateClient)
			clients.GET("/:clientId/plans", clientHandler.ListClientPlans)
		}

		plans := protected.Group("/plans")
		{
			plans.POST("", planHandler.CreatePlan)
			plans.GET("/mine", planHandler.ListMyPlans)
			plans.GET("/:planId", planHandler.GetPlan)
			plans.PATCH("/:planId", planHandler.UpdatePlan)
			plans.DELETE("/:planId", planHandler.DeletePlan)
			plans.POST("/:planId/publish", planHandler.PublishPlan)
			plans.POST("/:planId/duplicate", planHandler.DuplicatePlan)
			plans.POST("/:planId/export", planHandler.ExportPlan)
		}

		templates := protected.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("/:templateId", templateHandler.GetTemplate)
			templates.PATCH("/:templateId", templateHandler.UpdateTemplate)
			templates.DELETE("/:templateId", templateHandler.DeleteTemplate)
			templates.POST("/:templateId/plans", planHandler.CreatePlanFromTemplate)
		}

		exercises := protected.Group("/exercises")
		{
			exercises.GET("", catalogHandler.ListExercises)
			exercises.POST("", catalogHandler.CreateExercise)
			exercises.GET("/:exerciseId", catalogHandler.GetExercise)
		}

		sections := protected.Group("/sections")
		{
			sections.GET("", catalogHandler.ListSections)
			sections.POST("", catalogHandler.CreateSection)
			sections.PATCH("/:sectionId", catalogHandler.RenameSection)
		}

		progressionTypes := protected.Group("/progression-types")
		{
			progressionTypes.GET("", catalogHandler.ListProgressionTypes)
			progressionTypes.POST("", catalogHandler.CreateProgressionType)
			progressionTypes.PATCH("/:progressionTypeId", catalogHandler.UpdateProgressionType)
			progressionTypes.DELETE("/:progressionTypeId", catalogHandler.DeleteProgressionType)
		}
	}
}
