// Package api exposes the bid workflows over HTTP.
package api

import (
	"net/http"

	"fes-bids/internal/api/handlers"
	"fes-bids/internal/api/middleware"
	"fes-bids/internal/config"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every route. The registry may be nil.
func NewRouter(cfg *config.Config, runner handlers.Runner, registry *handlers.Registry) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	runHandler := handlers.NewRunHandler(runner, registry)
	unitHandler := handlers.NewUnitHandler(cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/units", unitHandler.ListUnits)
		api.GET("/facilities", unitHandler.ListFacilities)

		api.POST("/runs", runHandler.CreateRun)
		api.GET("/runs/:id", runHandler.GetRun)
		api.GET("/runs/:id/curves/:unit", runHandler.GetCurves)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
