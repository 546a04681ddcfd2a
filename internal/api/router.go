package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accesspath/journey-backend-go/internal/handler"
	"github.com/accesspath/journey-backend-go/internal/middleware"
)

// SetupRouter builds the HTTP routing table
func SetupRouter(analysisHandler *handler.AnalysisHandler, transitHandler *handler.TransitHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Journey Analysis API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		journeys := api.Group("/journeys")
		{
			journeys.POST("", analysisHandler.CreateJourney)
			journeys.POST("/:id/analyze", analysisHandler.AnalyzeJourney)
			journeys.GET("/:id/analysis", analysisHandler.GetAnalysis)
		}

		transit := api.Group("/transit")
		{
			transit.GET("/vehicles/near", transitHandler.VehiclesNear)
			transit.POST("/vehicles", transitHandler.IngestVehicles)
			transit.GET("/stops/accessible", transitHandler.AccessibleStops)
		}

		api.GET("/modes", analysisHandler.ListModes)
	}

	return r
}
