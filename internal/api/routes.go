package api

import (
	"github.com/gin-gonic/gin"

	"github.com/insightlab/insightpilot-go/internal/api/handlers"
)

// Handlers bundles the endpoint handlers wired at startup.
type Handlers struct {
	Health    *handlers.HealthHandler
	Dataset   *handlers.DatasetHandler
	Analytics *handlers.AnalyticsHandler
	Forecast  *handlers.ForecastHandler
	Anomaly   *handlers.AnomalyHandler
	Segment   *handlers.SegmentHandler
	Insight   *handlers.InsightHandler
}

// SetupRoutes registers every endpoint on the router.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		ds := v1.Group("/dataset")
		{
			ds.POST("/sample", h.Dataset.LoadSample)
			ds.POST("/upload", h.Dataset.Upload)
			ds.GET("/summary", h.Dataset.Summary)
		}

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/kpis", h.Analytics.KPIs)
			analytics.GET("/trends/:granularity", h.Analytics.Trends)
			analytics.GET("/regions", h.Analytics.Regions)
			analytics.GET("/products", h.Analytics.Products)
			analytics.GET("/customers", h.Analytics.Customers)
		}

		forecast := v1.Group("/forecast")
		{
			forecast.GET("/linear", h.Forecast.Linear)
			forecast.GET("/model", h.Forecast.Model)
		}

		anomalies := v1.Group("/anomalies")
		{
			anomalies.GET("/sales", h.Anomaly.Sales)
			anomalies.GET("/daily", h.Anomaly.Daily)
		}

		segments := v1.Group("/segments")
		{
			segments.GET("/", h.Segment.List)
			segments.POST("/apply", h.Segment.Apply)
		}

		insights := v1.Group("/insights")
		{
			insights.POST("/ask", h.Insight.Ask)
			insights.GET("/recommendation", h.Insight.Recommendation)
		}
	}
}
