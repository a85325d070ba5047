package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/cache"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/services"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// AnalyticsHandler serves the KPI, trend, and breakdown endpoints.
type AnalyticsHandler struct {
	store  *dataset.Store
	kpis   *services.KPIService
	trends *services.TrendService
	cache  *cache.ResultCache
	logger *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler. resultCache may be
// nil when Redis is disabled.
func NewAnalyticsHandler(store *dataset.Store, kpis *services.KPIService, trends *services.TrendService, resultCache *cache.ResultCache, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{store: store, kpis: kpis, trends: trends, cache: resultCache, logger: logger}
}

// KPIs returns the headline KPI bundle, cached per snapshot version.
func (h *AnalyticsHandler) KPIs(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	if h.cache != nil {
		var cached models.KPIReport
		if h.cache.Get(c.Request.Context(), snap.Version, "kpis", &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	report, err := h.kpis.CalculateKPIs(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(c.Request.Context(), snap.Version, "kpis", report)
	}
	c.JSON(http.StatusOK, report)
}

// Trends returns the revenue series at the granularity given by the path
// parameter: daily, weekly, or monthly.
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	granularity := c.Param("granularity")
	var (
		points []models.TrendPoint
		err    error
	)
	switch granularity {
	case "daily":
		points, err = h.trends.DailyTrend(snap)
	case "weekly":
		points, err = h.trends.WeeklyTrend(snap)
	case "monthly":
		points, err = h.trends.MonthlyTrend(snap)
	default:
		writeError(c, utils.NewValidationErrorf("granularity must be daily, weekly, or monthly, got %q", granularity))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"granularity": granularity, "points": points})
}

// Regions returns per-region sales metrics.
func (h *AnalyticsHandler) Regions(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	metrics, err := h.trends.RegionalAnalysis(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": metrics})
}

// Products returns per-product performance including profit when catalog
// costs are known.
func (h *AnalyticsHandler) Products(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	performance, err := h.trends.ProductAnalysis(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": performance})
}

// Customers returns per-customer metrics with segment and region rollups.
func (h *AnalyticsHandler) Customers(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	analysis, err := h.trends.CustomerAnalysis(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}
