package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/cache"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/services"
)

// AnomalyHandler serves the sale-level and day-level anomaly endpoints.
type AnomalyHandler struct {
	store     *dataset.Store
	anomalies *services.AnomalyService
	cache     *cache.ResultCache
	logger    *logrus.Logger
}

// NewAnomalyHandler creates a new anomaly handler.
func NewAnomalyHandler(store *dataset.Store, anomalies *services.AnomalyService, resultCache *cache.ResultCache, logger *logrus.Logger) *AnomalyHandler {
	return &AnomalyHandler{store: store, anomalies: anomalies, cache: resultCache, logger: logger}
}

// Sales flags individual sales whose amount exceeds the sigma threshold,
// optionally restricted to a date range.
func (h *AnomalyHandler) Sales(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	start, err := queryDate(c, "start")
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := queryDate(c, "end")
	if err != nil {
		writeError(c, err)
		return
	}

	report, err := h.anomalies.DetectAmountOutliers(snap, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Daily fits the isolation forest over the daily aggregates and returns
// every day with its score and label. Cached per snapshot version since
// the fit is deterministic.
func (h *AnomalyHandler) Daily(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	if h.cache != nil {
		var cached models.DailyAnomalyReport
		if h.cache.Get(c.Request.Context(), snap.Version, "anomalies_daily", &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	detector, err := h.anomalies.FitDetector(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	report, err := h.anomalies.Score(detector)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(c.Request.Context(), snap.Version, "anomalies_daily", report)
	}
	c.JSON(http.StatusOK, report)
}
