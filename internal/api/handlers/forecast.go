package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/cache"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/services"
)

const defaultForecastDays = 30

// ForecastHandler serves the revenue forecasting endpoints.
type ForecastHandler struct {
	store     *dataset.Store
	forecasts *services.ForecastService
	cache     *cache.ResultCache
	logger    *logrus.Logger
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(store *dataset.Store, forecasts *services.ForecastService, resultCache *cache.ResultCache, logger *logrus.Logger) *ForecastHandler {
	return &ForecastHandler{store: store, forecasts: forecasts, cache: resultCache, logger: logger}
}

// Linear fits and extrapolates the linear trend model. The horizon comes
// from the days query parameter.
func (h *ForecastHandler) Linear(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}
	days, err := queryInt(c, "days", defaultForecastDays)
	if err != nil {
		writeError(c, err)
		return
	}

	model, err := h.forecasts.FitLinear(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	forecast, err := h.forecasts.PredictLinear(model, days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// Model fits the feature-based ensemble and forecasts forward. Training
// is the expensive step, so the full response is cached per snapshot
// version and horizon.
func (h *ForecastHandler) Model(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}
	days, err := queryInt(c, "days", defaultForecastDays)
	if err != nil {
		writeError(c, err)
		return
	}

	operation := fmt.Sprintf("forecast_model:%d", days)
	if h.cache != nil {
		var cached models.ModelForecast
		if h.cache.Get(c.Request.Context(), snap.Version, operation, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	model, err := h.forecasts.FitModel(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	forecast, err := h.forecasts.PredictModel(model, days)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(c.Request.Context(), snap.Version, operation, forecast)
	}
	c.JSON(http.StatusOK, forecast)
}
