package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/services"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// InsightHandler serves the natural-language question and recommendation
// endpoints.
type InsightHandler struct {
	store    *dataset.Store
	insights *services.InsightService
	logger   *logrus.Logger
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(store *dataset.Store, insights *services.InsightService, logger *logrus.Logger) *InsightHandler {
	return &InsightHandler{store: store, insights: insights, logger: logger}
}

// AskRequest is the body of the ask endpoint.
type AskRequest struct {
	Question string `json:"question"`
}

// Ask answers a question about the current dataset.
func (h *InsightHandler) Ask(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.NewValidationError("request body must be JSON with a question field"))
		return
	}

	answer, err := h.insights.Ask(c.Request.Context(), snap, req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// Recommendation returns the growth-based suggestion for the current
// dataset.
func (h *InsightHandler) Recommendation(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	rec, err := h.insights.Recommend(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
