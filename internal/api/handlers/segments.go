package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/services"
)

// SegmentHandler serves the RFM customer segmentation endpoints.
type SegmentHandler struct {
	store    *dataset.Store
	segments *services.SegmentationService
	logger   *logrus.Logger
}

// NewSegmentHandler creates a new segmentation handler.
func NewSegmentHandler(store *dataset.Store, segments *services.SegmentationService, logger *logrus.Logger) *SegmentHandler {
	return &SegmentHandler{store: store, segments: segments, logger: logger}
}

// List scores every purchasing customer and returns the segmentation
// without touching the stored dataset.
func (h *SegmentHandler) List(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	result, err := h.segments.Segment(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Apply runs segmentation and writes the segment labels back into the
// customers table, installing a new snapshot version.
func (h *SegmentHandler) Apply(c *gin.Context) {
	snap, ok := currentSnapshot(c, h.store)
	if !ok {
		return
	}

	result, err := h.segments.Segment(snap)
	if err != nil {
		writeError(c, err)
		return
	}

	updated := h.store.Replace(dataset.WithSegments(snap, result))
	h.logger.WithFields(logrus.Fields{
		"version":   updated.Version,
		"customers": len(result.Customers),
	}).Info("customer segments applied")

	c.JSON(http.StatusOK, gin.H{
		"version":        updated.Version,
		"segment_counts": result.SegmentCounts,
		"customers":      len(result.Customers),
	})
}
