package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/services"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// DatasetHandler serves dataset lifecycle endpoints: sample generation,
// CSV upload, and the headline summary.
type DatasetHandler struct {
	store   *dataset.Store
	summary *services.SummaryService
	config  config.DatasetConfig
	logger  *logrus.Logger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(store *dataset.Store, summary *services.SummaryService, cfg config.DatasetConfig, logger *logrus.Logger) *DatasetHandler {
	return &DatasetHandler{store: store, summary: summary, config: cfg, logger: logger}
}

// DatasetResponse describes the snapshot installed by a load operation.
type DatasetResponse struct {
	Version     string    `json:"version"`
	LoadedAt    time.Time `json:"loaded_at"`
	Sales       int       `json:"sales"`
	Customers   int       `json:"customers"`
	Products    int       `json:"products"`
	RowsRead    int       `json:"rows_read,omitempty"`
	RowsSkipped int       `json:"rows_skipped,omitempty"`
}

// LoadSample generates a deterministic synthetic dataset and installs it
// as the current snapshot.
func (h *DatasetHandler) LoadSample(c *gin.Context) {
	days, err := queryInt(c, "days", h.config.SampleDays)
	if err != nil {
		writeError(c, err)
		return
	}
	if days < 1 || days > 3650 {
		writeError(c, utils.NewValidationErrorf("days must be between 1 and 3650, got %d", days))
		return
	}

	snap := dataset.GenerateSample(days, dataset.Midnight(time.Now()), h.config.SampleSeed)
	snap = h.store.Replace(snap)

	h.logger.WithFields(logrus.Fields{
		"version": snap.Version,
		"days":    days,
		"sales":   len(snap.Sales),
	}).Info("sample dataset loaded")

	c.JSON(http.StatusCreated, datasetResponse(snap, nil))
}

// Upload imports a sales CSV from a multipart form field named "file" and
// installs a new snapshot with the parsed sales table. Other tables are
// carried over from the previous snapshot.
func (h *DatasetHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.NewValidationError("multipart field 'file' is required"))
		return
	}

	reader, err := file.Open()
	if err != nil {
		writeError(c, utils.NewValidationErrorf("failed to open uploaded file: %v", err))
		return
	}
	defer func() { _ = reader.Close() }()

	result, err := dataset.LoadSalesCSV(reader)
	if err != nil {
		writeError(c, err)
		return
	}

	snap := h.store.Replace(dataset.WithSales(h.store.Current(), result.Sales))

	h.logger.WithFields(logrus.Fields{
		"version":      snap.Version,
		"rows_read":    result.RowsRead,
		"rows_skipped": result.RowsSkipped,
	}).Info("sales csv uploaded")

	c.JSON(http.StatusCreated, datasetResponse(snap, result))
}

// Summary returns the headline scalars, optionally restricted to an
// inclusive [start, end] date range.
func (h *DatasetHandler) Summary(c *gin.Context) {
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

	if start != nil || end != nil {
		snap = &models.DatasetSnapshot{
			Version: snap.Version,
			Sales:   h.summary.FilterByDate(snap, start, end),
		}
	}

	summary, err := h.summary.Summarize(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func datasetResponse(snap *models.DatasetSnapshot, load *dataset.LoadResult) DatasetResponse {
	resp := DatasetResponse{
		Version:   snap.Version,
		LoadedAt:  snap.LoadedAt,
		Sales:     len(snap.Sales),
		Customers: len(snap.Customers),
		Products:  len(snap.Products),
	}
	if load != nil {
		resp.RowsRead = load.RowsRead
		resp.RowsSkipped = load.RowsSkipped
	}
	return resp
}
