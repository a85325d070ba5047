package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// ErrorResponse is the uniform error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError translates engine errors into HTTP status codes: validation
// failures map to 400, missing data to 404, statistical preconditions to
// 422, provider outages to 502. Anything unclassified is a 500 with the
// detail kept out of the response body.
func writeError(c *gin.Context, err error) {
	if utils.IsValidation(err) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if kind, ok := utils.KindOf(err); ok {
		status := http.StatusInternalServerError
		switch kind {
		case utils.KindMissingData:
			status = http.StatusNotFound
		case utils.KindInsufficientData:
			status = http.StatusUnprocessableEntity
		case utils.KindExternalUnavailable:
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Kind: string(kind)})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// currentSnapshot fetches the active snapshot or answers 404 when no
// dataset has been loaded yet.
func currentSnapshot(c *gin.Context, store *dataset.Store) (*models.DatasetSnapshot, bool) {
	snap := store.Current()
	if snap == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no dataset loaded",
			Kind:  string(utils.KindMissingData),
		})
		return nil, false
	}
	return snap, true
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent. A present but unparsable value is an error.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.NewValidationErrorf("query parameter %q must be an integer, got %q", name, raw)
	}
	return value, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, utils.NewValidationErrorf("query parameter %q must be YYYY-MM-DD, got %q", name, raw)
	}
	day := dataset.Midnight(parsed)
	return &day, nil
}
