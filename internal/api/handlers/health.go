package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/insightlab/insightpilot-go/internal/dataset"
)

// HealthResponse reports service liveness and the state of optional
// collaborators.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	DatasetLoaded  bool      `json:"dataset_loaded"`
	DatasetVersion string    `json:"dataset_version,omitempty"`
	Redis          string    `json:"redis"`
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	store *dataset.Store
	redis *redis.Client
}

// NewHealthHandler creates a health handler. redisClient may be nil when
// the cache backend is disabled.
func NewHealthHandler(store *dataset.Store, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{store: store, redis: redisClient}
}

// Check reports ok as long as the process serves requests; a failing
// Redis degrades the status without taking the service down.
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Redis:     "disabled",
	}

	if snap := h.store.Current(); snap != nil {
		response.DatasetLoaded = true
		response.DatasetVersion = snap.Version
	}

	status := http.StatusOK
	if h.redis != nil {
		response.Redis = "ok"
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Redis = "error"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, response)
}
