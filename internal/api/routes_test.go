package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightlab/insightpilot-go/internal/api/handlers"
	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/logging"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/services"
)

func newTestRouter(t *testing.T, snap *models.DatasetSnapshot) (*gin.Engine, *dataset.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewLogger("panic", "test")
	store := dataset.NewStore()
	if snap != nil {
		store.Replace(snap)
	}

	analyticsCfg := config.DefaultAnalytics()
	summary := services.NewSummaryService(logger)
	kpis := services.NewKPIService(analyticsCfg, logger)
	trends := services.NewTrendService(logger)
	forecasts := services.NewForecastService(analyticsCfg, trends, logger)
	anomalies := services.NewAnomalyService(analyticsCfg, trends, summary, logger)
	segments := services.NewSegmentationService(analyticsCfg, logger)
	insights := services.NewInsightService(nil, summary, kpis, logger)

	datasetCfg := config.DatasetConfig{SampleDays: 30, SampleSeed: 42}

	router := gin.New()
	SetupRoutes(router, &Handlers{
		Health:    handlers.NewHealthHandler(store, nil),
		Dataset:   handlers.NewDatasetHandler(store, summary, datasetCfg, logger),
		Analytics: handlers.NewAnalyticsHandler(store, kpis, trends, nil, logger),
		Forecast:  handlers.NewForecastHandler(store, forecasts, nil, logger),
		Anomaly:   handlers.NewAnomalyHandler(store, anomalies, nil, logger),
		Segment:   handlers.NewSegmentHandler(store, segments, logger),
		Insight:   handlers.NewInsightHandler(store, insights, logger),
	})
	return router, store
}

func doRequest(router *gin.Engine, method string, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleSnapshot(days int) *models.DatasetSnapshot {
	return dataset.GenerateSample(days, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 42)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(10))

	w := doRequest(router, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.DatasetLoaded)
	assert.NotEmpty(t, resp.DatasetVersion)
	assert.Equal(t, "disabled", resp.Redis)
}

func TestNoDatasetReturns404(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	paths := []string{
		"/api/v1/dataset/summary",
		"/api/v1/analytics/kpis",
		"/api/v1/forecast/linear",
		"/api/v1/anomalies/daily",
		"/api/v1/segments/",
	}
	for _, path := range paths {
		w := doRequest(router, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestLoadSampleEndpoint(t *testing.T) {
	router, store := newTestRouter(t, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/dataset/sample?days=20", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handlers.DatasetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Version)
	assert.Greater(t, resp.Sales, 0)
	assert.Equal(t, 10, resp.Customers)

	require.NotNil(t, store.Current())
	assert.Equal(t, resp.Version, store.Current().Version)
}

func TestLoadSampleRejectsBadDays(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/dataset/sample?days=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/dataset/sample?days=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint(t *testing.T) {
	router, store := newTestRouter(t, sampleSnapshot(10))
	before := store.Current().Version

	csv := "date,total_amount,customer_id,product_id\n" +
		"2024-01-01,100.50,C001,P001\n" +
		"2024-01-02,200.00,C002,P002\n" +
		"not-a-date,50.00,C003,P003\n"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "sales.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := doRequest(router, http.MethodPost, "/api/v1/dataset/upload", body, writer.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handlers.DatasetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Sales)
	assert.Equal(t, 3, resp.RowsRead)
	assert.Equal(t, 1, resp.RowsSkipped)
	assert.NotEqual(t, before, resp.Version)

	// Customers carried over from the previous snapshot.
	assert.Equal(t, 10, resp.Customers)
}

func TestUploadRequiresFile(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/dataset/upload", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(10))

	w := doRequest(router, http.MethodGet, "/api/v1/dataset/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.DataSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.True(t, summary.TotalRevenue.IsPositive())
	assert.Greater(t, summary.TotalOrders, 0)
}

func TestSummaryEndpointDateValidation(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(10))

	w := doRequest(router, http.MethodGet, "/api/v1/dataset/summary?start=2024/01/01", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A window past the data is a filtered-to-empty dataset.
	w = doRequest(router, http.MethodGet, "/api/v1/dataset/summary?start=2030-01-01", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKPIEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(40))

	w := doRequest(router, http.MethodGet, "/api/v1/analytics/kpis", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var report models.KPIReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.TotalRevenue.IsPositive())
	assert.NotEmpty(t, report.TopProducts)
}

func TestTrendsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(20))

	for _, granularity := range []string{"daily", "weekly", "monthly"} {
		w := doRequest(router, http.MethodGet, "/api/v1/analytics/trends/"+granularity, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, granularity)
	}

	w := doRequest(router, http.MethodGet, "/api/v1/analytics/trends/hourly", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecastLinearEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(20))

	w := doRequest(router, http.MethodGet, "/api/v1/forecast/linear?days=7", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var forecast models.LinearForecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecast))
	assert.Len(t, forecast.Points, 7)

	w = doRequest(router, http.MethodGet, "/api/v1/forecast/linear?days=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/forecast/linear?days=9999", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecastModelEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(30))

	w := doRequest(router, http.MethodGet, "/api/v1/forecast/model?days=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var forecast models.ModelForecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecast))
	assert.Len(t, forecast.Points, 5)
	assert.Greater(t, forecast.Metrics.TrainRows, 0)
}

func TestForecastInsufficientData(t *testing.T) {
	snap := &models.DatasetSnapshot{
		Sales: []models.SaleRecord{{
			SaleID:      "S1",
			Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			TotalAmount: decimal.NewFromInt(100),
			Quantity:    1,
		}},
	}
	router, _ := newTestRouter(t, snap)

	w := doRequest(router, http.MethodGet, "/api/v1/forecast/linear", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_data", resp.Kind)
}

func TestAnomalyEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(30))

	w := doRequest(router, http.MethodGet, "/api/v1/anomalies/sales", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var outliers models.AmountOutlierReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outliers))
	assert.Greater(t, outliers.RowsScanned, 0)

	w = doRequest(router, http.MethodGet, "/api/v1/anomalies/daily", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var daily models.DailyAnomalyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &daily))
	assert.Equal(t, 30, daily.TotalDays)
	assert.Greater(t, daily.AnomalyCount, 0)
}

func TestAnomalyDailyTooFewDays(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(5))

	w := doRequest(router, http.MethodGet, "/api/v1/anomalies/daily", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSegmentEndpoints(t *testing.T) {
	router, store := newTestRouter(t, sampleSnapshot(30))
	before := store.Current().Version

	w := doRequest(router, http.MethodGet, "/api/v1/segments/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var result models.SegmentationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Customers)

	// Listing does not touch the stored snapshot.
	assert.Equal(t, before, store.Current().Version)

	w = doRequest(router, http.MethodPost, "/api/v1/segments/apply", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, before, store.Current().Version)

	labeled := 0
	for _, customer := range store.Current().Customers {
		if customer.Segment != "" {
			labeled++
		}
	}
	assert.Greater(t, labeled, 0)
}

func TestInsightEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, sampleSnapshot(90))

	body := bytes.NewBufferString(`{"question": "what is the total revenue?"}`)
	w := doRequest(router, http.MethodPost, "/api/v1/insights/ask", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var answer models.InsightAnswer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	assert.Equal(t, models.InsightSourceLocal, answer.Source)
	assert.True(t, strings.Contains(answer.Answer, "Total revenue"))

	body = bytes.NewBufferString(`{"question": "  "}`)
	w = doRequest(router, http.MethodPost, "/api/v1/insights/ask", body, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/insights/recommendation", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var rec models.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.NotEmpty(t, rec.Message)
}
