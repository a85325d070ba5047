package services

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// featureNames is the fixed order of the engineered model inputs.
var featureNames = []string{
	"month", "day_of_week", "day_of_year", "quarter",
	"daily_quantity", "daily_transactions", "revenue_ma_7", "revenue_ma_30",
}

// LinearModel is a fitted linear trend over the daily revenue series.
// Day numbers are consecutive positions in the sorted distinct dates, not
// calendar offsets, so gaps in the series do not stretch the fit.
type LinearModel struct {
	Slope        float64
	Intercept    float64
	Days         int
	LastObserved time.Time
}

// RevenueModel is a fitted feature-based ensemble plus the last observed
// row, whose non-calendar features are held constant during prediction.
type RevenueModel struct {
	forest       *regressionForest
	metrics      models.TrainingMetrics
	lastRow      []float64
	lastObserved time.Time
}

// Metrics returns the holdout evaluation recorded at fit time.
func (m *RevenueModel) Metrics() models.TrainingMetrics {
	return m.metrics
}

// ForecastService fits revenue models on the daily aggregates produced by
// the trend service and extrapolates them forward. Fitting is explicit:
// callers decide when to (re)train and own the returned model values, so
// concurrent callers never share hidden model state.
type ForecastService struct {
	config config.AnalyticsConfig
	trends *TrendService
	logger *logrus.Logger
}

// NewForecastService creates a new forecast service.
func NewForecastService(cfg config.AnalyticsConfig, trends *TrendService, logger *logrus.Logger) *ForecastService {
	return &ForecastService{config: cfg, trends: trends, logger: logger}
}

// FitLinear fits revenue against the day index by ordinary least squares.
func (s *ForecastService) FitLinear(snap *models.DatasetSnapshot) (*LinearModel, error) {
	days, err := s.trends.DailyAggregates(snap)
	if err != nil {
		return nil, err
	}
	if len(days) < 2 {
		return nil, utils.NewInsufficientDataError("not enough data to forecast: need 2 distinct dates, got %d", len(days))
	}

	x := make([]float64, len(days))
	y := make([]float64, len(days))
	for i, day := range days {
		x[i] = float64(i)
		y[i], _ = day.Revenue.Float64()
	}

	slope, intercept, ok := fitLine(x, y)
	if !ok {
		return nil, utils.NewInsufficientDataError("not enough data to forecast: degenerate daily series")
	}

	return &LinearModel{
		Slope:        slope,
		Intercept:    intercept,
		Days:         len(days),
		LastObserved: days[len(days)-1].Date,
	}, nil
}

// PredictLinear extrapolates the fitted line one calendar day at a time
// past the last observed date. Predictions are clamped to zero.
func (s *ForecastService) PredictLinear(model *LinearModel, horizon int) (*models.LinearForecast, error) {
	if err := s.validateHorizon(horizon); err != nil {
		return nil, err
	}

	points := make([]models.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		predicted := model.Slope*float64(model.Days-1+i) + model.Intercept
		if predicted < 0 {
			predicted = 0
		}
		points = append(points, models.ForecastPoint{
			Date:             model.LastObserved.AddDate(0, 0, i),
			PredictedRevenue: predicted,
		})
	}

	return &models.LinearForecast{
		Slope:        model.Slope,
		Intercept:    model.Intercept,
		LastObserved: model.LastObserved,
		Points:       points,
		GeneratedAt:  time.Now(),
	}, nil
}

// FitModel engineers calendar and rolling features from the daily series
// and trains the regression ensemble on a seeded random 80/20 split.
func (s *ForecastService) FitModel(snap *models.DatasetSnapshot) (*RevenueModel, error) {
	days, err := s.trends.DailyAggregates(snap)
	if err != nil {
		return nil, err
	}
	if len(days) < s.config.ModelMinRows {
		return nil, utils.NewInsufficientDataError("not enough data to forecast: need %d daily observations, got %d", s.config.ModelMinRows, len(days))
	}

	features, targets := engineerFeatures(days)

	rng := rand.New(rand.NewSource(s.config.ModelSeed))
	perm := rng.Perm(len(features))
	testSize := int(float64(len(features)) * s.config.ModelTestFraction)
	if testSize < 1 {
		testSize = 1
	}

	testIdx := perm[:testSize]
	trainIdx := perm[testSize:]
	trainX := make([][]float64, 0, len(trainIdx))
	trainY := make([]float64, 0, len(trainIdx))
	for _, idx := range trainIdx {
		trainX = append(trainX, features[idx])
		trainY = append(trainY, targets[idx])
	}

	forest := trainForest(trainX, trainY, forestParams{
		trees:    s.config.ModelTrees,
		maxDepth: s.config.ModelMaxDepth,
	}, rng)

	actual := make([]float64, 0, len(testIdx))
	predicted := make([]float64, 0, len(testIdx))
	for _, idx := range testIdx {
		actual = append(actual, targets[idx])
		predicted = append(predicted, forest.predict(features[idx]))
	}

	importance := make(map[string]float64, len(featureNames))
	for i, name := range featureNames {
		importance[name] = forest.importance[i]
	}

	model := &RevenueModel{
		forest: forest,
		metrics: models.TrainingMetrics{
			MAE:               meanAbsoluteError(actual, predicted),
			R2:                rSquared(actual, predicted),
			TrainRows:         len(trainIdx),
			TestRows:          len(testIdx),
			FeatureImportance: importance,
		},
		lastRow:      features[len(features)-1],
		lastObserved: days[len(days)-1].Date,
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"train_rows": model.metrics.TrainRows,
			"test_rows":  model.metrics.TestRows,
			"mae":        model.metrics.MAE,
			"r2":         model.metrics.R2,
		}).Debug("revenue model trained")
	}
	return model, nil
}

// PredictModel forecasts future days with the fitted ensemble. Calendar
// features advance with the date; quantity, transaction, and moving
// average inputs stay frozen at the last observed row rather than being
// re-rolled forward. Predictions are clamped to zero.
func (s *ForecastService) PredictModel(model *RevenueModel, horizon int) (*models.ModelForecast, error) {
	if err := s.validateHorizon(horizon); err != nil {
		return nil, err
	}

	points := make([]models.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := model.lastObserved.AddDate(0, 0, i)
		row := calendarFeatures(date)
		row = append(row, model.lastRow[4:]...)

		predicted := model.forest.predict(row)
		if predicted < 0 {
			predicted = 0
		}
		points = append(points, models.ForecastPoint{
			Date:             date,
			PredictedRevenue: predicted,
		})
	}

	return &models.ModelForecast{
		Metrics:      model.metrics,
		LastObserved: model.lastObserved,
		Points:       points,
		GeneratedAt:  time.Now(),
	}, nil
}

func (s *ForecastService) validateHorizon(horizon int) error {
	if horizon < 1 || horizon > s.config.ForecastMaxHorizon {
		return utils.NewValidationErrorf("forecast horizon must be between 1 and %d, got %d", s.config.ForecastMaxHorizon, horizon)
	}
	return nil
}

// engineerFeatures builds the model inputs from the daily aggregates in
// featureNames order, plus the revenue targets.
func engineerFeatures(days []models.DailyAggregate) ([][]float64, []float64) {
	revenues := make([]float64, len(days))
	for i, day := range days {
		revenues[i], _ = day.Revenue.Float64()
	}
	ma7 := trailingMean(revenues, 7)
	ma30 := trailingMean(revenues, 30)

	features := make([][]float64, len(days))
	for i, day := range days {
		row := calendarFeatures(day.Date)
		row = append(row,
			float64(day.Quantity),
			float64(day.Orders),
			ma7[i],
			ma30[i],
		)
		features[i] = row
	}
	return features, revenues
}

// calendarFeatures encodes the date portion of a feature row. Day of week
// is Monday-based (Monday=0).
func calendarFeatures(date time.Time) []float64 {
	return []float64{
		float64(date.Month()),
		float64((int(date.Weekday()) + 6) % 7),
		float64(date.YearDay()),
		float64((int(date.Month())-1)/3 + 1),
	}
}
