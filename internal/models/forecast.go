package models

import "time"

// ForecastPoint is a single forward-dated prediction. Date is strictly
// after the last observed date; PredictedRevenue is clamped to >= 0.
type ForecastPoint struct {
	Date             time.Time `json:"date"`
	PredictedRevenue float64   `json:"predicted_revenue"`
}

// LinearForecast is the output of the linear trend strategy.
type LinearForecast struct {
	Slope        float64         `json:"slope"`
	Intercept    float64         `json:"intercept"`
	LastObserved time.Time       `json:"last_observed"`
	Points       []ForecastPoint `json:"points"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// TrainingMetrics reports the holdout evaluation of the feature model.
type TrainingMetrics struct {
	MAE               float64            `json:"mae"`
	R2                float64            `json:"r2_score"`
	TrainRows         int                `json:"train_rows"`
	TestRows          int                `json:"test_rows"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// ModelForecast is the output of the feature-based ensemble strategy.
type ModelForecast struct {
	Metrics      TrainingMetrics `json:"metrics"`
	LastObserved time.Time       `json:"last_observed"`
	Points       []ForecastPoint `json:"points"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
