package services

import (
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// DailyDetector is a fitted multivariate anomaly detector over the daily
// aggregates it was trained on. Callers own the value; concurrent use of
// one detector requires external serialization.
type DailyDetector struct {
	forest *isolationForest
	days   []models.DailyAggregate
	scaled [][]float64
}

// AnomalyService flags outlier behavior in the sales data, both at the
// individual sale level and at the daily aggregate level. The two layers
// run independently and are never reconciled into one flag.
type AnomalyService struct {
	config  config.AnalyticsConfig
	trends  *TrendService
	summary *SummaryService
	logger  *logrus.Logger
}

// NewAnomalyService creates a new anomaly service.
func NewAnomalyService(cfg config.AnalyticsConfig, trends *TrendService, summary *SummaryService, logger *logrus.Logger) *AnomalyService {
	return &AnomalyService{config: cfg, trends: trends, summary: summary, logger: logger}
}

// DetectAmountOutliers flags sales whose total_amount exceeds
// mean + sigma*stddev over the optionally date-filtered sales set. Purely
// statistical; no training involved.
func (s *AnomalyService) DetectAmountOutliers(snap *models.DatasetSnapshot, start *time.Time, end *time.Time) (*models.AmountOutlierReport, error) {
	sales := s.summary.FilterByDate(snap, start, end)
	if len(sales) == 0 {
		return nil, utils.NewMissingDataError("no sales rows in the selected range")
	}

	amounts := make([]float64, len(sales))
	for i, sale := range sales {
		amounts[i], _ = sale.TotalAmount.Float64()
	}
	mean := calculateMeanFloat64(amounts)
	stdDev := calculateStdDev(amounts)
	threshold := mean + s.config.AnomalySigma*stdDev

	report := &models.AmountOutlierReport{
		Mean:        mean,
		StdDev:      stdDev,
		Threshold:   threshold,
		RowsScanned: len(sales),
		GeneratedAt: time.Now(),
	}
	for i, sale := range sales {
		if amounts[i] <= threshold {
			continue
		}
		zScore := 0.0
		if stdDev > 0 {
			zScore = (amounts[i] - mean) / stdDev
		}
		report.Anomalies = append(report.Anomalies, models.SaleAnomaly{
			SaleID:         sale.SaleID,
			Date:           sale.Date,
			CustomerID:     sale.CustomerID,
			ProductID:      sale.ProductID,
			ObservedAmount: sale.TotalAmount,
			ZScore:         zScore,
		})
	}
	return report, nil
}

// FitDetector aggregates to daily revenue/quantity/order rows, scales them
// to zero mean and unit variance, and fits the isolation forest. Fitting
// and scoring use the same rows, matching the detector's batch contract.
func (s *AnomalyService) FitDetector(snap *models.DatasetSnapshot) (*DailyDetector, error) {
	days, err := s.trends.DailyAggregates(snap)
	if err != nil {
		return nil, err
	}
	if len(days) < s.config.AnomalyMinDays {
		return nil, utils.NewInsufficientDataError("anomaly detection needs %d daily observations, got %d", s.config.AnomalyMinDays, len(days))
	}

	rows := make([][]float64, len(days))
	for i, day := range days {
		revenue, _ := day.Revenue.Float64()
		rows[i] = []float64{revenue, float64(day.Quantity), float64(day.Orders)}
	}
	scaled := standardScale(rows)

	rng := rand.New(rand.NewSource(s.config.ModelSeed))
	forest := fitIsolationForest(scaled, 100, rng)

	return &DailyDetector{forest: forest, days: days, scaled: scaled}, nil
}

// Score attaches an isolation score to every fitted day and labels the
// bottom contamination fraction as anomalous.
func (s *AnomalyService) Score(detector *DailyDetector) (*models.DailyAnomalyReport, error) {
	if detector == nil || len(detector.days) == 0 {
		return nil, utils.NewMissingDataError("detector has not been fitted")
	}

	scores := make([]float64, len(detector.days))
	for i, row := range detector.scaled {
		scores[i] = detector.forest.score(row)
	}
	threshold := contaminationThreshold(scores, s.config.AnomalyContamination)

	report := &models.DailyAnomalyReport{
		Days:        make([]models.DailyAnomaly, 0, len(detector.days)),
		TotalDays:   len(detector.days),
		GeneratedAt: time.Now(),
	}
	for i, day := range detector.days {
		isAnomaly := scores[i] <= threshold
		if isAnomaly {
			report.AnomalyCount++
		}
		report.Days = append(report.Days, models.DailyAnomaly{
			Date:      day.Date,
			Revenue:   day.Revenue,
			Quantity:  day.Quantity,
			Orders:    day.Orders,
			Score:     scores[i],
			IsAnomaly: isAnomaly,
		})
	}
	return report, nil
}

// contaminationThreshold picks the score below which roughly the given
// fraction of points falls; those points get the anomaly label.
func contaminationThreshold(scores []float64, contamination float64) float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	k := int(float64(len(sorted)) * contamination)
	if k < 1 {
		k = 1
	}
	return sorted[k-1]
}
