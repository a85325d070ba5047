package services

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// SegmentationService buckets customers into named segments by RFM
// (recency/frequency/monetary) quartile scoring.
type SegmentationService struct {
	config config.AnalyticsConfig
	logger *logrus.Logger
}

// NewSegmentationService creates a new segmentation service.
func NewSegmentationService(cfg config.AnalyticsConfig, logger *logrus.Logger) *SegmentationService {
	return &SegmentationService{config: cfg, logger: logger}
}

// Segment scores every purchasing customer. Recency is measured against
// the dataset's maximum sale date. Quartile cuts are rank based with ties
// broken by customer id, so the result is reproducible across runs.
func (s *SegmentationService) Segment(snap *models.DatasetSnapshot) (*models.SegmentationResult, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	currentDate, _ := snap.MaxSaleDate()

	aggregates := make(map[string]*models.CustomerSegment)
	lastPurchase := make(map[string]time.Time)
	for _, sale := range snap.Sales {
		if sale.CustomerID == "" {
			continue
		}
		cs, ok := aggregates[sale.CustomerID]
		if !ok {
			cs = &models.CustomerSegment{CustomerID: sale.CustomerID}
			aggregates[sale.CustomerID] = cs
		}
		cs.Frequency++
		cs.Monetary = cs.Monetary.Add(sale.TotalAmount)
		if sale.Date.After(lastPurchase[sale.CustomerID]) {
			lastPurchase[sale.CustomerID] = sale.Date
		}
	}

	if len(aggregates) < s.config.SegmentMinCustomers {
		return nil, utils.NewInsufficientDataError("segmentation needs at least %d purchasing customers, got %d", s.config.SegmentMinCustomers, len(aggregates))
	}

	recencyItems := make([]rankedItem, 0, len(aggregates))
	frequencyItems := make([]rankedItem, 0, len(aggregates))
	monetaryItems := make([]rankedItem, 0, len(aggregates))
	for customerID, cs := range aggregates {
		cs.Recency = int(currentDate.Sub(lastPurchase[customerID]).Hours() / 24)
		monetary, _ := cs.Monetary.Float64()
		recencyItems = append(recencyItems, rankedItem{key: customerID, value: float64(cs.Recency)})
		frequencyItems = append(frequencyItems, rankedItem{key: customerID, value: float64(cs.Frequency)})
		monetaryItems = append(monetaryItems, rankedItem{key: customerID, value: monetary})
	}

	recencyScores := quartileScores(recencyItems)
	frequencyScores := quartileScores(frequencyItems)
	monetaryScores := quartileScores(monetaryItems)

	names := make(map[string]models.CustomerRecord, len(snap.Customers))
	for _, customer := range snap.Customers {
		names[customer.CustomerID] = customer
	}

	result := &models.SegmentationResult{
		Customers:     make([]models.CustomerSegment, 0, len(aggregates)),
		SegmentCounts: make(map[string]int),
		GeneratedAt:   time.Now(),
	}
	for customerID, cs := range aggregates {
		// Recency scoring is inverted: the most recent quartile scores 4.
		cs.RecencyScore = 5 - recencyScores[customerID]
		cs.FrequencyScore = frequencyScores[customerID]
		cs.MonetaryScore = monetaryScores[customerID]
		cs.RFMScore = cs.RecencyScore + cs.FrequencyScore + cs.MonetaryScore
		cs.Segment = SegmentForScore(cs.RFMScore)
		cs.Monetary = cs.Monetary.Round(2)
		if record, ok := names[customerID]; ok {
			cs.Name = record.Name
			cs.Region = record.Region
		}
		result.Customers = append(result.Customers, *cs)
		result.SegmentCounts[cs.Segment]++
	}
	sort.Slice(result.Customers, func(i, j int) bool {
		return result.Customers[i].CustomerID < result.Customers[j].CustomerID
	})
	return result, nil
}

// SegmentForScore maps an RFM score in [3,12] to its named segment.
// Higher scores always map to the same or a better segment.
func SegmentForScore(rfmScore int) string {
	switch {
	case rfmScore >= 10:
		return models.SegmentChampions
	case rfmScore >= 8:
		return models.SegmentLoyalCustomers
	case rfmScore >= 6:
		return models.SegmentPotentialLoyalists
	case rfmScore >= 4:
		return models.SegmentAtRisk
	default:
		return models.SegmentLostCustomers
	}
}
