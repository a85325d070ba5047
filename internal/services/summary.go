package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// SummaryService computes lightweight scalar summaries and date-filtered
// views of the sales table.
type SummaryService struct {
	logger *logrus.Logger
}

// NewSummaryService creates a new summary service.
func NewSummaryService(logger *logrus.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Summarize returns the headline scalars for the snapshot's sales table.
func (s *SummaryService) Summarize(snap *models.DatasetSnapshot) (*models.DataSummary, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	total := decimal.Zero
	startDate := snap.Sales[0].Date
	endDate := snap.Sales[0].Date
	for _, sale := range snap.Sales {
		total = total.Add(sale.TotalAmount)
		if sale.Date.Before(startDate) {
			startDate = sale.Date
		}
		if sale.Date.After(endDate) {
			endDate = sale.Date
		}
	}

	orders := len(snap.Sales)
	return &models.DataSummary{
		TotalRevenue:      total.Round(2),
		TotalOrders:       orders,
		AverageOrderValue: total.Div(decimal.NewFromInt(int64(orders))).Round(2),
		StartDate:         startDate,
		EndDate:           endDate,
	}, nil
}

// FilterByDate returns the sales rows within [start, end], both bounds
// inclusive and either side optional. A missing sales table or an empty
// match yields an empty slice, not an error.
func (s *SummaryService) FilterByDate(snap *models.DatasetSnapshot, start *time.Time, end *time.Time) []models.SaleRecord {
	if snap == nil || len(snap.Sales) == 0 {
		return []models.SaleRecord{}
	}

	filtered := make([]models.SaleRecord, 0, len(snap.Sales))
	for _, sale := range snap.Sales {
		if start != nil && sale.Date.Before(*start) {
			continue
		}
		if end != nil && sale.Date.After(*end) {
			continue
		}
		filtered = append(filtered, sale)
	}
	return filtered
}

// MonthlyGrowth returns the revenue change of the latest calendar month
// against the one before it, in percent. Nil when fewer than two months
// are observed or the previous month's revenue is zero.
func (s *SummaryService) MonthlyGrowth(snap *models.DatasetSnapshot) (*float64, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	monthly := make(map[string]decimal.Decimal)
	for _, sale := range snap.Sales {
		key := sale.Date.Format("2006-01")
		monthly[key] = monthly[key].Add(sale.TotalAmount)
	}
	if len(monthly) < 2 {
		return nil, nil
	}

	months := make([]string, 0, len(monthly))
	for key := range monthly {
		months = append(months, key)
	}
	sort.Strings(months)

	last := monthly[months[len(months)-1]]
	prev := monthly[months[len(months)-2]]
	if prev.IsZero() {
		return nil, nil
	}

	growth, _ := last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Float64()
	return &growth, nil
}
