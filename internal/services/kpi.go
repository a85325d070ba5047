package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// KPIService computes the headline business indicators over trailing
// windows anchored at the maximum observed sale date.
type KPIService struct {
	config config.AnalyticsConfig
	logger *logrus.Logger
}

// NewKPIService creates a new KPI service.
func NewKPIService(cfg config.AnalyticsConfig, logger *logrus.Logger) *KPIService {
	return &KPIService{config: cfg, logger: logger}
}

// CalculateKPIs computes the KPI bundle for the snapshot. The growth rate
// compares the trailing window against the window before it and resolves
// a zero prior window to 0 rather than an error.
func (s *KPIService) CalculateKPIs(snap *models.DatasetSnapshot) (*models.KPIReport, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	currentDate, _ := snap.MaxSaleDate()
	shortCutoff := currentDate.AddDate(0, 0, -s.config.TrailingWindowDays)
	longCutoff := currentDate.AddDate(0, 0, -s.config.LongWindowDays)
	priorCutoff := shortCutoff.AddDate(0, 0, -s.config.TrailingWindowDays)

	totalRevenue := decimal.Zero
	revenueShort := decimal.Zero
	revenueLong := decimal.Zero
	revenuePrior := decimal.Zero
	activeCustomers := make(map[string]struct{})
	productRevenue := make(map[string]decimal.Decimal)

	for _, sale := range snap.Sales {
		totalRevenue = totalRevenue.Add(sale.TotalAmount)
		productRevenue[sale.ProductID] = productRevenue[sale.ProductID].Add(sale.TotalAmount)

		if !sale.Date.Before(shortCutoff) {
			revenueShort = revenueShort.Add(sale.TotalAmount)
			if sale.CustomerID != "" {
				activeCustomers[sale.CustomerID] = struct{}{}
			}
		} else if !sale.Date.Before(priorCutoff) {
			// Window immediately before the trailing window.
			revenuePrior = revenuePrior.Add(sale.TotalAmount)
		}
		if !sale.Date.Before(longCutoff) {
			revenueLong = revenueLong.Add(sale.TotalAmount)
		}
	}

	growthRate := 0.0
	if revenuePrior.IsPositive() {
		growthRate, _ = revenueShort.Sub(revenuePrior).
			Div(revenuePrior).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
	}

	orders := len(snap.Sales)
	return &models.KPIReport{
		TotalRevenue:       totalRevenue.Round(2),
		Revenue30d:         revenueShort.Round(2),
		Revenue90d:         revenueLong.Round(2),
		RevenueGrowthRate:  growthRate,
		TotalCustomers:     len(snap.Customers),
		ActiveCustomers30d: len(activeCustomers),
		TotalOrders:        orders,
		AvgOrderValue:      totalRevenue.Div(decimal.NewFromInt(int64(orders))).Round(2),
		TopProducts:        topProductsByRevenue(productRevenue, s.config.TopProducts),
		GeneratedAt:        time.Now(),
	}, nil
}

// topProductsByRevenue ranks products by revenue, highest first, breaking
// revenue ties by product id so the ranking is reproducible.
func topProductsByRevenue(revenue map[string]decimal.Decimal, limit int) []models.ProductRevenue {
	ranked := make([]models.ProductRevenue, 0, len(revenue))
	for productID, total := range revenue {
		ranked = append(ranked, models.ProductRevenue{ProductID: productID, Revenue: total.Round(2)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].Revenue.Cmp(ranked[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
