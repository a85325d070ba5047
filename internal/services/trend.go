package services

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// TrendService produces time-bucketed revenue series and the regional,
// product, and customer breakdowns.
type TrendService struct {
	logger *logrus.Logger
}

// NewTrendService creates a new trend service.
func NewTrendService(logger *logrus.Logger) *TrendService {
	return &TrendService{logger: logger}
}

// DailyAggregates groups sales by calendar day, sorted ascending. This is
// the series the forecast and anomaly engines consume.
func (s *TrendService) DailyAggregates(snap *models.DatasetSnapshot) ([]models.DailyAggregate, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	buckets := make(map[string]*models.DailyAggregate)
	for _, sale := range snap.Sales {
		key := sale.Date.Format("2006-01-02")
		agg, ok := buckets[key]
		if !ok {
			agg = &models.DailyAggregate{Date: sale.Date}
			buckets[key] = agg
		}
		agg.Revenue = agg.Revenue.Add(sale.TotalAmount)
		agg.Quantity += sale.Quantity
		agg.Orders++
	}

	days := make([]models.DailyAggregate, 0, len(buckets))
	for _, agg := range buckets {
		days = append(days, *agg)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

// DailyTrend groups sales by calendar day.
func (s *TrendService) DailyTrend(snap *models.DatasetSnapshot) ([]models.TrendPoint, error) {
	return s.trend(snap, func(sale models.SaleRecord) string {
		return sale.Date.Format("2006-01-02")
	})
}

// WeeklyTrend groups sales by ISO week (weeks start Monday).
func (s *TrendService) WeeklyTrend(snap *models.DatasetSnapshot) ([]models.TrendPoint, error) {
	return s.trend(snap, func(sale models.SaleRecord) string {
		year, week := sale.Date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	})
}

// MonthlyTrend groups sales by calendar month.
func (s *TrendService) MonthlyTrend(snap *models.DatasetSnapshot) ([]models.TrendPoint, error) {
	return s.trend(snap, func(sale models.SaleRecord) string {
		return sale.Date.Format("2006-01")
	})
}

func (s *TrendService) trend(snap *models.DatasetSnapshot, periodOf func(models.SaleRecord) string) ([]models.TrendPoint, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	buckets := make(map[string]*models.TrendPoint)
	for _, sale := range snap.Sales {
		key := periodOf(sale)
		point, ok := buckets[key]
		if !ok {
			point = &models.TrendPoint{Period: key}
			buckets[key] = point
		}
		point.Revenue = point.Revenue.Add(sale.TotalAmount)
		point.Quantity += sale.Quantity
		point.Orders++
	}

	points := make([]models.TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		point.Revenue = point.Revenue.Round(2)
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points, nil
}

// RegionalAnalysis joins sales to customers on customer_id to attach the
// region, then aggregates per region. Sales without a matching customer
// are dropped from this analysis by policy, so regional totals may come
// out below the dataset total.
func (s *TrendService) RegionalAnalysis(snap *models.DatasetSnapshot) ([]models.RegionalMetrics, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}
	if len(snap.Customers) == 0 {
		return nil, utils.NewMissingDataError("customers table is absent or empty")
	}

	regionOf := make(map[string]string, len(snap.Customers))
	for _, customer := range snap.Customers {
		regionOf[customer.CustomerID] = customer.Region
	}

	type regionAgg struct {
		revenue   decimal.Decimal
		orders    int
		customers map[string]struct{}
	}
	buckets := make(map[string]*regionAgg)
	dropped := 0
	for _, sale := range snap.Sales {
		region, ok := regionOf[sale.CustomerID]
		if !ok {
			dropped++
			continue
		}
		agg, ok := buckets[region]
		if !ok {
			agg = &regionAgg{customers: make(map[string]struct{})}
			buckets[region] = agg
		}
		agg.revenue = agg.revenue.Add(sale.TotalAmount)
		agg.orders++
		agg.customers[sale.CustomerID] = struct{}{}
	}
	if dropped > 0 && s.logger != nil {
		s.logger.WithField("dropped_sales", dropped).Debug("regional analysis dropped sales with unknown customer_id")
	}

	metrics := make([]models.RegionalMetrics, 0, len(buckets))
	for region, agg := range buckets {
		orderCount := decimal.NewFromInt(int64(agg.orders))
		customerCount := decimal.NewFromInt(int64(len(agg.customers)))
		metrics = append(metrics, models.RegionalMetrics{
			Region:             region,
			TotalRevenue:       agg.revenue.Round(2),
			AvgOrderValue:      agg.revenue.Div(orderCount).Round(2),
			TotalOrders:        agg.orders,
			UniqueCustomers:    len(agg.customers),
			RevenuePerCustomer: agg.revenue.Div(customerCount).Round(2),
		})
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Region < metrics[j].Region })
	return metrics, nil
}

// ProductAnalysis aggregates sales per product, joins catalog metadata,
// and derives profit figures, sorted by revenue descending.
func (s *TrendService) ProductAnalysis(snap *models.DatasetSnapshot) ([]models.ProductPerformance, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	catalog := make(map[string]models.ProductRecord, len(snap.Products))
	for _, product := range snap.Products {
		catalog[product.ProductID] = product
	}

	type productAgg struct {
		revenue  decimal.Decimal
		quantity int
		sales    int
	}
	buckets := make(map[string]*productAgg)
	for _, sale := range snap.Sales {
		agg, ok := buckets[sale.ProductID]
		if !ok {
			agg = &productAgg{}
			buckets[sale.ProductID] = agg
		}
		agg.revenue = agg.revenue.Add(sale.TotalAmount)
		agg.quantity += sale.Quantity
		agg.sales++
	}

	performance := make([]models.ProductPerformance, 0, len(buckets))
	for productID, agg := range buckets {
		perf := models.ProductPerformance{
			ProductID:     productID,
			TotalRevenue:  agg.revenue.Round(2),
			AvgSaleAmount: agg.revenue.Div(decimal.NewFromInt(int64(agg.sales))).Round(2),
			TotalQuantity: agg.quantity,
			TotalSales:    agg.sales,
		}
		if product, ok := catalog[productID]; ok {
			perf.Name = product.Name
			perf.Category = product.Category
			perf.UnitPrice = product.UnitPrice
			perf.Cost = product.Cost

			profit := agg.revenue.Sub(product.Cost.Mul(decimal.NewFromInt(int64(agg.quantity)))).Round(2)
			perf.TotalProfit = &profit
			if agg.revenue.IsPositive() {
				margin, _ := profit.Div(agg.revenue).Mul(decimal.NewFromInt(100)).Round(2).Float64()
				perf.ProfitMargin = &margin
			}
		}
		performance = append(performance, perf)
	}

	sort.Slice(performance, func(i, j int) bool {
		cmp := performance[i].TotalRevenue.Cmp(performance[j].TotalRevenue)
		if cmp != 0 {
			return cmp > 0
		}
		return performance[i].ProductID < performance[j].ProductID
	})
	return performance, nil
}

// CustomerAnalysis computes per-customer purchase metrics and groups them
// by segment and region.
func (s *TrendService) CustomerAnalysis(snap *models.DatasetSnapshot) (*models.CustomerAnalysis, error) {
	if !snap.HasSales() {
		return nil, utils.NewMissingDataError("sales table is absent or empty")
	}

	records := make(map[string]models.CustomerRecord, len(snap.Customers))
	for _, customer := range snap.Customers {
		records[customer.CustomerID] = customer
	}

	type customerAgg struct {
		metrics models.CustomerMetrics
		seen    bool
	}
	buckets := make(map[string]*customerAgg)
	for _, sale := range snap.Sales {
		agg, ok := buckets[sale.CustomerID]
		if !ok {
			agg = &customerAgg{}
			agg.metrics.CustomerID = sale.CustomerID
			buckets[sale.CustomerID] = agg
		}
		m := &agg.metrics
		m.TotalSpent = m.TotalSpent.Add(sale.TotalAmount)
		m.OrderCount++
		if !agg.seen || sale.Date.Before(m.FirstPurchase) {
			m.FirstPurchase = sale.Date
		}
		if !agg.seen || sale.Date.After(m.LastPurchase) {
			m.LastPurchase = sale.Date
		}
		agg.seen = true
	}

	customers := make([]models.CustomerMetrics, 0, len(buckets))
	for customerID, agg := range buckets {
		m := agg.metrics
		m.AvgOrderValue = m.TotalSpent.Div(decimal.NewFromInt(int64(m.OrderCount))).Round(2)
		m.TotalSpent = m.TotalSpent.Round(2)
		m.LifetimeDays = int(m.LastPurchase.Sub(m.FirstPurchase).Hours() / 24)
		if record, ok := records[customerID]; ok {
			m.Name = record.Name
			m.Region = record.Region
			m.Segment = record.Segment
		}
		customers = append(customers, m)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].CustomerID < customers[j].CustomerID })

	return &models.CustomerAnalysis{
		Customers: customers,
		BySegment: groupBySegment(customers),
		ByRegion:  groupByRegion(customers),
	}, nil
}

func groupBySegment(customers []models.CustomerMetrics) map[string]models.SegmentStats {
	type agg struct {
		spent    decimal.Decimal
		orders   int
		lifetime int
		count    int
	}
	buckets := make(map[string]*agg)
	for _, m := range customers {
		a, ok := buckets[m.Segment]
		if !ok {
			a = &agg{}
			buckets[m.Segment] = a
		}
		a.spent = a.spent.Add(m.TotalSpent)
		a.orders += m.OrderCount
		a.lifetime += m.LifetimeDays
		a.count++
	}

	stats := make(map[string]models.SegmentStats, len(buckets))
	for segment, a := range buckets {
		count := decimal.NewFromInt(int64(a.count))
		stats[segment] = models.SegmentStats{
			TotalSpent:      a.spent.Round(2),
			AvgSpent:        a.spent.Div(count).Round(2),
			AvgOrders:       float64(a.orders) / float64(a.count),
			AvgLifetimeDays: float64(a.lifetime) / float64(a.count),
			Customers:       a.count,
		}
	}
	return stats
}

func groupByRegion(customers []models.CustomerMetrics) map[string]models.RegionCustomerStats {
	type agg struct {
		spent  decimal.Decimal
		orders int
		count  int
	}
	buckets := make(map[string]*agg)
	for _, m := range customers {
		a, ok := buckets[m.Region]
		if !ok {
			a = &agg{}
			buckets[m.Region] = a
		}
		a.spent = a.spent.Add(m.TotalSpent)
		a.orders += m.OrderCount
		a.count++
	}

	stats := make(map[string]models.RegionCustomerStats, len(buckets))
	for region, a := range buckets {
		count := decimal.NewFromInt(int64(a.count))
		stats[region] = models.RegionCustomerStats{
			TotalSpent: a.spent.Round(2),
			AvgSpent:   a.spent.Div(count).Round(2),
			AvgOrders:  float64(a.orders) / float64(a.count),
			Customers:  a.count,
		}
	}
	return stats
}
