package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

func TestTrendService_DailyAggregates(t *testing.T) {
	service := NewTrendService(testLogger())

	snap := snapshotOf(
		sale("S1", "2024-01-02", "C1", "P1", 2, 100),
		sale("S2", "2024-01-01", "C1", "P1", 1, 50),
		sale("S3", "2024-01-02", "C2", "P2", 3, 200),
	)

	days, err := service.DailyAggregates(snap)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, day("2024-01-01"), days[0].Date)
	assert.Equal(t, "50", days[0].Revenue.String())
	assert.Equal(t, 1, days[0].Orders)

	assert.Equal(t, day("2024-01-02"), days[1].Date)
	assert.Equal(t, "300", days[1].Revenue.String())
	assert.Equal(t, 5, days[1].Quantity)
	assert.Equal(t, 2, days[1].Orders)
}

func TestTrendService_PeriodLabels(t *testing.T) {
	service := NewTrendService(testLogger())

	// 2023-01-01 is a Sunday; ISO weeks start Monday, so it belongs to
	// the last week of 2022.
	snap := snapshotOf(
		sale("S1", "2023-01-01", "C1", "P1", 1, 100),
		sale("S2", "2023-01-02", "C1", "P1", 1, 100),
	)

	weekly, err := service.WeeklyTrend(snap)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, "2022-W52", weekly[0].Period)
	assert.Equal(t, "2023-W01", weekly[1].Period)

	monthly, err := service.MonthlyTrend(snap)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2023-01", monthly[0].Period)
	assert.Equal(t, "200", monthly[0].Revenue.String())

	daily, err := service.DailyTrend(snap)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "2023-01-01", daily[0].Period)
}

func TestTrendService_DailyTrendMatchesKPITotal(t *testing.T) {
	trends := NewTrendService(testLogger())
	kpis := NewKPIService(config.DefaultAnalytics(), testLogger())
	snap := dataset.GenerateSample(45, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 11)

	daily, err := trends.DailyTrend(snap)
	require.NoError(t, err)
	report, err := kpis.CalculateKPIs(snap)
	require.NoError(t, err)

	total := decimal.Zero
	for _, point := range daily {
		total = total.Add(point.Revenue)
	}
	assert.True(t, total.Equal(report.TotalRevenue),
		"daily trend sum %s should equal KPI total %s", total, report.TotalRevenue)
}

func TestTrendService_RegionalAnalysisDropsUnknownCustomers(t *testing.T) {
	service := NewTrendService(testLogger())

	snap := &models.DatasetSnapshot{
		Sales: []models.SaleRecord{
			sale("S1", "2024-01-01", "C1", "P1", 1, 100),
			sale("S2", "2024-01-02", "C1", "P1", 1, 200),
			sale("S3", "2024-01-03", "C2", "P1", 1, 300),
			sale("S4", "2024-01-04", "CX", "P1", 1, 999),
		},
		Customers: []models.CustomerRecord{
			{CustomerID: "C1", Region: "North"},
			{CustomerID: "C2", Region: "South"},
		},
	}

	metrics, err := service.RegionalAnalysis(snap)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	assert.Equal(t, "North", metrics[0].Region)
	assert.Equal(t, "300", metrics[0].TotalRevenue.String())
	assert.Equal(t, 2, metrics[0].TotalOrders)
	assert.Equal(t, 1, metrics[0].UniqueCustomers)
	assert.Equal(t, "150", metrics[0].AvgOrderValue.String())

	assert.Equal(t, "South", metrics[1].Region)
	assert.Equal(t, "300", metrics[1].TotalRevenue.String())

	// The unmatched sale is excluded, so the regional sum stays below
	// the dataset total.
	regional := decimal.Zero
	for _, m := range metrics {
		regional = regional.Add(m.TotalRevenue)
	}
	datasetTotal := decimal.Zero
	for _, s := range snap.Sales {
		datasetTotal = datasetTotal.Add(s.TotalAmount)
	}
	assert.True(t, regional.LessThan(datasetTotal))
}

func TestTrendService_RegionalAnalysisRequiresCustomers(t *testing.T) {
	service := NewTrendService(testLogger())

	snap := snapshotOf(sale("S1", "2024-01-01", "C1", "P1", 1, 100))
	_, err := service.RegionalAnalysis(snap)
	require.Error(t, err)
	assert.True(t, utils.IsMissingData(err))
}

func TestTrendService_ProductAnalysis(t *testing.T) {
	service := NewTrendService(testLogger())

	snap := &models.DatasetSnapshot{
		Sales: []models.SaleRecord{
			sale("S1", "2024-01-01", "C1", "P1", 2, 500),
			sale("S2", "2024-01-02", "C1", "P1", 1, 250),
			sale("S3", "2024-01-03", "C1", "P9", 1, 100),
		},
		Products: []models.ProductRecord{
			{
				ProductID: "P1",
				Name:      "Widget",
				Category:  "Electronics",
				UnitPrice: decimal.NewFromInt(250),
				Cost:      decimal.NewFromInt(100),
			},
		},
	}

	performance, err := service.ProductAnalysis(snap)
	require.NoError(t, err)
	require.Len(t, performance, 2)

	widget := performance[0]
	assert.Equal(t, "P1", widget.ProductID)
	assert.Equal(t, "Widget", widget.Name)
	assert.Equal(t, "750", widget.TotalRevenue.String())
	assert.Equal(t, 3, widget.TotalQuantity)
	require.NotNil(t, widget.TotalProfit)
	// 750 revenue - 3 units * 100 cost
	assert.Equal(t, "450", widget.TotalProfit.String())
	require.NotNil(t, widget.ProfitMargin)
	assert.InDelta(t, 60.0, *widget.ProfitMargin, 1e-9)

	// No catalog entry, so no profit figures.
	unknown := performance[1]
	assert.Equal(t, "P9", unknown.ProductID)
	assert.Nil(t, unknown.TotalProfit)
	assert.Nil(t, unknown.ProfitMargin)
}

func TestTrendService_CustomerAnalysis(t *testing.T) {
	service := NewTrendService(testLogger())

	snap := &models.DatasetSnapshot{
		Sales: []models.SaleRecord{
			sale("S1", "2024-01-01", "C1", "P1", 1, 100),
			sale("S2", "2024-01-11", "C1", "P1", 1, 300),
			sale("S3", "2024-01-05", "C2", "P1", 1, 50),
		},
		Customers: []models.CustomerRecord{
			{CustomerID: "C1", Name: "Alice", Region: "North", Segment: "Retail"},
			{CustomerID: "C2", Name: "Bob", Region: "South", Segment: "Retail"},
		},
	}

	analysis, err := service.CustomerAnalysis(snap)
	require.NoError(t, err)
	require.Len(t, analysis.Customers, 2)

	alice := analysis.Customers[0]
	assert.Equal(t, "C1", alice.CustomerID)
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "400", alice.TotalSpent.String())
	assert.Equal(t, "200", alice.AvgOrderValue.String())
	assert.Equal(t, 2, alice.OrderCount)
	assert.Equal(t, day("2024-01-01"), alice.FirstPurchase)
	assert.Equal(t, day("2024-01-11"), alice.LastPurchase)
	assert.Equal(t, 10, alice.LifetimeDays)

	retail, ok := analysis.BySegment["Retail"]
	require.True(t, ok)
	assert.Equal(t, 2, retail.Customers)
	assert.Equal(t, "450", retail.TotalSpent.String())
	assert.InDelta(t, 1.5, retail.AvgOrders, 1e-9)

	north, ok := analysis.ByRegion["North"]
	require.True(t, ok)
	assert.Equal(t, 1, north.Customers)
	assert.Equal(t, "400", north.TotalSpent.String())
}
