package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSummary is the compact scalar summary consumed by dashboards and by
// the insight provider prompt.
type DataSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
}

// ProductRevenue pairs a product with its aggregate revenue.
type ProductRevenue struct {
	ProductID string          `json:"product_id"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// KPIReport bundles the headline business indicators. Trailing windows are
// relative to the maximum observed sale date.
type KPIReport struct {
	TotalRevenue       decimal.Decimal  `json:"total_revenue"`
	Revenue30d         decimal.Decimal  `json:"revenue_30d"`
	Revenue90d         decimal.Decimal  `json:"revenue_90d"`
	RevenueGrowthRate  float64          `json:"revenue_growth_rate"`
	TotalCustomers     int              `json:"total_customers"`
	ActiveCustomers30d int              `json:"active_customers_30d"`
	TotalOrders        int              `json:"total_orders"`
	AvgOrderValue      decimal.Decimal  `json:"avg_order_value"`
	TopProducts        []ProductRevenue `json:"top_products"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// TrendPoint is one bucket of a time-aggregated revenue series. Period is
// "2024-01-15" for daily, "2024-W03" for ISO weekly, "2024-01" for monthly.
type TrendPoint struct {
	Period   string          `json:"period"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int             `json:"quantity"`
	Orders   int             `json:"orders"`
}

// DailyAggregate is the per-calendar-day rollup that feeds forecasting and
// anomaly detection. Recomputed from the snapshot on every request.
type DailyAggregate struct {
	Date     time.Time       `json:"date"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int             `json:"quantity"`
	Orders   int             `json:"orders"`
}

// RegionalMetrics aggregates sales joined to customer regions. Sales whose
// customer_id has no matching customer are excluded by policy.
type RegionalMetrics struct {
	Region             string          `json:"region"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	AvgOrderValue      decimal.Decimal `json:"avg_order_value"`
	TotalOrders        int             `json:"total_orders"`
	UniqueCustomers    int             `json:"unique_customers"`
	RevenuePerCustomer decimal.Decimal `json:"revenue_per_customer"`
}

// ProductPerformance aggregates sales per product joined to catalog
// metadata. Profit and margin are nil when the product is not in the
// catalog; margin is also nil when revenue is zero.
type ProductPerformance struct {
	ProductID     string           `json:"product_id"`
	Name          string           `json:"name,omitempty"`
	Category      string           `json:"category,omitempty"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	AvgSaleAmount decimal.Decimal  `json:"avg_sale_amount"`
	TotalQuantity int              `json:"total_quantity"`
	TotalSales    int              `json:"total_sales"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	Cost          decimal.Decimal  `json:"cost"`
	TotalProfit   *decimal.Decimal `json:"total_profit,omitempty"`
	ProfitMargin  *float64         `json:"profit_margin,omitempty"`
}

// CustomerMetrics summarizes one customer's purchase history.
type CustomerMetrics struct {
	CustomerID    string          `json:"customer_id"`
	Name          string          `json:"name,omitempty"`
	Region        string          `json:"region,omitempty"`
	Segment       string          `json:"segment,omitempty"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	OrderCount    int             `json:"order_count"`
	FirstPurchase time.Time       `json:"first_purchase"`
	LastPurchase  time.Time       `json:"last_purchase"`
	LifetimeDays  int             `json:"lifetime_days"`
}

// SegmentStats summarizes customer metrics grouped by segment.
type SegmentStats struct {
	TotalSpent      decimal.Decimal `json:"total_spent"`
	AvgSpent        decimal.Decimal `json:"avg_spent"`
	AvgOrders       float64         `json:"avg_orders"`
	AvgLifetimeDays float64         `json:"avg_lifetime_days"`
	Customers       int             `json:"customers"`
}

// RegionCustomerStats summarizes customer metrics grouped by region.
type RegionCustomerStats struct {
	TotalSpent decimal.Decimal `json:"total_spent"`
	AvgSpent   decimal.Decimal `json:"avg_spent"`
	AvgOrders  float64         `json:"avg_orders"`
	Customers  int             `json:"customers"`
}

// CustomerAnalysis is the full customer behavior breakdown.
type CustomerAnalysis struct {
	Customers []CustomerMetrics              `json:"customers"`
	BySegment map[string]SegmentStats        `json:"by_segment"`
	ByRegion  map[string]RegionCustomerStats `json:"by_region"`
}
