package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleAnomaly flags a single sale whose amount exceeds the statistical
// threshold. ZScore is the distance from the mean in standard deviations.
type SaleAnomaly struct {
	SaleID         string          `json:"sale_id"`
	Date           time.Time       `json:"date"`
	CustomerID     string          `json:"customer_id,omitempty"`
	ProductID      string          `json:"product_id,omitempty"`
	ObservedAmount decimal.Decimal `json:"observed_amount"`
	ZScore         float64         `json:"z_score"`
}

// AmountOutlierReport is the row-level threshold rule output.
type AmountOutlierReport struct {
	Mean        float64       `json:"mean"`
	StdDev      float64       `json:"std_dev"`
	Threshold   float64       `json:"threshold"`
	RowsScanned int           `json:"rows_scanned"`
	Anomalies   []SaleAnomaly `json:"anomalies"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// DailyAnomaly carries the isolation score for one day of aggregates.
// Lower scores indicate more isolated, more anomalous days.
type DailyAnomaly struct {
	Date      time.Time       `json:"date"`
	Revenue   decimal.Decimal `json:"revenue"`
	Quantity  int             `json:"quantity"`
	Orders    int             `json:"orders"`
	Score     float64         `json:"anomaly_score"`
	IsAnomaly bool            `json:"is_anomaly"`
}

// DailyAnomalyReport is the multivariate detector output. Every scored day
// is listed; roughly the contamination fraction is labelled anomalous.
type DailyAnomalyReport struct {
	Days         []DailyAnomaly `json:"days"`
	AnomalyCount int            `json:"anomaly_count"`
	TotalDays    int            `json:"total_days"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
