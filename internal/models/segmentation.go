package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Named RFM segments, ordered from best to worst.
const (
	SegmentChampions          = "Champions"
	SegmentLoyalCustomers     = "Loyal Customers"
	SegmentPotentialLoyalists = "Potential Loyalists"
	SegmentAtRisk             = "At Risk"
	SegmentLostCustomers      = "Lost Customers"
)

// CustomerSegment is the RFM scoring result for one customer. Recency is
// measured in days from the dataset's maximum sale date, not wall-clock.
type CustomerSegment struct {
	CustomerID     string          `json:"customer_id"`
	Name           string          `json:"name,omitempty"`
	Region         string          `json:"region,omitempty"`
	Recency        int             `json:"recency"`
	Frequency      int             `json:"frequency"`
	Monetary       decimal.Decimal `json:"monetary"`
	RecencyScore   int             `json:"recency_score"`
	FrequencyScore int             `json:"frequency_score"`
	MonetaryScore  int             `json:"monetary_score"`
	RFMScore       int             `json:"rfm_score"`
	Segment        string          `json:"segment"`
}

// SegmentationResult bundles per-customer scores with segment counts.
type SegmentationResult struct {
	Customers     []CustomerSegment `json:"customers"`
	SegmentCounts map[string]int    `json:"segment_counts"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
