package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord represents a single sales transaction. Dates carry no time
// component; they are normalized to midnight UTC on load.
type SaleRecord struct {
	SaleID      string          `json:"sale_id"`
	Date        time.Time       `json:"date"`
	ProductID   string          `json:"product_id"`
	CustomerID  string          `json:"customer_id"`
	Region      string          `json:"region"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CustomerRecord represents a customer. Segment is filled in by the
// segmentation engine via a derived snapshot, never in place.
type CustomerRecord struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Region     string    `json:"region"`
	Segment    string    `json:"segment,omitempty"`
	SignupDate time.Time `json:"signup_date,omitempty"`
}

// ProductRecord represents a product in the catalog. Cost above unit price
// is tolerated; profit margins may come out negative.
type ProductRecord struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Cost      decimal.Decimal `json:"cost"`
}

// ExpenseRecord represents a dated business expense.
type ExpenseRecord struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// RegionRecord names a sales region.
type RegionRecord struct {
	Name string `json:"name"`
}

// DatasetSnapshot is an immutable bundle of the relational tables. Engines
// receive a reference and may only return new derived structures. Replacing
// the data (e.g. after an upload) produces a snapshot with a new Version.
type DatasetSnapshot struct {
	Version   string           `json:"version"`
	LoadedAt  time.Time        `json:"loaded_at"`
	Sales     []SaleRecord     `json:"sales"`
	Customers []CustomerRecord `json:"customers"`
	Products  []ProductRecord  `json:"products"`
	Regions   []RegionRecord   `json:"regions"`
	Expenses  []ExpenseRecord  `json:"expenses"`
}

// HasSales reports whether the snapshot carries at least one sale row.
func (s *DatasetSnapshot) HasSales() bool {
	return s != nil && len(s.Sales) > 0
}

// MaxSaleDate returns the latest observed sale date. All trailing windows
// are anchored here, not at wall-clock time.
func (s *DatasetSnapshot) MaxSaleDate() (time.Time, bool) {
	if !s.HasSales() {
		return time.Time{}, false
	}
	maxDate := s.Sales[0].Date
	for _, sale := range s.Sales[1:] {
		if sale.Date.After(maxDate) {
			maxDate = sale.Date
		}
	}
	return maxDate, true
}

// MinSaleDate returns the earliest observed sale date.
func (s *DatasetSnapshot) MinSaleDate() (time.Time, bool) {
	if !s.HasSales() {
		return time.Time{}, false
	}
	minDate := s.Sales[0].Date
	for _, sale := range s.Sales[1:] {
		if sale.Date.Before(minDate) {
			minDate = sale.Date
		}
	}
	return minDate, true
}
