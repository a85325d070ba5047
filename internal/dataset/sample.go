package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightlab/insightpilot-go/internal/models"
)

// DefaultSampleDays is the span of the generated sample dataset.
const DefaultSampleDays = 90

var sampleRegions = []string{"North", "South", "East", "West"}

var sampleCategories = []string{"Electronics", "Apparel", "Home", "Grocery", "Outdoors"}

// GenerateSample builds a deterministic synthetic dataset spanning the
// given number of days ending at endDate. The same seed always produces
// the same dataset, which keeps demos and tests reproducible.
func GenerateSample(days int, endDate time.Time, seed int64) *models.DatasetSnapshot {
	if days <= 0 {
		days = DefaultSampleDays
	}
	rng := rand.New(rand.NewSource(seed))
	endDate = Midnight(endDate)

	products := make([]models.ProductRecord, 0, 5)
	for i := 1; i <= 5; i++ {
		price := decimal.NewFromFloat(20 + rng.Float64()*280).Round(2)
		products = append(products, models.ProductRecord{
			ProductID: fmt.Sprintf("P%03d", i),
			Name:      fmt.Sprintf("Product %d", i),
			Category:  sampleCategories[(i-1)%len(sampleCategories)],
			UnitPrice: price,
			Cost:      price.Mul(decimal.NewFromFloat(0.4 + rng.Float64()*0.4)).Round(2),
		})
	}

	customers := make([]models.CustomerRecord, 0, 10)
	for i := 1; i <= 10; i++ {
		customers = append(customers, models.CustomerRecord{
			CustomerID: fmt.Sprintf("C%03d", i),
			Name:       fmt.Sprintf("Customer %d", i),
			Region:     sampleRegions[rng.Intn(len(sampleRegions))],
			SignupDate: endDate.AddDate(0, 0, -days-rng.Intn(180)),
		})
	}

	var sales []models.SaleRecord
	saleID := 0
	for offset := days - 1; offset >= 0; offset-- {
		day := endDate.AddDate(0, 0, -offset)
		orders := 3 + rng.Intn(5)
		for i := 0; i < orders; i++ {
			saleID++
			product := products[rng.Intn(len(products))]
			customer := customers[rng.Intn(len(customers))]
			quantity := 1 + rng.Intn(9)
			amount := decimal.NewFromFloat(50 + rng.Float64()*1450).Round(2)
			sales = append(sales, models.SaleRecord{
				SaleID:      fmt.Sprintf("S%05d", saleID),
				Date:        day,
				ProductID:   product.ProductID,
				CustomerID:  customer.CustomerID,
				Region:      customer.Region,
				Quantity:    quantity,
				Unit:        "unit",
				TotalAmount: amount.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
			})
		}
	}

	regions := make([]models.RegionRecord, 0, len(sampleRegions))
	for _, name := range sampleRegions {
		regions = append(regions, models.RegionRecord{Name: name})
	}

	expenses := make([]models.ExpenseRecord, 0, 30)
	for offset := 0; offset < 30 && offset < days; offset++ {
		expenses = append(expenses, models.ExpenseRecord{
			Date:   endDate.AddDate(0, 0, -offset),
			Amount: decimal.NewFromFloat(200 + rng.Float64()*1800).Round(2),
		})
	}

	return &models.DatasetSnapshot{
		Sales:     sales,
		Customers: customers,
		Products:  products,
		Regions:   regions,
		Expenses:  expenses,
	}
}

// Midnight truncates t to its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
