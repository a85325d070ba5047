package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insightpilot-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func sale(id string, date string, customerID string, productID string, quantity int, amount float64) models.SaleRecord {
	return models.SaleRecord{
		SaleID:      id,
		Date:        day(date),
		ProductID:   productID,
		CustomerID:  customerID,
		Quantity:    quantity,
		Unit:        "unit",
		TotalAmount: decimal.NewFromFloat(amount),
	}
}

func snapshotOf(sales ...models.SaleRecord) *models.DatasetSnapshot {
	return &models.DatasetSnapshot{Sales: sales}
}
