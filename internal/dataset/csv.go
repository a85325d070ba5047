package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02.01.2006",
}

// LoadResult reports the outcome of a CSV import. Malformed rows are
// skipped and counted rather than failing the whole upload.
type LoadResult struct {
	Sales       []models.SaleRecord
	RowsRead    int
	RowsSkipped int
}

// LoadSalesCSV parses sales rows from r. Header names are matched
// case-insensitively; an "amount" column is used as total_amount when no
// total_amount column exists. A date column and an amount column are
// required; everything else is optional.
func LoadSalesCSV(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, utils.NewMissingDataError("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	dateCol, ok := columns["date"]
	if !ok {
		return nil, utils.NewMissingDataError("csv has no date column")
	}
	amountCol, ok := columns["total_amount"]
	if !ok {
		// Fall back to a generic amount column.
		amountCol, ok = columns["amount"]
		if !ok {
			return nil, utils.NewMissingDataError("csv has no total_amount or amount column")
		}
	}

	result := &LoadResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		result.RowsRead++

		date, ok := parseDate(field(record, dateCol))
		if !ok {
			result.RowsSkipped++
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(field(record, amountCol)))
		if err != nil || amount.IsNegative() {
			result.RowsSkipped++
			continue
		}

		sale := models.SaleRecord{
			Date:        date,
			TotalAmount: amount,
			Quantity:    1,
		}
		if col, ok := columns["sale_id"]; ok {
			sale.SaleID = strings.TrimSpace(field(record, col))
		}
		if sale.SaleID == "" {
			sale.SaleID = fmt.Sprintf("S%05d", result.RowsRead)
		}
		if col, ok := columns["product_id"]; ok {
			sale.ProductID = strings.TrimSpace(field(record, col))
		} else if col, ok := columns["product"]; ok {
			sale.ProductID = strings.TrimSpace(field(record, col))
		}
		if col, ok := columns["customer_id"]; ok {
			sale.CustomerID = strings.TrimSpace(field(record, col))
		} else if col, ok := columns["customer"]; ok {
			sale.CustomerID = strings.TrimSpace(field(record, col))
		}
		if col, ok := columns["region"]; ok {
			sale.Region = strings.TrimSpace(field(record, col))
		}
		if col, ok := columns["unit"]; ok {
			sale.Unit = strings.TrimSpace(field(record, col))
		}
		if col, ok := columns["quantity"]; ok {
			if qty, err := strconv.Atoi(strings.TrimSpace(field(record, col))); err == nil && qty > 0 {
				sale.Quantity = qty
			}
		}

		result.Sales = append(result.Sales, sale)
	}

	if len(result.Sales) == 0 {
		return nil, utils.NewMissingDataError("csv contained no usable sales rows")
	}
	return result, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Midnight(t), true
		}
	}
	return time.Time{}, false
}
