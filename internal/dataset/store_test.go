package dataset

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightlab/insightpilot-go/internal/models"
)

func TestStoreReplaceAssignsVersion(t *testing.T) {
	store := NewStore()
	assert.Nil(t, store.Current())

	snap := store.Replace(&models.DatasetSnapshot{})
	assert.NotEmpty(t, snap.Version)
	assert.False(t, snap.LoadedAt.IsZero())
	assert.Same(t, snap, store.Current())

	next := store.Replace(&models.DatasetSnapshot{})
	assert.NotEqual(t, snap.Version, next.Version)
}

func TestWithSalesCarriesOtherTables(t *testing.T) {
	base := GenerateSample(10, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 42)
	base.Version = "v1"

	sales := []models.SaleRecord{{
		SaleID:      "S00001",
		Date:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(100),
		Quantity:    1,
	}}
	derived := WithSales(base, sales)

	assert.NotEqual(t, base.Version, derived.Version)
	assert.Len(t, derived.Sales, 1)
	assert.Equal(t, base.Customers, derived.Customers)
	assert.Equal(t, base.Products, derived.Products)
	// Base snapshot untouched.
	assert.Greater(t, len(base.Sales), 1)
}

func TestWithSegmentsDoesNotMutateBase(t *testing.T) {
	base := &models.DatasetSnapshot{
		Version: "v1",
		Customers: []models.CustomerRecord{
			{CustomerID: "C001", Name: "Alpha"},
			{CustomerID: "C002", Name: "Beta", Segment: "old"},
		},
	}
	result := &models.SegmentationResult{
		Customers: []models.CustomerSegment{
			{CustomerID: "C001", Segment: models.SegmentChampions},
		},
	}

	derived := WithSegments(base, result)
	require.NotNil(t, derived)
	assert.Equal(t, models.SegmentChampions, derived.Customers[0].Segment)
	assert.Equal(t, "old", derived.Customers[1].Segment)
	assert.Empty(t, base.Customers[0].Segment, "base snapshot must not be mutated")
	assert.NotEqual(t, base.Version, derived.Version)
}

func TestGenerateSampleDeterministic(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	a := GenerateSample(30, end, 42)
	b := GenerateSample(30, end, 42)

	require.Equal(t, len(a.Sales), len(b.Sales))
	assert.Equal(t, a.Sales, b.Sales)
	assert.Equal(t, a.Products, b.Products)
	assert.Len(t, a.Customers, 10)
	assert.Len(t, a.Products, 5)
	assert.Len(t, a.Regions, 4)

	maxDate, ok := a.MaxSaleDate()
	require.True(t, ok)
	assert.Equal(t, end, maxDate)
	minDate, ok := a.MinSaleDate()
	require.True(t, ok)
	assert.Equal(t, end.AddDate(0, 0, -29), minDate)

	for _, sale := range a.Sales {
		assert.False(t, sale.TotalAmount.IsNegative())
		assert.Greater(t, sale.Quantity, 0)
	}
}
