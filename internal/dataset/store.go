package dataset

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightlab/insightpilot-go/internal/models"
)

// Store holds the current DatasetSnapshot. Snapshots are immutable; every
// Replace installs a new version, and engines working on an older reference
// keep seeing consistent data.
type Store struct {
	mu       sync.RWMutex
	snapshot *models.DatasetSnapshot
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the current snapshot reference, or nil when no dataset
// has been loaded yet.
func (s *Store) Current() *models.DatasetSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Replace installs snap as the current snapshot, assigning a fresh version
// and load time when the caller left them empty.
func (s *Store) Replace(snap *models.DatasetSnapshot) *models.DatasetSnapshot {
	if snap.Version == "" {
		snap.Version = uuid.NewString()
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now()
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return snap
}

// WithSales derives a new snapshot from base with the sales table replaced.
// The base snapshot is not modified; other tables are carried over.
func WithSales(base *models.DatasetSnapshot, sales []models.SaleRecord) *models.DatasetSnapshot {
	snap := &models.DatasetSnapshot{
		Version:  uuid.NewString(),
		LoadedAt: time.Now(),
		Sales:    sales,
	}
	if base != nil {
		snap.Customers = base.Customers
		snap.Products = base.Products
		snap.Regions = base.Regions
		snap.Expenses = base.Expenses
	}
	return snap
}

// WithSegments derives a new snapshot from base with customer segments
// filled in from a segmentation result. Customers absent from the result
// keep their previous segment.
func WithSegments(base *models.DatasetSnapshot, result *models.SegmentationResult) *models.DatasetSnapshot {
	if base == nil {
		return nil
	}

	segments := make(map[string]string, len(result.Customers))
	for _, cs := range result.Customers {
		segments[cs.CustomerID] = cs.Segment
	}

	customers := make([]models.CustomerRecord, len(base.Customers))
	copy(customers, base.Customers)
	for i := range customers {
		if segment, ok := segments[customers[i].CustomerID]; ok {
			customers[i].Segment = segment
		}
	}

	return &models.DatasetSnapshot{
		Version:   uuid.NewString(),
		LoadedAt:  time.Now(),
		Sales:     base.Sales,
		Customers: customers,
		Products:  base.Products,
		Regions:   base.Regions,
		Expenses:  base.Expenses,
	}
}
