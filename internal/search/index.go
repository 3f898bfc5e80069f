package search

import (
	"strings"
	"time"

	"larder/internal/models"
	"larder/internal/store"
)

// Filters narrows search results beyond the free-text query. Zero-value
// fields are ignored.
type Filters struct {
	Storage models.StorageType `json:"storage,omitempty"`
	// ExpiringWithinDays keeps only stock expiring inside the window
	ExpiringWithinDays int `json:"expiring_within_days,omitempty"`
}

// Index produces filtered views over the inventory store. It holds no state
// of its own; every call re-derives its answer from the store, so results
// can never go stale after a committed move.
type Index struct {
	inv *store.Inventory
}

// NewIndex creates a search index over an inventory store
func NewIndex(inv *store.Inventory) *Index {
	return &Index{inv: inv}
}

// Storables returns catalog entries whose name contains the query,
// case-insensitively, in catalog order. An empty query with no filters
// returns the full catalog.
func (ix *Index) Storables(query string, f Filters) []models.Storable {
	query = strings.ToLower(query)

	var out []models.Storable
	for _, s := range ix.inv.Storables() {
		if query != "" && !strings.Contains(strings.ToLower(s.DisplayName()), query) {
			continue
		}
		if f.Storage != "" && s.RequiredStorage() != f.Storage {
			continue
		}
		out = append(out, s)
	}
	return out
}

// StockItems returns stock whose storable name matches the query, narrowed
// by the filters, in receipt order. The expiry filter compares each item's
// computed expiry against now plus the window.
func (ix *Index) StockItems(query string, f Filters) []models.StockItem {
	query = strings.ToLower(query)
	now := ix.inv.Now()
	window := time.Duration(f.ExpiringWithinDays) * 24 * time.Hour

	var out []models.StockItem
	for _, item := range ix.inv.StockItems(store.StockFilter{}) {
		storable, err := ix.inv.Storable(item.StorableID)
		if err != nil {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(storable.DisplayName()), query) {
			continue
		}
		if f.Storage != "" && storable.RequiredStorage() != f.Storage {
			continue
		}
		if f.ExpiringWithinDays > 0 && !item.ExpiresWithin(now, window) {
			continue
		}
		out = append(out, item)
	}
	return out
}
