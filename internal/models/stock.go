package models

import "time"

// StockItem represents one physical unit of a storable sitting somewhere in
// the kitchen. It is created when stock is received and destroyed when the
// stock is consumed or discarded.
type StockItem struct {
	ID         string     `json:"id"`
	StorableID string     `json:"storable_id"`
	Quantity   float64    `json:"quantity"`
	ReceivedAt time.Time  `json:"received_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	// LocationID is empty while the item is received but not yet mapped to a
	// storage location. It is mutated only through the placement path.
	LocationID string `json:"location_id,omitempty"`
}

// IsPlaced reports whether the item has been mapped to a storage location
func (s *StockItem) IsPlaced() bool {
	return s.LocationID != ""
}

// IsExpired reports whether the item's expiry has passed at the given time
func (s *StockItem) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// ExpiresWithin reports whether the item expires inside the given window
// starting at now. Already-expired items are not counted.
func (s *StockItem) ExpiresWithin(now time.Time, window time.Duration) bool {
	if s.ExpiresAt == nil || s.IsExpired(now) {
		return false
	}
	return !s.ExpiresAt.After(now.Add(window))
}
