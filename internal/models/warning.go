package models

// WarningKind represents the class of an inventory warning
type WarningKind string

const (
	// Warning kinds
	WarningExpiringSoon    WarningKind = "expiring_soon"
	WarningExpired         WarningKind = "expired"
	WarningStorageMismatch WarningKind = "storage_mismatch"
	WarningUnplaced        WarningKind = "unplaced"
)

// Warning represents a condition on a stock item that staff should act on.
// Warnings never block operations; they are derived from store state and
// recomputed on demand.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	StockItemID string      `json:"stock_item_id"`
	StorableID  string      `json:"storable_id"`
	LocationID  string      `json:"location_id,omitempty"`
	Message     string      `json:"message"`
}
