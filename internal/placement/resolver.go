package placement

import (
	"larder/internal/models"
	"larder/internal/store"
)

// MoveResult is the outcome of a committed placement move
type MoveResult struct {
	Item models.StockItem `json:"item"`
	// StorageMismatch is set when the item's storable requires colder
	// storage than the target location provides. The move still commits;
	// the mismatch is surfaced as a warning, never a hard failure.
	StorageMismatch bool `json:"storage_mismatch"`
}

// Notifier receives placement outcomes for user-facing feedback. Calls are
// fire-and-forget; implementations must not block the caller.
type Notifier interface {
	PlacementCommitted(result MoveResult)
	PlacementRejected(stockItemID string, err error)
}

// Resolver decides whether a proposed move is legal and commits it through
// the inventory store. It is the only code path that changes placement.
type Resolver struct {
	inv      *store.Inventory
	notifier Notifier
}

// NewResolver creates a placement resolver over an inventory store
func NewResolver(inv *store.Inventory) *Resolver {
	return &Resolver{inv: inv}
}

// SetNotifier attaches a feedback sink for placement outcomes
func (r *Resolver) SetNotifier(n Notifier) {
	r.notifier = n
}

// Move assigns a stock item to a target location, or unplaces it when
// targetLocationID is empty. Rules:
//
//   - unknown item or location fails with NotFoundError
//   - moving an item to its current location is an idempotent no-op
//   - unplacing always succeeds; capacity only constrains placement
//   - a full target fails with CapacityExceededError and changes nothing
//   - a storage-type mismatch commits anyway and sets the result flag
func (r *Resolver) Move(stockItemID, targetLocationID string) (MoveResult, error) {
	if targetLocationID == "" {
		item, err := r.inv.AssignLocation(stockItemID, "")
		if err != nil {
			r.rejected(stockItemID, err)
			return MoveResult{}, err
		}
		result := MoveResult{Item: item}
		r.committed(result)
		return result, nil
	}

	item, err := r.inv.StockItem(stockItemID)
	if err != nil {
		r.rejected(stockItemID, err)
		return MoveResult{}, err
	}
	storable, err := r.inv.Storable(item.StorableID)
	if err != nil {
		r.rejected(stockItemID, err)
		return MoveResult{}, err
	}
	target, err := r.inv.Location(targetLocationID)
	if err != nil {
		r.rejected(stockItemID, err)
		return MoveResult{}, err
	}

	mismatch := !target.Type.Satisfies(storable.RequiredStorage())

	if targetLocationID == item.LocationID {
		// Already there; report compatibility but commit nothing
		return MoveResult{Item: item, StorageMismatch: mismatch}, nil
	}

	// Capacity is checked and the move committed under one store lock, so
	// the occupancy count can never be stale at commit time
	updated, err := r.inv.AssignLocation(stockItemID, targetLocationID)
	if err != nil {
		r.rejected(stockItemID, err)
		return MoveResult{}, err
	}

	result := MoveResult{Item: updated, StorageMismatch: mismatch}
	r.committed(result)
	return result, nil
}

func (r *Resolver) committed(result MoveResult) {
	if r.notifier != nil {
		r.notifier.PlacementCommitted(result)
	}
}

func (r *Resolver) rejected(stockItemID string, err error) {
	if r.notifier != nil {
		r.notifier.PlacementRejected(stockItemID, err)
	}
}
