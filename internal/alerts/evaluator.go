package alerts

import (
	"fmt"
	"time"

	"larder/internal/models"
	"larder/internal/store"
)

// Policy configures warning thresholds
type Policy struct {
	// ExpiryWarning is how far ahead of expiry an item starts warning
	ExpiryWarning time.Duration
	// UnplacedGrace is how long a received item may sit unmapped before it
	// warns. Zero warns immediately.
	UnplacedGrace time.Duration
}

// DefaultPolicy returns the standard thresholds
func DefaultPolicy() Policy {
	return Policy{
		ExpiryWarning: 3 * 24 * time.Hour,
	}
}

// Evaluator derives warnings from current store state. It is a pure
// function of the store: no side effects, safe to recompute on every
// request, and a fresh scan always reflects the latest committed moves.
type Evaluator struct {
	inv    *store.Inventory
	policy Policy
}

// NewEvaluator creates an alert evaluator over an inventory store
func NewEvaluator(inv *store.Inventory, policy Policy) *Evaluator {
	return &Evaluator{inv: inv, policy: policy}
}

// Warnings scans all stock and reports, per item: expired or expiring-soon
// state, a storage-type mismatch with its current location, and unplaced
// items past the grace period. Order follows receipt order.
func (e *Evaluator) Warnings() []models.Warning {
	now := e.inv.Now()

	var out []models.Warning
	for _, item := range e.inv.StockItems(store.StockFilter{}) {
		storable, err := e.inv.Storable(item.StorableID)
		if err != nil {
			continue
		}
		name := storable.DisplayName()

		if item.IsExpired(now) {
			out = append(out, models.Warning{
				Kind:        models.WarningExpired,
				StockItemID: item.ID,
				StorableID:  item.StorableID,
				LocationID:  item.LocationID,
				Message:     fmt.Sprintf("%s expired %s", name, item.ExpiresAt.Format("2006-01-02")),
			})
		} else if item.ExpiresWithin(now, e.policy.ExpiryWarning) {
			out = append(out, models.Warning{
				Kind:        models.WarningExpiringSoon,
				StockItemID: item.ID,
				StorableID:  item.StorableID,
				LocationID:  item.LocationID,
				Message:     fmt.Sprintf("%s expires %s", name, item.ExpiresAt.Format("2006-01-02")),
			})
		}

		if item.IsPlaced() {
			loc, err := e.inv.Location(item.LocationID)
			if err == nil && !loc.Type.Satisfies(storable.RequiredStorage()) {
				out = append(out, models.Warning{
					Kind:        models.WarningStorageMismatch,
					StockItemID: item.ID,
					StorableID:  item.StorableID,
					LocationID:  item.LocationID,
					Message:     fmt.Sprintf("%s needs %s storage but %s is %s", name, storable.RequiredStorage(), loc.Name, loc.Type),
				})
			}
		} else if !item.ReceivedAt.Add(e.policy.UnplacedGrace).After(now) {
			out = append(out, models.Warning{
				Kind:        models.WarningUnplaced,
				StockItemID: item.ID,
				StorableID:  item.StorableID,
				Message:     fmt.Sprintf("%s has no storage location", name),
			})
		}
	}
	return out
}
