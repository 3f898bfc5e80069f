package placement

import (
	"testing"
	"time"

	"larder/internal/models"
	"larder/internal/store"
)

func newTestStore(t *testing.T) *store.Inventory {
	t.Helper()
	inv := store.NewInventory()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inv.SetClock(func() time.Time { return at })

	storables := []models.Storable{
		&models.Ingredient{ID: "milk", Name: "Whole Milk", Unit: "l", Category: "dairy", Storage: models.StorageRefrigerated, ShelfDays: 7},
		&models.Ingredient{ID: "flour", Name: "Flour", Unit: "kg", Category: "dry_goods", Storage: models.StorageAmbient},
		&models.Preparation{ID: "veloute", Name: "Velouté", Storage: models.StorageRefrigerated, ShelfDays: 3,
			Components: []models.ComponentRequirement{{IngredientID: "flour", Quantity: 0.2}}},
	}
	for _, s := range storables {
		if err := inv.AddStorable(s); err != nil {
			t.Fatalf("AddStorable() returned error: %v", err)
		}
	}

	locations := []*models.StorageLocation{
		{ID: "fridge-1", Name: "Walk-in Fridge", Type: models.StorageRefrigerated, Capacity: 2},
		{ID: "shelf-1", Name: "Dry Shelf", Type: models.StorageAmbient},
		{ID: "freezer-1", Name: "Chest Freezer", Type: models.StorageFrozen},
	}
	for _, loc := range locations {
		if err := inv.AddLocation(loc); err != nil {
			t.Fatalf("AddLocation() returned error: %v", err)
		}
	}
	return inv
}

func TestMoveCommitsPlacement(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)

	item, _ := inv.ReceiveStock("milk", 2)

	result, err := resolver.Move(item.ID, "fridge-1")
	if err != nil {
		t.Fatalf("Move() returned error: %v", err)
	}
	if result.Item.LocationID != "fridge-1" {
		t.Errorf("location = %q, want fridge-1", result.Item.LocationID)
	}
	if result.StorageMismatch {
		t.Error("refrigerated milk into a fridge should not flag a mismatch")
	}
}

func TestMoveNotFound(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)
	item, _ := inv.ReceiveStock("milk", 1)

	if _, err := resolver.Move("no-such-item", "fridge-1"); !store.IsNotFound(err) {
		t.Errorf("Move(unknown item) error = %v, want NotFoundError", err)
	}
	if _, err := resolver.Move(item.ID, "no-such-location"); !store.IsNotFound(err) {
		t.Errorf("Move(unknown location) error = %v, want NotFoundError", err)
	}
}

func TestMoveCapacityExceededLeavesStateUnchanged(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)

	a, _ := inv.ReceiveStock("milk", 1)
	b, _ := inv.ReceiveStock("milk", 1)
	c, _ := inv.ReceiveStock("milk", 1)
	resolver.Move(a.ID, "fridge-1")
	resolver.Move(b.ID, "fridge-1")

	before := inv.StockItems(store.StockFilter{})

	_, err := resolver.Move(c.ID, "fridge-1")
	if !store.IsCapacityExceeded(err) {
		t.Fatalf("Move(full target) error = %v, want CapacityExceededError", err)
	}

	after := inv.StockItems(store.StockFilter{})
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("stock item %s changed after rejected move", before[i].ID)
		}
	}
}

func TestMoveIdempotentSameLocation(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)

	a, _ := inv.ReceiveStock("milk", 1)
	resolver.Move(a.ID, "fridge-1")

	var committed int
	inv.Subscribe(func() { committed++ })

	result, err := resolver.Move(a.ID, "fridge-1")
	if err != nil {
		t.Fatalf("Move(same location) returned error: %v", err)
	}
	if result.Item.LocationID != "fridge-1" {
		t.Errorf("location = %q, want fridge-1", result.Item.LocationID)
	}
	if committed != 0 {
		t.Errorf("no-op move committed %d mutations, want 0", committed)
	}
}

func TestMoveStorageMismatchIsSoftWarning(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)

	// Milk requires refrigeration; an ambient shelf accepts it anyway but
	// the result carries the mismatch flag
	item, _ := inv.ReceiveStock("milk", 1)
	result, err := resolver.Move(item.ID, "shelf-1")
	if err != nil {
		t.Fatalf("Move(mismatched storage) returned error: %v", err)
	}
	if !result.StorageMismatch {
		t.Error("expected StorageMismatch flag for milk on an ambient shelf")
	}
	if result.Item.LocationID != "shelf-1" {
		t.Errorf("location = %q, want shelf-1 (mismatch must not block)", result.Item.LocationID)
	}

	// Colder than required is fine
	result, err = resolver.Move(item.ID, "freezer-1")
	if err != nil {
		t.Fatalf("Move(freezer) returned error: %v", err)
	}
	if result.StorageMismatch {
		t.Error("freezer satisfies a refrigerated requirement, no mismatch expected")
	}
}

func TestMoveUnplace(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)

	a, _ := inv.ReceiveStock("milk", 1)
	b, _ := inv.ReceiveStock("milk", 1)
	resolver.Move(a.ID, "fridge-1")
	resolver.Move(b.ID, "fridge-1")

	result, err := resolver.Move(a.ID, "")
	if err != nil {
		t.Fatalf("Move(unplace) returned error: %v", err)
	}
	if result.Item.IsPlaced() {
		t.Errorf("location = %q, want unplaced", result.Item.LocationID)
	}
	occupancy, _ := inv.OccupancyOf("fridge-1")
	if occupancy != 1 {
		t.Errorf("occupancy after unplace = %d, want 1", occupancy)
	}
}

func TestPreparationPlacesLikeIngredient(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)

	item, _ := inv.ReceiveStock("veloute", 1)
	result, err := resolver.Move(item.ID, "shelf-1")
	if err != nil {
		t.Fatalf("Move(preparation) returned error: %v", err)
	}
	if !result.StorageMismatch {
		t.Error("refrigerated preparation on an ambient shelf should flag a mismatch")
	}
}

type recordingNotifier struct {
	committed []MoveResult
	rejected  []error
}

func (n *recordingNotifier) PlacementCommitted(result MoveResult) {
	n.committed = append(n.committed, result)
}

func (n *recordingNotifier) PlacementRejected(stockItemID string, err error) {
	n.rejected = append(n.rejected, err)
}

func TestNotifierReceivesOutcomes(t *testing.T) {
	inv := newTestStore(t)
	resolver := NewResolver(inv)
	sink := &recordingNotifier{}
	resolver.SetNotifier(sink)

	item, _ := inv.ReceiveStock("milk", 1)
	resolver.Move(item.ID, "fridge-1")
	resolver.Move(item.ID, "no-such-location")

	if len(sink.committed) != 1 {
		t.Errorf("committed notifications = %d, want 1", len(sink.committed))
	}
	if len(sink.rejected) != 1 {
		t.Errorf("rejected notifications = %d, want 1", len(sink.rejected))
	}
}
