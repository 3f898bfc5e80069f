package alerts

import (
	"testing"
	"time"

	"larder/internal/models"
	"larder/internal/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEvaluator(t *testing.T) (*Evaluator, *store.Inventory) {
	t.Helper()
	inv := store.NewInventory()
	inv.SetClock(func() time.Time { return testNow })

	storables := []models.Storable{
		&models.Ingredient{ID: "milk", Name: "Whole Milk", Storage: models.StorageRefrigerated, ShelfDays: 7},
		&models.Ingredient{ID: "flour", Name: "Flour", Storage: models.StorageAmbient},
	}
	for _, s := range storables {
		if err := inv.AddStorable(s); err != nil {
			t.Fatalf("AddStorable() returned error: %v", err)
		}
	}
	locations := []*models.StorageLocation{
		{ID: "fridge-1", Name: "Walk-in Fridge", Type: models.StorageRefrigerated},
		{ID: "shelf-1", Name: "Dry Shelf", Type: models.StorageAmbient},
	}
	for _, loc := range locations {
		if err := inv.AddLocation(loc); err != nil {
			t.Fatalf("AddLocation() returned error: %v", err)
		}
	}
	return NewEvaluator(inv, DefaultPolicy()), inv
}

func kinds(warnings []models.Warning, itemID string) map[models.WarningKind]bool {
	out := make(map[models.WarningKind]bool)
	for _, w := range warnings {
		if w.StockItemID == itemID {
			out[w.Kind] = true
		}
	}
	return out
}

func TestExpiredWarning(t *testing.T) {
	eval, inv := newTestEvaluator(t)

	item, _ := inv.ReceiveStock("milk", 1)
	inv.AssignLocation(item.ID, "fridge-1")
	// Push the expiry one hour into the past
	past := testNow.Add(-1 * time.Hour)
	restamped, _ := inv.StockItem(item.ID)
	inv.RemoveStock(item.ID)
	restamped.ExpiresAt = &past
	if err := inv.RestoreStock(&restamped); err != nil {
		t.Fatalf("RestoreStock() returned error: %v", err)
	}

	got := kinds(eval.Warnings(), item.ID)
	if !got[models.WarningExpired] {
		t.Error("expected an Expired warning for stock one hour past expiry")
	}
	if got[models.WarningExpiringSoon] {
		t.Error("expired stock must not also warn as expiring soon")
	}
}

func TestExpiringSoonThreshold(t *testing.T) {
	eval, inv := newTestEvaluator(t)

	// 7-day shelf life against the default 3-day warning window: no warning
	item, _ := inv.ReceiveStock("milk", 1)
	inv.AssignLocation(item.ID, "fridge-1")

	got := kinds(eval.Warnings(), item.ID)
	if got[models.WarningExpiringSoon] {
		t.Error("stock expiring in 7 days should not warn with a 3-day threshold")
	}

	// Widen the window past the expiry and it warns
	wide := NewEvaluator(inv, Policy{ExpiryWarning: 10 * 24 * time.Hour})
	got = kinds(wide.Warnings(), item.ID)
	if !got[models.WarningExpiringSoon] {
		t.Error("stock expiring in 7 days should warn with a 10-day threshold")
	}
}

func TestStorageMismatchWarning(t *testing.T) {
	eval, inv := newTestEvaluator(t)

	item, _ := inv.ReceiveStock("milk", 1)
	if _, err := inv.AssignLocation(item.ID, "shelf-1"); err != nil {
		t.Fatalf("AssignLocation() returned error: %v", err)
	}

	var found *models.Warning
	for _, w := range eval.Warnings() {
		if w.Kind == models.WarningStorageMismatch && w.StockItemID == item.ID {
			found = &w
			break
		}
	}
	if found == nil {
		t.Fatal("expected a StorageMismatch warning for milk on an ambient shelf")
	}
	if found.LocationID != "shelf-1" {
		t.Errorf("warning location = %q, want shelf-1", found.LocationID)
	}

	// Moving it to matching storage clears the warning on the next scan
	inv.AssignLocation(item.ID, "fridge-1")
	if got := kinds(eval.Warnings(), item.ID); got[models.WarningStorageMismatch] {
		t.Error("mismatch warning should disappear after moving to a fridge")
	}
}

func TestUnplacedWarning(t *testing.T) {
	eval, inv := newTestEvaluator(t)

	item, _ := inv.ReceiveStock("flour", 1)

	got := kinds(eval.Warnings(), item.ID)
	if !got[models.WarningUnplaced] {
		t.Error("expected an Unplaced warning with zero grace period")
	}

	// Within a grace period the warning is suppressed
	graced := NewEvaluator(inv, Policy{ExpiryWarning: 3 * 24 * time.Hour, UnplacedGrace: time.Hour})
	if got := kinds(graced.Warnings(), item.ID); got[models.WarningUnplaced] {
		t.Error("unplaced warning should be suppressed inside the grace period")
	}

	inv.AssignLocation(item.ID, "shelf-1")
	if got := kinds(eval.Warnings(), item.ID); got[models.WarningUnplaced] {
		t.Error("placed stock must not warn as unplaced")
	}
}

func TestWarningsPureScan(t *testing.T) {
	eval, inv := newTestEvaluator(t)

	item, _ := inv.ReceiveStock("milk", 1)
	inv.AssignLocation(item.ID, "shelf-1")

	first := eval.Warnings()
	second := eval.Warnings()
	if len(first) != len(second) {
		t.Errorf("repeated scans disagree: %d vs %d warnings", len(first), len(second))
	}
}
