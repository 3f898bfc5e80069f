package search

import (
	"testing"
	"time"

	"larder/internal/models"
	"larder/internal/store"
)

func newTestIndex(t *testing.T) (*Index, *store.Inventory) {
	t.Helper()
	inv := store.NewInventory()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inv.SetClock(func() time.Time { return at })

	storables := []models.Storable{
		&models.Ingredient{ID: "milk", Name: "Whole Milk", Storage: models.StorageRefrigerated, ShelfDays: 7},
		&models.Ingredient{ID: "flour", Name: "Flour", Storage: models.StorageAmbient},
		&models.Ingredient{ID: "peas", Name: "Green Peas", Storage: models.StorageFrozen, ShelfDays: 90},
		&models.Preparation{ID: "bechamel", Name: "Béchamel Sauce", Storage: models.StorageRefrigerated, ShelfDays: 2,
			Components: []models.ComponentRequirement{{IngredientID: "milk", Quantity: 1}, {IngredientID: "flour", Quantity: 0.1}}},
	}
	for _, s := range storables {
		if err := inv.AddStorable(s); err != nil {
			t.Fatalf("AddStorable() returned error: %v", err)
		}
	}
	return NewIndex(inv), inv
}

func TestEmptyQueryReturnsFullCatalog(t *testing.T) {
	ix, inv := newTestIndex(t)

	got := ix.Storables("", Filters{})
	all := inv.Storables()
	if len(got) != len(all) {
		t.Fatalf("Storables(\"\") returned %d entries, want %d", len(got), len(all))
	}
	// Order must be preserved
	for i := range all {
		if got[i].StorableID() != all[i].StorableID() {
			t.Errorf("Storables(\"\")[%d] = %s, want %s", i, got[i].StorableID(), all[i].StorableID())
		}
	}
}

func TestQueryMatchIsCaseInsensitiveSubstring(t *testing.T) {
	ix, _ := newTestIndex(t)

	got := ix.Storables("MILK", Filters{})
	if len(got) != 1 || got[0].StorableID() != "milk" {
		t.Errorf("Storables(\"MILK\") = %v, want just milk", ids(got))
	}

	// Substring anywhere in the name
	got = ix.Storables("pea", Filters{})
	if len(got) != 1 || got[0].StorableID() != "peas" {
		t.Errorf("Storables(\"pea\") = %v, want just peas", ids(got))
	}

	got = ix.Storables("xyzzy", Filters{})
	if len(got) != 0 {
		t.Errorf("Storables(\"xyzzy\") = %v, want none", ids(got))
	}
}

func TestStorageTypeFilter(t *testing.T) {
	ix, _ := newTestIndex(t)

	got := ix.Storables("", Filters{Storage: models.StorageRefrigerated})
	if len(got) != 2 {
		t.Fatalf("Storables(refrigerated) = %v, want milk and bechamel", ids(got))
	}
	if got[0].StorableID() != "milk" || got[1].StorableID() != "bechamel" {
		t.Errorf("Storables(refrigerated) = %v, want [milk bechamel]", ids(got))
	}
}

func TestStockExpiryWindowFilter(t *testing.T) {
	ix, inv := newTestIndex(t)

	inv.ReceiveStock("milk", 1)  // expires in 7 days
	inv.ReceiveStock("peas", 1)  // expires in 90 days
	inv.ReceiveStock("flour", 1) // no expiry

	got := ix.StockItems("", Filters{ExpiringWithinDays: 10})
	if len(got) != 1 || got[0].StorableID != "milk" {
		t.Errorf("StockItems(within 10d) matched %d items, want just the milk", len(got))
	}

	got = ix.StockItems("", Filters{ExpiringWithinDays: 100})
	if len(got) != 2 {
		t.Errorf("StockItems(within 100d) matched %d items, want 2", len(got))
	}
}

func TestStockSearchMatchesStorableName(t *testing.T) {
	ix, inv := newTestIndex(t)

	inv.ReceiveStock("milk", 1)
	inv.ReceiveStock("bechamel", 1)

	got := ix.StockItems("sauce", Filters{})
	if len(got) != 1 || got[0].StorableID != "bechamel" {
		t.Errorf("StockItems(\"sauce\") matched %d items, want just the bechamel batch", len(got))
	}
}

func TestIndexReflectsStoreMutations(t *testing.T) {
	ix, inv := newTestIndex(t)

	if got := ix.StockItems("", Filters{}); len(got) != 0 {
		t.Fatalf("StockItems() on empty store = %d items, want 0", len(got))
	}

	item, _ := inv.ReceiveStock("milk", 1)
	if got := ix.StockItems("", Filters{}); len(got) != 1 {
		t.Errorf("StockItems() after receive = %d items, want 1", len(got))
	}

	inv.RemoveStock(item.ID)
	if got := ix.StockItems("", Filters{}); len(got) != 0 {
		t.Errorf("StockItems() after removal = %d items, want 0", len(got))
	}
}

func ids(storables []models.Storable) []string {
	out := make([]string, len(storables))
	for i, s := range storables {
		out[i] = s.StorableID()
	}
	return out
}
