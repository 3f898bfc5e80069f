package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"larder/internal/models"
)

// Inventory is the single source of truth for the storage map: the catalog
// of storables, the physical stock on hand, and the storage locations stock
// can be assigned to. All placement changes go through AssignLocation; no
// other code path moves stock.
type Inventory struct {
	mu sync.RWMutex

	storables  []models.Storable
	storableIx map[string]models.Storable

	stock   []*models.StockItem
	stockIx map[string]*models.StockItem

	locations  []*models.StorageLocation
	locationIx map[string]*models.StorageLocation

	subscribers []func()
	now         func() time.Time
}

// StockFilter narrows a StockItems listing. Zero-value fields are ignored.
type StockFilter struct {
	LocationID     string
	StorableID     string
	Unplaced       bool
	ExpiringWithin time.Duration
}

// NewInventory creates an empty inventory store
func NewInventory() *Inventory {
	return &Inventory{
		storableIx: make(map[string]models.Storable),
		stockIx:    make(map[string]*models.StockItem),
		locationIx: make(map[string]*models.StorageLocation),
		now:        time.Now,
	}
}

// SetClock overrides the time source used for expiry computation
func (inv *Inventory) SetClock(now func() time.Time) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.now = now
}

// Now returns the store's current time
func (inv *Inventory) Now() time.Time {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.now()
}

// Subscribe registers a callback invoked after every committed mutation.
// Derived views (search, alerts, metrics) use this to stay fresh.
func (inv *Inventory) Subscribe(fn func()) {
	inv.mu.Lock()
	inv.subscribers = append(inv.subscribers, fn)
	inv.mu.Unlock()
}

func (inv *Inventory) notify() {
	inv.mu.RLock()
	subs := make([]func(), len(inv.subscribers))
	copy(subs, inv.subscribers)
	inv.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// AddStorable adds an ingredient or preparation to the catalog
func (inv *Inventory) AddStorable(s models.Storable) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	id := s.StorableID()
	if id == "" {
		return fmt.Errorf("storable ID is required")
	}
	if _, exists := inv.storableIx[id]; exists {
		return fmt.Errorf("storable already exists: %s", id)
	}
	inv.storables = append(inv.storables, s)
	inv.storableIx[id] = s
	return nil
}

// AddLocation adds a storage location
func (inv *Inventory) AddLocation(loc *models.StorageLocation) error {
	if err := models.ValidateLocation(loc); err != nil {
		return err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, exists := inv.locationIx[loc.ID]; exists {
		return fmt.Errorf("location already exists: %s", loc.ID)
	}
	inv.locations = append(inv.locations, loc)
	inv.locationIx[loc.ID] = loc
	return nil
}

// ReceiveStock creates a stock item for a catalog storable. The expiry
// timestamp is computed from the storable's shelf life at receipt time. The
// new item starts unplaced.
func (inv *Inventory) ReceiveStock(storableID string, quantity float64) (*models.StockItem, error) {
	inv.mu.Lock()

	storable, ok := inv.storableIx[storableID]
	if !ok {
		inv.mu.Unlock()
		return nil, &NotFoundError{Kind: "storable", ID: storableID}
	}

	received := inv.now()
	item := &models.StockItem{
		ID:         newStockID(),
		StorableID: storableID,
		Quantity:   quantity,
		ReceivedAt: received,
	}
	if life, ok := storable.ShelfLife(); ok {
		expires := received.Add(life)
		item.ExpiresAt = &expires
	}

	inv.stock = append(inv.stock, item)
	inv.stockIx[item.ID] = item
	inv.mu.Unlock()

	// Subscribers run outside the lock so they can re-query the store
	inv.notify()
	return item, nil
}

// RestoreStock inserts a previously persisted stock item as-is. Used by the
// persistence adapter when loading a snapshot; expiry is not recomputed.
func (inv *Inventory) RestoreStock(item *models.StockItem) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.storableIx[item.StorableID]; !ok {
		return &NotFoundError{Kind: "storable", ID: item.StorableID}
	}
	if item.LocationID != "" {
		if _, ok := inv.locationIx[item.LocationID]; !ok {
			return &NotFoundError{Kind: "location", ID: item.LocationID}
		}
	}
	if _, exists := inv.stockIx[item.ID]; exists {
		return fmt.Errorf("stock item already exists: %s", item.ID)
	}
	inv.stock = append(inv.stock, item)
	inv.stockIx[item.ID] = item
	return nil
}

// RemoveStock destroys a stock item (consumed or discarded)
func (inv *Inventory) RemoveStock(stockItemID string) error {
	inv.mu.Lock()

	if _, ok := inv.stockIx[stockItemID]; !ok {
		inv.mu.Unlock()
		return &NotFoundError{Kind: "stock item", ID: stockItemID}
	}
	delete(inv.stockIx, stockItemID)
	for i, item := range inv.stock {
		if item.ID == stockItemID {
			inv.stock = append(inv.stock[:i], inv.stock[i+1:]...)
			break
		}
	}
	inv.mu.Unlock()

	inv.notify()
	return nil
}

// Storables returns the catalog in insertion order
func (inv *Inventory) Storables() []models.Storable {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]models.Storable, len(inv.storables))
	copy(out, inv.storables)
	return out
}

// Storable looks up a catalog entry by ID
func (inv *Inventory) Storable(id string) (models.Storable, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	s, ok := inv.storableIx[id]
	if !ok {
		return nil, &NotFoundError{Kind: "storable", ID: id}
	}
	return s, nil
}

// StockItems returns stock in insertion order, narrowed by the filter.
// Returned values are copies; callers cannot mutate store state through them.
func (inv *Inventory) StockItems(filter StockFilter) []models.StockItem {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	now := inv.now()
	var out []models.StockItem
	for _, item := range inv.stock {
		if filter.LocationID != "" && item.LocationID != filter.LocationID {
			continue
		}
		if filter.StorableID != "" && item.StorableID != filter.StorableID {
			continue
		}
		if filter.Unplaced && item.IsPlaced() {
			continue
		}
		if filter.ExpiringWithin > 0 && !item.ExpiresWithin(now, filter.ExpiringWithin) {
			continue
		}
		out = append(out, *item)
	}
	return out
}

// StockItem looks up one stock item by ID, returning a copy
func (inv *Inventory) StockItem(id string) (models.StockItem, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	item, ok := inv.stockIx[id]
	if !ok {
		return models.StockItem{}, &NotFoundError{Kind: "stock item", ID: id}
	}
	return *item, nil
}

// Locations returns all storage locations in insertion order
func (inv *Inventory) Locations() []models.StorageLocation {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]models.StorageLocation, 0, len(inv.locations))
	for _, loc := range inv.locations {
		out = append(out, *loc)
	}
	return out
}

// Location looks up a storage location by ID
func (inv *Inventory) Location(id string) (models.StorageLocation, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	loc, ok := inv.locationIx[id]
	if !ok {
		return models.StorageLocation{}, &NotFoundError{Kind: "location", ID: id}
	}
	return *loc, nil
}

// OccupancyOf counts the stock items currently assigned to a location.
// Occupancy is always derived by scanning stock, never cached, so it can
// never drift from the items' own location assignments.
func (inv *Inventory) OccupancyOf(locationID string) (int, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.occupancyLocked(locationID)
}

func (inv *Inventory) occupancyLocked(locationID string) (int, error) {
	if _, ok := inv.locationIx[locationID]; !ok {
		return 0, &NotFoundError{Kind: "location", ID: locationID}
	}
	count := 0
	for _, item := range inv.stock {
		if item.LocationID == locationID {
			count++
		}
	}
	return count, nil
}

// AssignLocation moves a stock item to a location, or unplaces it when
// locationID is empty. This is the only mutation entry point for placement.
// Unplacing always succeeds; placing fails with CapacityExceededError when
// the target is full. Occupancy is re-derived under the same lock that
// commits the move, so the check can never act on a stale count.
func (inv *Inventory) AssignLocation(stockItemID, locationID string) (models.StockItem, error) {
	inv.mu.Lock()

	item, ok := inv.stockIx[stockItemID]
	if !ok {
		inv.mu.Unlock()
		return models.StockItem{}, &NotFoundError{Kind: "stock item", ID: stockItemID}
	}

	if locationID == item.LocationID {
		// No-op move, nothing to commit
		updated := *item
		inv.mu.Unlock()
		return updated, nil
	}

	if locationID != "" {
		loc, ok := inv.locationIx[locationID]
		if !ok {
			inv.mu.Unlock()
			return models.StockItem{}, &NotFoundError{Kind: "location", ID: locationID}
		}
		if loc.HasCapacityLimit() {
			occupancy, err := inv.occupancyLocked(locationID)
			if err != nil {
				inv.mu.Unlock()
				return models.StockItem{}, err
			}
			if occupancy+1 > loc.Capacity {
				inv.mu.Unlock()
				return models.StockItem{}, &CapacityExceededError{LocationID: locationID, Capacity: loc.Capacity}
			}
		}
	}

	item.LocationID = locationID
	updated := *item
	inv.mu.Unlock()

	inv.notify()
	return updated, nil
}

// newStockID generates a random stock item identifier
func newStockID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("stock-%d", time.Now().UnixNano())
	}
	return "stock-" + hex.EncodeToString(buf)
}
