package placement

import (
	"errors"
	"fmt"
	"sync"

	"larder/internal/store"
)

// DragState represents the drag session state machine's current state
type DragState string

const (
	// Drag session states
	DragIdle      DragState = "idle"
	DragDragging  DragState = "dragging"
	DragDropping  DragState = "dropping"
	DragCancelled DragState = "cancelled"
)

// ErrDragCancelled is returned by EndDrag when the gesture ends with no
// candidate target. No mutation has occurred.
var ErrDragCancelled = errors.New("drag cancelled")

// InvalidTransitionError is returned when a lifecycle call is not valid in
// the controller's current state. It indicates a caller bug; the session
// state is left untouched.
type InvalidTransitionError struct {
	State DragState
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid drag transition: %s in state %s", e.Event, e.State)
}

// Point is a pointer position in dashboard coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DropZone is the hit area of a storage location on the dashboard. Z is the
// render order; later-rendered zones win collision ties.
type DropZone struct {
	LocationID string  `json:"location_id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Z          int     `json:"z"`
}

func (z *DropZone) contains(p Point) bool {
	return p.X >= z.X && p.X <= z.X+z.Width && p.Y >= z.Y && p.Y <= z.Y+z.Height
}

func (z *DropZone) centerDistanceSq(p Point) float64 {
	cx := z.X + z.Width/2
	cy := z.Y + z.Height/2
	dx := p.X - cx
	dy := p.Y - cy
	return dx*dx + dy*dy
}

// DragController tracks one drag gesture from pick-up to drop or cancel.
// At most one session is active at a time. The controller never mutates the
// inventory store itself; the drop is handed to the placement resolver.
type DragController struct {
	mu       sync.Mutex
	inv      *store.Inventory
	resolver *Resolver

	state     DragState
	itemID    string
	candidate string
	zones     []DropZone
}

// NewDragController creates an idle drag controller
func NewDragController(inv *store.Inventory, resolver *Resolver) *DragController {
	return &DragController{
		inv:      inv,
		resolver: resolver,
		state:    DragIdle,
	}
}

// SetDropZones replaces the registered drop zones. The dashboard calls this
// whenever the visible layout changes.
func (c *DragController) SetDropZones(zones []DropZone) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zones = append([]DropZone(nil), zones...)
}

// State returns the controller's current state
func (c *DragController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DraggedItem returns the stock item of the active session, if any
func (c *DragController) DraggedItem() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemID, c.state == DragDragging
}

// BeginDrag starts a session for a stock item. Starting while another
// session is active fails and leaves the active session untouched.
func (c *DragController) BeginDrag(stockItemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DragIdle {
		return &InvalidTransitionError{State: c.state, Event: "begin"}
	}
	if _, err := c.inv.StockItem(stockItemID); err != nil {
		return err
	}

	c.state = DragDragging
	c.itemID = stockItemID
	c.candidate = ""
	return nil
}

// UpdateCandidate recomputes the best drop target for a pointer position.
// Among zones hit by the pointer the one whose center is nearest wins;
// equal distances go to the higher Z. Returns the candidate location ID, or
// empty when the pointer is over no zone.
func (c *DragController) UpdateCandidate(p Point) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DragDragging {
		return "", &InvalidTransitionError{State: c.state, Event: "move"}
	}

	best := -1
	var bestDist float64
	for i := range c.zones {
		z := &c.zones[i]
		if !z.contains(p) {
			continue
		}
		dist := z.centerDistanceSq(p)
		if best < 0 || dist < bestDist || (dist == bestDist && z.Z > c.zones[best].Z) {
			best = i
			bestDist = dist
		}
	}

	if best < 0 {
		c.candidate = ""
	} else {
		c.candidate = c.zones[best].LocationID
	}
	return c.candidate, nil
}

// EndDrag finishes the session. With a candidate target the drop is handed
// to the resolver and its outcome returned; without one the session is
// cancelled and ErrDragCancelled returned. Either way the controller is
// idle afterwards, even when the resolver rejects the move.
func (c *DragController) EndDrag() (MoveResult, error) {
	c.mu.Lock()

	if c.state != DragDragging {
		c.mu.Unlock()
		return MoveResult{}, &InvalidTransitionError{State: c.state, Event: "end"}
	}

	itemID := c.itemID
	candidate := c.candidate

	// Dropping and Cancelled are transient; the controller is idle again by
	// the time this call returns
	c.reset()
	c.mu.Unlock()

	if candidate == "" {
		return MoveResult{}, ErrDragCancelled
	}

	// The resolver is invoked outside the controller lock; failure is
	// reported to the caller, never retried here
	return c.resolver.Move(itemID, candidate)
}

// Cancel abandons the active session with no side effects
func (c *DragController) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DragDragging {
		return &InvalidTransitionError{State: c.state, Event: "cancel"}
	}
	c.reset()
	return nil
}

// reset returns the controller to idle; callers hold the lock
func (c *DragController) reset() {
	c.state = DragIdle
	c.itemID = ""
	c.candidate = ""
}
