package store

import "fmt"

// NotFoundError is returned when a referenced storable, stock item or
// storage location does not exist. It always indicates a caller error.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// CapacityExceededError is returned when a move would push a location past
// its declared capacity. The move is rejected and no state changes.
type CapacityExceededError struct {
	LocationID string
	Capacity   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("location %s is full (capacity %d)", e.LocationID, e.Capacity)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsCapacityExceeded reports whether err is a CapacityExceededError
func IsCapacityExceeded(err error) bool {
	_, ok := err.(*CapacityExceededError)
	return ok
}
