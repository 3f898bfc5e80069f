package models

import "fmt"

// StorageLocation represents a physical container stock can be assigned to
type StorageLocation struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type StorageType `json:"type"`
	// Capacity is the maximum number of stock items the location can hold.
	// Zero means unlimited.
	Capacity int `json:"capacity,omitempty"`
}

// HasCapacityLimit reports whether the location declares a capacity
func (l *StorageLocation) HasCapacityLimit() bool {
	return l.Capacity > 0
}

// ValidateLocation validates a storage location
func ValidateLocation(loc *StorageLocation) error {
	if loc.ID == "" {
		return fmt.Errorf("location ID is required")
	}
	if loc.Name == "" {
		return fmt.Errorf("location name is required")
	}
	if !IsStorageTypeValid(string(loc.Type)) {
		return fmt.Errorf("invalid storage type: %s", loc.Type)
	}
	if loc.Capacity < 0 {
		return fmt.Errorf("location capacity cannot be negative")
	}
	return nil
}
