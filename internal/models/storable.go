package models

import (
	"fmt"
	"time"
)

// StorageType represents the climate class of a storage location
type StorageType string

const (
	// Storage types, warmest to coldest
	StorageAmbient      StorageType = "ambient"
	StorageRefrigerated StorageType = "refrigerated"
	StorageFrozen       StorageType = "frozen"
)

// storageRank orders storage types by coldness
var storageRank = map[StorageType]int{
	StorageAmbient:      0,
	StorageRefrigerated: 1,
	StorageFrozen:       2,
}

// IsStorageTypeValid checks if a storage type is valid
func IsStorageTypeValid(t string) bool {
	_, ok := storageRank[StorageType(t)]
	return ok
}

// Satisfies reports whether a location of this type can hold goods that
// require the given type. A location satisfies any requirement that is at
// most as cold as itself.
func (t StorageType) Satisfies(required StorageType) bool {
	return storageRank[t] >= storageRank[required]
}

// Storable is the capability set shared by anything that can be placed in
// storage. Ingredients and Preparations both satisfy it; placement logic only
// ever sees this interface.
type Storable interface {
	StorableID() string
	DisplayName() string
	RequiredStorage() StorageType
	// ShelfLife returns the duration from receipt until expiry, and whether
	// an expiry policy is defined at all.
	ShelfLife() (time.Duration, bool)
}

// Ingredient represents a catalog entry for a raw ingredient
type Ingredient struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Unit      string      `json:"unit"`
	Category  string      `json:"category"`
	Storage   StorageType `json:"storage"`
	ShelfDays int         `json:"shelf_days,omitempty"` // 0 means no expiry policy
}

// StorableID returns the catalog identifier
func (i *Ingredient) StorableID() string { return i.ID }

// DisplayName returns the human-readable name
func (i *Ingredient) DisplayName() string { return i.Name }

// RequiredStorage returns the storage type the ingredient must be kept at
func (i *Ingredient) RequiredStorage() StorageType { return i.Storage }

// ShelfLife returns the shelf life from receipt, if a policy is set
func (i *Ingredient) ShelfLife() (time.Duration, bool) {
	if i.ShelfDays <= 0 {
		return 0, false
	}
	return time.Duration(i.ShelfDays) * 24 * time.Hour, true
}

// ComponentRequirement represents one ingredient used by a preparation
type ComponentRequirement struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

// Preparation represents a composed item (a sauce, a stock, a mise en place
// batch) made from catalog ingredients. It stores and places exactly like an
// ingredient.
type Preparation struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Components []ComponentRequirement `json:"components"`
	Storage    StorageType            `json:"storage"`
	ShelfDays  int                    `json:"shelf_days,omitempty"`
}

// StorableID returns the catalog identifier
func (p *Preparation) StorableID() string { return p.ID }

// DisplayName returns the human-readable name
func (p *Preparation) DisplayName() string { return p.Name }

// RequiredStorage returns the storage type the preparation must be kept at
func (p *Preparation) RequiredStorage() StorageType { return p.Storage }

// ShelfLife returns the shelf life from receipt, if a policy is set
func (p *Preparation) ShelfLife() (time.Duration, bool) {
	if p.ShelfDays <= 0 {
		return 0, false
	}
	return time.Duration(p.ShelfDays) * 24 * time.Hour, true
}

// ValidateIngredient validates a catalog ingredient
func ValidateIngredient(ing *Ingredient) error {
	if ing.ID == "" {
		return fmt.Errorf("ingredient ID is required")
	}
	if ing.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if !IsStorageTypeValid(string(ing.Storage)) {
		return fmt.Errorf("invalid storage type: %s", ing.Storage)
	}
	return nil
}

// ValidatePreparation validates a preparation
func ValidatePreparation(prep *Preparation) error {
	if prep.ID == "" {
		return fmt.Errorf("preparation ID is required")
	}
	if prep.Name == "" {
		return fmt.Errorf("preparation name is required")
	}
	if len(prep.Components) == 0 {
		return fmt.Errorf("preparation must have at least one component")
	}
	if !IsStorageTypeValid(string(prep.Storage)) {
		return fmt.Errorf("invalid storage type: %s", prep.Storage)
	}
	return nil
}
