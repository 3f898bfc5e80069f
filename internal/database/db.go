package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"larder/internal/models"
	"larder/internal/store"
)

var db *gorm.DB

// IngredientRecord is the persisted form of a catalog ingredient
type IngredientRecord struct {
	gorm.Model
	IngredientID string `gorm:"unique_index"`
	Name         string
	Unit         string
	Category     string
	Storage      string
	ShelfDays    int
}

// PreparationRecord is the persisted form of a preparation
type PreparationRecord struct {
	gorm.Model
	PreparationID string `gorm:"unique_index"`
	Name          string
	Storage       string
	ShelfDays     int
	Components    []ComponentRecord `gorm:"foreignkey:PreparationRecordID"`
}

// ComponentRecord is one ingredient requirement of a preparation
type ComponentRecord struct {
	gorm.Model
	PreparationRecordID uint
	IngredientID        string
	Quantity            float64
}

// LocationRecord is the persisted form of a storage location
type LocationRecord struct {
	gorm.Model
	LocationID string `gorm:"unique_index"`
	Name       string
	Type       string
	Capacity   int
}

// StockRecord is the persisted form of a stock item
type StockRecord struct {
	gorm.Model
	StockID    string `gorm:"unique_index"`
	StorableID string
	Quantity   float64
	ReceivedAt time.Time
	ExpiresAt  *time.Time
	LocationID string
}

// InitDB initializes the database connection and schema
func InitDB(dbPath string) error {
	var err error
	db, err = gorm.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db.AutoMigrate(&IngredientRecord{}, &PreparationRecord{}, &ComponentRecord{}, &LocationRecord{}, &StockRecord{})

	seedDefaultData(db)
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// seedDefaultData creates a starter storage layout and catalog on first run
func seedDefaultData(db *gorm.DB) {
	var count int
	db.Model(&LocationRecord{}).Count(&count)
	if count > 0 {
		return
	}

	locations := []LocationRecord{
		{LocationID: "walk-in", Name: "Walk-in Fridge", Type: string(models.StorageRefrigerated), Capacity: 40},
		{LocationID: "freezer", Name: "Chest Freezer", Type: string(models.StorageFrozen), Capacity: 20},
		{LocationID: "dry-shelf", Name: "Dry Storage Shelf", Type: string(models.StorageAmbient)},
		{LocationID: "spice-rack", Name: "Spice Rack", Type: string(models.StorageAmbient), Capacity: 30},
	}
	for i := range locations {
		db.Create(&locations[i])
	}

	ingredients := []IngredientRecord{
		{IngredientID: "milk", Name: "Whole Milk", Unit: "l", Category: "dairy", Storage: string(models.StorageRefrigerated), ShelfDays: 7},
		{IngredientID: "butter", Name: "Butter", Unit: "kg", Category: "dairy", Storage: string(models.StorageRefrigerated), ShelfDays: 30},
		{IngredientID: "flour", Name: "Flour", Unit: "kg", Category: "dry_goods", Storage: string(models.StorageAmbient)},
		{IngredientID: "chicken", Name: "Chicken Breast", Unit: "kg", Category: "protein", Storage: string(models.StorageFrozen), ShelfDays: 180},
		{IngredientID: "paprika", Name: "Smoked Paprika", Unit: "g", Category: "spices", Storage: string(models.StorageAmbient), ShelfDays: 365},
	}
	for i := range ingredients {
		db.Create(&ingredients[i])
	}

	veloute := PreparationRecord{
		PreparationID: "veloute",
		Name:          "Velouté",
		Storage:       string(models.StorageRefrigerated),
		ShelfDays:     3,
		Components: []ComponentRecord{
			{IngredientID: "butter", Quantity: 0.1},
			{IngredientID: "flour", Quantity: 0.1},
		},
	}
	db.Create(&veloute)
}

// LoadSnapshot populates an inventory store from the database. The core
// treats this as an injected snapshot; it never reads the database itself.
func LoadSnapshot(inv *store.Inventory) error {
	var ingredients []IngredientRecord
	if err := db.Find(&ingredients).Error; err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	for _, rec := range ingredients {
		ing := &models.Ingredient{
			ID:        rec.IngredientID,
			Name:      rec.Name,
			Unit:      rec.Unit,
			Category:  rec.Category,
			Storage:   models.StorageType(rec.Storage),
			ShelfDays: rec.ShelfDays,
		}
		if err := inv.AddStorable(ing); err != nil {
			return err
		}
	}

	var preparations []PreparationRecord
	if err := db.Preload("Components").Find(&preparations).Error; err != nil {
		return fmt.Errorf("failed to load preparations: %w", err)
	}
	for _, rec := range preparations {
		prep := &models.Preparation{
			ID:        rec.PreparationID,
			Name:      rec.Name,
			Storage:   models.StorageType(rec.Storage),
			ShelfDays: rec.ShelfDays,
		}
		for _, comp := range rec.Components {
			prep.Components = append(prep.Components, models.ComponentRequirement{
				IngredientID: comp.IngredientID,
				Quantity:     comp.Quantity,
			})
		}
		if err := inv.AddStorable(prep); err != nil {
			return err
		}
	}

	var locations []LocationRecord
	if err := db.Find(&locations).Error; err != nil {
		return fmt.Errorf("failed to load locations: %w", err)
	}
	for _, rec := range locations {
		loc := &models.StorageLocation{
			ID:       rec.LocationID,
			Name:     rec.Name,
			Type:     models.StorageType(rec.Type),
			Capacity: rec.Capacity,
		}
		if err := inv.AddLocation(loc); err != nil {
			return err
		}
	}

	var stock []StockRecord
	if err := db.Find(&stock).Error; err != nil {
		return fmt.Errorf("failed to load stock: %w", err)
	}
	for _, rec := range stock {
		item := &models.StockItem{
			ID:         rec.StockID,
			StorableID: rec.StorableID,
			Quantity:   rec.Quantity,
			ReceivedAt: rec.ReceivedAt,
			ExpiresAt:  rec.ExpiresAt,
			LocationID: rec.LocationID,
		}
		if err := inv.RestoreStock(item); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot writes the store's stock back to the database, replacing the
// previous snapshot in one transaction. Catalog and locations are managed
// through their own records and are left untouched.
func SaveSnapshot(inv *store.Inventory) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Unscoped().Delete(&StockRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear stock snapshot: %w", err)
	}

	for _, item := range inv.StockItems(store.StockFilter{}) {
		rec := StockRecord{
			StockID:    item.ID,
			StorableID: item.StorableID,
			Quantity:   item.Quantity,
			ReceivedAt: item.ReceivedAt,
			ExpiresAt:  item.ExpiresAt,
			LocationID: item.LocationID,
		}
		if err := tx.Create(&rec).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save stock item %s: %w", item.ID, err)
		}
	}

	return tx.Commit().Error
}
