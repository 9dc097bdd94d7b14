package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a catalog entry. Items are deactivated, never deleted, so historical
// line items keep a valid reference.
type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"uniqueIndex;size:50;not null"`
	Name        string    `gorm:"size:200;index;not null"`
	Description *string
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Unit        string          `gorm:"size:20;not null;default:'개'"`
	IsActive    bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// Inventory tracks stock of one catalog item.
type Inventory struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Quantity      int       `gorm:"not null;default:0"`
	MinStockLevel int       `gorm:"not null;default:0"`
	Location      *string   `gorm:"size:100"`
	Notes         *string   `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Item *Item `gorm:"foreignKey:ItemID"`
}

func (Inventory) TableName() string { return "inventory" }

func (i *Inventory) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// Low reports whether stock sits at or below the minimum level.
func (i *Inventory) Low() bool { return i.Quantity <= i.MinStockLevel }
