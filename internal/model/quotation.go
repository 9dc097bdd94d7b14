package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quotation is a priced offer to a client.
// TotalAmount always equals the sum of Items[i].TotalPrice.
type Quotation struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	QuotationNumber string     `gorm:"uniqueIndex;size:50;not null"`
	ClientID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	SalespersonID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	ConsultationID  *uuid.UUID `gorm:"type:uuid;index"`
	Status          string     `gorm:"type:varchar(20);not null;default:'draft'"`
	ValidUntil      *time.Time
	TotalAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Client *Client         `gorm:"foreignKey:ClientID"`
	Items  []QuotationItem `gorm:"foreignKey:QuotationID"`
}

func (q *Quotation) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// QuotationItem is a priced line. UnitPrice is the price captured when the
// line was written; TotalPrice is derived from it.
type QuotationItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuotationID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ItemID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position    int             `gorm:"not null;default:0"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Notes       *string
	CreatedAt   time.Time

	Item *Item `gorm:"foreignKey:ItemID"`
}

func (i *QuotationItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
