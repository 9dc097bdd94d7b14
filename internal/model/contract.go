package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contract is a signed agreement, optionally derived from a quotation.
// TotalAmount always equals the sum of Items[i].TotalPrice.
type Contract struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContractNumber string     `gorm:"uniqueIndex;size:50;not null"`
	ClientID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	SalespersonID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuotationID    *uuid.UUID `gorm:"type:uuid;index"`
	Status         string     `gorm:"type:varchar(20);not null;default:'draft'"`
	ContractDate   *time.Time
	TotalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Client *Client        `gorm:"foreignKey:ClientID"`
	Items  []ContractItem `gorm:"foreignKey:ContractID"`
}

func (c *Contract) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type ContractItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContractID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ItemID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position   int             `gorm:"not null;default:0"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Notes      *string
	CreatedAt  time.Time

	Item *Item `gorm:"foreignKey:ItemID"`
}

func (i *ContractItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
