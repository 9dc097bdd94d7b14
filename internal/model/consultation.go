package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Consultation records a sales conversation with a client. It may be the
// origin of one or more quotations.
type Consultation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID         uuid.UUID `gorm:"type:uuid;index;not null"`
	SalespersonID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ConsultationDate time.Time `gorm:"not null"`
	Content          string    `gorm:"not null"`
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}

func (c *Consultation) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
