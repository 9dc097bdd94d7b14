package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client kinds. Personal contact fields apply to individuals, company
// contact fields to companies and institutions.
const (
	ClientIndividual  = "individual"
	ClientCompany     = "company"
	ClientInstitution = "institution"
)

type Client struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"size:100;index;not null"`
	ClientType string    `gorm:"type:varchar(20);not null"`

	PersonalName  *string `gorm:"size:50"`
	PersonalPhone *string `gorm:"size:20"`
	PersonalEmail *string `gorm:"size:100"`

	CompanyName        *string `gorm:"size:100"`
	BusinessNumber     *string `gorm:"size:20"`
	RepresentativeName *string `gorm:"size:50"`
	CompanyPhone       *string `gorm:"size:20"`
	CompanyEmail       *string `gorm:"size:100"`

	Address   *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
