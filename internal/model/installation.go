package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Installation is an installation job or service visit performed under a
// contract. CompletedAt and ResultText are set iff Status is "completed";
// attachment references are nil unless completed.
type Installation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID         uuid.UUID `gorm:"type:uuid;index;not null"`
	TechnicianID     uuid.UUID `gorm:"type:uuid;index;not null"`
	InstallationType string    `gorm:"type:varchar(20);not null"`
	Status           string    `gorm:"type:varchar(20);index;not null;default:'pending'"`
	ScheduledDate    *time.Time
	CompletedAt      *time.Time
	ResultText       *string
	Attachment1URL   *string `gorm:"size:500"`
	Attachment2URL   *string `gorm:"size:500"`
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}

func (i *Installation) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// Attachments returns the non-nil attachment references in slot order.
func (i *Installation) Attachments() []string {
	var refs []string
	for _, r := range []*string{i.Attachment1URL, i.Attachment2URL} {
		if r != nil {
			refs = append(refs, *r)
		}
	}
	return refs
}
