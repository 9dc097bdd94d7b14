package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an employee account.
// Role: "sales" | "technician" | "admin" | "super_admin"
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:50;not null"`
	Email        string    `gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `gorm:"not null"`
	FullName     string    `gorm:"size:100;not null"`
	Phone        *string   `gorm:"size:20"`
	Role         string    `gorm:"type:varchar(20);not null;default:'sales'"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	IsSuperAdmin bool      `gorm:"not null;default:false"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// Administrative reports whether the account holds administrator rights.
func (u *User) Administrative() bool {
	return u.IsAdmin || u.IsSuperAdmin || u.Role == "admin" || u.Role == "super_admin"
}
