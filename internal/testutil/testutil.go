// Package testutil provides an in-memory store and fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection is kept so that transactions see their own writes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// SeedUser stores an active account with the given role and returns it.
func SeedUser(t *testing.T, db *gorm.DB, role identity.Role) *model.User {
	t.Helper()
	name := string(role) + "-" + uuid.NewString()[:8]
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		FullName:     name,
		Role:         string(role),
		IsAdmin:      role == identity.RoleAdmin || role == identity.RoleSuperAdmin,
		IsSuperAdmin: role == identity.RoleSuperAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Deactivate marks a seeded account inactive.
func Deactivate(t *testing.T, db *gorm.DB, u *model.User) {
	t.Helper()
	require.NoError(t, db.Model(u).Update("is_active", false).Error)
	u.IsActive = false
}

// As builds the identity a request from u would carry.
func As(u *model.User) identity.Identity {
	return identity.Identity{
		UserID:       u.ID,
		Role:         identity.Role(u.Role),
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
	}
}

// SeedClient stores an individual client named name.
func SeedClient(t *testing.T, db *gorm.DB, name string) *model.Client {
	t.Helper()
	c := &model.Client{Name: name, ClientType: model.ClientIndividual}
	require.NoError(t, db.Create(c).Error)
	return c
}

// SeedItem stores an active catalog item at price.
func SeedItem(t *testing.T, db *gorm.DB, price string) *model.Item {
	t.Helper()
	code := "IT-" + uuid.NewString()[:8]
	i := &model.Item{
		Code:      code,
		Name:      "item " + code,
		UnitPrice: decimal.RequireFromString(price),
		Unit:      "ea",
		IsActive:  true,
	}
	require.NoError(t, db.Create(i).Error)
	return i
}
