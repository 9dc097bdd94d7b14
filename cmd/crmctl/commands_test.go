package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdmin_CreatesThenResets(t *testing.T) {
	db := testutil.NewDB(t)

	u, err := seedAdmin(db, seedAdminOptions{Username: "root", Email: "root@example.com", FullName: "Root", Password: "first-password"})
	require.NoError(t, err)
	assert.True(t, u.IsSuperAdmin)
	assert.Equal(t, "super_admin", u.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("first-password")))

	// demote and deactivate, then seed again
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", u.ID).
		Updates(map[string]any{"role": "sales", "is_admin": false, "is_super_admin": false, "is_active": false}).Error)

	again, err := seedAdmin(db, seedAdminOptions{Username: "root", Email: "root@example.com", FullName: "Root", Password: "second-password"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.True(t, again.IsSuperAdmin)
	assert.True(t, again.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(again.PasswordHash), []byte("second-password")))

	var n int64
	require.NoError(t, db.Model(&model.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSeedAdmin_ShortPassword(t *testing.T) {
	_, err := seedAdmin(testutil.NewDB(t), seedAdminOptions{Username: "root", Password: "short"})
	assert.Error(t, err)
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "s3cret-pass"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"migrate"})
	assert.Error(t, cmd.Execute())
}
