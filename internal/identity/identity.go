// Package identity holds the per-request caller assertion consumed by the core.
// The assertion is produced upstream (see middleware.Authenticate); nothing in
// this package issues or verifies credentials.
package identity

import "github.com/google/uuid"

// Role is the caller's functional role.
type Role string

const (
	RoleSales      Role = "sales"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every known role, in declaration order.
var Roles = []Role{RoleSales, RoleTechnician, RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Identity is who is acting, and with which rights.
type Identity struct {
	UserID       uuid.UUID
	Role         Role
	IsAdmin      bool
	IsSuperAdmin bool
}

// Admin reports whether the caller has administrative rights, either through
// the admin flags or through an administrative role.
func (i Identity) Admin() bool {
	return i.IsAdmin || i.IsSuperAdmin || i.Role == RoleAdmin || i.Role == RoleSuperAdmin
}

// SuperAdmin reports whether the caller may manage other administrators.
func (i Identity) SuperAdmin() bool {
	return i.IsSuperAdmin || i.Role == RoleSuperAdmin
}
