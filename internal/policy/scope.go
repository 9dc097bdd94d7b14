// Package policy resolves which rows a caller may see or modify.
//
// Every (role, resource) pair maps to one resolver function returning a Scope.
// Pairs without a resolver resolve to None: a missing rule never grants access.
package policy

import (
	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/identity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resource names a record collection subject to visibility rules.
type Resource string

const (
	ResourceQuotation    Resource = "quotation"
	ResourceContract     Resource = "contract"
	ResourceConsultation Resource = "consultation"
	ResourceInstallation Resource = "installation"
	ResourceClient       Resource = "client"
	ResourceItem         Resource = "item"
	ResourceInventory    Resource = "inventory"
	ResourceAccount      Resource = "account"
)

// Visibility is the shape of a Scope.
type Visibility int

const (
	None  Visibility = iota // nothing is visible
	Owned                   // rows whose owner column equals the caller
	All                     // unrestricted
)

func (v Visibility) String() string {
	switch v {
	case All:
		return "all"
	case Owned:
		return "owned"
	default:
		return "none"
	}
}

// Scope is the visibility predicate for one caller over one resource.
type Scope struct {
	Visibility Visibility
	// Column is the owner column checked when Visibility is Owned.
	Column  string
	OwnerID uuid.UUID
}

// Apply narrows q to the rows the scope lets through.
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	switch s.Visibility {
	case All:
		return q
	case Owned:
		return q.Where(s.Column+" = ?", s.OwnerID)
	default:
		return q.Where("1 = 0")
	}
}

// Permits reports whether a single record owned by ownerID is visible.
func (s Scope) Permits(ownerID uuid.UUID) bool {
	switch s.Visibility {
	case All:
		return true
	case Owned:
		return ownerID == s.OwnerID
	default:
		return false
	}
}

type resolver func(id identity.Identity) Scope

func all(identity.Identity) Scope { return Scope{Visibility: All} }

func none(identity.Identity) Scope { return Scope{Visibility: None} }

func ownedBy(column string) resolver {
	return func(id identity.Identity) Scope {
		return Scope{Visibility: Owned, Column: column, OwnerID: id.UserID}
	}
}

var salesRules = map[Resource]resolver{
	ResourceQuotation:    ownedBy("salesperson_id"),
	ResourceContract:     ownedBy("salesperson_id"),
	ResourceConsultation: ownedBy("salesperson_id"),
	ResourceClient:       all,
	ResourceItem:         all,
	ResourceInventory:    all,
}

var technicianRules = map[Resource]resolver{
	ResourceInstallation: ownedBy("technician_id"),
	ResourceClient:       all,
	ResourceItem:         all,
	ResourceInventory:    all,
}

var roleRules = map[identity.Role]map[Resource]resolver{
	identity.RoleSales:      salesRules,
	identity.RoleTechnician: technicianRules,
}

// Resolve returns the scope of id over resource. Administrators see everything.
func Resolve(id identity.Identity, resource Resource) Scope {
	if id.Admin() {
		return all(id)
	}
	rules, ok := roleRules[id.Role]
	if !ok {
		return none(id)
	}
	fn, ok := rules[resource]
	if !ok {
		return none(id)
	}
	return fn(id)
}

// Authorize applies the single-record rule: outside the role's domain the
// record is hidden (not found); inside it but owned by someone else the
// caller is refused (forbidden).
func Authorize(s Scope, ownerID uuid.UUID, what string) error {
	if s.Permits(ownerID) {
		return nil
	}
	if s.Visibility == None {
		return apierror.NotFound(what + " not found")
	}
	return apierror.Forbidden("you are not allowed to access this " + what)
}
