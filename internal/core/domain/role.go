package domain

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

type Role string

const (
	RoleNone         Role = "none"
	RoleStakeholder  Role = "stakeholder"
	RoleProductOwner Role = "product-owner"
	RoleSystemAdmin  Role = "system-admin"
)

func (r Role) rank() int {
	switch r {
	case RoleSystemAdmin:
		return 3
	case RoleProductOwner:
		return 2
	case RoleStakeholder:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether r carries more privilege than other.
func (r Role) Outranks(other Role) bool {
	return r.rank() > other.rank()
}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleNone, RoleStakeholder, RoleProductOwner, RoleSystemAdmin:
		return Role(s), true
	}
	return RoleNone, false
}

type ProductSet map[uuid.UUID]struct{}

func NewProductSet(ids ...uuid.UUID) ProductSet {
	s := make(ProductSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ProductSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s ProductSet) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

// Slice returns the ids in a stable order.
func (s ProductSet) Slice() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (s ProductSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *ProductSet) UnmarshalJSON(data []byte) error {
	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewProductSet(ids...)
	return nil
}

// Roles is the effective role set of one user, the union of every grant
// that references them.
type Roles struct {
	IsSystemAdmin         bool       `json:"is_system_admin"`
	OwnedProductIDs       ProductSet `json:"owned_product_ids"`
	StakeholderProductIDs ProductSet `json:"stakeholder_product_ids"`
}

func NewRoles() Roles {
	return Roles{
		OwnedProductIDs:       NewProductSet(),
		StakeholderProductIDs: NewProductSet(),
	}
}

// Primary resolves the highest privilege role held:
// system-admin > product-owner > stakeholder > none.
func (r Roles) Primary() Role {
	switch {
	case r.IsSystemAdmin:
		return RoleSystemAdmin
	case len(r.OwnedProductIDs) > 0:
		return RoleProductOwner
	case len(r.StakeholderProductIDs) > 0:
		return RoleStakeholder
	default:
		return RoleNone
	}
}

func (r Roles) Has(role Role) bool {
	switch role {
	case RoleSystemAdmin:
		return r.IsSystemAdmin
	case RoleProductOwner:
		return len(r.OwnedProductIDs) > 0
	case RoleStakeholder:
		return len(r.StakeholderProductIDs) > 0
	case RoleNone:
		return true
	}
	return false
}

func (r Roles) CanManageProduct(productID uuid.UUID) bool {
	return r.IsSystemAdmin || r.OwnedProductIDs.Has(productID)
}

func (r Roles) IsStakeholderOf(productID uuid.UUID) bool {
	return r.StakeholderProductIDs.Has(productID)
}

// CanSeeProduct reports whether the product falls in the user's
// visibility scope.
func (r Roles) CanSeeProduct(productID uuid.UUID) bool {
	return r.CanManageProduct(productID) || r.IsStakeholderOf(productID)
}

type GrantType string

const (
	GrantSystemAdmin  GrantType = "system_admin"
	GrantProductOwner GrantType = "product_owner"
	GrantStakeholder  GrantType = "stakeholder"
)

func ParseGrantType(s string) (GrantType, bool) {
	switch GrantType(s) {
	case GrantSystemAdmin, GrantProductOwner, GrantStakeholder:
		return GrantType(s), true
	}
	return "", false
}

type SystemAdminGrant struct {
	UserID uuid.UUID `json:"user_id"`
}

type ProductOwnerGrant struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// StakeholderGrant is keyed by email so it can be created before the
// user has ever signed in.
type StakeholderGrant struct {
	ProductID uuid.UUID `json:"product_id"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
}

type GrantSet struct {
	SystemAdmins  []SystemAdminGrant  `json:"system_admins"`
	ProductOwners []ProductOwnerGrant `json:"product_owners"`
	Stakeholders  []StakeholderGrant  `json:"stakeholders"`
}

func (g GrantSet) RolesFor(user User) Roles {
	roles := NewRoles()
	for _, sa := range g.SystemAdmins {
		if sa.UserID == user.ID {
			roles.IsSystemAdmin = true
		}
	}
	for _, po := range g.ProductOwners {
		if po.UserID == user.ID {
			roles.OwnedProductIDs.Add(po.ProductID)
		}
	}
	email := NormalizeEmail(user.Email)
	for _, sh := range g.Stakeholders {
		if email != "" && NormalizeEmail(sh.UserEmail) == email {
			roles.StakeholderProductIDs.Add(sh.ProductID)
		}
	}
	return roles
}

// GrantOutcome is the informational result of a grant. A grant that was
// already held is not an error.
type GrantOutcome string

const (
	OutcomeGranted         GrantOutcome = "granted"
	OutcomeAlreadyAssigned GrantOutcome = "already_assigned"
)

// RoleChange describes a grant or revoke request. ProductID is required
// for product scoped roles. UserID may be omitted when the target is
// identified by email.
type RoleChange struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	RoleType  GrantType  `json:"role_type"`
	UserEmail string     `json:"user_email"`
	UserName  string     `json:"user_name"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
}

type UserRoles struct {
	User        User  `json:"user"`
	Roles       Roles `json:"roles"`
	PrimaryRole Role  `json:"primary_role"`
}

func NewUserRoles(user User, roles Roles) UserRoles {
	return UserRoles{User: user, Roles: roles, PrimaryRole: roles.Primary()}
}
