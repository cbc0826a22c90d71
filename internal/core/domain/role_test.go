package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles_PrimaryPrecedence(t *testing.T) {
	p1 := uuid.New()

	roles := NewRoles()
	assert.Equal(t, RoleNone, roles.Primary())

	roles.StakeholderProductIDs.Add(p1)
	assert.Equal(t, RoleStakeholder, roles.Primary())

	roles.OwnedProductIDs.Add(p1)
	assert.Equal(t, RoleProductOwner, roles.Primary())

	roles.IsSystemAdmin = true
	assert.Equal(t, RoleSystemAdmin, roles.Primary())
	assert.True(t, roles.Has(RoleProductOwner), "lower roles are still held")
}

func TestRoles_CanManageProduct(t *testing.T) {
	owned, other := uuid.New(), uuid.New()

	roles := NewRoles()
	roles.OwnedProductIDs.Add(owned)
	roles.StakeholderProductIDs.Add(other)
	assert.True(t, roles.CanManageProduct(owned))
	assert.False(t, roles.CanManageProduct(other))
	assert.True(t, roles.CanSeeProduct(other))

	roles.IsSystemAdmin = true
	assert.True(t, roles.CanManageProduct(other))
}

func TestGrantSet_RolesFor(t *testing.T) {
	user := User{ID: uuid.New(), Email: "Dana@Example.com"}
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	grants := GrantSet{
		SystemAdmins: []SystemAdminGrant{{UserID: uuid.New()}},
		ProductOwners: []ProductOwnerGrant{
			{UserID: user.ID, ProductID: p1},
			{UserID: uuid.New(), ProductID: p2},
		},
		Stakeholders: []StakeholderGrant{
			{ProductID: p2, UserEmail: " dana@example.com"},
			{ProductID: p3, UserEmail: "someone@example.com"},
		},
	}

	roles := grants.RolesFor(user)
	assert.False(t, roles.IsSystemAdmin)
	assert.Equal(t, []uuid.UUID{p1}, roles.OwnedProductIDs.Slice())
	assert.Equal(t, []uuid.UUID{p2}, roles.StakeholderProductIDs.Slice())
	assert.Equal(t, RoleProductOwner, roles.Primary())
}

func TestProductSet_JSON(t *testing.T) {
	id := uuid.New()
	data, err := json.Marshal(NewUserRoles(User{ID: uuid.New()}, Roles{
		OwnedProductIDs:       NewProductSet(id),
		StakeholderProductIDs: NewProductSet(),
	}))
	require.NoError(t, err)

	var decoded UserRoles
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Roles.OwnedProductIDs.Has(id))
	assert.Equal(t, RoleProductOwner, decoded.PrimaryRole)
}

func TestParseGrantType(t *testing.T) {
	gt, ok := ParseGrantType("product_owner")
	assert.True(t, ok)
	assert.Equal(t, GrantProductOwner, gt)

	_, ok = ParseGrantType("owner")
	assert.False(t, ok)
}
