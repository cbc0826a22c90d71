package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

func newRoleService(fx *fixture, protected ...string) *RoleService {
	return NewRoleService(
		fx.store.Roles(),
		fx.store.Users(),
		NewUserService(fx.store.Users(), fx.clock),
		fx.store.Products(),
		protected,
		nil,
	)
}

func TestRoleService_EffectiveRoles(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx)

	_, err := fx.store.Roles().GrantProductOwner(ctx, domain.ProductOwnerGrant{UserID: fx.admin.ID, ProductID: fx.product.ID})
	require.NoError(t, err)

	roles, err := svc.EffectiveRoles(ctx, fx.admin)
	require.NoError(t, err)
	assert.True(t, roles.IsSystemAdmin)
	assert.True(t, roles.OwnedProductIDs.Has(fx.product.ID))
	assert.Equal(t, domain.RoleSystemAdmin, roles.Primary())

	roles, err = svc.EffectiveRoles(ctx, fx.stakeholder)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStakeholder, roles.Primary())

	ok, err := svc.CanManageProduct(ctx, fx.owner, fx.product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.CanManageProduct(ctx, fx.stakeholder, fx.product.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleService_VisibleUsers(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx)

	all, err := svc.VisibleUsers(ctx, fx.admin, domain.RoleSystemAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = svc.VisibleUsers(ctx, fx.owner, domain.RoleSystemAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.VisibleUsers(ctx, fx.stakeholder, domain.RoleProductOwner)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// a system admin who also owns the product is hidden from other owners
	_, err = fx.store.Roles().GrantProductOwner(ctx, domain.ProductOwnerGrant{UserID: fx.admin.ID, ProductID: fx.product.ID})
	require.NoError(t, err)

	scoped, err := svc.VisibleUsers(ctx, fx.owner, domain.RoleProductOwner)
	require.NoError(t, err)
	ids := map[uuid.UUID]domain.Role{}
	for _, ur := range scoped {
		ids[ur.User.ID] = ur.PrimaryRole
	}
	assert.Equal(t, map[uuid.UUID]domain.Role{
		fx.owner.ID:       domain.RoleProductOwner,
		fx.stakeholder.ID: domain.RoleStakeholder,
	}, ids)

	self, err := svc.VisibleUsers(ctx, fx.admin, domain.RoleProductOwner)
	require.NoError(t, err)
	found := false
	for _, ur := range self {
		if ur.User.ID == fx.admin.ID {
			found = true
			assert.Equal(t, domain.RoleSystemAdmin, ur.PrimaryRole)
		}
	}
	assert.True(t, found, "acting admin sees their own row")

	_, err = svc.VisibleUsers(ctx, fx.admin, domain.RoleStakeholder)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoleService_GrantRole(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx)
	productID := fx.product.ID

	change := domain.RoleChange{
		ProductID: &productID,
		RoleType:  domain.GrantProductOwner,
		UserEmail: "New.Owner@example.com",
		UserName:  "New Owner",
	}

	_, err := svc.GrantRole(ctx, fx.stakeholder, change)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	outcome, err := svc.GrantRole(ctx, fx.owner, change)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeGranted, outcome)

	outcome, err = svc.GrantRole(ctx, fx.owner, change)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyAssigned, outcome)

	created, err := fx.store.Users().GetByEmail(ctx, "new.owner@example.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	ok, err := svc.CanManageProduct(ctx, *created, productID)
	require.NoError(t, err)
	assert.True(t, ok)

	stake := domain.RoleChange{ProductID: &productID, RoleType: domain.GrantStakeholder, UserEmail: "future@example.com", UserName: "Future"}
	outcome, err = svc.GrantRole(ctx, fx.owner, stake)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeGranted, outcome)
	outcome, err = svc.GrantRole(ctx, fx.owner, stake)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyAssigned, outcome)
}

func TestRoleService_GrantSystemAdminRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx)
	change := domain.RoleChange{RoleType: domain.GrantSystemAdmin, UserID: &fx.owner.ID}

	_, err := svc.GrantRole(ctx, fx.owner, change)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	outcome, err := svc.GrantRole(ctx, fx.admin, change)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeGranted, outcome)

	outcome, err = svc.GrantRole(ctx, fx.admin, change)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyAssigned, outcome)
}

func TestRoleService_GrantRoleValidation(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx)
	missing := uuid.New()

	_, err := svc.GrantRole(ctx, fx.admin, domain.RoleChange{RoleType: domain.GrantStakeholder, UserEmail: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.GrantRole(ctx, fx.admin, domain.RoleChange{ProductID: &missing, RoleType: domain.GrantStakeholder, UserEmail: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.GrantRole(ctx, fx.admin, domain.RoleChange{RoleType: "owner"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoleService_RevokeRole(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx)
	productID := fx.product.ID

	change := domain.RoleChange{ProductID: &productID, RoleType: domain.GrantStakeholder, UserEmail: fx.stakeholder.Email}
	assert.ErrorIs(t, svc.RevokeRole(ctx, fx.stakeholder, change), domain.ErrForbidden)
	require.NoError(t, svc.RevokeRole(ctx, fx.owner, change))
	assert.ErrorIs(t, svc.RevokeRole(ctx, fx.owner, change), domain.ErrGrantNotFound)

	roles, err := svc.EffectiveRoles(ctx, fx.stakeholder)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, roles.Primary())

	po := domain.RoleChange{ProductID: &productID, RoleType: domain.GrantProductOwner, UserEmail: fx.owner.Email}
	require.NoError(t, svc.RevokeRole(ctx, fx.admin, po))

	unknown := domain.RoleChange{ProductID: &productID, RoleType: domain.GrantProductOwner, UserEmail: "ghost@example.com"}
	assert.ErrorIs(t, svc.RevokeRole(ctx, fx.admin, unknown), domain.ErrUserNotFound)
}

func TestRoleService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newRoleService(fx, "OWNER@example.com")

	assert.ErrorIs(t, svc.DeleteUser(ctx, fx.owner, fx.stakeholder.ID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, fx.admin, fx.owner.ID), domain.ErrProtectedUser)
	assert.ErrorIs(t, svc.DeleteUser(ctx, fx.admin, fx.owner.ID), domain.ErrForbidden)

	require.NoError(t, svc.DeleteUser(ctx, fx.admin, fx.stakeholder.ID))

	_, err := fx.store.Users().GetByID(ctx, fx.stakeholder.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	grants, err := fx.store.Roles().ListGrants(ctx)
	require.NoError(t, err)
	assert.Empty(t, grants.Stakeholders)

	assert.ErrorIs(t, svc.DeleteUser(ctx, fx.admin, uuid.New()), domain.ErrNotFound)
}
