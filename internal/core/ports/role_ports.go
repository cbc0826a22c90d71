package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

// RoleRepository stores role grants. Grant methods report false when the
// grant already existed; revoke methods report false when there was
// nothing to remove.
type RoleRepository interface {
	GrantsForUser(ctx context.Context, userID uuid.UUID, email string) (domain.GrantSet, error)
	ListGrants(ctx context.Context) (domain.GrantSet, error)
	GrantSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	RevokeSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantProductOwner(ctx context.Context, grant domain.ProductOwnerGrant) (bool, error)
	RevokeProductOwner(ctx context.Context, grant domain.ProductOwnerGrant) (bool, error)
	GrantStakeholder(ctx context.Context, grant domain.StakeholderGrant) (bool, error)
	RevokeStakeholder(ctx context.Context, productID uuid.UUID, email string) (bool, error)
}

type RoleService interface {
	EffectiveRoles(ctx context.Context, user domain.User) (domain.Roles, error)
	CanManageProduct(ctx context.Context, user domain.User, productID uuid.UUID) (bool, error)
	// VisibleUsers lists the users actor may see under the given lens,
	// either RoleSystemAdmin or RoleProductOwner.
	VisibleUsers(ctx context.Context, actor domain.User, view domain.Role) ([]domain.UserRoles, error)
	GrantRole(ctx context.Context, actor domain.User, change domain.RoleChange) (domain.GrantOutcome, error)
	RevokeRole(ctx context.Context, actor domain.User, change domain.RoleChange) error
	DeleteUser(ctx context.Context, actor domain.User, userID uuid.UUID) error
}
