package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

// authority re-reads the acting user's grants on every check so a revoked
// role takes effect on the next request.
type authority struct {
	roles ports.RoleRepository
}

func (a authority) rolesOf(ctx context.Context, user domain.User) (domain.Roles, error) {
	grants, err := a.roles.GrantsForUser(ctx, user.ID, user.Email)
	if err != nil {
		return domain.Roles{}, storageErr(err)
	}
	return grants.RolesFor(user), nil
}

func (a authority) requireSystemAdmin(ctx context.Context, user domain.User) error {
	roles, err := a.rolesOf(ctx, user)
	if err != nil {
		return err
	}
	if !roles.IsSystemAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (a authority) requireProductManager(ctx context.Context, user domain.User, productID uuid.UUID) error {
	roles, err := a.rolesOf(ctx, user)
	if err != nil {
		return err
	}
	if !roles.CanManageProduct(productID) {
		return domain.ErrForbidden
	}
	return nil
}

func (a authority) requireProductViewer(ctx context.Context, user domain.User, productID uuid.UUID) error {
	roles, err := a.rolesOf(ctx, user)
	if err != nil {
		return err
	}
	if !roles.CanSeeProduct(productID) {
		return domain.ErrForbidden
	}
	return nil
}

func (a authority) requireStakeholder(ctx context.Context, user domain.User, productID uuid.UUID) error {
	roles, err := a.rolesOf(ctx, user)
	if err != nil {
		return err
	}
	if !roles.IsStakeholderOf(productID) {
		return domain.ErrForbidden
	}
	return nil
}

// storageErr passes domain errors through and marks everything else as a
// persistence failure.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrAlreadyExists,
		domain.ErrForbidden,
		domain.ErrPersistence,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return domain.PersistenceFailure(err)
}
