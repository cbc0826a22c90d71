package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"go.uber.org/zap"
)

type RoleService struct {
	auth      authority
	roles     ports.RoleRepository
	users     ports.UserRepository
	userSvc   ports.UserService
	products  ports.ProductRepository
	protected map[string]struct{}
	log       *zap.Logger
}

// NewRoleService builds the role authority. protectedEmails lists the
// identities that can never be deleted.
func NewRoleService(
	roles ports.RoleRepository,
	users ports.UserRepository,
	userSvc ports.UserService,
	products ports.ProductRepository,
	protectedEmails []string,
	log *zap.Logger,
) *RoleService {
	protected := make(map[string]struct{}, len(protectedEmails))
	for _, e := range protectedEmails {
		if e = domain.NormalizeEmail(e); e != "" {
			protected[e] = struct{}{}
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleService{
		auth:      authority{roles: roles},
		roles:     roles,
		users:     users,
		userSvc:   userSvc,
		products:  products,
		protected: protected,
		log:       log.Named("roles"),
	}
}

func (s *RoleService) EffectiveRoles(ctx context.Context, user domain.User) (domain.Roles, error) {
	return s.auth.rolesOf(ctx, user)
}

func (s *RoleService) CanManageProduct(ctx context.Context, user domain.User, productID uuid.UUID) (bool, error) {
	roles, err := s.auth.rolesOf(ctx, user)
	if err != nil {
		return false, err
	}
	return roles.CanManageProduct(productID), nil
}

func (s *RoleService) VisibleUsers(ctx context.Context, actor domain.User, view domain.Role) ([]domain.UserRoles, error) {
	actorRoles, err := s.auth.rolesOf(ctx, actor)
	if err != nil {
		return nil, err
	}

	switch view {
	case domain.RoleSystemAdmin:
		if !actorRoles.IsSystemAdmin {
			return nil, domain.ErrForbidden
		}
	case domain.RoleProductOwner:
		if !actorRoles.IsSystemAdmin && len(actorRoles.OwnedProductIDs) == 0 {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.InvalidInput(fmt.Sprintf("unsupported view %q", view))
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	grants, err := s.roles.ListGrants(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	visible := make([]domain.UserRoles, 0, len(users))
	for _, u := range users {
		roles := grants.RolesFor(u)
		if view == domain.RoleProductOwner && !visibleToOwner(actor, actorRoles, u, roles) {
			continue
		}
		visible = append(visible, domain.NewUserRoles(u, roles))
	}
	return visible, nil
}

// visibleToOwner narrows the user list to people holding a grant on one of
// the owner's products. System admins only appear as the acting user.
func visibleToOwner(actor domain.User, actorRoles domain.Roles, u domain.User, roles domain.Roles) bool {
	if roles.IsSystemAdmin && u.ID != actor.ID {
		return false
	}
	for id := range actorRoles.OwnedProductIDs {
		if roles.OwnedProductIDs.Has(id) || roles.StakeholderProductIDs.Has(id) {
			return true
		}
	}
	return false
}

func (s *RoleService) GrantRole(ctx context.Context, actor domain.User, change domain.RoleChange) (domain.GrantOutcome, error) {
	if err := s.authorizeChange(ctx, actor, change); err != nil {
		return "", err
	}

	var (
		changed bool
		err     error
	)
	switch change.RoleType {
	case domain.GrantSystemAdmin:
		var target *domain.User
		if target, err = s.resolveTarget(ctx, change, true); err != nil {
			return "", err
		}
		changed, err = s.roles.GrantSystemAdmin(ctx, target.ID)
	case domain.GrantProductOwner:
		var target *domain.User
		if target, err = s.resolveTarget(ctx, change, true); err != nil {
			return "", err
		}
		changed, err = s.roles.GrantProductOwner(ctx, domain.ProductOwnerGrant{UserID: target.ID, ProductID: *change.ProductID})
	case domain.GrantStakeholder:
		email := domain.NormalizeEmail(change.UserEmail)
		if email == "" {
			return "", domain.InvalidInput("user email is required")
		}
		changed, err = s.roles.GrantStakeholder(ctx, domain.StakeholderGrant{
			ProductID: *change.ProductID,
			UserEmail: email,
			UserName:  change.UserName,
		})
	}
	if err != nil {
		return "", storageErr(err)
	}

	outcome := domain.OutcomeGranted
	if !changed {
		outcome = domain.OutcomeAlreadyAssigned
	}
	s.log.Info("role granted",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(change.RoleType)),
		zap.String("user_email", change.UserEmail),
		zap.String("outcome", string(outcome)),
	)
	return outcome, nil
}

func (s *RoleService) RevokeRole(ctx context.Context, actor domain.User, change domain.RoleChange) error {
	if err := s.authorizeChange(ctx, actor, change); err != nil {
		return err
	}

	var (
		changed bool
		err     error
	)
	switch change.RoleType {
	case domain.GrantSystemAdmin:
		var target *domain.User
		if target, err = s.resolveTarget(ctx, change, false); err != nil {
			return err
		}
		changed, err = s.roles.RevokeSystemAdmin(ctx, target.ID)
	case domain.GrantProductOwner:
		var target *domain.User
		if target, err = s.resolveTarget(ctx, change, false); err != nil {
			return err
		}
		changed, err = s.roles.RevokeProductOwner(ctx, domain.ProductOwnerGrant{UserID: target.ID, ProductID: *change.ProductID})
	case domain.GrantStakeholder:
		changed, err = s.roles.RevokeStakeholder(ctx, *change.ProductID, change.UserEmail)
	}
	if err != nil {
		return storageErr(err)
	}
	if !changed {
		return domain.ErrGrantNotFound
	}

	s.log.Info("role revoked",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(change.RoleType)),
		zap.String("user_email", change.UserEmail),
	)
	return nil
}

// authorizeChange validates the shape of a role change and checks the
// acting user's own authority before anything is written.
func (s *RoleService) authorizeChange(ctx context.Context, actor domain.User, change domain.RoleChange) error {
	switch change.RoleType {
	case domain.GrantSystemAdmin:
		return s.auth.requireSystemAdmin(ctx, actor)
	case domain.GrantProductOwner, domain.GrantStakeholder:
		if change.ProductID == nil {
			return domain.InvalidInput("product id is required")
		}
		if _, err := s.products.GetByID(ctx, *change.ProductID); err != nil {
			return storageErr(err)
		}
		return s.auth.requireProductManager(ctx, actor, *change.ProductID)
	default:
		return domain.InvalidInput(fmt.Sprintf("unknown role type %q", change.RoleType))
	}
}

func (s *RoleService) resolveTarget(ctx context.Context, change domain.RoleChange, create bool) (*domain.User, error) {
	if change.UserID != nil {
		user, err := s.users.GetByID(ctx, *change.UserID)
		if err != nil {
			return nil, storageErr(err)
		}
		return user, nil
	}

	if domain.NormalizeEmail(change.UserEmail) == "" {
		return nil, domain.InvalidInput("user id or email is required")
	}
	if create {
		return s.userSvc.EnsureUser(ctx, change.UserEmail, change.UserName)
	}

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(change.UserEmail))
	if err != nil {
		return nil, storageErr(err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *RoleService) DeleteUser(ctx context.Context, actor domain.User, userID uuid.UUID) error {
	if err := s.auth.requireSystemAdmin(ctx, actor); err != nil {
		return err
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storageErr(err)
	}
	if _, ok := s.protected[domain.NormalizeEmail(target.Email)]; ok {
		return domain.ErrProtectedUser
	}

	if err := s.users.DeleteWithGrants(ctx, target.ID, target.Email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.log.Error("failed to delete user", zap.String("user_id", userID.String()), zap.Error(err))
		return storageErr(err)
	}

	s.log.Info("user deleted",
		zap.String("actor_id", actor.ID.String()),
		zap.String("user_id", target.ID.String()),
	)
	return nil
}
