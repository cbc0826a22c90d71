package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type RoleRepository struct {
	s *Store
}

func (r *RoleRepository) GrantsForUser(ctx context.Context, userID uuid.UUID, email string) (domain.GrantSet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	set := domain.GrantSet{}
	if _, ok := r.s.systemAdmins[userID]; ok {
		set.SystemAdmins = append(set.SystemAdmins, domain.SystemAdminGrant{UserID: userID})
	}
	for g := range r.s.productOwners {
		if g.UserID == userID {
			set.ProductOwners = append(set.ProductOwners, g)
		}
	}
	email = domain.NormalizeEmail(email)
	for k, g := range r.s.stakeholders {
		if k.email == email {
			set.Stakeholders = append(set.Stakeholders, g)
		}
	}
	return set, nil
}

func (r *RoleRepository) ListGrants(ctx context.Context) (domain.GrantSet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	set := domain.GrantSet{}
	for id := range r.s.systemAdmins {
		set.SystemAdmins = append(set.SystemAdmins, domain.SystemAdminGrant{UserID: id})
	}
	for g := range r.s.productOwners {
		set.ProductOwners = append(set.ProductOwners, g)
	}
	for _, g := range r.s.stakeholders {
		set.Stakeholders = append(set.Stakeholders, g)
	}
	return set, nil
}

func (r *RoleRepository) GrantSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return false, domain.ErrUserNotFound
	}
	if _, ok := r.s.systemAdmins[userID]; ok {
		return false, nil
	}
	r.s.systemAdmins[userID] = struct{}{}
	return true, nil
}

func (r *RoleRepository) RevokeSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.systemAdmins[userID]; !ok {
		return false, nil
	}
	delete(r.s.systemAdmins, userID)
	return true, nil
}

func (r *RoleRepository) GrantProductOwner(ctx context.Context, grant domain.ProductOwnerGrant) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[grant.UserID]; !ok {
		return false, domain.ErrUserNotFound
	}
	if _, ok := r.s.products[grant.ProductID]; !ok {
		return false, domain.ErrProductNotFound
	}
	if _, ok := r.s.productOwners[grant]; ok {
		return false, nil
	}
	r.s.productOwners[grant] = struct{}{}
	return true, nil
}

func (r *RoleRepository) RevokeProductOwner(ctx context.Context, grant domain.ProductOwnerGrant) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.productOwners[grant]; !ok {
		return false, nil
	}
	delete(r.s.productOwners, grant)
	return true, nil
}

func (r *RoleRepository) GrantStakeholder(ctx context.Context, grant domain.StakeholderGrant) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[grant.ProductID]; !ok {
		return false, domain.ErrProductNotFound
	}
	grant.UserEmail = domain.NormalizeEmail(grant.UserEmail)
	key := stakeholderKey{productID: grant.ProductID, email: grant.UserEmail}
	if _, ok := r.s.stakeholders[key]; ok {
		return false, nil
	}
	r.s.stakeholders[key] = grant
	return true, nil
}

func (r *RoleRepository) RevokeStakeholder(ctx context.Context, productID uuid.UUID, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := stakeholderKey{productID: productID, email: domain.NormalizeEmail(email)}
	if _, ok := r.s.stakeholders[key]; !ok {
		return false, nil
	}
	delete(r.s.stakeholders, key)
	return true, nil
}
