package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = domain.NormalizeEmail(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Email, domain.ErrAlreadyExists)
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sortByCreated(users, func(u domain.User) (int64, string) {
		return u.CreatedAt.UnixNano(), u.ID.String()
	})
	return users, nil
}

func (r *UserRepository) DeleteWithGrants(ctx context.Context, id uuid.UUID, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}

	delete(r.s.systemAdmins, id)
	for g := range r.s.productOwners {
		if g.UserID == id {
			delete(r.s.productOwners, g)
		}
	}
	email = domain.NormalizeEmail(email)
	for k := range r.s.stakeholders {
		if k.email == email {
			delete(r.s.stakeholders, k)
		}
	}
	delete(r.s.users, id)
	return nil
}
