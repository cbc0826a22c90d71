package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type UserRepository interface {
	// GetByEmail returns nil and no error when no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	// DeleteWithGrants removes every grant held by the user, stakeholder
	// grants matched by email included, and then the user row, as a unit.
	DeleteWithGrants(ctx context.Context, id uuid.UUID, email string) error
}
