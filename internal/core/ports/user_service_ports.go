package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// EnsureUser returns the user with that email, creating it on first sight.
	EnsureUser(ctx context.Context, email, name string) (*domain.User, error)
}

type IdentityService interface {
	ResolveBearer(ctx context.Context, token string) (*domain.User, error)
	ResolveEmail(ctx context.Context, email, name string) (*domain.User, error)
	IssueAccessToken(user domain.User) (string, error)
}
