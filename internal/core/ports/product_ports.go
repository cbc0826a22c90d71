package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type CreateProductInput struct {
	Name     string
	ColorHex *string
}

type ProductService interface {
	Create(ctx context.Context, actor domain.User, input CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.Product, error)
	// List returns the products visible to actor.
	List(ctx context.Context, actor domain.User) ([]domain.Product, error)
}
