package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		products = append(products, p)
	}
	sortByCreated(products, func(p domain.Product) (int64, string) {
		return p.CreatedAt.UnixNano(), p.ID.String()
	})
	return products, nil
}
