package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type ProductService struct {
	repo  ports.ProductRepository
	auth  authority
	clock clock.Clock
}

func NewProductService(repo ports.ProductRepository, roles ports.RoleRepository, clk clock.Clock) *ProductService {
	return &ProductService{
		repo:  repo,
		auth:  authority{roles: roles},
		clock: clk,
	}
}

func (s *ProductService) Create(ctx context.Context, actor domain.User, input ports.CreateProductInput) (*domain.Product, error) {
	if err := s.auth.requireSystemAdmin(ctx, actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}
	var color *string
	if input.ColorHex != nil && *input.ColorHex != "" {
		if !colorHexPattern.MatchString(*input.ColorHex) {
			return nil, domain.InvalidInput("color must be in #RRGGBB form")
		}
		c := strings.ToUpper(*input.ColorHex)
		color = &c
	}

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		ColorHex:  color,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, storageErr(err)
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductViewer(ctx, actor, id); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, actor domain.User) ([]domain.Product, error) {
	roles, err := s.auth.rolesOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	visible := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if roles.CanSeeProduct(p.ID) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}
