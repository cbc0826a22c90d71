package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type UserService struct {
	repo  ports.UserRepository
	clock clock.Clock
}

func NewUserService(repo ports.UserRepository, clk clock.Clock) *UserService {
	return &UserService{
		repo:  repo,
		clock: clk,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", storageErr(err))
	}
	return user, nil
}

func (s *UserService) EnsureUser(ctx context.Context, email, name string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.InvalidInput("a valid email is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", storageErr(err))
	}
	if user != nil {
		return user, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	user = &domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// created concurrently by another request
			return s.repo.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", storageErr(err))
	}
	return user, nil
}
