package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

const defaultAccessTokenTTL = 15 * time.Minute

// IdentityService turns a bearer token or a requester email into a user.
// It does not implement any login flow; tokens are issued to already
// known users only.
type IdentityService struct {
	userRepo  ports.UserRepository
	users     ports.UserService
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     clock.Clock
}

func NewIdentityService(userRepo ports.UserRepository, users ports.UserService, jwtSecret string, tokenTTL time.Duration, clk clock.Clock) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = defaultAccessTokenTTL
	}
	return &IdentityService{
		userRepo:  userRepo,
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clock:     clk,
	}
}

func (s *IdentityService) ResolveBearer(ctx context.Context, token string) (*domain.User, error) {
	if len(s.jwtSecret) == 0 {
		return nil, fmt.Errorf("%w: bearer tokens are not enabled", domain.ErrUnauthenticated)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", domain.ErrUnauthenticated)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return nil, storageErr(err)
	}
	return user, nil
}

func (s *IdentityService) ResolveEmail(ctx context.Context, email, name string) (*domain.User, error) {
	if domain.NormalizeEmail(email) == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.EnsureUser(ctx, email, name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, err
	}
	return user, nil
}

func (s *IdentityService) IssueAccessToken(user domain.User) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}

	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"exp":   now.Add(s.tokenTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
