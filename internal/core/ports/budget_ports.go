package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

// BudgetStore holds pending vote budgets between requests.
type BudgetStore interface {
	// Load returns nil and no error when no draft exists.
	Load(ctx context.Context, sessionID, userID uuid.UUID) (*domain.VoteBudget, error)
	Save(ctx context.Context, budget *domain.VoteBudget) error
	Delete(ctx context.Context, sessionID, userID uuid.UUID) error
}

type BudgetView struct {
	Budget       *domain.VoteBudget `json:"budget"`
	VotesPerUser int                `json:"votes_per_user"`
	Remaining    int                `json:"remaining"`
	SessionOpen  bool               `json:"session_open"`
}

type BudgetService interface {
	Current(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*BudgetView, error)
	Increment(ctx context.Context, actor domain.User, sessionID, featureID uuid.UUID) (*BudgetView, error)
	Decrement(ctx context.Context, actor domain.User, sessionID, featureID uuid.UUID) (*BudgetView, error)
	Submit(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*BudgetView, error)
	Discard(ctx context.Context, actor domain.User, sessionID uuid.UUID) error
}
