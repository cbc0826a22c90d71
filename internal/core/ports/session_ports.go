package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.VotingSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error)
	List(ctx context.Context) ([]domain.VotingSession, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]domain.VotingSession, error)
	Update(ctx context.Context, session *domain.VotingSession) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type SessionInput struct {
	ProductID    uuid.UUID
	Title        string
	Goal         string
	VotesPerUser int
	StartDate    time.Time
	EndDate      time.Time
}

type SessionService interface {
	Create(ctx context.Context, actor domain.User, input SessionInput) (*domain.VotingSession, error)
	// Update ignores input.ProductID; a session never moves between products.
	Update(ctx context.Context, actor domain.User, id uuid.UUID, input SessionInput) (*domain.VotingSession, error)
	Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.VotingSession, error)
	ListByProduct(ctx context.Context, actor domain.User, productID uuid.UUID) ([]domain.VotingSession, error)
	// ReconcileAll brings every cached IsActive flag in line with the
	// session dates and returns how many sessions were corrected.
	ReconcileAll(ctx context.Context) (int, error)
}

type ResultsService interface {
	SessionResults(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*domain.SessionResults, error)
}
