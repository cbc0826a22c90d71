package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type FeatureRepository interface {
	Create(ctx context.Context, feature *domain.Feature) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Feature, error)
	Update(ctx context.Context, feature *domain.Feature) error
	// Delete removes the feature together with its vote records.
	Delete(ctx context.Context, id uuid.UUID) error
	// ApplyImport writes the updated and inserted features of a plan as a
	// single unit.
	ApplyImport(ctx context.Context, plan domain.ImportPlan) error
}

// Tracker is the external work item source features are imported from.
type Tracker interface {
	FetchWorkItems(ctx context.Context) ([]domain.ExternalFeature, error)
}

type CreateFeatureInput struct {
	SessionID   uuid.UUID
	Title       string
	Description string
	Epic        *string
}

type UpdateFeatureInput struct {
	Title       string
	Description string
	Epic        *string
}

type CatalogService interface {
	Create(ctx context.Context, actor domain.User, input CreateFeatureInput) (*domain.FeatureWithVotes, error)
	Update(ctx context.Context, actor domain.User, id uuid.UUID, input UpdateFeatureInput) (*domain.FeatureWithVotes, error)
	Delete(ctx context.Context, actor domain.User, id uuid.UUID) error
	Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.FeatureWithVotes, error)
	ListBySession(ctx context.Context, actor domain.User, sessionID uuid.UUID) ([]domain.FeatureWithVotes, error)
	Import(ctx context.Context, actor domain.User, sessionID uuid.UUID, batch []domain.ExternalFeature) ([]domain.FeatureWithVotes, error)
	ImportFromTracker(ctx context.Context, actor domain.User, sessionID uuid.UUID) ([]domain.FeatureWithVotes, error)
}
