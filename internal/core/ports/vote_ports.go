package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type VoteRepository interface {
	// Upsert inserts or replaces the record keyed by (FeatureID, UserID).
	Upsert(ctx context.Context, record domain.VoteRecord) error
	// UpsertBatch applies every record or none of them.
	UpsertBatch(ctx context.Context, records []domain.VoteRecord) error
	TotalVotes(ctx context.Context, featureID uuid.UUID) (int, error)
	Voters(ctx context.Context, featureID uuid.UUID) ([]domain.VoterInfo, error)
	VotersBySession(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID][]domain.VoterInfo, error)
	DeleteByFeature(ctx context.Context, featureID uuid.UUID) error
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type LedgerService interface {
	Upsert(ctx context.Context, record domain.VoteRecord) error
	TotalVotes(ctx context.Context, featureID uuid.UUID) (int, error)
	Voters(ctx context.Context, featureID uuid.UUID) ([]domain.VoterInfo, error)
	ResetFeature(ctx context.Context, actor domain.User, featureID uuid.UUID) error
	ResetSession(ctx context.Context, actor domain.User, sessionID uuid.UUID) error
	ResetAll(ctx context.Context, actor domain.User) error
}
