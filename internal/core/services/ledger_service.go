package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"go.uber.org/zap"
)

type LedgerService struct {
	votes    ports.VoteRepository
	features ports.FeatureRepository
	sessions ports.SessionRepository
	auth     authority
	log      *zap.Logger
}

func NewLedgerService(
	votes ports.VoteRepository,
	features ports.FeatureRepository,
	sessions ports.SessionRepository,
	roles ports.RoleRepository,
	log *zap.Logger,
) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{
		votes:    votes,
		features: features,
		sessions: sessions,
		auth:     authority{roles: roles},
		log:      log.Named("ledger"),
	}
}

func (s *LedgerService) Upsert(ctx context.Context, record domain.VoteRecord) error {
	if record.VoteCount <= 0 {
		return domain.InvalidInput("vote count must be positive")
	}
	return storageErr(s.votes.Upsert(ctx, record))
}

func (s *LedgerService) TotalVotes(ctx context.Context, featureID uuid.UUID) (int, error) {
	total, err := s.votes.TotalVotes(ctx, featureID)
	return total, storageErr(err)
}

func (s *LedgerService) Voters(ctx context.Context, featureID uuid.UUID) ([]domain.VoterInfo, error) {
	voters, err := s.votes.Voters(ctx, featureID)
	return voters, storageErr(err)
}

func (s *LedgerService) ResetFeature(ctx context.Context, actor domain.User, featureID uuid.UUID) error {
	feature, err := s.features.GetByID(ctx, featureID)
	if err != nil {
		return storageErr(err)
	}
	session, err := s.sessions.GetByID(ctx, feature.SessionID)
	if err != nil {
		return storageErr(err)
	}
	if err := s.auth.requireProductManager(ctx, actor, session.ProductID); err != nil {
		return err
	}

	if err := s.votes.DeleteByFeature(ctx, featureID); err != nil {
		return storageErr(err)
	}
	s.log.Info("feature votes reset",
		zap.String("actor_id", actor.ID.String()),
		zap.String("feature_id", featureID.String()),
	)
	return nil
}

func (s *LedgerService) ResetSession(ctx context.Context, actor domain.User, sessionID uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return storageErr(err)
	}
	if err := s.auth.requireProductManager(ctx, actor, session.ProductID); err != nil {
		return err
	}

	if err := s.votes.DeleteBySession(ctx, sessionID); err != nil {
		return storageErr(err)
	}
	s.log.Info("session votes reset",
		zap.String("actor_id", actor.ID.String()),
		zap.String("session_id", sessionID.String()),
	)
	return nil
}

// ResetAll deletes every vote record of every session. Only system admins
// may call it; ResetSession is the scoped alternative.
func (s *LedgerService) ResetAll(ctx context.Context, actor domain.User) error {
	if err := s.auth.requireSystemAdmin(ctx, actor); err != nil {
		return err
	}

	s.log.Warn("resetting every vote in the ledger", zap.String("actor_id", actor.ID.String()))
	return storageErr(s.votes.DeleteAll(ctx))
}
