package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type ResultsService struct {
	sessions ports.SessionRepository
	features ports.FeatureRepository
	votes    ports.VoteRepository
	auth     authority
}

func NewResultsService(sessions ports.SessionRepository, features ports.FeatureRepository, votes ports.VoteRepository, roles ports.RoleRepository) *ResultsService {
	return &ResultsService{
		sessions: sessions,
		features: features,
		votes:    votes,
		auth:     authority{roles: roles},
	}
}

func (s *ResultsService) SessionResults(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*domain.SessionResults, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductViewer(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(ctx, s.features, s.votes, sessionID)
	if err != nil {
		return nil, err
	}
	results := domain.RankResults(*session, catalog)
	return &results, nil
}
