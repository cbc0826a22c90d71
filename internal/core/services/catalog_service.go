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
	"github.com/vncsmyrnk/featurevote/internal/metrics"
	"go.uber.org/zap"
)

var errNoTracker = errors.New("no external tracker is configured")

type CatalogService struct {
	features ports.FeatureRepository
	votes    ports.VoteRepository
	sessions ports.SessionRepository
	tracker  ports.Tracker
	auth     authority
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewCatalogService builds the feature catalog. tracker may be nil, in
// which case tracker imports fail with ErrImportFailed.
func NewCatalogService(
	features ports.FeatureRepository,
	votes ports.VoteRepository,
	sessions ports.SessionRepository,
	roles ports.RoleRepository,
	tracker ports.Tracker,
	clk clock.Clock,
	m *metrics.Metrics,
	log *zap.Logger,
) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{
		features: features,
		votes:    votes,
		sessions: sessions,
		tracker:  tracker,
		auth:     authority{roles: roles},
		clock:    clk,
		metrics:  m,
		log:      log.Named("catalog"),
	}
}

func (s *CatalogService) Create(ctx context.Context, actor domain.User, input ports.CreateFeatureInput) (*domain.FeatureWithVotes, error) {
	session, err := s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductManager(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.InvalidInput("title is required")
	}

	now := s.clock.Now()
	feature := domain.Feature{
		ID:          uuid.New(),
		SessionID:   session.ID,
		Title:       title,
		Description: input.Description,
		Epic:        input.Epic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.features.Create(ctx, &feature); err != nil {
		return nil, storageErr(err)
	}
	return &domain.FeatureWithVotes{Feature: feature, Voters: []domain.VoterInfo{}}, nil
}

func (s *CatalogService) Update(ctx context.Context, actor domain.User, id uuid.UUID, input ports.UpdateFeatureInput) (*domain.FeatureWithVotes, error) {
	feature, err := s.managedFeature(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.InvalidInput("title is required")
	}
	feature.Title = title
	feature.Description = input.Description
	feature.Epic = input.Epic
	feature.UpdatedAt = s.clock.Now()

	if err := s.features.Update(ctx, feature); err != nil {
		return nil, storageErr(err)
	}
	return s.withVotes(ctx, *feature)
}

// Delete removes the feature and its vote records. If the cascade fails
// the feature is kept and the whole deletion is reported as failed.
func (s *CatalogService) Delete(ctx context.Context, actor domain.User, id uuid.UUID) error {
	if _, err := s.managedFeature(ctx, actor, id); err != nil {
		return err
	}
	if err := s.features.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete feature", zap.String("feature_id", id.String()), zap.Error(err))
		return storageErr(err)
	}
	return nil
}

func (s *CatalogService) Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.FeatureWithVotes, error) {
	feature, err := s.features.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	session, err := s.sessions.GetByID(ctx, feature.SessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductViewer(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}
	return s.withVotes(ctx, *feature)
}

func (s *CatalogService) ListBySession(ctx context.Context, actor domain.User, sessionID uuid.UUID) ([]domain.FeatureWithVotes, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductViewer(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}
	return loadCatalog(ctx, s.features, s.votes, sessionID)
}

func (s *CatalogService) Import(ctx context.Context, actor domain.User, sessionID uuid.UUID, batch []domain.ExternalFeature) ([]domain.FeatureWithVotes, error) {
	session, err := s.managedSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.importBatch(ctx, session, batch)
	s.metrics.ImportFinished(err)
	return catalog, err
}

func (s *CatalogService) ImportFromTracker(ctx context.Context, actor domain.User, sessionID uuid.UUID) ([]domain.FeatureWithVotes, error) {
	session, err := s.managedSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.fetchAndImport(ctx, session)
	s.metrics.ImportFinished(err)
	if err != nil {
		s.log.Warn("tracker import failed", zap.String("session_id", sessionID.String()), zap.Error(err))
	}
	return catalog, err
}

func (s *CatalogService) fetchAndImport(ctx context.Context, session *domain.VotingSession) ([]domain.FeatureWithVotes, error) {
	if s.tracker == nil {
		return nil, domain.ImportFailed(errNoTracker)
	}
	items, err := s.tracker.FetchWorkItems(ctx)
	if err != nil {
		return nil, domain.ImportFailed(err)
	}
	return s.importBatch(ctx, session, items)
}

// importBatch validates the whole batch before touching the catalog, so a
// bad item leaves the catalog unchanged.
func (s *CatalogService) importBatch(ctx context.Context, session *domain.VotingSession, batch []domain.ExternalFeature) ([]domain.FeatureWithVotes, error) {
	for i, item := range batch {
		if strings.TrimSpace(item.ExternalID) == "" {
			return nil, domain.ImportFailed(fmt.Errorf("item %d has no external id", i))
		}
		if strings.TrimSpace(item.Title) == "" {
			return nil, domain.ImportFailed(fmt.Errorf("item %s has no title", item.ExternalID))
		}
	}

	existing, err := loadCatalog(ctx, s.features, s.votes, session.ID)
	if err != nil {
		return nil, err
	}

	plan := domain.MergeImport(session.ID, existing, batch, uuid.New, s.clock.Now())
	if err := s.features.ApplyImport(ctx, plan); err != nil {
		return nil, storageErr(err)
	}

	s.log.Info("features imported",
		zap.String("session_id", session.ID.String()),
		zap.Int("updated", len(plan.Updated)),
		zap.Int("inserted", len(plan.Inserted)),
	)
	return plan.Catalog, nil
}

func (s *CatalogService) managedSession(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*domain.VotingSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductManager(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *CatalogService) managedFeature(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.Feature, error) {
	feature, err := s.features.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if _, err := s.managedSession(ctx, actor, feature.SessionID); err != nil {
		return nil, err
	}
	return feature, nil
}

func (s *CatalogService) withVotes(ctx context.Context, feature domain.Feature) (*domain.FeatureWithVotes, error) {
	voters, err := s.votes.Voters(ctx, feature.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	return &domain.FeatureWithVotes{
		Feature:    feature,
		TotalVotes: domain.TotalVotes(voters),
		Voters:     voters,
	}, nil
}

// loadCatalog reads the features of a session joined with their tallies,
// always from storage.
func loadCatalog(ctx context.Context, features ports.FeatureRepository, votes ports.VoteRepository, sessionID uuid.UUID) ([]domain.FeatureWithVotes, error) {
	list, err := features.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	voters, err := votes.VotersBySession(ctx, sessionID)
	if err != nil {
		return nil, storageErr(err)
	}

	catalog := make([]domain.FeatureWithVotes, 0, len(list))
	for _, f := range list {
		v := voters[f.ID]
		if v == nil {
			v = []domain.VoterInfo{}
		}
		catalog = append(catalog, domain.FeatureWithVotes{
			Feature:    f,
			TotalVotes: domain.TotalVotes(v),
			Voters:     v,
		})
	}
	return catalog, nil
}
