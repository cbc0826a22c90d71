package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"github.com/vncsmyrnk/featurevote/internal/metrics"
	"go.uber.org/zap"
)

// BudgetService manages the pending vote budget of a stakeholder. Nothing
// reaches the ledger until Submit.
type BudgetService struct {
	sessions ports.SessionRepository
	features ports.FeatureRepository
	votes    ports.VoteRepository
	store    ports.BudgetStore
	auth     authority
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewBudgetService(
	sessions ports.SessionRepository,
	features ports.FeatureRepository,
	votes ports.VoteRepository,
	store ports.BudgetStore,
	roles ports.RoleRepository,
	clk clock.Clock,
	m *metrics.Metrics,
	log *zap.Logger,
) *BudgetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BudgetService{
		sessions: sessions,
		features: features,
		votes:    votes,
		store:    store,
		auth:     authority{roles: roles},
		clock:    clk,
		metrics:  m,
		log:      log.Named("budget"),
	}
}

func (s *BudgetService) load(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*domain.VotingSession, *domain.VoteBudget, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	if err := s.auth.requireStakeholder(ctx, actor, session.ProductID); err != nil {
		return nil, nil, err
	}

	budget, err := s.store.Load(ctx, sessionID, actor.ID)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	if budget == nil {
		budget = domain.NewVoteBudget(actor.ID, sessionID)
	}
	return session, budget, nil
}

func (s *BudgetService) view(session *domain.VotingSession, budget *domain.VoteBudget) *ports.BudgetView {
	return &ports.BudgetView{
		Budget:       budget,
		VotesPerUser: session.VotesPerUser,
		Remaining:    budget.Remaining(*session),
		SessionOpen:  session.IsOpen(s.clock.Now()),
	}
}

func (s *BudgetService) reject(err error) error {
	s.metrics.BudgetRejected(err)
	return err
}

func (s *BudgetService) Current(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*ports.BudgetView, error) {
	session, budget, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session, budget), nil
}

func (s *BudgetService) Increment(ctx context.Context, actor domain.User, sessionID, featureID uuid.UUID) (*ports.BudgetView, error) {
	session, budget, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	feature, err := s.features.GetByID(ctx, featureID)
	if err != nil {
		return nil, storageErr(err)
	}
	if feature.SessionID != sessionID {
		return nil, domain.ErrFeatureNotFound
	}

	if err := budget.Increment(featureID, *session, s.clock.Now()); err != nil {
		return nil, s.reject(err)
	}
	if err := s.store.Save(ctx, budget); err != nil {
		return nil, storageErr(err)
	}
	return s.view(session, budget), nil
}

func (s *BudgetService) Decrement(ctx context.Context, actor domain.User, sessionID, featureID uuid.UUID) (*ports.BudgetView, error) {
	session, budget, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := budget.Decrement(featureID); err != nil {
		return nil, s.reject(err)
	}
	if err := s.store.Save(ctx, budget); err != nil {
		return nil, storageErr(err)
	}
	return s.view(session, budget), nil
}

// Submit flushes the whole allocation to the ledger in one batch. On
// failure the stored draft is left untouched so the caller can retry.
func (s *BudgetService) Submit(ctx context.Context, actor domain.User, sessionID uuid.UUID) (*ports.BudgetView, error) {
	session, budget, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := budget.CanSubmit(*session, s.clock.Now()); err != nil {
		return nil, s.reject(err)
	}

	records := budget.Records(actor)
	if err := s.votes.UpsertBatch(ctx, records); err != nil {
		s.log.Error("failed to submit votes",
			zap.String("session_id", sessionID.String()),
			zap.String("user_id", actor.ID.String()),
			zap.Error(err),
		)
		return nil, storageErr(err)
	}

	budget.MarkSubmitted()
	if err := s.store.Save(ctx, budget); err != nil {
		// the ledger write is idempotent, so a retry converges
		return nil, storageErr(err)
	}

	s.metrics.BallotSubmitted()
	s.log.Info("votes submitted",
		zap.String("session_id", sessionID.String()),
		zap.String("user_id", actor.ID.String()),
		zap.Int("features", len(records)),
	)
	return s.view(session, budget), nil
}

// Discard drops a draft that was never submitted.
func (s *BudgetService) Discard(ctx context.Context, actor domain.User, sessionID uuid.UUID) error {
	_, budget, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return err
	}
	if budget.Submitted() {
		return domain.ErrBudgetSubmitted
	}
	return storageErr(s.store.Delete(ctx, sessionID, actor.ID))
}
