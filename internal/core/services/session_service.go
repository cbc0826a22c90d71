package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"github.com/vncsmyrnk/featurevote/internal/metrics"
	"go.uber.org/zap"
)

// DefaultReconcileInterval is how often cached session activity is
// recomputed from the session dates.
const DefaultReconcileInterval = 10 * time.Minute

type SessionService struct {
	sessions ports.SessionRepository
	products ports.ProductRepository
	auth     authority
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewSessionService(
	sessions ports.SessionRepository,
	products ports.ProductRepository,
	roles ports.RoleRepository,
	clk clock.Clock,
	m *metrics.Metrics,
	log *zap.Logger,
) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		sessions: sessions,
		products: products,
		auth:     authority{roles: roles},
		clock:    clk,
		metrics:  m,
		log:      log.Named("sessions"),
	}
}

func validateSession(input ports.SessionInput) error {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return domain.InvalidInput("title is required")
	case input.VotesPerUser <= 0:
		return domain.InvalidInput("votes per user must be positive")
	case input.StartDate.IsZero() || input.EndDate.IsZero():
		return domain.InvalidInput("start and end dates are required")
	case input.EndDate.Before(input.StartDate):
		return domain.InvalidInput("end date must not be before start date")
	}
	return nil
}

func (s *SessionService) Create(ctx context.Context, actor domain.User, input ports.SessionInput) (*domain.VotingSession, error) {
	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductManager(ctx, actor, input.ProductID); err != nil {
		return nil, err
	}
	if err := validateSession(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.VotingSession{
		ID:           uuid.New(),
		ProductID:    input.ProductID,
		Title:        strings.TrimSpace(input.Title),
		Goal:         input.Goal,
		VotesPerUser: input.VotesPerUser,
		StartDate:    input.StartDate.UTC(),
		EndDate:      input.EndDate.UTC(),
		CreatedAt:    now,
	}
	session.IsActive = session.IsOpen(now)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, storageErr(err)
	}
	return session, nil
}

func (s *SessionService) Update(ctx context.Context, actor domain.User, id uuid.UUID, input ports.SessionInput) (*domain.VotingSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductManager(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}
	if err := validateSession(input); err != nil {
		return nil, err
	}

	session.Title = strings.TrimSpace(input.Title)
	session.Goal = input.Goal
	session.VotesPerUser = input.VotesPerUser
	session.StartDate = input.StartDate.UTC()
	session.EndDate = input.EndDate.UTC()
	session.IsActive = session.IsOpen(s.clock.Now())

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, storageErr(err)
	}
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.VotingSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.auth.requireProductViewer(ctx, actor, session.ProductID); err != nil {
		return nil, err
	}
	if _, err := s.reconcile(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListByProduct(ctx context.Context, actor domain.User, productID uuid.UUID) ([]domain.VotingSession, error) {
	if err := s.auth.requireProductViewer(ctx, actor, productID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByProduct(ctx, productID)
	if err != nil {
		return nil, storageErr(err)
	}
	for i := range sessions {
		if _, err := s.reconcile(ctx, &sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// reconcile corrects the cached IsActive flag of session in storage and in
// place. It reports whether a correction was needed.
func (s *SessionService) reconcile(ctx context.Context, session *domain.VotingSession) (bool, error) {
	now := s.clock.Now()
	if !session.NeedsReconcile(now) {
		return false, nil
	}

	active := session.IsOpen(now)
	if err := s.sessions.SetActive(ctx, session.ID, active); err != nil {
		return false, storageErr(err)
	}
	session.IsActive = active
	s.log.Debug("session activity reconciled",
		zap.String("session_id", session.ID.String()),
		zap.Bool("is_active", active),
	)
	return true, nil
}

func (s *SessionService) ReconcileAll(ctx context.Context) (int, error) {
	started := time.Now()

	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch all sessions: %w", storageErr(err))
	}

	var (
		wg        sync.WaitGroup
		corrected atomic.Int64
	)
	errChan := make(chan error, len(sessions))

	for i := range sessions {
		wg.Add(1)
		go func(session domain.VotingSession) {
			defer wg.Done()
			changed, err := s.reconcile(ctx, &session)
			if err != nil {
				errChan <- fmt.Errorf("failed to reconcile session %s: %w", session.ID, err)
				return
			}
			if changed {
				corrected.Add(1)
			}
		}(sessions[i])
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	count := int(corrected.Load())
	s.metrics.Reconciled(count, time.Since(started))
	return count, errors.Join(errs...)
}

// RunReconciler reconciles every session once and then on each tick of
// interval until ctx is done.
func RunReconciler(ctx context.Context, svc ports.SessionService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("reconciler")

	run := func() {
		corrected, err := svc.ReconcileAll(ctx)
		if err != nil {
			log.Error("session reconciliation failed", zap.Error(err))
			return
		}
		if corrected > 0 {
			log.Info("session activity corrected", zap.Int("sessions", corrected))
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
