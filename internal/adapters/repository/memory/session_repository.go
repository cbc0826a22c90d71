package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type SessionRepository struct {
	s *Store
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.VotingSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[session.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *SessionRepository) List(ctx context.Context) ([]domain.VotingSession, error) {
	return r.list(func(domain.VotingSession) bool { return true }), nil
}

func (r *SessionRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]domain.VotingSession, error) {
	return r.list(func(s domain.VotingSession) bool { return s.ProductID == productID }), nil
}

func (r *SessionRepository) list(keep func(domain.VotingSession) bool) []domain.VotingSession {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sessions := []domain.VotingSession{}
	for _, s := range r.s.sessions {
		if keep(s) {
			sessions = append(sessions, s)
		}
	}
	sortByCreated(sessions, func(s domain.VotingSession) (int64, string) {
		return s.CreatedAt.UnixNano(), s.ID.String()
	})
	return sessions
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.VotingSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.IsActive = active
	r.s.sessions[id] = s
	return nil
}
