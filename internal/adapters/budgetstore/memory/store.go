package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

var _ ports.BudgetStore = (*Store)(nil)

type key struct {
	sessionID uuid.UUID
	userID    uuid.UUID
}

// Store keeps vote budget drafts in process memory. Drafts are lost on
// restart.
type Store struct {
	mu     sync.Mutex
	drafts map[key]domain.VoteBudget
}

func NewStore() *Store {
	return &Store{drafts: make(map[key]domain.VoteBudget)}
}

func (s *Store) Load(ctx context.Context, sessionID, userID uuid.UUID) (*domain.VoteBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.drafts[key{sessionID: sessionID, userID: userID}]
	if !ok {
		return nil, nil
	}
	return cloneBudget(b), nil
}

func (s *Store) Save(ctx context.Context, budget *domain.VoteBudget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[key{sessionID: budget.SessionID, userID: budget.UserID}] = *cloneBudget(*budget)
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, key{sessionID: sessionID, userID: userID})
	return nil
}

// cloneBudget copies the allocation map so callers never share it with
// the store.
func cloneBudget(b domain.VoteBudget) *domain.VoteBudget {
	allocations := make(map[uuid.UUID]int, len(b.Allocations))
	for k, v := range b.Allocations {
		allocations[k] = v
	}
	b.Allocations = allocations
	return &b
}
