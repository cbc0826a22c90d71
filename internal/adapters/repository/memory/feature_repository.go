package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type FeatureRepository struct {
	s *Store
}

func (r *FeatureRepository) Create(ctx context.Context, feature *domain.Feature) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[feature.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	if feature.ID == uuid.Nil {
		feature.ID = uuid.New()
	}
	r.s.features[feature.ID] = *feature
	return nil
}

func (r *FeatureRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.features[id]
	if !ok {
		return nil, domain.ErrFeatureNotFound
	}
	return &f, nil
}

func (r *FeatureRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Feature, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	features := []domain.Feature{}
	for _, f := range r.s.features {
		if f.SessionID == sessionID {
			features = append(features, f)
		}
	}
	sortByCreated(features, func(f domain.Feature) (int64, string) {
		return f.CreatedAt.UnixNano(), f.ID.String()
	})
	return features, nil
}

func (r *FeatureRepository) Update(ctx context.Context, feature *domain.Feature) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.features[feature.ID]; !ok {
		return domain.ErrFeatureNotFound
	}
	r.s.features[feature.ID] = *feature
	return nil
}

func (r *FeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.features[id]; !ok {
		return domain.ErrFeatureNotFound
	}
	for k := range r.s.votes {
		if k.featureID == id {
			delete(r.s.votes, k)
		}
	}
	delete(r.s.features, id)
	return nil
}

func (r *FeatureRepository) ApplyImport(ctx context.Context, plan domain.ImportPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range plan.Updated {
		if _, ok := r.s.features[f.ID]; !ok {
			return domain.ErrFeatureNotFound
		}
	}
	for _, f := range plan.Updated {
		r.s.features[f.ID] = f
	}
	for _, f := range plan.Inserted {
		r.s.features[f.ID] = f
	}
	return nil
}
