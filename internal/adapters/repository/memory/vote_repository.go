package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

type VoteRepository struct {
	s *Store
}

func (r *VoteRepository) Upsert(ctx context.Context, record domain.VoteRecord) error {
	return r.UpsertBatch(ctx, []domain.VoteRecord{record})
}

func (r *VoteRepository) UpsertBatch(ctx context.Context, records []domain.VoteRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range records {
		if _, ok := r.s.features[rec.FeatureID]; !ok {
			return domain.ErrFeatureNotFound
		}
	}
	for _, rec := range records {
		r.s.votes[voteKey{featureID: rec.FeatureID, userID: rec.UserID}] = rec
	}
	return nil
}

func (r *VoteRepository) TotalVotes(ctx context.Context, featureID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := 0
	for k, rec := range r.s.votes {
		if k.featureID == featureID {
			total += rec.VoteCount
		}
	}
	return total, nil
}

func (r *VoteRepository) Voters(ctx context.Context, featureID uuid.UUID) ([]domain.VoterInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	voters := []domain.VoterInfo{}
	for k, rec := range r.s.votes {
		if k.featureID == featureID && rec.VoteCount > 0 {
			voters = append(voters, voterInfo(rec))
		}
	}
	domain.SortVoters(voters)
	return voters, nil
}

func (r *VoteRepository) VotersBySession(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID][]domain.VoterInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bySession := make(map[uuid.UUID][]domain.VoterInfo)
	for k, rec := range r.s.votes {
		f, ok := r.s.features[k.featureID]
		if !ok || f.SessionID != sessionID || rec.VoteCount <= 0 {
			continue
		}
		bySession[k.featureID] = append(bySession[k.featureID], voterInfo(rec))
	}
	for _, voters := range bySession {
		domain.SortVoters(voters)
	}
	return bySession, nil
}

func (r *VoteRepository) DeleteByFeature(ctx context.Context, featureID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k := range r.s.votes {
		if k.featureID == featureID {
			delete(r.s.votes, k)
		}
	}
	return nil
}

func (r *VoteRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k := range r.s.votes {
		if f, ok := r.s.features[k.featureID]; ok && f.SessionID == sessionID {
			delete(r.s.votes, k)
		}
	}
	return nil
}

func (r *VoteRepository) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.votes = make(map[voteKey]domain.VoteRecord)
	return nil
}

func voterInfo(rec domain.VoteRecord) domain.VoterInfo {
	return domain.VoterInfo{
		UserID:    rec.UserID,
		Name:      rec.UserName,
		Email:     rec.UserEmail,
		VoteCount: rec.VoteCount,
	}
}
