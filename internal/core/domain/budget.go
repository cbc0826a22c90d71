package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type BudgetState string

const (
	BudgetAllocating BudgetState = "allocating"
	BudgetSubmitted  BudgetState = "submitted"
)

// VoteBudget is one stakeholder's pending allocation for one session.
// UsedVotes always equals the sum of Allocations, and no allocation is
// kept at zero.
type VoteBudget struct {
	UserID      uuid.UUID         `json:"user_id"`
	SessionID   uuid.UUID         `json:"session_id"`
	Allocations map[uuid.UUID]int `json:"allocations"`
	UsedVotes   int               `json:"used_votes"`
	State       BudgetState       `json:"state"`
}

func NewVoteBudget(userID, sessionID uuid.UUID) *VoteBudget {
	return &VoteBudget{
		UserID:      userID,
		SessionID:   sessionID,
		Allocations: make(map[uuid.UUID]int),
		State:       BudgetAllocating,
	}
}

func (b *VoteBudget) Submitted() bool {
	return b.State == BudgetSubmitted
}

func (b *VoteBudget) Allocated(featureID uuid.UUID) int {
	return b.Allocations[featureID]
}

func (b *VoteBudget) Remaining(session VotingSession) int {
	remaining := session.VotesPerUser - b.UsedVotes
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (b *VoteBudget) Increment(featureID uuid.UUID, session VotingSession, now time.Time) error {
	if b.Submitted() {
		return ErrBudgetSubmitted
	}
	if !session.IsOpen(now) {
		return ErrSessionClosed
	}
	if b.UsedVotes >= session.VotesPerUser {
		return ErrBudgetExhausted
	}
	if b.Allocations == nil {
		b.Allocations = make(map[uuid.UUID]int)
	}
	b.Allocations[featureID]++
	b.UsedVotes++
	return nil
}

// Decrement is not gated by the session clock so a stakeholder can still
// correct an allocation after the session closes; Submit is gated.
func (b *VoteBudget) Decrement(featureID uuid.UUID) error {
	if b.Submitted() {
		return ErrBudgetSubmitted
	}
	count := b.Allocations[featureID]
	if count <= 0 {
		return ErrNothingToRemove
	}
	if count == 1 {
		delete(b.Allocations, featureID)
	} else {
		b.Allocations[featureID] = count - 1
	}
	b.UsedVotes--
	return nil
}

// CanSubmit checks every precondition of a submission without changing
// the budget.
func (b *VoteBudget) CanSubmit(session VotingSession, now time.Time) error {
	if b.Submitted() {
		return ErrBudgetSubmitted
	}
	if !session.IsOpen(now) {
		return ErrSessionClosed
	}
	if b.UsedVotes != session.VotesPerUser {
		return ErrIncompleteAllocation
	}
	return nil
}

// Records turns the allocation into ledger records for user, ordered by
// feature id.
func (b *VoteBudget) Records(user User) []VoteRecord {
	records := make([]VoteRecord, 0, len(b.Allocations))
	for featureID, count := range b.Allocations {
		if count <= 0 {
			continue
		}
		records = append(records, VoteRecord{
			FeatureID: featureID,
			UserID:    user.ID,
			UserName:  user.Name,
			UserEmail: user.Email,
			VoteCount: count,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].FeatureID.String() < records[j].FeatureID.String()
	})
	return records
}

// MarkSubmitted clears the allocation and moves the budget to its
// terminal state.
func (b *VoteBudget) MarkSubmitted() {
	b.Allocations = make(map[uuid.UUID]int)
	b.UsedVotes = 0
	b.State = BudgetSubmitted
}
