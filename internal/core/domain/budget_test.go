package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession(votes int, now time.Time) VotingSession {
	return VotingSession{
		ID:           uuid.New(),
		ProductID:    uuid.New(),
		Title:        "Q3 planning",
		VotesPerUser: votes,
		StartDate:    now.Add(-24 * time.Hour),
		EndDate:      now.Add(24 * time.Hour),
		IsActive:     true,
	}
}

func sumAllocations(b *VoteBudget) int {
	total := 0
	for _, c := range b.Allocations {
		total += c
	}
	return total
}

func TestVoteBudget_InvariantHoldsUnderRandomOperations(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	session := openSession(7, now)
	features := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	budget := NewVoteBudget(uuid.New(), session.ID)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		f := features[rng.Intn(len(features))]
		if rng.Intn(2) == 0 {
			err := budget.Increment(f, session, now)
			if err != nil {
				require.ErrorIs(t, err, ErrBudgetExhausted)
			}
		} else {
			err := budget.Decrement(f)
			if err != nil {
				require.ErrorIs(t, err, ErrNothingToRemove)
			}
		}

		require.GreaterOrEqual(t, budget.UsedVotes, 0)
		require.LessOrEqual(t, budget.UsedVotes, session.VotesPerUser)
		require.Equal(t, budget.UsedVotes, sumAllocations(budget))
		for _, c := range budget.Allocations {
			require.Positive(t, c)
		}
	}
}

func TestVoteBudget_Increment(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := uuid.New()

	t.Run("exhausted at votes per user", func(t *testing.T) {
		session := openSession(2, now)
		b := NewVoteBudget(uuid.New(), session.ID)
		require.NoError(t, b.Increment(f, session, now))
		require.NoError(t, b.Increment(f, session, now))

		err := b.Increment(uuid.New(), session, now)
		assert.ErrorIs(t, err, ErrBudgetExhausted)
		assert.Equal(t, 2, b.UsedVotes)
		assert.Equal(t, 2, b.Allocated(f))
	})

	t.Run("closed session", func(t *testing.T) {
		session := openSession(2, now)
		session.EndDate = now.Add(-time.Minute)
		b := NewVoteBudget(uuid.New(), session.ID)

		assert.ErrorIs(t, b.Increment(f, session, now), ErrSessionClosed)
		assert.Zero(t, b.UsedVotes)
	})

	t.Run("zero value budget", func(t *testing.T) {
		session := openSession(2, now)
		var b VoteBudget
		require.NoError(t, b.Increment(f, session, now))
		assert.Equal(t, 1, b.Allocated(f))
	})
}

func TestVoteBudget_DecrementAllowedAfterClose(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	session := openSession(3, now)
	f := uuid.New()
	b := NewVoteBudget(uuid.New(), session.ID)
	require.NoError(t, b.Increment(f, session, now))

	later := session.EndDate.Add(time.Hour)
	assert.ErrorIs(t, b.Increment(f, session, later), ErrSessionClosed)
	assert.ErrorIs(t, b.CanSubmit(session, later), ErrSessionClosed)

	require.NoError(t, b.Decrement(f))
	assert.Zero(t, b.UsedVotes)
	_, present := b.Allocations[f]
	assert.False(t, present, "zero allocations are removed")

	assert.ErrorIs(t, b.Decrement(f), ErrNothingToRemove)
}

func TestVoteBudget_CanSubmit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	session := openSession(3, now)
	f := uuid.New()
	b := NewVoteBudget(uuid.New(), session.ID)

	require.NoError(t, b.Increment(f, session, now))
	assert.ErrorIs(t, b.CanSubmit(session, now), ErrIncompleteAllocation)

	require.NoError(t, b.Increment(f, session, now))
	require.NoError(t, b.Increment(uuid.New(), session, now))
	assert.NoError(t, b.CanSubmit(session, now))

	b.MarkSubmitted()
	assert.True(t, b.Submitted())
	assert.Zero(t, b.UsedVotes)
	assert.Empty(t, b.Allocations)
	assert.ErrorIs(t, b.CanSubmit(session, now), ErrBudgetSubmitted)
	assert.ErrorIs(t, b.Increment(f, session, now), ErrBudgetSubmitted)
	assert.ErrorIs(t, b.Decrement(f), ErrBudgetSubmitted)
}

func TestVoteBudget_Records(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	session := openSession(10, now)
	user := User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com"}
	f1, f2 := uuid.New(), uuid.New()
	b := NewVoteBudget(user.ID, session.ID)
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Increment(f1, session, now))
	}
	for i := 0; i < 6; i++ {
		require.NoError(t, b.Increment(f2, session, now))
	}

	records := b.Records(user)
	require.Len(t, records, 2)
	counts := map[uuid.UUID]int{}
	for _, r := range records {
		assert.Equal(t, user.ID, r.UserID)
		assert.Equal(t, "ana@example.com", r.UserEmail)
		counts[r.FeatureID] = r.VoteCount
	}
	assert.Equal(t, 4, counts[f1])
	assert.Equal(t, 6, counts[f2])
	assert.Zero(t, b.Remaining(session))
}
