package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewStore("redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestNewStore_BadURL(t *testing.T) {
	_, err := NewStore("not a url", time.Hour)
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	sessionID, userID, featureID := uuid.New(), uuid.New(), uuid.New()

	got, err := store.Load(ctx, sessionID, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	b := domain.NewVoteBudget(userID, sessionID)
	b.Allocations[featureID] = 3
	b.UsedVotes = 3
	require.NoError(t, store.Save(ctx, b))

	key := "budget:" + sessionID.String() + ":" + userID.String()
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	got, err = store.Load(ctx, sessionID, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Allocated(featureID))
	assert.Equal(t, 3, got.UsedVotes)
	assert.Equal(t, domain.BudgetAllocating, got.State)

	require.NoError(t, store.Delete(ctx, sessionID, userID))
	got, err = store.Load(ctx, sessionID, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SubmittedStateSurvives(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	b := domain.NewVoteBudget(uuid.New(), uuid.New())
	b.MarkSubmitted()
	require.NoError(t, store.Save(ctx, b))

	got, err := store.Load(ctx, b.SessionID, b.UserID)
	require.NoError(t, err)
	assert.True(t, got.Submitted())
	assert.NotNil(t, got.Allocations)
}

func TestStore_ExpiredDraftIsGone(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	b := domain.NewVoteBudget(uuid.New(), uuid.New())
	require.NoError(t, store.Save(ctx, b))
	mr.FastForward(2 * time.Hour)

	got, err := store.Load(ctx, b.SessionID, b.UserID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
