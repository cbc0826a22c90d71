package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

func newLedgerService(fx *fixture) *LedgerService {
	return NewLedgerService(fx.store.Votes(), fx.store.Features(), fx.store.Sessions(), fx.store.Roles(), nil)
}

func TestLedgerService_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newLedgerService(fx)

	rec := domain.VoteRecord{FeatureID: fx.f1.ID, UserID: fx.stakeholder.ID, UserName: "stake", VoteCount: 3}
	require.NoError(t, svc.Upsert(ctx, rec))
	require.NoError(t, svc.Upsert(ctx, rec))

	total, err := svc.TotalVotes(ctx, fx.f1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	voters, err := svc.Voters(ctx, fx.f1.ID)
	require.NoError(t, err)
	assert.Len(t, voters, 1)

	rec.VoteCount = 0
	assert.ErrorIs(t, svc.Upsert(ctx, rec), domain.ErrInvalidInput)
}

func TestLedgerService_TotalVotesOfUnvotedFeature(t *testing.T) {
	fx := newFixture(t)
	total, err := newLedgerService(fx).TotalVotes(context.Background(), fx.f2.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLedgerService_Resets(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newLedgerService(fx)

	seed := func() {
		for _, f := range []uuid.UUID{fx.f1.ID, fx.f2.ID} {
			require.NoError(t, svc.Upsert(ctx, domain.VoteRecord{FeatureID: f, UserID: uuid.New(), VoteCount: 2}))
		}
	}
	total := func(id uuid.UUID) int {
		n, err := svc.TotalVotes(ctx, id)
		require.NoError(t, err)
		return n
	}

	seed()
	assert.ErrorIs(t, svc.ResetFeature(ctx, fx.stakeholder, fx.f1.ID), domain.ErrForbidden)
	require.NoError(t, svc.ResetFeature(ctx, fx.owner, fx.f1.ID))
	assert.Zero(t, total(fx.f1.ID))
	assert.Equal(t, 2, total(fx.f2.ID))

	require.NoError(t, svc.ResetSession(ctx, fx.owner, fx.session.ID))
	assert.Zero(t, total(fx.f2.ID))

	seed()
	assert.ErrorIs(t, svc.ResetAll(ctx, fx.owner), domain.ErrForbidden)
	require.NoError(t, svc.ResetAll(ctx, fx.admin))
	assert.Zero(t, total(fx.f1.ID))
	assert.Zero(t, total(fx.f2.ID))

	assert.ErrorIs(t, svc.ResetFeature(ctx, fx.admin, uuid.New()), domain.ErrFeatureNotFound)
}
