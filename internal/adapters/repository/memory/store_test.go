package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

func seedFeature(t *testing.T, s *Store) (domain.VotingSession, domain.Feature) {
	t.Helper()
	ctx := context.Background()

	product := domain.Product{Name: "Checkout", CreatedAt: time.Now()}
	require.NoError(t, s.Products().Create(ctx, &product))

	session := domain.VotingSession{ProductID: product.ID, Title: "Q1", VotesPerUser: 5}
	require.NoError(t, s.Sessions().Create(ctx, &session))

	feature := domain.Feature{SessionID: session.ID, Title: "Saved carts"}
	require.NoError(t, s.Features().Create(ctx, &feature))
	return session, feature
}

func TestVoteRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, feature := seedFeature(t, s)
	votes := s.Votes()

	rec := domain.VoteRecord{FeatureID: feature.ID, UserID: uuid.New(), UserName: "Ana", VoteCount: 3}
	require.NoError(t, votes.Upsert(ctx, rec))
	require.NoError(t, votes.Upsert(ctx, rec))

	total, err := votes.TotalVotes(ctx, feature.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	voters, err := votes.Voters(ctx, feature.ID)
	require.NoError(t, err)
	require.Len(t, voters, 1)
	assert.Equal(t, "Ana", voters[0].Name)
}

func TestVoteRepository_UpsertBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, feature := seedFeature(t, s)
	votes := s.Votes()

	err := votes.UpsertBatch(ctx, []domain.VoteRecord{
		{FeatureID: feature.ID, UserID: uuid.New(), VoteCount: 2},
		{FeatureID: uuid.New(), UserID: uuid.New(), VoteCount: 1},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	total, err := votes.TotalVotes(ctx, feature.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFeatureRepository_DeleteCascadesVotes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, feature := seedFeature(t, s)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Votes().Upsert(ctx, domain.VoteRecord{FeatureID: feature.ID, UserID: uuid.New(), VoteCount: 1}))
	}
	require.NoError(t, s.Features().Delete(ctx, feature.ID))

	voters, err := s.Votes().Voters(ctx, feature.ID)
	require.NoError(t, err)
	assert.Empty(t, voters)

	_, err = s.Features().GetByID(ctx, feature.ID)
	assert.ErrorIs(t, err, domain.ErrFeatureNotFound)
	assert.ErrorIs(t, s.Features().Delete(ctx, feature.ID), domain.ErrNotFound)
}

func TestUserRepository_DeleteWithGrants(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	session, _ := seedFeature(t, s)

	user := domain.User{Name: "Bo", Email: "Bo@Example.com"}
	require.NoError(t, s.Users().Create(ctx, &user))
	assert.Equal(t, "bo@example.com", user.Email)

	roles := s.Roles()
	_, err := roles.GrantSystemAdmin(ctx, user.ID)
	require.NoError(t, err)
	_, err = roles.GrantProductOwner(ctx, domain.ProductOwnerGrant{UserID: user.ID, ProductID: session.ProductID})
	require.NoError(t, err)
	_, err = roles.GrantStakeholder(ctx, domain.StakeholderGrant{ProductID: session.ProductID, UserEmail: "bo@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.Users().DeleteWithGrants(ctx, user.ID, user.Email))

	grants, err := roles.ListGrants(ctx)
	require.NoError(t, err)
	assert.Empty(t, grants.SystemAdmins)
	assert.Empty(t, grants.ProductOwners)
	assert.Empty(t, grants.Stakeholders)

	got, err := s.Users().GetByEmail(ctx, "bo@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRoleRepository_DuplicateGrantReportsUnchanged(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	session, _ := seedFeature(t, s)
	roles := s.Roles()

	grant := domain.StakeholderGrant{ProductID: session.ProductID, UserEmail: "cy@example.com", UserName: "Cy"}
	changed, err := roles.GrantStakeholder(ctx, grant)
	require.NoError(t, err)
	assert.True(t, changed)

	grant.UserEmail = "CY@example.com"
	changed, err = roles.GrantStakeholder(ctx, grant)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = roles.RevokeStakeholder(ctx, session.ProductID, "cy@example.com")
	require.NoError(t, err)
	assert.True(t, changed)
}
