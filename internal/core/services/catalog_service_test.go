package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

func newCatalogService(fx *fixture, tracker ports.Tracker) *CatalogService {
	return NewCatalogService(
		fx.store.Features(),
		fx.store.Votes(),
		fx.store.Sessions(),
		fx.store.Roles(),
		tracker,
		fx.clock,
		nil,
		nil,
	)
}

func TestCatalogService_CRUD(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newCatalogService(fx, nil)

	_, err := svc.Create(ctx, fx.stakeholder, ports.CreateFeatureInput{SessionID: fx.session.ID, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Create(ctx, fx.owner, ports.CreateFeatureInput{SessionID: fx.session.ID, Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	created, err := svc.Create(ctx, fx.owner, ports.CreateFeatureInput{
		SessionID: fx.session.ID,
		Title:     "Dark mode",
		Epic:      ptr("UI"),
	})
	require.NoError(t, err)
	assert.Zero(t, created.TotalVotes)

	updated, err := svc.Update(ctx, fx.admin, created.ID, ports.UpdateFeatureInput{Title: "Dark theme", Description: "all screens"})
	require.NoError(t, err)
	assert.Equal(t, "Dark theme", updated.Title)
	assert.Nil(t, updated.Epic)

	got, err := svc.Get(ctx, fx.stakeholder, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "all screens", got.Description)

	_, err = svc.Get(ctx, fx.outsider, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := svc.ListBySession(ctx, fx.stakeholder, fx.session.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCatalogService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newCatalogService(fx, nil)
	votes := fx.store.Votes()

	for i := 0; i < 3; i++ {
		require.NoError(t, votes.Upsert(ctx, domain.VoteRecord{FeatureID: fx.f1.ID, UserID: uuid.New(), VoteCount: 1}))
	}

	assert.ErrorIs(t, svc.Delete(ctx, fx.stakeholder, fx.f1.ID), domain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, fx.owner, fx.f1.ID))

	voters, err := votes.Voters(ctx, fx.f1.ID)
	require.NoError(t, err)
	assert.Empty(t, voters)
	total, err := votes.TotalVotes(ctx, fx.f1.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = svc.Get(ctx, fx.owner, fx.f1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_ImportPreservesVotes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newCatalogService(fx, nil)

	imported, err := svc.Import(ctx, fx.owner, fx.session.ID, []domain.ExternalFeature{
		{ExternalID: "E1", Title: "old title", URL: "https://dev.example/1"},
	})
	require.NoError(t, err)
	require.Len(t, imported, 3)
	featureID := imported[0].ID

	require.NoError(t, fx.store.Votes().Upsert(ctx, domain.VoteRecord{FeatureID: featureID, UserID: fx.stakeholder.ID, VoteCount: 7}))

	merged, err := svc.Import(ctx, fx.owner, fx.session.ID, []domain.ExternalFeature{
		{ExternalID: "E1", Title: "new title", Epic: ptr("Platform")},
	})
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, featureID, merged[0].ID)
	assert.Equal(t, "new title", merged[0].Title)
	assert.Equal(t, 7, merged[0].TotalVotes)

	reloaded, err := svc.Get(ctx, fx.owner, featureID)
	require.NoError(t, err)
	assert.Equal(t, "new title", reloaded.Title)
	assert.Equal(t, 7, reloaded.TotalVotes)
	assert.Equal(t, "Platform", *reloaded.Epic)

	local, err := svc.Get(ctx, fx.owner, fx.f1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Refunds", local.Title)
}

func TestCatalogService_ImportRejectsInvalidBatch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := newCatalogService(fx, nil)

	_, err := svc.Import(ctx, fx.owner, fx.session.ID, []domain.ExternalFeature{
		{ExternalID: "E1", Title: "fine"},
		{ExternalID: "", Title: "no id"},
	})
	assert.ErrorIs(t, err, domain.ErrImportFailed)

	list, err := svc.ListBySession(ctx, fx.owner, fx.session.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2, "catalog unchanged")

	_, err = svc.Import(ctx, fx.stakeholder, fx.session.ID, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCatalogService_ImportFromTracker(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	t.Run("no tracker", func(t *testing.T) {
		_, err := newCatalogService(fx, nil).ImportFromTracker(ctx, fx.owner, fx.session.ID)
		assert.ErrorIs(t, err, domain.ErrImportFailed)
	})

	t.Run("fetch failure leaves catalog unchanged", func(t *testing.T) {
		tracker := &mockTracker{}
		tracker.On("FetchWorkItems", mock.Anything).Return(nil, errors.New("401 unauthorized")).Once()

		_, err := newCatalogService(fx, tracker).ImportFromTracker(ctx, fx.owner, fx.session.ID)
		assert.ErrorIs(t, err, domain.ErrImportFailed)
		assert.ErrorContains(t, err, "401 unauthorized")

		list, err := fx.store.Features().ListBySession(ctx, fx.session.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		tracker.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		tracker := &mockTracker{}
		tracker.On("FetchWorkItems", mock.Anything).Return([]domain.ExternalFeature{
			{ExternalID: "42", Title: "SSO", URL: "https://dev.example/42"},
		}, nil).Once()

		catalog, err := newCatalogService(fx, tracker).ImportFromTracker(ctx, fx.owner, fx.session.ID)
		require.NoError(t, err)
		require.Len(t, catalog, 3)
		assert.Equal(t, "SSO", catalog[0].Title)
		assert.True(t, catalog[0].IsImported())
	})

	t.Run("forbidden before fetching", func(t *testing.T) {
		tracker := &mockTracker{}
		_, err := newCatalogService(fx, tracker).ImportFromTracker(ctx, fx.stakeholder, fx.session.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		tracker.AssertNotCalled(t, "FetchWorkItems", mock.Anything)
	})
}
