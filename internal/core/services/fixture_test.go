package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	budgetmemory "github.com/vncsmyrnk/featurevote/internal/adapters/budgetstore/memory"
	"github.com/vncsmyrnk/featurevote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

var fixtureNow = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	budgets *budgetmemory.Store
	clock   *clock.FakeClock

	admin       domain.User
	owner       domain.User
	stakeholder domain.User
	outsider    domain.User

	product domain.Product
	session domain.VotingSession
	f1, f2  domain.Feature
}

// newFixture seeds a product with one open session of ten votes per user,
// two features and one user per role.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	fx := &fixture{
		store:   memory.NewStore(),
		budgets: budgetmemory.NewStore(),
		clock:   clock.NewFakeClock(fixtureNow),
	}

	mkUser := func(name string) domain.User {
		u := domain.User{ID: uuid.New(), Name: name, Email: name + "@example.com", CreatedAt: fixtureNow}
		require.NoError(t, fx.store.Users().Create(ctx, &u))
		return u
	}
	fx.admin = mkUser("admin")
	fx.owner = mkUser("owner")
	fx.stakeholder = mkUser("stake")
	fx.outsider = mkUser("outsider")

	fx.product = domain.Product{ID: uuid.New(), Name: "Payments", CreatedAt: fixtureNow}
	require.NoError(t, fx.store.Products().Create(ctx, &fx.product))

	fx.session = domain.VotingSession{
		ID:           uuid.New(),
		ProductID:    fx.product.ID,
		Title:        "Q2",
		VotesPerUser: 10,
		StartDate:    fixtureNow.Add(-24 * time.Hour),
		EndDate:      fixtureNow.Add(24 * time.Hour),
		IsActive:     true,
		CreatedAt:    fixtureNow,
	}
	require.NoError(t, fx.store.Sessions().Create(ctx, &fx.session))

	fx.f1 = domain.Feature{ID: uuid.New(), SessionID: fx.session.ID, Title: "Refunds", CreatedAt: fixtureNow}
	fx.f2 = domain.Feature{ID: uuid.New(), SessionID: fx.session.ID, Title: "Invoices", CreatedAt: fixtureNow.Add(time.Second)}
	require.NoError(t, fx.store.Features().Create(ctx, &fx.f1))
	require.NoError(t, fx.store.Features().Create(ctx, &fx.f2))

	roles := fx.store.Roles()
	_, err := roles.GrantSystemAdmin(ctx, fx.admin.ID)
	require.NoError(t, err)
	_, err = roles.GrantProductOwner(ctx, domain.ProductOwnerGrant{UserID: fx.owner.ID, ProductID: fx.product.ID})
	require.NoError(t, err)
	_, err = roles.GrantStakeholder(ctx, domain.StakeholderGrant{ProductID: fx.product.ID, UserEmail: fx.stakeholder.Email, UserName: fx.stakeholder.Name})
	require.NoError(t, err)

	return fx
}

func ptr[T any](v T) *T { return &v }

// mockVoteRepository lets tests fail ledger writes.
type mockVoteRepository struct {
	mock.Mock
	*memory.VoteRepository
}

func (m *mockVoteRepository) UpsertBatch(ctx context.Context, records []domain.VoteRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// mockTracker is a testify mock of ports.Tracker.
type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) FetchWorkItems(ctx context.Context) ([]domain.ExternalFeature, error) {
	args := m.Called(ctx)
	if items := args.Get(0); items != nil {
		return items.([]domain.ExternalFeature), args.Error(1)
	}
	return nil, args.Error(1)
}
