package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

func TestProductService(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := NewProductService(fx.store.Products(), fx.store.Roles(), fx.clock)

	_, err := svc.Create(ctx, fx.owner, ports.CreateProductInput{Name: "Mobile"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Create(ctx, fx.admin, ports.CreateProductInput{Name: "Mobile", ColorHex: ptr("blue")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mobile, err := svc.Create(ctx, fx.admin, ports.CreateProductInput{Name: " Mobile ", ColorHex: ptr("#1a2b3c")})
	require.NoError(t, err)
	assert.Equal(t, "Mobile", mobile.Name)
	assert.Equal(t, "#1A2B3C", *mobile.ColorHex)

	all, err := svc.List(ctx, fx.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, fx.stakeholder)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, fx.product.ID, mine[0].ID)

	none, err := svc.List(ctx, fx.outsider)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Get(ctx, fx.owner, mobile.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	got, err := svc.Get(ctx, fx.owner, fx.product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Payments", got.Name)
}
