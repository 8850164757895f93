package planting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/analytics"
	"github.com/tendant/agroyield/pkg/catalog"
	"github.com/tendant/agroyield/pkg/testutil"
)

func TestPostgresRepository(t *testing.T) {
	pool := testutil.NewPostgres(t)
	ctx := context.Background()
	repo := NewPostgresRepository(pool)
	cat := catalog.NewPostgresRepository(pool)

	owner, err := account.NewPostgresRepository(pool).Create(ctx, account.CreateParams{
		Email:     "farmer@example.com",
		FirstName: "Bobur",
		Role:      account.RoleFarmers,
	})
	require.NoError(t, err)
	melon, err := cat.CreateProduct(ctx, catalog.ProductInput{Name: "Melon"})
	require.NoError(t, err)
	bukhara, err := cat.CreateRegion(ctx, catalog.RegionInput{Name: "Bukhara", Country: catalog.DefaultCountry})
	require.NoError(t, err)

	created, err := repo.Create(ctx, Record{
		ProductID:       &melon.ID,
		OwnerID:         owner.ID,
		RegionID:        &bukhara.ID,
		PlantingArea:    2.125,
		ExpectingWeight: 17,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.125, created.PlantingArea)

	t.Run("dangling references become field errors", func(t *testing.T) {
		missing := uuid.New()
		_, err := repo.Create(ctx, Record{ProductID: &missing, OwnerID: owner.ID, RegionID: &bukhara.ID, PlantingArea: 1, ExpectingWeight: 1})
		assert.ErrorIs(t, err, ErrUnknownProduct)
		_, err = repo.Create(ctx, Record{ProductID: &melon.ID, OwnerID: missing, RegionID: &bukhara.ID, PlantingArea: 1, ExpectingWeight: 1})
		assert.ErrorIs(t, err, ErrUnknownOwner)
	})

	t.Run("list by owner", func(t *testing.T) {
		records, err := repo.List(ctx, &owner.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, created.ID, records[0].ID)

		records, err = repo.ListByOwners(ctx, []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("update", func(t *testing.T) {
		created.ExpectingWeight = 20.5
		updated, err := repo.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, 20.5, updated.ExpectingWeight)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("names survive until the catalog entry is deleted", func(t *testing.T) {
		rows, err := repo.ListWithNames(ctx, analytics.Filter{RegionID: &bukhara.ID})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Melon", *rows[0].ProductName)
		assert.Equal(t, "Bukhara", *rows[0].RegionName)

		_, err = cat.DeleteProduct(ctx, melon.ID)
		require.NoError(t, err)

		rows, err = repo.ListWithNames(ctx, analytics.Filter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ProductID)
		assert.Nil(t, rows[0].ProductName)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ProductID)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)
		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
