package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/testutil"
)

func TestPostgresRepository(t *testing.T) {
	pool := testutil.NewPostgres(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()

	t.Run("ensure is get-or-create", func(t *testing.T) {
		first, created, err := repo.EnsureRegion(ctx, "Fergana")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, DefaultCountry, first.Country)

		again, created, err := repo.EnsureRegion(ctx, "Fergana")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)

		_, created, err = repo.EnsureProduct(ctx, "Cotton")
		require.NoError(t, err)
		assert.True(t, created)
		_, created, err = repo.EnsureProduct(ctx, "Cotton")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("product crud", func(t *testing.T) {
		p, err := repo.CreateProduct(ctx, ProductInput{Name: "Saffron", NameRu: "Шафран"})
		require.NoError(t, err)

		_, err = repo.CreateProduct(ctx, ProductInput{Name: "Saffron"})
		assert.ErrorIs(t, err, ErrProductExists)

		p, err = repo.UpdateProduct(ctx, p.ID, ProductInput{Name: "Saffron", NameUz: "Za'faron"})
		require.NoError(t, err)
		assert.Equal(t, "", p.NameRu)
		assert.Equal(t, "Za'faron", p.NameUz)

		_, err = repo.DeleteProduct(ctx, p.ID)
		require.NoError(t, err)
		_, err = repo.GetProduct(ctx, p.ID)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("region update conflict", func(t *testing.T) {
		r, err := repo.CreateRegion(ctx, RegionInput{Name: "Navoi", Country: DefaultCountry})
		require.NoError(t, err)
		_, err = repo.UpdateRegion(ctx, r.ID, RegionInput{Name: "Fergana", Country: DefaultCountry})
		assert.ErrorIs(t, err, ErrRegionExists)
		_, err = repo.GetRegion(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRegionNotFound)
	})
}
