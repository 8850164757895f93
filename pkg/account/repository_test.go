package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/testutil"
)

func TestPostgresRepository(t *testing.T) {
	pool := testutil.NewPostgres(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateParams{
		Email:        "Grower@Example.com",
		PhoneNumber:  strPtr("+998901234567"),
		FirstName:    "Dilnoza",
		PasswordHash: "hash",
		Role:         RoleFarmers,
	})
	require.NoError(t, err)
	assert.Equal(t, "grower@example.com", created.Email)
	assert.Equal(t, RoleFarmers, created.Role)

	t.Run("unique violations map to conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, CreateParams{Email: "grower@example.com", PasswordHash: "hash"})
		assert.ErrorIs(t, err, ErrEmailTaken)
		_, err = repo.Create(ctx, CreateParams{Email: "x@example.com", PhoneNumber: strPtr("+998901234567"), PasswordHash: "hash"})
		assert.ErrorIs(t, err, ErrPhoneTaken)
	})

	t.Run("lookups", func(t *testing.T) {
		byPhone, err := repo.GetByPhone(ctx, "+998901234567")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byPhone.ID)

		exists, err := repo.EmailExists(ctx, "GROWER@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = repo.GetByGoogleID(ctx, "missing")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("profile update and clearing phone", func(t *testing.T) {
		updated, err := repo.UpdateProfile(ctx, created.ID, ProfileUpdate{Region: strPtr("Fergana"), PhoneNumber: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, "Fergana", updated.Region)
		assert.Nil(t, updated.PhoneNumber)
		assert.Equal(t, "Dilnoza", updated.FirstName)
	})

	t.Run("email and password", func(t *testing.T) {
		require.NoError(t, repo.UpdateEmail(ctx, created.ID, "new@example.com"))
		require.NoError(t, repo.UpdatePassword(ctx, created.ID, "hash2"))
		got, err := repo.GetByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash2", got.PasswordHash)
	})

	t.Run("list and delete", func(t *testing.T) {
		farmers, err := repo.ListByRole(ctx, RoleFarmers)
		require.NoError(t, err)
		assert.Len(t, farmers, 1)

		require.NoError(t, repo.Delete(ctx, created.ID))
		assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrAccountNotFound)
	})
}
