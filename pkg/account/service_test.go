package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func setupService(t *testing.T) (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo), repo
}

func TestInMemoryRepository_UniqueFields(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.Create(ctx, CreateParams{Email: "Farmer@Example.com", PhoneNumber: strPtr("+998901111111"), PasswordHash: "x"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateParams{Email: "farmer@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = repo.Create(ctx, CreateParams{Email: "other@example.com", PhoneNumber: strPtr("+998901111111"), PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrPhoneTaken)

	a, err := repo.GetByEmail(ctx, " FARMER@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleUsers, a.Role)
	assert.True(t, a.IsActive)
}

func TestService_UpdateKeepsEmail(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)
	a, err := repo.Create(ctx, CreateParams{Email: "a@example.com", PasswordHash: "x", ProfileComplete: true})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID, UpdateRequest{FirstName: strPtr("Bobur"), Region: strPtr("Samarkand")})
	require.NoError(t, err)
	assert.Equal(t, "Bobur", updated.FirstName)
	assert.Equal(t, "Samarkand", updated.Region)
	assert.Equal(t, "a@example.com", updated.Email)

	_, err = svc.Update(ctx, a.ID, UpdateRequest{PhoneNumber: strPtr("abc")})
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestService_Complete(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)
	a, err := repo.Create(ctx, CreateParams{Email: "g@example.com", PasswordHash: UnusablePassword})
	require.NoError(t, err)
	assert.False(t, a.ProfileComplete)

	done, err := svc.Complete(ctx, a.ID, CompleteRequest{PhoneNumber: "+998907777777", Region: "Bukhara", Role: "farmer"})
	require.NoError(t, err)
	assert.True(t, done.ProfileComplete)
	assert.Equal(t, RoleFarmers, done.Role)
	require.NotNil(t, done.PhoneNumber)
	assert.Equal(t, "+998907777777", *done.PhoneNumber)
}

func TestService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)
	f1, err := repo.Create(ctx, CreateParams{Email: "f1@example.com", PasswordHash: "x", Role: RoleFarmers})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateParams{Email: "u1@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	farmers, err := svc.ListByRole(ctx, RoleFarmers)
	require.NoError(t, err)
	require.Len(t, farmers, 1)
	assert.Equal(t, f1.ID, farmers[0].ID)

	require.NoError(t, svc.Delete(ctx, f1.ID))
	_, err = svc.Get(ctx, f1.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, f1.ID), ErrAccountNotFound)
}
