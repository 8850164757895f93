package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("pwd12345")
	require.NoError(t, err)
	assert.NotEqual(t, "pwd12345", hash)

	ok, err := h.Verify("pwd12345", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestUnusablePasswordNeverVerifies(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	ok, err := h.Verify(UnusablePassword, UnusablePassword)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, Account{PasswordHash: UnusablePassword}.HasUsablePassword())
}
