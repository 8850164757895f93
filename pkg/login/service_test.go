package login

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

func setupLoginService(t *testing.T) (*LoginService, *account.InMemoryRepository) {
	t.Helper()
	repo := account.NewInMemoryRepository()
	hasher := &account.BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash("pwd12345")
	require.NoError(t, err)
	phone := "+998901234567"
	_, err = repo.Create(context.Background(), account.CreateParams{
		Email: "login@example.com", PhoneNumber: &phone, PasswordHash: hash, Role: account.RoleExporters,
	})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), account.CreateParams{Email: "oauth@example.com", PasswordHash: account.UnusablePassword})
	require.NoError(t, err)

	tokens := tokengenerator.NewTokenService(tokengenerator.NewJwtTokenGenerator("secret", "agroyield", "agroyield"))
	return NewLoginService(repo, tokens, WithHasher(hasher)), repo
}

func TestLoginService_Authenticate(t *testing.T) {
	svc, _ := setupLoginService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		loginField string
		password   string
		wantErr    error
	}{
		{"email", "login@example.com", "pwd12345", nil},
		{"email case insensitive", "LOGIN@example.com", "pwd12345", nil},
		{"phone", "+998901234567", "pwd12345", nil},
		{"wrong password", "login@example.com", "nope", ErrInvalidCredentials},
		{"unknown email", "who@example.com", "pwd12345", ErrInvalidCredentials},
		{"unknown phone", "+998900000000", "pwd12345", ErrInvalidCredentials},
		{"oauth only account", "oauth@example.com", "!unusable", ErrInvalidCredentials},
		{"missing fields", "", "", ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := svc.Authenticate(ctx, tt.loginField, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "login@example.com", acct.Email)
		})
	}
}

func TestLoginService_Login(t *testing.T) {
	svc, _ := setupLoginService(t)
	res, err := svc.Login(context.Background(), "+998901234567", "pwd12345")
	require.NoError(t, err)
	assert.Equal(t, account.RoleExporters, res.Account.Role)
	assert.NotEmpty(t, res.Tokens.Access)
	assert.NotEmpty(t, res.Tokens.Refresh)
}
