package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/login"
	"github.com/tendant/agroyield/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := account.NewInMemoryRepository()
	hasher := &account.BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash("pwd12345")
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), account.CreateParams{Email: "user@example.com", PasswordHash: hash})
	require.NoError(t, err)

	tokens := tokengenerator.NewTokenService(tokengenerator.NewJwtTokenGenerator("secret", "agroyield", "agroyield"))
	h := NewHandle(login.NewLoginService(repo, tokens, login.WithHasher(hasher)), tokens)

	r := chi.NewRouter()
	r.Post("/login/", h.Login)
	r.Post("/token/refresh/", h.Refresh)
	r.Post("/logout/", h.Logout)
	return r
}

func post(t *testing.T, h http.Handler, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf)))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return rr.Code, out
}

func TestLoginRefreshLogout(t *testing.T) {
	r := setupRouter(t)

	code, body := post(t, r, "/login/", LoginRequest{LoginField: "user@example.com", Password: "bad"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid credentials", body["error"])

	code, body = post(t, r, "/login/", LoginRequest{LoginField: "user@example.com", Password: "pwd12345"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", body["message"])
	refresh := body["tokens"].(map[string]interface{})["refresh"].(string)

	code, body = post(t, r, "/token/refresh/", RefreshRequest{Refresh: refresh})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Token refreshed successfully", body["message"])
	rotated := body["refresh"].(string)

	code, _ = post(t, r, "/token/refresh/", RefreshRequest{Refresh: refresh})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = post(t, r, "/logout/", RefreshRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Refresh token is required", body["error"])

	code, body = post(t, r, "/logout/", RefreshRequest{Refresh: rotated})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logout successful", body["message"])

	code, body = post(t, r, "/logout/", RefreshRequest{Refresh: rotated})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid token", body["error"])
}
