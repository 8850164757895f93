package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/notification"
	"github.com/tendant/agroyield/pkg/tokengenerator"
	"github.com/tendant/agroyield/pkg/verification"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(t *testing.T) (http.Handler, *notification.MockNotifier) {
	t.Helper()
	accounts := account.NewInMemoryRepository()
	notifier := &notification.MockNotifier{}
	tokens := tokengenerator.NewTokenService(tokengenerator.NewJwtTokenGenerator("secret", "agroyield", "agroyield"))
	svc := verification.NewService(verification.NewInMemoryRepository(accounts), accounts, tokens, notifier,
		verification.WithHasher(&account.BcryptHasher{Cost: bcrypt.MinCost}))
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/register/", h.Register)
	r.Post("/verify-register/", h.VerifyRegister)
	r.Post("/password-reset/request/", h.RequestPasswordReset)
	r.Post("/password-reset/verify/", h.VerifyPasswordReset)
	r.Post("/password-reset/confirm/", h.ConfirmPasswordReset)
	return r, notifier
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestRegisterAndVerify(t *testing.T) {
	h, notifier := setupRouter(t)

	rr := post(t, h, "/register/", RegisterRequest{
		Email: "api@example.com", FirstName: "Lola", Password: "secret1", RePassword: "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Passwords don't match", decodeBody(t, rr)["error"])

	rr = post(t, h, "/register/", RegisterRequest{
		Email: "api@example.com", FirstName: "Lola", Role: "Analysts", Password: "secret1", RePassword: "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "api@example.com", decodeBody(t, rr)["email"])

	last, ok := notifier.Last()
	require.True(t, ok)
	code := last.Data.Data["Code"]

	rr = post(t, h, "/verify-register/", VerifyCodeRequest{Email: "missing@example.com", Code: code})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(t, h, "/verify-register/", VerifyCodeRequest{Email: "api@example.com", Code: "0000"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(t, h, "/verify-register/", VerifyCodeRequest{Email: "api@example.com", Code: code})
	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Registration successful", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Analysts", user["role"])
	tokens := body["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])
}

func TestPasswordResetEndpoints(t *testing.T) {
	h, notifier := setupRouter(t)

	rr := post(t, h, "/password-reset/request/", PasswordResetRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User with this email doesn't exist.", decodeBody(t, rr)["error"])

	require.Equal(t, http.StatusOK, post(t, h, "/register/", RegisterRequest{
		Email: "r@example.com", Password: "first1", RePassword: "first1",
	}).Code)
	last, _ := notifier.Last()
	require.Equal(t, http.StatusCreated, post(t, h, "/verify-register/", VerifyCodeRequest{Email: "r@example.com", Code: last.Data.Data["Code"]}).Code)

	rr = post(t, h, "/password-reset/request/", PasswordResetRequest{Email: "r@example.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	last, _ = notifier.Last()

	rr = post(t, h, "/password-reset/verify/", VerifyCodeRequest{Email: "r@example.com", Code: last.Data.Data["Code"]})
	require.Equal(t, http.StatusOK, rr.Code)
	grant := decodeBody(t, rr)

	rr = post(t, h, "/password-reset/verify/", VerifyCodeRequest{Email: "r@example.com", Code: last.Data.Data["Code"]})
	assert.Equal(t, http.StatusNotFound, rr.Code, "a reset code verifies once")

	rr = post(t, h, "/password-reset/confirm/", PasswordResetConfirmRequest{
		UID: grant["uid"].(string), Token: "tampered", NewPassword: "n", ReNewPassword: "n",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(t, h, "/password-reset/confirm/", PasswordResetConfirmRequest{
		UID: grant["uid"].(string), Token: grant["token"].(string), NewPassword: "second2", ReNewPassword: "second2",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
}
