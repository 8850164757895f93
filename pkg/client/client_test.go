package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

var testSecret = []byte("test-jwt-secret-key")

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	auth := jwtauth.New("HS256", testSecret, nil)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Verifier(auth))
		r.Use(jwtauth.Authenticator(auth))
		r.Use(AuthUserMiddleware)
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthUser(r)
			_, _ = w.Write([]byte(user.UserUuid.String() + "|" + user.Role))
		})
		r.With(AdminMiddleware).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(RequireRole(string(account.RoleFarmers))).Get("/farmers", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func issue(t *testing.T, a account.Account) tokengenerator.TokenPair {
	t.Helper()
	svc := tokengenerator.NewTokenService(tokengenerator.NewJwtTokenGenerator(string(testSecret), "agroyield", "agroyield"))
	pair, err := svc.IssuePair(tokengenerator.SubjectOf(a))
	require.NoError(t, err)
	return pair
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAuthUserMiddleware(t *testing.T) {
	r := setupRouter(t)
	farmer := account.Account{ID: uuid.New(), Email: "f@example.com", Role: account.RoleFarmers}
	pair := issue(t, farmer)

	rr := get(r, "/me", pair.Access)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, farmer.ID.String()+"|Farmers", rr.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", pair.Refresh).Code, "refresh tokens do not authenticate")

	other := jwtauth.New("HS256", []byte("other"), nil)
	_, forged, err := other.Encode(map[string]interface{}{
		"user_id": farmer.ID.String(), "token_type": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", forged).Code)
}

func TestAdminAndRoleMiddleware(t *testing.T) {
	r := setupRouter(t)
	farmer := issue(t, account.Account{ID: uuid.New(), Role: account.RoleFarmers})
	analyst := issue(t, account.Account{ID: uuid.New(), Role: account.RoleAnalysts})
	staff := issue(t, account.Account{ID: uuid.New(), Role: account.RoleUsers, IsStaff: true})

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", farmer.Access).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", staff.Access).Code)

	assert.Equal(t, http.StatusNoContent, get(r, "/farmers", farmer.Access).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/farmers", analyst.Access).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/farmers", staff.Access).Code)
}
