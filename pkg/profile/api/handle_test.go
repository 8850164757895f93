package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/activity"
	"github.com/tendant/agroyield/pkg/client"
	"github.com/tendant/agroyield/pkg/notification"
	"github.com/tendant/agroyield/pkg/tokengenerator"
	"github.com/tendant/agroyield/pkg/verification"
)

type env struct {
	router   http.Handler
	accounts *account.InMemoryRepository
	notifier *notification.MockNotifier
	log      *activity.Log
	user     account.Account
}

func setup(t *testing.T) env {
	t.Helper()
	accounts := account.NewInMemoryRepository()
	user, err := accounts.Create(context.Background(), account.CreateParams{
		Email:     "aziz@example.com",
		FirstName: "Aziz",
		Role:      account.RoleUsers,
	})
	require.NoError(t, err)

	notifier := &notification.MockNotifier{}
	tokens := tokengenerator.NewTokenService(tokengenerator.NewJwtTokenGenerator("secret", "agroyield", "agroyield"))
	verify := verification.NewService(verification.NewInMemoryRepository(accounts), accounts, tokens, notifier)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	log := activity.NewLog(activity.NewInMemoryRepository(), activity.WithClock(func() time.Time { return now }))

	h := NewHandle(account.NewService(accounts), verify, log)
	r := chi.NewRouter()
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Patch("/", h.UpdateProfile)
		r.Delete("/", h.DeleteProfile)
		r.Post("/complete/", h.CompleteProfile)
		r.Post("/request-email-change/", h.RequestEmailChange)
		r.Post("/confirm-email-change/", h.ConfirmEmailChange)
		r.Get("/recent-activities/", h.RecentActivities)
	})
	return env{router: r, accounts: accounts, notifier: notifier, log: log, user: user}
}

func (e env) do(t *testing.T, method, path string, user *client.AuthUser, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(client.WithAuthUser(req.Context(), user))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e env) caller() *client.AuthUser {
	return &client.AuthUser{UserUuid: e.user.ID, Email: e.user.Email, Role: string(e.user.Role)}
}

func TestProfile_GetAndUpdate(t *testing.T) {
	e := setup(t)

	rr := e.do(t, http.MethodGet, "/profile/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, http.MethodPatch, "/profile/", e.caller(), map[string]string{
		"first_name": "Azizbek",
		"email":      "sneaky@example.com",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got account.UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Azizbek", got.FirstName)
	assert.Equal(t, "aziz@example.com", got.Email)

	rr = e.do(t, http.MethodPatch, "/profile/", e.caller(), map[string]string{"phone_number": "not-a-phone"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfile_Complete(t *testing.T) {
	e := setup(t)

	rr := e.do(t, http.MethodPost, "/profile/complete/", e.caller(), CompleteProfileRequest{
		PhoneNumber: "+998901112233",
		Region:      "Namangan",
		Role:        "farmer",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp CompleteProfileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.User.ProfileComplete)
	assert.Equal(t, account.RoleFarmers, resp.User.Role)
}

func TestProfile_EmailChange(t *testing.T) {
	e := setup(t)

	rr := e.do(t, http.MethodPost, "/profile/request-email-change/", e.caller(), EmailChangeRequest{NewEmail: "New@Example.com"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	n, ok := e.notifier.Last()
	require.True(t, ok)
	code := n.Data.Data["Code"]

	rr = e.do(t, http.MethodPost, "/profile/confirm-email-change/", e.caller(), ConfirmEmailChangeRequest{NewEmail: "new@example.com", Code: "0000x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPost, "/profile/confirm-email-change/", e.caller(), ConfirmEmailChangeRequest{NewEmail: "new@example.com", Code: code})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp ConfirmEmailChangeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.User.Email)
}

func TestProfile_EmailChangeForSomeoneElse(t *testing.T) {
	e := setup(t)
	other, err := e.accounts.Create(context.Background(), account.CreateParams{Email: "other@example.com"})
	require.NoError(t, err)

	rr := e.do(t, http.MethodPost, "/profile/request-email-change/", e.caller(), EmailChangeRequest{UserID: &other.ID, NewEmail: "x@example.com"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	admin := &client.AuthUser{UserUuid: uuid.New(), IsAdmin: true}
	rr = e.do(t, http.MethodPost, "/profile/request-email-change/", admin, EmailChangeRequest{UserID: &other.ID, NewEmail: "x@example.com"})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodPost, "/profile/request-email-change/", e.caller(), EmailChangeRequest{NewEmail: "other@example.com"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

type named string

func (n named) ActivityModel() string { return "Product" }
func (n named) ActivityID() string    { return string(n) }
func (n named) String() string        { return string(n) }

func TestProfile_RecentActivities(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	for _, name := range []string{"Cotton", "Wheat"} {
		require.NoError(t, e.log.Record(ctx, e.user.ID, activity.ActionCreate, named(name)))
	}

	rr := e.do(t, http.MethodGet, "/profile/recent-activities/", e.caller(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []activity.EntryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Wheat", entries[0].ObjectName)
	assert.Equal(t, "Created", entries[0].ActionDisplay)
	assert.Equal(t, "Just now", entries[0].TimeAgo)
}

func TestProfile_Delete(t *testing.T) {
	e := setup(t)

	rr := e.do(t, http.MethodDelete, "/profile/", e.caller(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = e.do(t, http.MethodGet, "/profile/", e.caller(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
