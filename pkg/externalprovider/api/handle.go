package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/render"
	"github.com/tendant/agroyield/pkg/account"
	apperrors "github.com/tendant/agroyield/pkg/errors"
	"github.com/tendant/agroyield/pkg/externalprovider"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

// ExchangeRequest is the body of POST login/google/exchange/
type ExchangeRequest struct {
	Code string `json:"code"`
}

// ExchangeResponse carries the tokens that used to be put in the redirect URL
type ExchangeResponse struct {
	Message           string                   `json:"message"`
	Tokens            tokengenerator.TokenPair `json:"tokens"`
	User              account.UserResponse     `json:"user"`
	ProfileIncomplete bool                     `json:"profile_incomplete"`
}

// Handle serves the Google login endpoints
type Handle struct {
	service     *externalprovider.ExternalProviderService
	frontendURL string
}

// NewHandle creates a new external provider API handler
func NewHandle(service *externalprovider.ExternalProviderService, frontendURL string) *Handle {
	return &Handle{
		service:     service,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// safeNext keeps only same-site relative paths so the callback cannot be turned into an open redirect.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	return next
}

func (h *Handle) redirect(w http.ResponseWriter, r *http.Request, path string, params url.Values) {
	target := h.frontendURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// GoogleLogin handles GET login/google/
func (h *Handle) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.service.InitiateGoogle(r.Context(), safeNext(r.URL.Query().Get("next")))
	if err != nil {
		slog.Error("Failed to initiate Google login", "error", err)
		apperrors.Render(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback handles GET login/google/callback/
func (h *Handle) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		slog.Warn("Google returned an error", "error", providerErr, "description", q.Get("error_description"))
		h.redirect(w, r, "/login", url.Values{"error": {providerErr}})
		return
	}

	res, err := h.service.HandleCallback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		if errors.Is(err, externalprovider.ErrUseStandardLogin) {
			h.redirect(w, r, "/login", url.Values{"error": {"use_standard_login"}})
			return
		}
		slog.Error("Google callback failed", "error", err)
		h.redirect(w, r, "/login", url.Values{"error": {"authentication_failed"}})
		return
	}

	params := url.Values{"code": {res.Code}}
	if res.RedirectAfter != "" {
		params.Set("next", res.RedirectAfter)
	}
	if res.ProfileIncomplete {
		h.redirect(w, r, "/complete-profile", params)
		return
	}
	h.redirect(w, r, "/auth/callback", params)
}

// Exchange handles POST login/google/exchange/
func (h *Handle) Exchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Code is required")
		return
	}

	out, err := h.service.Exchange(r.Context(), req.Code)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ExchangeResponse{
		Message:           "Login successful",
		Tokens:            out.Tokens,
		User:              account.ToResponse(out.Account),
		ProfileIncomplete: out.ProfileIncomplete,
	})
}
