package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/agroyield/pkg/account"
	apperrors "github.com/tendant/agroyield/pkg/errors"
	"github.com/tendant/agroyield/pkg/login"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

// LoginRequest is the body of POST login/
type LoginRequest struct {
	LoginField string `json:"login_field"`
	Password   string `json:"password"`
}

// LoginResponse mirrors the registration response
type LoginResponse struct {
	Message string                   `json:"message"`
	Tokens  tokengenerator.TokenPair `json:"tokens"`
	User    account.UserResponse     `json:"user"`
}

// RefreshRequest is the body of token/refresh/ and logout/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse returns the rotated pair
type RefreshResponse struct {
	Message string `json:"message"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handle struct {
	loginService *login.LoginService
	tokenService *tokengenerator.TokenService
}

func NewHandle(loginService *login.LoginService, tokenService *tokengenerator.TokenService) Handle {
	return Handle{
		loginService: loginService,
		tokenService: tokenService,
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("Failed to decode request body", "error", err)
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// Login handles POST login/
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.loginService.Login(r.Context(), req.LoginField, req.Password)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, LoginResponse{
		Message: "Login successful",
		Tokens:  result.Tokens,
		User:    account.ToResponse(result.Account),
	})
}

// Refresh handles POST token/refresh/
func (h Handle) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.tokenService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeInvalidToken) {
			// Refresh failures are authentication failures.
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RefreshResponse{
		Message: "Token refreshed successfully",
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

// Logout handles POST logout/ and denylists the presented refresh token
func (h Handle) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.tokenService.Revoke(r.Context(), req.Refresh); err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Logout successful"})
}
