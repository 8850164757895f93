package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/agroyield/pkg/account"
	apperrors "github.com/tendant/agroyield/pkg/errors"
	"github.com/tendant/agroyield/pkg/verification"
)

// Handler serves the public registration and password reset endpoints
type Handler struct {
	service *verification.Service
}

// NewHandler creates a new verification API handler
func NewHandler(service *verification.Service) *Handler {
	return &Handler{
		service: service,
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

// Register handles POST register/
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	email, err := h.service.Register(r.Context(), verification.RegisterRequest{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Region:      req.Region,
		Role:        req.Role,
		Password:    req.Password,
		RePassword:  req.RePassword,
	})
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RegisterResponse{
		Message: "Verification code sent to your email",
		Email:   email,
	})
}

// VerifyRegister handles POST verify-register/
func (h *Handler) VerifyRegister(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Email and code are required")
		return
	}

	result, err := h.service.VerifyRegistration(r.Context(), req.Email, req.Code)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RegistrationResponse{
		Message: "Registration successful",
		User:    account.ToResponse(result.Account),
		Tokens:  result.Tokens,
	})
}

// RequestPasswordReset handles POST password-reset/request/
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Password reset code sent to your email"})
}

// VerifyPasswordReset handles POST password-reset/verify/
func (h *Handler) VerifyPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Email is required")
		return
	}

	grant, err := h.service.VerifyPasswordReset(r.Context(), req.Email, req.Code)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, PasswordResetVerifyResponse{
		Message: "Code verified",
		UID:     grant.UID,
		Token:   grant.Token,
	})
}

// ConfirmPasswordReset handles POST password-reset/confirm/
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UID == "" || req.Token == "" {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "uid and token are required")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.UID, req.Token, req.NewPassword, req.ReNewPassword); err != nil {
		apperrors.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Password has been reset successfully"})
}
