// Package api serves the signed-in user's own account: profile fields, email
// change and recent activity.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/activity"
	"github.com/tendant/agroyield/pkg/client"
	apperrors "github.com/tendant/agroyield/pkg/errors"
	"github.com/tendant/agroyield/pkg/verification"
)

type Handle struct {
	accounts     *account.Service
	verification *verification.Service
	activity     *activity.Log
}

func NewHandle(accounts *account.Service, verification *verification.Service, activity *activity.Log) Handle {
	return Handle{
		accounts:     accounts,
		verification: verification,
		activity:     activity,
	}
}

func authUser(w http.ResponseWriter, r *http.Request) (*client.AuthUser, bool) {
	user := client.GetAuthUser(r)
	if user == nil {
		slog.Error("Failed getting AuthUser")
		apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return nil, false
	}
	return user, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		slog.Debug("Failed to decode request body", "error", err)
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// subjectOf picks the account an email change applies to. Only admins may name
// an account other than their own.
func subjectOf(user *client.AuthUser, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == user.UserUuid {
		return user.UserUuid, nil
	}
	if !user.IsAdmin {
		return uuid.Nil, apperrors.Forbidden("You can only change your own email")
	}
	return *requested, nil
}

// GetProfile handles GET profile/
func (h Handle) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	a, err := h.accounts.Get(r.Context(), user.UserUuid)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.JSON(w, r, account.ToResponse(a))
}

// UpdateProfile handles PATCH profile/
func (h Handle) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.accounts.Update(r.Context(), user.UserUuid, account.UpdateRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Region:      req.Region,
	})
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.JSON(w, r, account.ToResponse(a))
}

// DeleteProfile handles DELETE profile/
func (h Handle) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	if err := h.accounts.Delete(r.Context(), user.UserUuid); err != nil {
		apperrors.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteProfile handles POST profile/complete/
func (h Handle) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	var req CompleteProfileRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.accounts.Complete(r.Context(), user.UserUuid, account.CompleteRequest{
		PhoneNumber: req.PhoneNumber,
		Region:      req.Region,
		Role:        req.Role,
	})
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.JSON(w, r, CompleteProfileResponse{
		Message: "Profile completed successfully",
		User:    account.ToResponse(a),
	})
}

// RequestEmailChange handles POST profile/request-email-change/
func (h Handle) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	var req EmailChangeRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := subjectOf(user, req.UserID)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	if err := h.verification.RequestEmailChange(r.Context(), id, req.NewEmail); err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.JSON(w, r, EmailChangeResponse{
		Message:  "Verification code sent to your new email",
		NewEmail: account.NormalizeEmail(req.NewEmail),
	})
}

// ConfirmEmailChange handles POST profile/confirm-email-change/
func (h Handle) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	var req ConfirmEmailChangeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.NewEmail == "" || req.Code == "" {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "New email and code are required")
		return
	}
	id, err := subjectOf(user, req.UserID)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	a, err := h.verification.ConfirmEmailChange(r.Context(), id, req.NewEmail, req.Code)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.JSON(w, r, ConfirmEmailChangeResponse{
		Message: "Email changed successfully",
		User:    account.ToResponse(a),
	})
}

// RecentActivities handles GET profile/recent-activities/
func (h Handle) RecentActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := authUser(w, r)
	if !ok {
		return
	}
	entries, err := h.activity.Recent(r.Context(), user.UserUuid, activity.DefaultRecent)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	now := h.activity.Now()
	resp := make([]activity.EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, activity.ToResponse(e, now))
	}
	render.JSON(w, r, resp)
}
