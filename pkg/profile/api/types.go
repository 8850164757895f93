package api

import (
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
)

// UpdateProfileRequest is the body of PATCH profile/. An email field is ignored;
// addresses change only through the confirmation flow.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Region      *string `json:"region"`
}

type CompleteProfileRequest struct {
	PhoneNumber string `json:"phone_number"`
	Region      string `json:"region"`
	Role        string `json:"role"`
}

type CompleteProfileResponse struct {
	Message string               `json:"message"`
	User    account.UserResponse `json:"user"`
}

// EmailChangeRequest is the body of POST profile/request-email-change/. UserID
// defaults to the caller.
type EmailChangeRequest struct {
	UserID   *uuid.UUID `json:"user_id"`
	NewEmail string     `json:"new_email"`
}

type EmailChangeResponse struct {
	Message  string `json:"message"`
	NewEmail string `json:"new_email"`
}

type ConfirmEmailChangeRequest struct {
	UserID   *uuid.UUID `json:"user_id"`
	NewEmail string     `json:"new_email"`
	Code     string     `json:"code"`
}

type ConfirmEmailChangeResponse struct {
	Message string               `json:"message"`
	User    account.UserResponse `json:"user"`
}
