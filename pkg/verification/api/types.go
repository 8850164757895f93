package api

import (
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

// RegisterRequest is the body of POST register/
type RegisterRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Region      string `json:"region"`
	Role        string `json:"role"`
	Password    string `json:"password"`
	RePassword  string `json:"re_password"`
}

// RegisterResponse echoes the email the code was sent to
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// VerifyCodeRequest is the body of the code verification endpoints
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RegistrationResponse is returned once an account is created
type RegistrationResponse struct {
	Message string                   `json:"message"`
	User    account.UserResponse     `json:"user"`
	Tokens  tokengenerator.TokenPair `json:"tokens"`
}

// PasswordResetRequest is the body of POST password-reset/request/
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetVerifyResponse carries the grant for the confirm step
type PasswordResetVerifyResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
	Token   string `json:"token"`
}

// PasswordResetConfirmRequest is the body of POST password-reset/confirm/
type PasswordResetConfirmRequest struct {
	UID           string `json:"uid"`
	Token         string `json:"token"`
	NewPassword   string `json:"new_password"`
	ReNewPassword string `json:"re_new_password"`
}

// MessageResponse is a plain informational reply
type MessageResponse struct {
	Message string `json:"message"`
}
