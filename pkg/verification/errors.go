package verification

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrPasswordMismatch = apperrors.Validation("Passwords don't match")
	ErrPasswordRequired = apperrors.Validation("Password is required")
	ErrNoContact        = apperrors.Validation("No email and phone number provided.")
	ErrEmailRequired    = apperrors.Validation("Email is required to receive the verification code")
	ErrInvalidEmail     = apperrors.Validation("Enter a valid email address.")
	ErrCodeLength       = apperrors.Validation("Code must be between 4 and 6 characters")
	ErrUnknownEmail     = apperrors.Validation("User with this email doesn't exist.")
	ErrNewEmailRequired = apperrors.Validation("New email is required")
	ErrSameEmail        = apperrors.Validation("New email must differ from the current email")

	ErrPendingNotFound = apperrors.NotFound("Registration not found. Please register again.")
	ErrCodeNotFound    = apperrors.NotFound("Verification code not found")
	ErrRequestNotFound = apperrors.NotFound("No email change request found")

	ErrCodeExpired  = apperrors.New(apperrors.ErrCodeExpired, "Verification code has expired")
	ErrCodeInvalid  = apperrors.New(apperrors.ErrCodeInvalidCode, "Invalid verification code")
	ErrInvalidToken = apperrors.New(apperrors.ErrCodeInvalidToken, "Invalid or expired reset token")
)
