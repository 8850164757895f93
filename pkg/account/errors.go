package account

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrAccountNotFound = apperrors.NotFound("User not found")
	ErrEmailTaken      = apperrors.Conflict("User with this email already exists")
	ErrPhoneTaken      = apperrors.Conflict("User with this phone number already exists")
	ErrGoogleIDTaken   = apperrors.Conflict("Google account is already linked")
	ErrInvalidPhone    = apperrors.Validation("Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed.")
	ErrEmptyPassword   = apperrors.Validation("Password cannot be empty")
)
