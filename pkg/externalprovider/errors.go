package externalprovider

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrNotConfigured      = apperrors.New(apperrors.ErrCodeInternal, "Google login is not configured")
	ErrInvalidState       = apperrors.New(apperrors.ErrCodeInvalidToken, "Invalid or expired state")
	ErrMissingCode        = apperrors.Validation("Authorization code is required")
	ErrUseStandardLogin   = apperrors.Conflict("An account with this email already exists. Please use standard login.")
	ErrExchangeNotFound   = apperrors.New(apperrors.ErrCodeInvalidCode, "Invalid or expired exchange code")
	ErrIncompleteUserInfo = apperrors.Validation("Google did not return an account id and email")
)
