package login

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrMissingCredentials = apperrors.Validation("Must include login field and password")
	ErrInvalidCredentials = apperrors.New(apperrors.ErrCodeInvalidCredentials, "Invalid credentials")
	ErrInactive           = apperrors.New(apperrors.ErrCodeAccountInactive, "User account is not active")
)
