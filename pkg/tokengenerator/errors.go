package tokengenerator

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrTokenRequired = apperrors.Validation("Refresh token is required")
	ErrInvalidToken  = apperrors.New(apperrors.ErrCodeInvalidToken, "Invalid token")
)
