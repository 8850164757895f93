package planting

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrRecordNotFound  = apperrors.NotFound("Planted product not found")
	ErrNotOwner        = apperrors.Forbidden("You do not have permission to perform this action.")
	ErrProductRequired = apperrors.Validation("This field is required.").WithDetail("field", "product")
	ErrRegionRequired  = apperrors.Validation("This field is required.").WithDetail("field", "region")
	ErrUnknownProduct  = apperrors.Validation("Invalid pk - object does not exist.").WithDetail("field", "product")
	ErrUnknownRegion   = apperrors.Validation("Invalid pk - object does not exist.").WithDetail("field", "region")
	ErrUnknownOwner    = apperrors.Validation("Invalid pk - object does not exist.").WithDetail("field", "owner")
)
