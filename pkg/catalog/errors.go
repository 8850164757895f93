package catalog

import (
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var (
	ErrRegionNotFound  = apperrors.NotFound("Region not found")
	ErrProductNotFound = apperrors.NotFound("Product not found")
	ErrRegionExists    = apperrors.Conflict("Region with this name already exists")
	ErrProductExists   = apperrors.Conflict("Product with this name already exists")
	ErrNameRequired    = apperrors.Validation("This field may not be blank.").WithDetail("field", "name")
	ErrAdminOnly       = apperrors.Forbidden("You do not have permission to perform this action.")
)
