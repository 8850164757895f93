// Package planting stores what farmers planted, where, and how much they expect to harvest.
package planting

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

const (
	maxFractionDigits = 3
	maxIntegerDigits  = 12
)

// Record is one planted product. ProductID and RegionID become nil when the referenced
// catalog entry is deleted.
type Record struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       *uuid.UUID `json:"product"`
	OwnerID         uuid.UUID  `json:"owner"`
	RegionID        *uuid.UUID `json:"region"`
	PlantingArea    float64    `json:"planting_area"`
	ExpectingWeight float64    `json:"expecting_weight"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Input creates or fully replaces a record. OwnerID is honoured for admins only.
type Input struct {
	ProductID       *uuid.UUID
	RegionID        *uuid.UUID
	OwnerID         *uuid.UUID
	PlantingArea    float64
	ExpectingWeight float64
}

// Patch changes only the non-nil fields.
type Patch struct {
	ProductID       *uuid.UUID
	RegionID        *uuid.UUID
	OwnerID         *uuid.UUID
	PlantingArea    *float64
	ExpectingWeight *float64
}

// subject is a record with the names used in the activity log.
type subject struct {
	record  Record
	product string
	owner   string
	region  string
}

func (s subject) ActivityModel() string { return "PlantedProduct" }
func (s subject) ActivityID() string    { return s.record.ID.String() }

func (s subject) String() string {
	return fmt.Sprintf("Product name: %s, Product owner: %s, Region: %s", s.product, s.owner, s.region)
}

// ParseQuantity parses a decimal from a JSON number or numeric string, enforcing the
// stored precision: positive, at most 12 integer and 3 fraction digits.
func ParseQuantity(field string, n json.Number) (float64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, apperrors.Validation("This field is required.").WithDetail("field", field)
	}
	if strings.ContainsAny(s, "eE") {
		return 0, apperrors.Validation("A valid number is required.").WithDetail("field", field)
	}
	intPart, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if len(frac) > maxFractionDigits {
		return 0, apperrors.Validation("Ensure that there are no more than 3 decimal places.").WithDetail("field", field)
	}
	if len(strings.TrimLeft(intPart, "0")) > maxIntegerDigits {
		return 0, apperrors.Validation("Ensure that there are no more than 12 digits before the decimal point.").WithDetail("field", field)
	}
	v, err := n.Float64()
	if err != nil {
		return 0, apperrors.Validation("A valid number is required.").WithDetail("field", field)
	}
	return v, validQuantity(field, v)
}

func validQuantity(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.Validation("A valid number is required.").WithDetail("field", field)
	}
	if v <= 0 {
		return apperrors.Validation("Ensure this value is greater than 0.").WithDetail("field", field)
	}
	if v >= 1e12 {
		return apperrors.Validation("Ensure that there are no more than 12 digits before the decimal point.").WithDetail("field", field)
	}
	scaled := v * 1000
	if math.Abs(scaled-math.Round(scaled)) > 1e-9*math.Max(1, scaled) {
		return apperrors.Validation("Ensure that there are no more than 3 decimal places.").WithDetail("field", field)
	}
	return nil
}
