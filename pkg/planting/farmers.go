package planting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/analytics"
	"github.com/tendant/agroyield/pkg/catalog"
)

type FarmerRecord struct {
	Product         *catalog.Product `json:"product"`
	PlantingArea    float64          `json:"planting_area"`
	ExpectingWeight float64          `json:"expecting_weight"`
	WPH             float64          `json:"wph"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type Farmer struct {
	ID              uuid.UUID      `json:"id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Email           string         `json:"email"`
	PhoneNumber     *string        `json:"phone_number"`
	Region          string         `json:"region"`
	PlantedProducts []FarmerRecord `json:"planted_products"`
}

// ListFarmers returns every account in the Farmers group with its planted records.
func (s *Service) ListFarmers(ctx context.Context) ([]Farmer, error) {
	accounts, err := s.accounts.ListByRole(ctx, account.RoleFarmers)
	if err != nil {
		return nil, fmt.Errorf("failed to list farmers: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	records, err := s.repo.ListByOwners(ctx, ids)
	if err != nil {
		return nil, err
	}

	products := map[uuid.UUID]*catalog.Product{}
	byOwner := map[uuid.UUID][]FarmerRecord{}
	for _, r := range records {
		fr := FarmerRecord{
			PlantingArea:    r.PlantingArea,
			ExpectingWeight: r.ExpectingWeight,
			WPH:             analytics.WPH(r.ExpectingWeight, r.PlantingArea),
			CreatedAt:       r.CreatedAt,
			UpdatedAt:       r.UpdatedAt,
		}
		if r.ProductID != nil {
			p, seen := products[*r.ProductID]
			if !seen {
				if found, err := s.catalog.GetProduct(ctx, *r.ProductID); err == nil {
					p = &found
				}
				products[*r.ProductID] = p
			}
			fr.Product = p
		}
		byOwner[r.OwnerID] = append(byOwner[r.OwnerID], fr)
	}

	farmers := make([]Farmer, 0, len(accounts))
	for _, a := range accounts {
		planted := byOwner[a.ID]
		if planted == nil {
			planted = []FarmerRecord{}
		}
		farmers = append(farmers, Farmer{
			ID:              a.ID,
			FirstName:       a.FirstName,
			LastName:        a.LastName,
			Email:           a.Email,
			PhoneNumber:     a.PhoneNumber,
			Region:          a.Region,
			PlantedProducts: planted,
		})
	}
	return farmers, nil
}
