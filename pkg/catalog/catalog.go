// Package catalog holds the reference data planted records point at: regions and products.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultCountry = "Uzbekistan"

type Region struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r Region) String() string {
	return fmt.Sprintf("%s - %s", r.Name, r.Country)
}

func (r Region) ActivityModel() string { return "Region" }
func (r Region) ActivityID() string    { return r.ID.String() }

type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NameRu    string    `json:"name_ru"`
	NameUz    string    `json:"name_uz"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Product) String() string {
	return p.Name
}

func (p Product) ActivityModel() string { return "Product" }
func (p Product) ActivityID() string    { return p.ID.String() }

// DisplayName returns the name in lang ("ru", "uz"), falling back to Name.
func (p Product) DisplayName(lang string) string {
	switch strings.ToLower(lang) {
	case "ru":
		if p.NameRu != "" {
			return p.NameRu
		}
	case "uz":
		if p.NameUz != "" {
			return p.NameUz
		}
	}
	return p.Name
}

// ProductInput is used for create and full update.
type ProductInput struct {
	Name   string `json:"name"`
	NameRu string `json:"name_ru"`
	NameUz string `json:"name_uz"`
}

// ProductPatch is a partial update; nil fields are left alone.
type ProductPatch struct {
	Name   *string `json:"name"`
	NameRu *string `json:"name_ru"`
	NameUz *string `json:"name_uz"`
}

// RegionInput is used for create and update. An empty Country means DefaultCountry.
type RegionInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}
