package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// Regions are the administrative regions of Uzbekistan.
var Regions = []string{
	"Tashkent", "Samarkand", "Bukhara", "Khorezm", "Surkhandarya", "Kashkadarya", "Andijan",
	"Fergana", "Namangan", "Jizzakh", "Sirdaryo", "Navoi", "Karakalpakstan",
}

// Products is the starter list of harvested products.
var Products = []string{
	// Fruits
	"Apple", "Orange", "Banana", "Grape", "Strawberry", "Blueberry", "Raspberry", "Blackberry",
	"Peach", "Pear", "Plum", "Cherry", "Apricot", "Mango", "Pineapple", "Watermelon",
	"Cantaloupe", "Honeydew", "Kiwi", "Papaya", "Avocado", "Coconut", "Pomegranate", "Fig",
	"Date", "Cranberry", "Gooseberry", "Elderberry", "Currant", "Lemon", "Lime", "Grapefruit",

	// Vegetables
	"Potato", "Tomato", "Carrot", "Onion", "Garlic", "Broccoli", "Cauliflower", "Cabbage",
	"Lettuce", "Spinach", "Kale", "Cucumber", "Zucchini", "Squash", "Pumpkin", "Bell Pepper",
	"Hot Pepper", "Eggplant", "Radish", "Turnip", "Beet", "Sweet Potato", "Corn", "Green Bean",
	"Pea", "Lima Bean", "Okra", "Asparagus", "Artichoke", "Brussels Sprout", "Celery", "Parsnip",

	// Grains and cereals
	"Wheat", "Rice", "Barley", "Oats", "Rye", "Quinoa", "Buckwheat", "Millet", "Sorghum",

	// Legumes
	"Soybean", "Black Bean", "Kidney Bean", "Navy Bean", "Pinto Bean", "Chickpea", "Lentil", "Black-eyed Pea",

	// Nuts and seeds
	"Almond", "Walnut", "Pecan", "Hazelnut", "Cashew", "Pistachio", "Macadamia", "Sunflower Seed",
	"Pumpkin Seed", "Flax Seed", "Chia Seed", "Sesame Seed",

	// Herbs and spices
	"Basil", "Oregano", "Thyme", "Rosemary", "Sage", "Parsley", "Cilantro", "Dill",
	"Mint", "Chives", "Tarragon", "Lavender",

	// Root vegetables
	"Ginger", "Turmeric", "Horseradish", "Rutabaga", "Jicama", "Yam",

	// Specialty crops
	"Cotton", "Tobacco", "Sugar Beet", "Sugar Cane", "Tea Leaf", "Coffee Bean", "Vanilla Bean", "Hops",
}

// SeedResult counts what a seed run changed.
type SeedResult struct {
	Created int
	Total   int
}

func (r SeedResult) String() string {
	return fmt.Sprintf("added %d new out of %d total", r.Created, r.Total)
}

// SeedRegions creates any missing entries of Regions. It is safe to run repeatedly.
func (s *Service) SeedRegions(ctx context.Context) (SeedResult, error) {
	res := SeedResult{Total: len(Regions)}
	for _, name := range Regions {
		_, created, err := s.repo.EnsureRegion(ctx, name)
		if err != nil {
			return res, fmt.Errorf("failed to seed region %q: %w", name, err)
		}
		if created {
			res.Created++
			slog.Info("Created region", "name", name)
		} else {
			slog.Debug("Region already exists", "name", name)
		}
	}
	return res, nil
}

// SeedProducts creates any missing entries of Products. It is safe to run repeatedly.
func (s *Service) SeedProducts(ctx context.Context) (SeedResult, error) {
	res := SeedResult{Total: len(Products)}
	for _, name := range Products {
		_, created, err := s.repo.EnsureProduct(ctx, name)
		if err != nil {
			return res, fmt.Errorf("failed to seed product %q: %w", name, err)
		}
		if created {
			res.Created++
			slog.Info("Created product", "name", name)
		} else {
			slog.Debug("Product already exists", "name", name)
		}
	}
	return res, nil
}
