package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps the catalog in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	regions  map[uuid.UUID]Region
	products map[uuid.UUID]Product
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		regions:  make(map[uuid.UUID]Region),
		products: make(map[uuid.UUID]Product),
	}
}

func (r *InMemoryRepository) regionNamedLocked(name string, except uuid.UUID) (Region, bool) {
	for _, region := range r.regions {
		if region.Name == name && region.ID != except {
			return region, true
		}
	}
	return Region{}, false
}

func (r *InMemoryRepository) productNamedLocked(name string, except uuid.UUID) (Product, bool) {
	for _, p := range r.products {
		if p.Name == name && p.ID != except {
			return p, true
		}
	}
	return Product{}, false
}

func (r *InMemoryRepository) ListRegions(ctx context.Context) ([]Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regions := make([]Region, 0, len(r.regions))
	for _, region := range r.regions {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].CreatedAt.Equal(regions[j].CreatedAt) {
			return regions[i].Name < regions[j].Name
		}
		return regions[i].CreatedAt.Before(regions[j].CreatedAt)
	})
	return regions, nil
}

func (r *InMemoryRepository) GetRegion(ctx context.Context, id uuid.UUID) (Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.regions[id]
	if !ok {
		return Region{}, ErrRegionNotFound
	}
	return region, nil
}

func (r *InMemoryRepository) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.regionNamedLocked(in.Name, uuid.Nil); taken {
		return Region{}, ErrRegionExists
	}
	now := time.Now().UTC()
	region := Region{ID: uuid.New(), Name: in.Name, Country: in.Country, CreatedAt: now, UpdatedAt: now}
	r.regions[region.ID] = region
	return region, nil
}

func (r *InMemoryRepository) UpdateRegion(ctx context.Context, id uuid.UUID, in RegionInput) (Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	region, ok := r.regions[id]
	if !ok {
		return Region{}, ErrRegionNotFound
	}
	if _, taken := r.regionNamedLocked(in.Name, id); taken {
		return Region{}, ErrRegionExists
	}
	region.Name = in.Name
	region.Country = in.Country
	region.UpdatedAt = time.Now().UTC()
	r.regions[id] = region
	return region, nil
}

func (r *InMemoryRepository) DeleteRegion(ctx context.Context, id uuid.UUID) (Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	region, ok := r.regions[id]
	if !ok {
		return Region{}, ErrRegionNotFound
	}
	delete(r.regions, id)
	return region, nil
}

func (r *InMemoryRepository) EnsureRegion(ctx context.Context, name string) (Region, bool, error) {
	r.mu.Lock()
	if region, ok := r.regionNamedLocked(name, uuid.Nil); ok {
		r.mu.Unlock()
		return region, false, nil
	}
	r.mu.Unlock()
	region, err := r.CreateRegion(ctx, RegionInput{Name: name, Country: DefaultCountry})
	if err != nil {
		return Region{}, false, err
	}
	return region, true, nil
}

func (r *InMemoryRepository) ListProducts(ctx context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].Name < products[j].Name
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (r *InMemoryRepository) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.productNamedLocked(in.Name, uuid.Nil); taken {
		return Product{}, ErrProductExists
	}
	now := time.Now().UTC()
	p := Product{ID: uuid.New(), Name: in.Name, NameRu: in.NameRu, NameUz: in.NameUz, CreatedAt: now, UpdatedAt: now}
	r.products[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	if _, taken := r.productNamedLocked(in.Name, id); taken {
		return Product{}, ErrProductExists
	}
	p.Name, p.NameRu, p.NameUz = in.Name, in.NameRu, in.NameUz
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return p, nil
}

func (r *InMemoryRepository) DeleteProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	delete(r.products, id)
	return p, nil
}

func (r *InMemoryRepository) EnsureProduct(ctx context.Context, name string) (Product, bool, error) {
	r.mu.Lock()
	if p, ok := r.productNamedLocked(name, uuid.Nil); ok {
		r.mu.Unlock()
		return p, false, nil
	}
	r.mu.Unlock()
	p, err := r.CreateProduct(ctx, ProductInput{Name: name})
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}
