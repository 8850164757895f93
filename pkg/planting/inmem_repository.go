package planting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/analytics"
	"github.com/tendant/agroyield/pkg/catalog"
)

// InMemoryRepository keeps records in process memory and resolves names through a
// catalog repository. Deleted catalog entries read back as null references.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	seq     map[uuid.UUID]int
	next    int
	catalog catalog.Repository
}

func NewInMemoryRepository(cat catalog.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[uuid.UUID]Record),
		seq:     make(map[uuid.UUID]int),
		catalog: cat,
	}
}

func (m *InMemoryRepository) Create(ctx context.Context, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	r.ID = uuid.New()
	r.CreatedAt, r.UpdatedAt = now, now
	m.records[r.ID] = r
	m.next++
	m.seq[r.ID] = m.next
	return r, nil
}

func (m *InMemoryRepository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return r, nil
}

func (m *InMemoryRepository) Update(ctx context.Context, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[r.ID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	m.records[r.ID] = r
	return r, nil
}

func (m *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	delete(m.records, id)
	delete(m.seq, id)
	return r, nil
}

// ordered returns records matching keep in insertion order. Caller holds the lock.
func (m *InMemoryRepository) ordered(keep func(Record) bool) []Record {
	out := []Record{}
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.seq[out[i].ID] < m.seq[out[j].ID] })
	return out
}

func (m *InMemoryRepository) List(ctx context.Context, ownerID *uuid.UUID) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ordered(func(r Record) bool { return ownerID == nil || r.OwnerID == *ownerID }), nil
}

func (m *InMemoryRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]Record, error) {
	set := make(map[uuid.UUID]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		set[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ordered(func(r Record) bool { return set[r.OwnerID] }), nil
}

func (m *InMemoryRepository) ListWithNames(ctx context.Context, f analytics.Filter) ([]analytics.Row, error) {
	m.mu.RLock()
	records := m.ordered(func(Record) bool { return true })
	m.mu.RUnlock()

	var out []analytics.Row
	for _, r := range records {
		row := analytics.Row{Weight: r.ExpectingWeight, Area: r.PlantingArea}
		if r.ProductID != nil {
			if p, err := m.catalog.GetProduct(ctx, *r.ProductID); err == nil {
				id, name := p.ID, p.Name
				row.ProductID, row.ProductName = &id, &name
			}
		}
		if r.RegionID != nil {
			if g, err := m.catalog.GetRegion(ctx, *r.RegionID); err == nil {
				id, name := g.ID, g.Name
				row.RegionID, row.RegionName = &id, &name
			}
		}
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return out, nil
}
