package planting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/activity"
	"github.com/tendant/agroyield/pkg/analytics"
	"github.com/tendant/agroyield/pkg/catalog"
)

// Catalog resolves the references a record points at.
type Catalog interface {
	GetRegion(ctx context.Context, id uuid.UUID) (catalog.Region, error)
	GetProduct(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

type Service struct {
	repo     Repository
	accounts account.Repository
	catalog  Catalog
	activity *activity.Log
}

type Option func(*Service)

func WithActivityLog(log *activity.Log) Option {
	return func(s *Service) {
		s.activity = log
	}
}

func NewService(repo Repository, accounts account.Repository, cat Catalog, opts ...Option) *Service {
	s := &Service{repo: repo, accounts: accounts, catalog: cat}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListWithNames makes the service usable as an analytics source.
func (s *Service) ListWithNames(ctx context.Context, f analytics.Filter) ([]analytics.Row, error) {
	return s.repo.ListWithNames(ctx, f)
}

func (s *Service) record(ctx context.Context, actor account.Actor, action activity.Action, r Record) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, actor.ID, action, s.describe(ctx, r)); err != nil {
		slog.Warn("Planted product change not recorded in activity log", "actor", actor.ID, "action", action, "record_id", r.ID, "error", err)
	}
}

// describe looks up the names shown in the activity log. Missing references use the
// analytics sentinels.
func (s *Service) describe(ctx context.Context, r Record) subject {
	sub := subject{record: r, product: analytics.UnknownProduct, region: analytics.UnknownRegion}
	if r.ProductID != nil {
		if p, err := s.catalog.GetProduct(ctx, *r.ProductID); err == nil {
			sub.product = p.Name
		}
	}
	if r.RegionID != nil {
		if g, err := s.catalog.GetRegion(ctx, *r.RegionID); err == nil {
			sub.region = g.Name
		}
	}
	if a, err := s.accounts.GetByID(ctx, r.OwnerID); err == nil {
		sub.owner = a.FirstName
	}
	return sub
}

func (s *Service) checkProduct(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return ErrProductRequired
	}
	if _, err := s.catalog.GetProduct(ctx, *id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return ErrUnknownProduct
		}
		return err
	}
	return nil
}

func (s *Service) checkRegion(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return ErrRegionRequired
	}
	if _, err := s.catalog.GetRegion(ctx, *id); err != nil {
		if errors.Is(err, catalog.ErrRegionNotFound) {
			return ErrUnknownRegion
		}
		return err
	}
	return nil
}

// owner picks the owner for a write. Only admins may name someone else.
func (s *Service) owner(ctx context.Context, actor account.Actor, requested *uuid.UUID, current uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == current {
		return current, nil
	}
	if !actor.Admin {
		return uuid.Nil, ErrNotOwner
	}
	if _, err := s.accounts.GetByID(ctx, *requested); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return uuid.Nil, ErrUnknownOwner
		}
		return uuid.Nil, err
	}
	return *requested, nil
}

func (s *Service) validate(ctx context.Context, in Input) error {
	if err := s.checkProduct(ctx, in.ProductID); err != nil {
		return err
	}
	if err := s.checkRegion(ctx, in.RegionID); err != nil {
		return err
	}
	if err := validQuantity("planting_area", in.PlantingArea); err != nil {
		return err
	}
	return validQuantity("expecting_weight", in.ExpectingWeight)
}

func (s *Service) Create(ctx context.Context, actor account.Actor, in Input) (Record, error) {
	if err := s.validate(ctx, in); err != nil {
		return Record{}, err
	}
	ownerID, err := s.owner(ctx, actor, in.OwnerID, actor.ID)
	if err != nil {
		return Record{}, err
	}
	r, err := s.repo.Create(ctx, Record{
		ProductID:       in.ProductID,
		OwnerID:         ownerID,
		RegionID:        in.RegionID,
		PlantingArea:    in.PlantingArea,
		ExpectingWeight: in.ExpectingWeight,
	})
	if err != nil {
		return Record{}, err
	}
	slog.Info("Planted product created", "record_id", r.ID, "owner_id", r.OwnerID, "actor", actor.ID)
	s.record(ctx, actor, activity.ActionCreate, r)
	return r, nil
}

// Get returns a record visible to actor. Records of other owners read as not found.
func (s *Service) Get(ctx context.Context, actor account.Actor, id uuid.UUID) (Record, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !actor.Can(r.OwnerID) {
		return Record{}, ErrRecordNotFound
	}
	return r, nil
}

// List returns the actor's own records, or every record for admins.
func (s *Service) List(ctx context.Context, actor account.Actor) ([]Record, error) {
	if actor.Admin {
		return s.repo.List(ctx, nil)
	}
	return s.repo.List(ctx, &actor.ID)
}

func (s *Service) editable(ctx context.Context, actor account.Actor, id uuid.UUID) (Record, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !actor.Can(r.OwnerID) {
		return Record{}, ErrNotOwner
	}
	return r, nil
}

// Update replaces every field of the record.
func (s *Service) Update(ctx context.Context, actor account.Actor, id uuid.UUID, in Input) (Record, error) {
	current, err := s.editable(ctx, actor, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.validate(ctx, in); err != nil {
		return Record{}, err
	}
	ownerID, err := s.owner(ctx, actor, in.OwnerID, current.OwnerID)
	if err != nil {
		return Record{}, err
	}
	r, err := s.repo.Update(ctx, Record{
		ID:              id,
		ProductID:       in.ProductID,
		OwnerID:         ownerID,
		RegionID:        in.RegionID,
		PlantingArea:    in.PlantingArea,
		ExpectingWeight: in.ExpectingWeight,
	})
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, actor, activity.ActionUpdate, r)
	return r, nil
}

// Patch changes only the fields present in p.
func (s *Service) Patch(ctx context.Context, actor account.Actor, id uuid.UUID, p Patch) (Record, error) {
	current, err := s.editable(ctx, actor, id)
	if err != nil {
		return Record{}, err
	}
	in := Input{
		ProductID:       current.ProductID,
		RegionID:        current.RegionID,
		OwnerID:         p.OwnerID,
		PlantingArea:    current.PlantingArea,
		ExpectingWeight: current.ExpectingWeight,
	}
	if p.ProductID != nil {
		in.ProductID = p.ProductID
	}
	if p.RegionID != nil {
		in.RegionID = p.RegionID
	}
	if p.PlantingArea != nil {
		in.PlantingArea = *p.PlantingArea
	}
	if p.ExpectingWeight != nil {
		in.ExpectingWeight = *p.ExpectingWeight
	}
	return s.Update(ctx, actor, id, in)
}

func (s *Service) Delete(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	r, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	// Names are resolved before the row goes away.
	sub := s.describe(ctx, r)
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Planted product deleted", "record_id", id, "actor", actor.ID)
	if s.activity != nil {
		if err := s.activity.Record(ctx, actor.ID, activity.ActionDelete, sub); err != nil {
			slog.Warn("Planted product change not recorded in activity log", "actor", actor.ID, "action", activity.ActionDelete, "record_id", id, "error", err)
		}
	}
	return nil
}
