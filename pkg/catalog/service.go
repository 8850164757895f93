package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/activity"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

const maxNameLength = 255

var errNameTooLong = apperrors.Validation("Ensure this field has no more than 255 characters.").WithDetail("field", "name")

type Service struct {
	repo     Repository
	activity *activity.Log
}

type Option func(*Service)

// WithActivityLog records admin changes to the catalog.
func WithActivityLog(log *activity.Log) Option {
	return func(s *Service) {
		s.activity = log
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) record(ctx context.Context, actor account.Actor, action activity.Action, subject activity.Subject) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, actor.ID, action, subject); err != nil {
		slog.Warn("Catalog change not recorded in activity log", "actor", actor.ID, "action", action, "error", err)
	}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len([]rune(name)) > maxNameLength {
		return "", errNameTooLong
	}
	return name, nil
}

func (s *Service) ListRegions(ctx context.Context) ([]Region, error) {
	return s.repo.ListRegions(ctx)
}

func (s *Service) GetRegion(ctx context.Context, id uuid.UUID) (Region, error) {
	return s.repo.GetRegion(ctx, id)
}

func normalizeRegion(in RegionInput) (RegionInput, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return RegionInput{}, err
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = DefaultCountry
	}
	return RegionInput{Name: name, Country: country}, nil
}

func (s *Service) CreateRegion(ctx context.Context, actor account.Actor, in RegionInput) (Region, error) {
	if !actor.Admin {
		return Region{}, ErrAdminOnly
	}
	in, err := normalizeRegion(in)
	if err != nil {
		return Region{}, err
	}
	region, err := s.repo.CreateRegion(ctx, in)
	if err != nil {
		return Region{}, err
	}
	s.record(ctx, actor, activity.ActionCreate, region)
	return region, nil
}

func (s *Service) UpdateRegion(ctx context.Context, actor account.Actor, id uuid.UUID, in RegionInput) (Region, error) {
	if !actor.Admin {
		return Region{}, ErrAdminOnly
	}
	in, err := normalizeRegion(in)
	if err != nil {
		return Region{}, err
	}
	region, err := s.repo.UpdateRegion(ctx, id, in)
	if err != nil {
		return Region{}, err
	}
	s.record(ctx, actor, activity.ActionUpdate, region)
	return region, nil
}

func (s *Service) DeleteRegion(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	if !actor.Admin {
		return ErrAdminOnly
	}
	region, err := s.repo.DeleteRegion(ctx, id)
	if err != nil {
		return err
	}
	s.record(ctx, actor, activity.ActionDelete, region)
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func normalizeProduct(in ProductInput) (ProductInput, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return ProductInput{}, err
	}
	return ProductInput{Name: name, NameRu: strings.TrimSpace(in.NameRu), NameUz: strings.TrimSpace(in.NameUz)}, nil
}

func (s *Service) CreateProduct(ctx context.Context, actor account.Actor, in ProductInput) (Product, error) {
	if !actor.Admin {
		return Product{}, ErrAdminOnly
	}
	in, err := normalizeProduct(in)
	if err != nil {
		return Product{}, err
	}
	p, err := s.repo.CreateProduct(ctx, in)
	if err != nil {
		return Product{}, err
	}
	slog.Info("Product created", "product_id", p.ID, "name", p.Name)
	s.record(ctx, actor, activity.ActionCreate, p)
	return p, nil
}

// UpdateProduct replaces all name fields.
func (s *Service) UpdateProduct(ctx context.Context, actor account.Actor, id uuid.UUID, in ProductInput) (Product, error) {
	if !actor.Admin {
		return Product{}, ErrAdminOnly
	}
	in, err := normalizeProduct(in)
	if err != nil {
		return Product{}, err
	}
	p, err := s.repo.UpdateProduct(ctx, id, in)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, actor, activity.ActionUpdate, p)
	return p, nil
}

// PatchProduct changes only the fields present in patch.
func (s *Service) PatchProduct(ctx context.Context, actor account.Actor, id uuid.UUID, patch ProductPatch) (Product, error) {
	if !actor.Admin {
		return Product{}, ErrAdminOnly
	}
	current, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	in := ProductInput{Name: current.Name, NameRu: current.NameRu, NameUz: current.NameUz}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.NameRu != nil {
		in.NameRu = *patch.NameRu
	}
	if patch.NameUz != nil {
		in.NameUz = *patch.NameUz
	}
	return s.UpdateProduct(ctx, actor, id, in)
}

// DeleteProduct removes the product. Planted records keep their rows with no product.
func (s *Service) DeleteProduct(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	if !actor.Admin {
		return ErrAdminOnly
	}
	p, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	slog.Info("Product deleted", "product_id", p.ID, "name", p.Name)
	s.record(ctx, actor, activity.ActionDelete, p)
	return nil
}
