package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tendant/agroyield/pkg/account"
)

type Repository interface {
	ListRegions(ctx context.Context) ([]Region, error)
	GetRegion(ctx context.Context, id uuid.UUID) (Region, error)
	CreateRegion(ctx context.Context, in RegionInput) (Region, error)
	UpdateRegion(ctx context.Context, id uuid.UUID, in RegionInput) (Region, error)
	DeleteRegion(ctx context.Context, id uuid.UUID) (Region, error)
	// EnsureRegion returns the region named name, creating it when missing.
	EnsureRegion(ctx context.Context, name string) (Region, bool, error)

	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (Product, error)
	EnsureProduct(ctx context.Context, name string) (Product, bool, error)
}

type PostgresRepository struct {
	db account.DBTX
}

func NewPostgresRepository(db account.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "regions_name_key":
			return ErrRegionExists
		case "products_name_key":
			return ErrProductExists
		}
	}
	return err
}

const regionColumns = `id, name, country, created_at, updated_at`

func scanRegion(row pgx.Row) (Region, error) {
	var r Region
	if err := row.Scan(&r.ID, &r.Name, &r.Country, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Region{}, ErrRegionNotFound
		}
		return Region{}, err
	}
	return r, nil
}

func (r *PostgresRepository) ListRegions(ctx context.Context) ([]Region, error) {
	rows, err := r.db.Query(ctx, `SELECT `+regionColumns+` FROM regions ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()
	regions := []Region{}
	for rows.Next() {
		region, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func (r *PostgresRepository) GetRegion(ctx context.Context, id uuid.UUID) (Region, error) {
	return scanRegion(r.db.QueryRow(ctx, `SELECT `+regionColumns+` FROM regions WHERE id = $1`, id))
}

func (r *PostgresRepository) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	region, err := scanRegion(r.db.QueryRow(ctx, `
		INSERT INTO regions (id, name, country) VALUES ($1, $2, $3)
		RETURNING `+regionColumns, uuid.New(), in.Name, in.Country))
	return region, mapConflict(err)
}

func (r *PostgresRepository) UpdateRegion(ctx context.Context, id uuid.UUID, in RegionInput) (Region, error) {
	region, err := scanRegion(r.db.QueryRow(ctx, `
		UPDATE regions SET name = $2, country = $3, updated_at = now() WHERE id = $1
		RETURNING `+regionColumns, id, in.Name, in.Country))
	return region, mapConflict(err)
}

func (r *PostgresRepository) DeleteRegion(ctx context.Context, id uuid.UUID) (Region, error) {
	return scanRegion(r.db.QueryRow(ctx, `DELETE FROM regions WHERE id = $1 RETURNING `+regionColumns, id))
}

func (r *PostgresRepository) EnsureRegion(ctx context.Context, name string) (Region, bool, error) {
	region, err := scanRegion(r.db.QueryRow(ctx, `
		INSERT INTO regions (id, name, country) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
		RETURNING `+regionColumns, uuid.New(), name, DefaultCountry))
	if err == nil {
		return region, true, nil
	}
	if !errors.Is(err, ErrRegionNotFound) {
		return Region{}, false, err
	}
	region, err = scanRegion(r.db.QueryRow(ctx, `SELECT `+regionColumns+` FROM regions WHERE name = $1`, name))
	return region, false, err
}

const productColumns = `id, name, name_ru, name_uz, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.NameRu, &p.NameUz, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, name_ru, name_uz) VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns, uuid.New(), in.Name, in.NameRu, in.NameUz))
	return p, mapConflict(err)
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		UPDATE products SET name = $2, name_ru = $3, name_uz = $4, updated_at = now() WHERE id = $1
		RETURNING `+productColumns, id, in.Name, in.NameRu, in.NameUz))
	return p, mapConflict(err)
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
}

func (r *PostgresRepository) EnsureProduct(ctx context.Context, name string) (Product, bool, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		INSERT INTO products (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING `+productColumns, uuid.New(), name))
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, ErrProductNotFound) {
		return Product{}, false, err
	}
	p, err = scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1`, name))
	return p, false, err
}
