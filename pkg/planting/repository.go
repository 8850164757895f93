package planting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/analytics"
)

type Repository interface {
	Create(ctx context.Context, r Record) (Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	Update(ctx context.Context, r Record) (Record, error)
	Delete(ctx context.Context, id uuid.UUID) (Record, error)
	// List returns the records of ownerID, or every record when ownerID is nil.
	List(ctx context.Context, ownerID *uuid.UUID) ([]Record, error)
	ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]Record, error)
	ListWithNames(ctx context.Context, f analytics.Filter) ([]analytics.Row, error)
}

type PostgresRepository struct {
	db account.DBTX
}

func NewPostgresRepository(db account.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordColumns = `id, product_id, owner_id, region_id, planting_area::float8, expecting_weight::float8, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.ProductID, &r.OwnerID, &r.RegionID, &r.PlantingArea, &r.ExpectingWeight, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return r, nil
}

// mapForeignKey turns a dangling reference into a field error.
func mapForeignKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		switch pgErr.ConstraintName {
		case "planted_products_product_id_fkey":
			return ErrUnknownProduct
		case "planted_products_region_id_fkey":
			return ErrUnknownRegion
		case "planted_products_owner_id_fkey":
			return ErrUnknownOwner
		}
	}
	return err
}

func (p *PostgresRepository) Create(ctx context.Context, r Record) (Record, error) {
	rec, err := scanRecord(p.db.QueryRow(ctx, `
		INSERT INTO planted_products (id, product_id, owner_id, region_id, planting_area, expecting_weight)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+recordColumns,
		uuid.New(), r.ProductID, r.OwnerID, r.RegionID, r.PlantingArea, r.ExpectingWeight))
	return rec, mapForeignKey(err)
}

func (p *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	return scanRecord(p.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM planted_products WHERE id = $1`, id))
}

func (p *PostgresRepository) Update(ctx context.Context, r Record) (Record, error) {
	rec, err := scanRecord(p.db.QueryRow(ctx, `
		UPDATE planted_products
		SET product_id = $2, owner_id = $3, region_id = $4, planting_area = $5, expecting_weight = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+recordColumns,
		r.ID, r.ProductID, r.OwnerID, r.RegionID, r.PlantingArea, r.ExpectingWeight))
	return rec, mapForeignKey(err)
}

func (p *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (Record, error) {
	return scanRecord(p.db.QueryRow(ctx, `DELETE FROM planted_products WHERE id = $1 RETURNING `+recordColumns, id))
}

func collect(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()
	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *PostgresRepository) List(ctx context.Context, ownerID *uuid.UUID) ([]Record, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+recordColumns+` FROM planted_products
		WHERE $1::uuid IS NULL OR owner_id = $1
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planted products: %w", err)
	}
	return collect(rows)
}

func (p *PostgresRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]Record, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+recordColumns+` FROM planted_products
		WHERE owner_id = ANY($1)
		ORDER BY created_at, id`, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list planted products: %w", err)
	}
	return collect(rows)
}

func (p *PostgresRepository) ListWithNames(ctx context.Context, f analytics.Filter) ([]analytics.Row, error) {
	rows, err := p.db.Query(ctx, `
		SELECT pp.product_id, pr.name, pp.region_id, rg.name,
		       pp.expecting_weight::float8, pp.planting_area::float8
		FROM planted_products pp
		LEFT JOIN products pr ON pr.id = pp.product_id
		LEFT JOIN regions rg ON rg.id = pp.region_id
		WHERE ($1::uuid IS NULL OR pp.region_id = $1)
		  AND ($2::uuid IS NULL OR pp.product_id = $2)
		ORDER BY pp.created_at, pp.id`, f.RegionID, f.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics rows: %w", err)
	}
	defer rows.Close()

	var out []analytics.Row
	for rows.Next() {
		var r analytics.Row
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.RegionID, &r.RegionName, &r.Weight, &r.Area); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
