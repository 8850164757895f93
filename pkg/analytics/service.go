package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/catalog"
)

const (
	AllRegions  = "All Regions"
	AllProducts = "All Products"
)

// Source loads planted rows matching a filter.
type Source interface {
	ListWithNames(ctx context.Context, f Filter) ([]Row, error)
}

// Catalog resolves filter ids; unknown ids are reported as not found.
type Catalog interface {
	GetRegion(ctx context.Context, id uuid.UUID) (catalog.Region, error)
	GetProduct(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

type RegionSummary struct {
	Region      string  `json:"region"`
	TotalWeight float64 `json:"total_weight"`
	TotalArea   float64 `json:"total_area"`
	WPH         float64 `json:"wph"`
	RecordCount int     `json:"record_count"`
}

type ProductStat struct {
	ProductName string  `json:"product_name"`
	TotalWeight float64 `json:"total_weight"`
	TotalArea   float64 `json:"total_area"`
	WPH         float64 `json:"wph"`
}

type RegionStat struct {
	RegionName  string  `json:"region_name"`
	TotalWeight float64 `json:"total_weight"`
	TotalArea   float64 `json:"total_area"`
	WPH         float64 `json:"wph"`
}

type RegionProducts struct {
	Region   string        `json:"region"`
	Products []ProductStat `json:"products"`
}

type Comparison struct {
	Product string       `json:"product"`
	Regions []RegionStat `json:"regions"`
}

type MatrixRow struct {
	RegionName string        `json:"region_name"`
	AverageWPH float64       `json:"average_wph"`
	Products   []ProductStat `json:"products"`
}

type MatrixResult struct {
	Regions []MatrixRow `json:"regions"`
}

func productStats(groups []Group) []ProductStat {
	out := make([]ProductStat, len(groups))
	for i, g := range groups {
		out[i] = ProductStat{ProductName: g.Name, TotalWeight: g.TotalWeight, TotalArea: g.TotalArea, WPH: g.WPH}
	}
	return out
}

func regionStats(groups []Group) []RegionStat {
	out := make([]RegionStat, len(groups))
	for i, g := range groups {
		out[i] = RegionStat{RegionName: g.Name, TotalWeight: g.TotalWeight, TotalArea: g.TotalArea, WPH: g.WPH}
	}
	return out
}

type Service struct {
	source  Source
	catalog Catalog
}

func NewService(source Source, catalog Catalog) *Service {
	return &Service{source: source, catalog: catalog}
}

// labels validates the filter ids and returns the region and product labels to report.
func (s *Service) labels(ctx context.Context, f Filter) (region, product string, err error) {
	region, product = AllRegions, AllProducts
	if f.RegionID != nil {
		r, err := s.catalog.GetRegion(ctx, *f.RegionID)
		if err != nil {
			return "", "", err
		}
		region = r.Name
	}
	if f.ProductID != nil {
		p, err := s.catalog.GetProduct(ctx, *f.ProductID)
		if err != nil {
			return "", "", err
		}
		product = p.Name
	}
	return region, product, nil
}

func (s *Service) load(ctx context.Context, f Filter) (string, string, []Row, error) {
	region, product, err := s.labels(ctx, f)
	if err != nil {
		return "", "", nil, err
	}
	rows, err := s.source.ListWithNames(ctx, f)
	if err != nil {
		return "", "", nil, err
	}
	return region, product, rows, nil
}

// Region totals all rows, optionally for one region.
func (s *Service) Region(ctx context.Context, f Filter) (RegionSummary, error) {
	region, _, rows, err := s.load(ctx, f)
	if err != nil {
		return RegionSummary{}, err
	}
	g := Total(rows)
	return RegionSummary{
		Region:      region,
		TotalWeight: g.TotalWeight,
		TotalArea:   g.TotalArea,
		WPH:         g.WPH,
		RecordCount: g.RecordCount,
	}, nil
}

// RegionProducts breaks the rows of a region (or all regions) down by product.
func (s *Service) RegionProducts(ctx context.Context, f Filter) (RegionProducts, error) {
	region, _, rows, err := s.load(ctx, f)
	if err != nil {
		return RegionProducts{}, err
	}
	return RegionProducts{Region: region, Products: productStats(ByProduct(rows))}, nil
}

// Comparison compares regions for one product (or all products).
func (s *Service) Comparison(ctx context.Context, f Filter) (Comparison, error) {
	_, product, rows, err := s.load(ctx, f)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Product: product, Regions: regionStats(ByRegion(rows))}, nil
}

// Matrix builds the region by product matrix.
func (s *Service) Matrix(ctx context.Context, f Filter) (MatrixResult, error) {
	_, _, rows, err := s.load(ctx, f)
	if err != nil {
		return MatrixResult{}, err
	}
	m := Matrix(rows)
	out := MatrixResult{Regions: make([]MatrixRow, len(m))}
	for i, r := range m {
		out.Regions[i] = MatrixRow{RegionName: r.Name, AverageWPH: r.AverageWPH, Products: productStats(r.Products)}
	}
	return out, nil
}
