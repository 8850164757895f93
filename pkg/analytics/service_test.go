package analytics

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/catalog"
	"github.com/xuri/excelize/v2"
)

type staticSource []Row

func (s staticSource) ListWithNames(ctx context.Context, f Filter) ([]Row, error) {
	var out []Row
	for _, r := range s {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	svc     *Service
	navoi   catalog.Region
	andijan catalog.Region
	wheat   catalog.Product
	cotton  catalog.Product
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	cat := catalog.NewService(catalog.NewInMemoryRepository())
	admin := account.Actor{ID: uuid.New(), Admin: true}
	var f fixture
	var err error
	f.navoi, err = cat.CreateRegion(ctx, admin, catalog.RegionInput{Name: "Navoi"})
	require.NoError(t, err)
	f.andijan, err = cat.CreateRegion(ctx, admin, catalog.RegionInput{Name: "Andijan"})
	require.NoError(t, err)
	f.wheat, err = cat.CreateProduct(ctx, admin, catalog.ProductInput{Name: "Wheat"})
	require.NoError(t, err)
	f.cotton, err = cat.CreateProduct(ctx, admin, catalog.ProductInput{Name: "Cotton"})
	require.NoError(t, err)

	mk := func(p catalog.Product, r catalog.Region, w, a float64) Row {
		return Row{ProductID: &p.ID, ProductName: &p.Name, RegionID: &r.ID, RegionName: &r.Name, Weight: w, Area: a}
	}
	src := staticSource{
		mk(f.wheat, f.navoi, 30, 10),
		mk(f.cotton, f.navoi, 10, 10),
		mk(f.wheat, f.andijan, 50, 10),
	}
	f.svc = NewService(src, cat)
	return f
}

func TestService_Region(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	all, err := f.svc.Region(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, AllRegions, all.Region)
	assert.Equal(t, 90.0, all.TotalWeight)
	assert.Equal(t, 3.0, all.WPH)
	assert.Equal(t, 3, all.RecordCount)

	navoi, err := f.svc.Region(ctx, Filter{RegionID: &f.navoi.ID})
	require.NoError(t, err)
	assert.Equal(t, "Navoi", navoi.Region)
	assert.Equal(t, 2.0, navoi.WPH)
}

func TestService_UnknownIDsAreNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := f.svc.Region(ctx, Filter{RegionID: &missing})
	assert.ErrorIs(t, err, catalog.ErrRegionNotFound)

	_, err = f.svc.Comparison(ctx, Filter{ProductID: &missing})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestService_RegionProductsAndComparison(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rp, err := f.svc.RegionProducts(ctx, Filter{RegionID: &f.navoi.ID})
	require.NoError(t, err)
	require.Len(t, rp.Products, 2)
	assert.Equal(t, "Wheat", rp.Products[0].ProductName)
	assert.Equal(t, 3.0, rp.Products[0].WPH)

	cmp, err := f.svc.Comparison(ctx, Filter{ProductID: &f.wheat.ID})
	require.NoError(t, err)
	assert.Equal(t, "Wheat", cmp.Product)
	require.Len(t, cmp.Regions, 2)
	assert.Equal(t, "Andijan", cmp.Regions[0].RegionName)
}

func TestService_MatrixExport(t *testing.T) {
	f := setup(t)
	m, err := f.svc.Matrix(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, m.Regions, 2)
	assert.Equal(t, "Andijan", m.Regions[0].RegionName)
	assert.Equal(t, 5.0, m.Regions[0].AverageWPH)
	assert.Equal(t, 2.0, m.Regions[1].AverageWPH)

	data, err := ExportMatrix(m)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(matrixSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, matrixHeaders, rows[0])
	assert.Equal(t, "Andijan", rows[1][0])
	assert.Equal(t, "Wheat", rows[1][2])
}
