package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/analytics"
	"github.com/tendant/agroyield/pkg/catalog"
)

type rows []analytics.Row

func (s rows) ListWithNames(ctx context.Context, f analytics.Filter) ([]analytics.Row, error) {
	var out []analytics.Row
	for _, r := range s {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func setup(t *testing.T) (http.Handler, catalog.Region) {
	t.Helper()
	ctx := context.Background()
	cat := catalog.NewService(catalog.NewInMemoryRepository())
	admin := account.Actor{ID: uuid.New(), Admin: true}
	region, err := cat.CreateRegion(ctx, admin, catalog.RegionInput{Name: "Bukhara"})
	require.NoError(t, err)
	product, err := cat.CreateProduct(ctx, admin, catalog.ProductInput{Name: "Melon"})
	require.NoError(t, err)

	src := rows{
		{ProductID: &product.ID, ProductName: &product.Name, RegionID: &region.ID, RegionName: &region.Name, Weight: 12, Area: 4},
		{Weight: 5, Area: 0},
	}
	h := NewHandle(analytics.NewService(src, cat))
	r := chi.NewRouter()
	r.Get("/wph/region/", h.Region)
	r.Get("/wph/region-product/", h.RegionProduct)
	r.Get("/wph/comparison/", h.Comparison)
	r.Get("/wph/matrix/", h.Matrix)
	r.Get("/wph/matrix/export/", h.ExportMatrix)
	return r, region
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestRegionEndpoint(t *testing.T) {
	h, region := setup(t)

	rr := get(h, "/wph/region/?region_id="+region.ID.String())
	require.Equal(t, http.StatusOK, rr.Code)
	var out analytics.RegionSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Bukhara", out.Region)
	assert.Equal(t, 3.0, out.WPH)

	rr = get(h, "/wph/region/?region_id="+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = get(h, "/wph/region/?region_id=nope")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMatrixEndpoint_UnknownRegion(t *testing.T) {
	h, _ := setup(t)

	rr := get(h, "/wph/matrix/")
	require.Equal(t, http.StatusOK, rr.Code)
	var out analytics.MatrixResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Regions, 2)
	assert.Equal(t, "Bukhara", out.Regions[0].RegionName)
	assert.Equal(t, analytics.UnknownRegion, out.Regions[1].RegionName)
	assert.Equal(t, analytics.UnknownProduct, out.Regions[1].Products[0].ProductName)
	assert.Equal(t, 0.0, out.Regions[1].AverageWPH)
}

func TestMatrixExportEndpoint(t *testing.T) {
	h, _ := setup(t)
	rr := get(h, "/wph/matrix/export/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Body.Bytes())
}
