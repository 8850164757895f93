package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/analytics"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

type Handle struct {
	service *analytics.Service
}

func NewHandle(service *analytics.Service) Handle {
	return Handle{service: service}
}

func optionalID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("'%s' is not a valid UUID.", raw)).WithDetail("field", key)
	}
	return &id, nil
}

func filter(r *http.Request) (analytics.Filter, error) {
	regionID, err := optionalID(r, "region_id")
	if err != nil {
		return analytics.Filter{}, err
	}
	productID, err := optionalID(r, "product_id")
	if err != nil {
		return analytics.Filter{}, err
	}
	return analytics.Filter{RegionID: regionID, ProductID: productID}, nil
}

func serve[T any](w http.ResponseWriter, r *http.Request, query func(*http.Request, analytics.Filter) (T, error)) {
	f, err := filter(r)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	out, err := query(r, f)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, out)
}

// Region handles GET /api/wph/region/
func (h Handle) Region(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(r *http.Request, f analytics.Filter) (analytics.RegionSummary, error) {
		return h.service.Region(r.Context(), f)
	})
}

// RegionProduct handles GET /api/wph/region-product/
func (h Handle) RegionProduct(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(r *http.Request, f analytics.Filter) (analytics.RegionProducts, error) {
		return h.service.RegionProducts(r.Context(), f)
	})
}

// Comparison handles GET /api/wph/comparison/
func (h Handle) Comparison(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(r *http.Request, f analytics.Filter) (analytics.Comparison, error) {
		return h.service.Comparison(r.Context(), f)
	})
}

// Matrix handles GET /api/wph/matrix/
func (h Handle) Matrix(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(r *http.Request, f analytics.Filter) (analytics.MatrixResult, error) {
		return h.service.Matrix(r.Context(), f)
	})
}

// ExportMatrix handles GET /api/wph/matrix/export/
func (h Handle) ExportMatrix(w http.ResponseWriter, r *http.Request) {
	f, err := filter(r)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	m, err := h.service.Matrix(r.Context(), f)
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	data, err := analytics.ExportMatrix(m)
	if err != nil {
		apperrors.Render(w, r, apperrors.InternalWrap(err, "Failed to export matrix"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=wph-matrix.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
