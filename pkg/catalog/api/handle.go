package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/catalog"
	"github.com/tendant/agroyield/pkg/client"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

type Handle struct {
	service *catalog.Service
}

func NewHandle(service *catalog.Service) Handle {
	return Handle{service: service}
}

func actor(w http.ResponseWriter, r *http.Request) (account.Actor, bool) {
	user := client.GetAuthUser(r)
	if user == nil {
		apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return account.Actor{}, false
	}
	return user.Actor(), true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.RenderMessage(w, r, http.StatusNotFound, "Not found.")
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, v)
}

// ListRegions handles GET /api/regions/
func (h Handle) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.ListRegions(r.Context())
	respond(w, r, http.StatusOK, regions, err)
}

// GetRegion handles GET /api/regions/{id}/
func (h Handle) GetRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	region, err := h.service.GetRegion(r.Context(), id)
	respond(w, r, http.StatusOK, region, err)
}

// CreateRegion handles POST /api/regions/
func (h Handle) CreateRegion(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in catalog.RegionInput
	if !decode(w, r, &in) {
		return
	}
	region, err := h.service.CreateRegion(r.Context(), a, in)
	respond(w, r, http.StatusCreated, region, err)
}

// UpdateRegion handles PUT /api/regions/{id}/
func (h Handle) UpdateRegion(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in catalog.RegionInput
	if !decode(w, r, &in) {
		return
	}
	region, err := h.service.UpdateRegion(r.Context(), a, id, in)
	respond(w, r, http.StatusOK, region, err)
}

// DeleteRegion handles DELETE /api/regions/{id}/
func (h Handle) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRegion(r.Context(), a, id); err != nil {
		apperrors.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProducts handles GET /api/products/products/
func (h Handle) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	respond(w, r, http.StatusOK, products, err)
}

// GetProduct handles GET /api/products/products/{id}/
func (h Handle) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	respond(w, r, http.StatusOK, p, err)
}

// CreateProduct handles POST /api/products/products/
func (h Handle) CreateProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in catalog.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.service.CreateProduct(r.Context(), a, in)
	respond(w, r, http.StatusCreated, p, err)
}

// UpdateProduct handles PUT /api/products/products/{id}/
func (h Handle) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in catalog.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), a, id, in)
	respond(w, r, http.StatusOK, p, err)
}

// PatchProduct handles PATCH /api/products/products/{id}/
func (h Handle) PatchProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch catalog.ProductPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.service.PatchProduct(r.Context(), a, id, patch)
	respond(w, r, http.StatusOK, p, err)
}

// DeleteProduct handles DELETE /api/products/products/{id}/
func (h Handle) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), a, id); err != nil {
		apperrors.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
