package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/client"
	apperrors "github.com/tendant/agroyield/pkg/errors"
	"github.com/tendant/agroyield/pkg/planting"
)

type Handle struct {
	service *planting.Service
}

func NewHandle(service *planting.Service) Handle {
	return Handle{service: service}
}

// RecordRequest is the body of create, update and patch. Quantities accept JSON
// numbers or numeric strings.
type RecordRequest struct {
	Product         *uuid.UUID   `json:"product"`
	Region          *uuid.UUID   `json:"region"`
	Owner           *uuid.UUID   `json:"owner"`
	PlantingArea    *json.Number `json:"planting_area"`
	ExpectingWeight *json.Number `json:"expecting_weight"`
}

func quantity(field string, n *json.Number) (*float64, error) {
	if n == nil {
		return nil, nil
	}
	v, err := planting.ParseQuantity(field, *n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (req RecordRequest) patch() (planting.Patch, error) {
	area, err := quantity("planting_area", req.PlantingArea)
	if err != nil {
		return planting.Patch{}, err
	}
	weight, err := quantity("expecting_weight", req.ExpectingWeight)
	if err != nil {
		return planting.Patch{}, err
	}
	return planting.Patch{
		ProductID:       req.Product,
		RegionID:        req.Region,
		OwnerID:         req.Owner,
		PlantingArea:    area,
		ExpectingWeight: weight,
	}, nil
}

func (req RecordRequest) input() (planting.Input, error) {
	if req.PlantingArea == nil {
		return planting.Input{}, apperrors.Validation("This field is required.").WithDetail("field", "planting_area")
	}
	if req.ExpectingWeight == nil {
		return planting.Input{}, apperrors.Validation("This field is required.").WithDetail("field", "expecting_weight")
	}
	p, err := req.patch()
	if err != nil {
		return planting.Input{}, err
	}
	return planting.Input{
		ProductID:       p.ProductID,
		RegionID:        p.RegionID,
		OwnerID:         p.OwnerID,
		PlantingArea:    *p.PlantingArea,
		ExpectingWeight: *p.ExpectingWeight,
	}, nil
}

func actor(w http.ResponseWriter, r *http.Request) (account.Actor, bool) {
	user := client.GetAuthUser(r)
	if user == nil {
		apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return account.Actor{}, false
	}
	return user.Actor(), true
}

// target resolves the caller and the {id} path parameter.
func target(w http.ResponseWriter, r *http.Request) (account.Actor, uuid.UUID, bool) {
	a, ok := actor(w, r)
	if !ok {
		return account.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.RenderMessage(w, r, http.StatusNotFound, "Not found.")
		return account.Actor{}, uuid.Nil, false
	}
	return a, id, true
}

func decode(w http.ResponseWriter, r *http.Request) (RecordRequest, bool) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.RenderMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return RecordRequest{}, false
	}
	return req, true
}

func respond(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, v)
}

// List handles GET /api/products/planted-products/
func (h Handle) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	records, err := h.service.List(r.Context(), a)
	respond(w, r, http.StatusOK, records, err)
}

// Create handles POST /api/products/planted-products/
func (h Handle) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	req, ok := decode(w, r)
	if !ok {
		return
	}
	in, err := req.input()
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	record, err := h.service.Create(r.Context(), a, in)
	respond(w, r, http.StatusCreated, record, err)
}

// Get handles GET /api/products/planted-products/{id}/
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	a, id, ok := target(w, r)
	if !ok {
		return
	}
	record, err := h.service.Get(r.Context(), a, id)
	respond(w, r, http.StatusOK, record, err)
}

// Update handles PUT /api/products/planted-products/{id}/
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	a, id, ok := target(w, r)
	if !ok {
		return
	}
	req, ok := decode(w, r)
	if !ok {
		return
	}
	in, err := req.input()
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	record, err := h.service.Update(r.Context(), a, id, in)
	respond(w, r, http.StatusOK, record, err)
}

// Patch handles PATCH /api/products/planted-products/{id}/
func (h Handle) Patch(w http.ResponseWriter, r *http.Request) {
	a, id, ok := target(w, r)
	if !ok {
		return
	}
	req, ok := decode(w, r)
	if !ok {
		return
	}
	p, err := req.patch()
	if err != nil {
		apperrors.Render(w, r, err)
		return
	}
	record, err := h.service.Patch(r.Context(), a, id, p)
	respond(w, r, http.StatusOK, record, err)
}

// Delete handles DELETE /api/products/planted-products/{id}/
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	a, id, ok := target(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), a, id); err != nil {
		apperrors.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Farmers handles GET /api/farmers/
func (h Handle) Farmers(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.service.ListFarmers(r.Context())
	respond(w, r, http.StatusOK, farmers, err)
}
