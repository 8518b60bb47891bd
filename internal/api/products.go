package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/observability"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// productPayload is the JSON representation of a product on the wire.
type productPayload struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	HalfLifeHours float64 `json:"half_life_hours"`
	Color         string  `json:"color"`
	CreatedAt     int64   `json:"created_at"`
}

func toProductPayload(p *domain.Product) productPayload {
	return productPayload{
		ProductID:     p.ProductID,
		Name:          p.Name,
		HalfLifeHours: p.HalfLifeHours,
		Color:         p.Color,
		CreatedAt:     p.CreatedAt,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAll(r.Context())
	if err != nil {
		h.logger.Printf("list products: %v", err)
		observability.RecordDBError("postgres", "list_products")
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, p := range products {
		payload = append(payload, toProductPayload(p))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Printf("get product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p := &domain.Product{
		ProductID:     payload.ProductID,
		Name:          payload.Name,
		HalfLifeHours: payload.HalfLifeHours,
		Color:         payload.Color,
		CreatedAt:     h.nowMs(),
	}
	if p.ProductID == "" {
		p.ProductID = uuid.NewString()
	}

	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Insert(r.Context(), p); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "product already exists")
			return
		}
		h.logger.Printf("create product: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.notifyChange("products")
	writeJSON(w, http.StatusCreated, toProductPayload(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p := &domain.Product{
		ProductID:     id,
		Name:          payload.Name,
		HalfLifeHours: payload.HalfLifeHours,
		Color:         payload.Color,
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// created_at is immutable; fetch the stored row so the response echoes
	// it instead of a zero.
	existing, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Printf("update product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	p.CreatedAt = existing.CreatedAt

	if err := h.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Printf("update product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	h.notifyChange("products")
	writeJSON(w, http.StatusOK, toProductPayload(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Quantity events referencing the product go with it; the projector
	// would skip them as dangling, but leaving them accumulates garbage.
	if _, err := h.quantities.DeleteByProductID(r.Context(), id); err != nil {
		h.logger.Printf("delete quantities for product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete product events")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Printf("delete product %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.notifyChange("products")
	w.WriteHeader(http.StatusNoContent)
}
