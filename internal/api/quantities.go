package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// quantityPayload is the JSON representation of a quantity event on the wire.
type quantityPayload struct {
	EventID     string  `json:"event_id"`
	ProductID   string  `json:"product_id"`
	AmountMg    float64 `json:"amount_mg"`
	TimestampMs int64   `json:"timestamp_ms"`
	CreatedAt   int64   `json:"created_at"`
}

func toQuantityPayload(e *domain.QuantityEvent) quantityPayload {
	return quantityPayload{
		EventID:     e.EventID,
		ProductID:   e.ProductID,
		AmountMg:    e.AmountMg,
		TimestampMs: e.TimestampMs,
		CreatedAt:   e.CreatedAt,
	}
}

func (h *Handler) listQuantities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		events []*domain.QuantityEvent
		err    error
	)
	switch {
	case q.Get("product_id") != "":
		events, err = h.quantities.GetByProductID(r.Context(), q.Get("product_id"))
	case q.Get("start_ms") != "" || q.Get("end_ms") != "":
		var start, end int64
		start, err = parseMsParam(q.Get("start_ms"), 0)
		if err == nil {
			end, err = parseMsParam(q.Get("end_ms"), int64(1)<<62)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid time range")
			return
		}
		events, err = h.quantities.GetByTimeRange(r.Context(), start, end)
	default:
		events, err = h.quantities.GetAll(r.Context())
	}
	if err != nil {
		h.logger.Printf("list quantities: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list quantities")
		return
	}

	payload := make([]quantityPayload, 0, len(events))
	for _, e := range events {
		payload = append(payload, toQuantityPayload(e))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) createQuantity(w http.ResponseWriter, r *http.Request) {
	var payload quantityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	e := &domain.QuantityEvent{
		EventID:     payload.EventID,
		ProductID:   payload.ProductID,
		AmountMg:    payload.AmountMg,
		TimestampMs: payload.TimestampMs,
		CreatedAt:   h.nowMs(),
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.TimestampMs == 0 {
		e.TimestampMs = h.nowMs()
	}

	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The referenced product must exist; dangling events would be dead
	// weight the projector skips.
	if _, err := h.products.GetByID(r.Context(), e.ProductID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown product")
			return
		}
		h.logger.Printf("check product %s: %v", e.ProductID, err)
		writeError(w, http.StatusInternalServerError, "failed to create quantity")
		return
	}

	if err := h.quantities.Insert(r.Context(), e); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "quantity event already exists")
			return
		}
		h.logger.Printf("create quantity: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create quantity")
		return
	}

	h.notifyChange("quantities")
	writeJSON(w, http.StatusCreated, toQuantityPayload(e))
}

func (h *Handler) deleteQuantity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.quantities.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quantity event not found")
			return
		}
		h.logger.Printf("delete quantity %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete quantity")
		return
	}

	h.notifyChange("quantities")
	w.WriteHeader(http.StatusNoContent)
}

// parseMsParam parses a millisecond query parameter, defaulting when absent.
func parseMsParam(value string, fallback int64) (int64, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
