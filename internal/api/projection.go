package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/export"
	"github.com/LotusZaheer/antidepressant/internal/idhash"
	"github.com/LotusZaheer/antidepressant/internal/observability"
	"github.com/LotusZaheer/antidepressant/internal/projection"
)

// projectionResponse carries the projected series plus the resolved window
// so the chart can label its axis without re-deriving the policy.
type projectionResponse struct {
	StartMs             int64              `json:"start_ms"`
	EndMs               int64              `json:"end_ms"`
	SampleIntervalHours float64            `json:"sample_interval_hours"`
	Samples             []projectionSample `json:"samples"`
}

type projectionSample struct {
	TimestampMs int64              `json:"timestamp_ms"`
	Values      map[string]float64 `json:"values"`
}

func (h *Handler) getProjection(w http.ResponseWriter, r *http.Request) {
	win, ok := h.resolveRequestWindow(w, r)
	if !ok {
		return
	}

	_, samples, ok := h.computeProjection(w, r, win)
	if !ok {
		return
	}

	resp := projectionResponse{
		StartMs:             win.StartMs,
		EndMs:               win.EndMs,
		SampleIntervalHours: win.SampleIntervalHours,
		Samples:             make([]projectionSample, 0, len(samples)),
	}
	for _, s := range samples {
		resp.Samples = append(resp.Samples, projectionSample{
			TimestampMs: s.TimestampMs,
			Values:      s.Values,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) exportProjectionCSV(w http.ResponseWriter, r *http.Request) {
	win, ok := h.resolveRequestWindow(w, r)
	if !ok {
		return
	}

	products, samples, ok := h.computeProjection(w, r, win)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="projection.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.RenderCSV(products, samples)))
}

// resolveRequestWindow turns ?range= or ?start_ms=&end_ms= into a window.
// Writes the error response itself and returns ok=false on bad input.
func (h *Handler) resolveRequestWindow(w http.ResponseWriter, r *http.Request) (projection.Window, bool) {
	q := r.URL.Query()

	if rng := q.Get("range"); rng != "" {
		preset, err := domain.ParseWindowPreset(rng)
		if err != nil || preset == domain.PresetCustom {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid range %q", rng))
			return projection.Window{}, false
		}
		win, err := projection.ResolveWindow(preset, h.nowMs())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return projection.Window{}, false
		}
		return win, true
	}

	start, err := parseMsParam(q.Get("start_ms"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_ms")
		return projection.Window{}, false
	}
	end, err := parseMsParam(q.Get("end_ms"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_ms")
		return projection.Window{}, false
	}
	if start == 0 && end == 0 {
		// No parameters at all: default to the day view.
		win, _ := projection.ResolveWindow(domain.PresetDay, h.nowMs())
		return win, true
	}
	if start > end {
		writeError(w, http.StatusBadRequest, "start_ms must not exceed end_ms")
		return projection.Window{}, false
	}
	return projection.NewWindow(start, end), true
}

// computeProjection loads the snapshot and runs (or reuses) the projection.
// Writes the error response itself and returns ok=false on store failure.
func (h *Handler) computeProjection(w http.ResponseWriter, r *http.Request, win projection.Window) ([]*domain.Product, []*projection.ChartSample, bool) {
	ctx := r.Context()

	products, err := h.products.GetAll(ctx)
	if err != nil {
		h.logger.Printf("load products for projection: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return nil, nil, false
	}

	events, err := h.quantities.GetAll(ctx)
	if err != nil {
		h.logger.Printf("load quantities for projection: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load quantities")
		return nil, nil, false
	}

	key := idhash.SnapshotHash(products, events, win.StartMs, win.EndMs, win.SampleIntervalHours)
	if samples, ok := h.cache.Get(key); ok {
		observability.RecordCacheLookup(true)
		return products, samples, true
	}
	observability.RecordCacheLookup(false)

	start := time.Now()
	samples := projection.Project(products, events, win)
	observability.RecordProjection("api", len(samples), time.Since(start).Seconds())

	h.cache.Put(key, samples)
	return products, samples, true
}
