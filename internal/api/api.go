// Package api exposes the dashboard's REST and WebSocket surface: product
// and quantity CRUD plus the projection endpoint the chart is drawn from.
// Authentication and row-level authorization live in the platform in front
// of this service and are deliberately absent here.
package api

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/LotusZaheer/antidepressant/internal/observability"
	"github.com/LotusZaheer/antidepressant/internal/projection"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// Handler holds the API's dependencies.
type Handler struct {
	products   storage.ProductStore
	quantities storage.QuantityStore
	cache      *projection.Cache
	hub        *Hub
	logger     *log.Logger
	now        func() time.Time
}

// NewHandler creates a Handler over the given stores.
func NewHandler(products storage.ProductStore, quantities storage.QuantityStore, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		products:   products,
		quantities: quantities,
		cache:      projection.NewCache(64),
		hub:        NewHub(logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Router builds the HTTP router with request logging.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.listProducts).Methods("GET")
	api.HandleFunc("/products", h.createProduct).Methods("POST")
	api.HandleFunc("/products/{id}", h.getProduct).Methods("GET")
	api.HandleFunc("/products/{id}", h.updateProduct).Methods("PUT")
	api.HandleFunc("/products/{id}", h.deleteProduct).Methods("DELETE")

	api.HandleFunc("/quantities", h.listQuantities).Methods("GET")
	api.HandleFunc("/quantities", h.createQuantity).Methods("POST")
	api.HandleFunc("/quantities/{id}", h.deleteQuantity).Methods("DELETE")

	api.HandleFunc("/projection", h.getProjection).Methods("GET")
	api.HandleFunc("/projection/export.csv", h.exportProjectionCSV).Methods("GET")

	api.Handle("/ws", h.hub)

	r.Use(metricsMiddleware)

	return handlers.LoggingHandler(h.logger.Writer(), r)
}

// metricsMiddleware records per-route request counts and latency. Routes are
// labelled by path template so product IDs do not explode cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(sw.status), time.Since(start).Seconds())
	})
}

// statusWriter captures the status code written by a handler. Hijack is
// forwarded so the WebSocket upgrade keeps working behind the middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Hub exposes the change-notice hub, for wiring external publishers.
func (h *Handler) Hub() *Hub {
	return h.hub
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// notifyChange pushes a change notice to connected dashboard clients.
func (h *Handler) notifyChange(kind string) {
	h.hub.Broadcast(ChangeNotice{Type: kind})
}

func (h *Handler) nowMs() int64 {
	return h.now().UnixMilli()
}
