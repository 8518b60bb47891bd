// Package main provides the dose tracking server:
// - HTTP API: products, quantity events, concentration projections
// - WebSocket: change notices for connected dashboards
// - Archiver (scheduled): persists projection samples for history queries
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/LotusZaheer/antidepressant/internal/api"
	"github.com/LotusZaheer/antidepressant/internal/archiver"
	"github.com/LotusZaheer/antidepressant/internal/observability"
	"github.com/LotusZaheer/antidepressant/internal/storage"
	chstore "github.com/LotusZaheer/antidepressant/internal/storage/clickhouse"
	"github.com/LotusZaheer/antidepressant/internal/storage/memory"
	"github.com/LotusZaheer/antidepressant/internal/storage/migrations"
	pgstore "github.com/LotusZaheer/antidepressant/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	productStore  storage.ProductStore
	quantityStore storage.QuantityStore
	archiveStore  storage.SampleArchiveStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "API HTTP address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, archive falls back to memory)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	archiveInterval := flag.Duration("archive-interval", 1*time.Hour, "Projection archive run interval")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores (runs migrations on boot)
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	handler := api.NewHandler(stores.productStore, stores.quantityStore,
		log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile))

	apiServer := &http.Server{
		Addr:    *httpAddr,
		Handler: handler.Router(),
	}

	archiveRunner := archiver.NewRunner(archiver.RunnerOptions{
		Products:   stores.productStore,
		Quantities: stores.quantityStore,
		Archive:    stores.archiveStore,
		Interval:   *archiveInterval,
		Logger:     log.New(os.Stdout, "[archiver] ", log.LstdFlags|log.Lshortfile),
	})

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("API server shutdown: %v", err)
		}

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start metrics server
	go startMetricsServer(*metricsAddr, logger)

	// Start archive runner
	go func() {
		if err := archiveRunner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("Archive runner error: %v", err)
		}
	}()

	// Run the API server
	logger.Printf("Starting API server on %s", *httpAddr)
	err = apiServer.ListenAndServe()
	done <- err

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			productStore:  memory.NewProductStore(),
			quantityStore: memory.NewQuantityStore(),
			archiveStore:  memory.NewSampleArchiveStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		productStore:  pgstore.NewProductStore(pool),
		quantityStore: pgstore.NewQuantityStore(pool),
	}

	// ClickHouse is optional: without it the archive stays in memory and
	// is lost on restart.
	if clickhouseDSN == "" {
		logger.Println("No ClickHouse DSN, archiving projection samples in memory")
		stores.archiveStore = memory.NewSampleArchiveStore()
		return stores, pool.Close, nil
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}
	stores.archiveStore = chstore.NewSampleArchiveStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// startMetricsServer serves Prometheus metrics and a liveness probe.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("Metrics server error: %v", err)
	}
}

// envOr returns the env var value or a fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
