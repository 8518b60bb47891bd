// Package main provides a demo-data seeder. It inserts a small set of
// products with realistic half-lives plus a daily dose history, so a fresh
// deployment has something to chart. Re-running is safe: duplicates are
// skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
	"github.com/LotusZaheer/antidepressant/internal/storage/migrations"
	pgstore "github.com/LotusZaheer/antidepressant/internal/storage/postgres"
)

type demoProduct struct {
	product  domain.Product
	doseMg   float64
	doseHour int // hour of day the dose is taken, UTC
}

// Half-lives are published elimination half-lives, rounded.
var demoProducts = []demoProduct{
	{
		product:  domain.Product{ProductID: "sertraline", Name: "Sertraline", Color: "#4e79a7", HalfLifeHours: 26},
		doseMg:   50,
		doseHour: 8,
	},
	{
		product:  domain.Product{ProductID: "fluoxetine", Name: "Fluoxetine", Color: "#f28e2b", HalfLifeHours: 96},
		doseMg:   20,
		doseHour: 8,
	},
	{
		product:  domain.Product{ProductID: "venlafaxine", Name: "Venlafaxine", Color: "#59a14f", HalfLifeHours: 5},
		doseMg:   75,
		doseHour: 20,
	},
}

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	days := flag.Int("days", 7, "Days of dose history to generate")
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *days < 1 {
		logger.Fatal("--days must be at least 1")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Run migrations: %v", err)
	}

	products := pgstore.NewProductStore(pool)
	quantities := pgstore.NewQuantityStore(pool)

	if err := seed(ctx, products, quantities, *days, logger); err != nil {
		logger.Fatalf("Seed failed: %v", err)
	}
	logger.Println("Done")
}

func seed(ctx context.Context, products storage.ProductStore, quantities storage.QuantityStore, days int, logger *log.Logger) error {
	now := time.Now().UTC()
	nowMs := now.UnixMilli()

	inserted, skipped := 0, 0
	for _, d := range demoProducts {
		p := d.product
		p.CreatedAt = nowMs
		if err := p.Validate(); err != nil {
			return fmt.Errorf("product %s: %w", p.ProductID, err)
		}

		switch err := products.Insert(ctx, &p); {
		case err == nil:
			logger.Printf("Product %s (half-life %vh)", p.Name, p.HalfLifeHours)
		case errors.Is(err, storage.ErrDuplicateKey):
			// Already seeded
		default:
			return fmt.Errorf("insert product %s: %w", p.ProductID, err)
		}

		// One dose per day at the product's usual hour, skipping instants
		// still in the future.
		for day := days - 1; day >= 0; day-- {
			doseAt := time.Date(now.Year(), now.Month(), now.Day(), d.doseHour, 0, 0, 0, time.UTC).
				AddDate(0, 0, -day)
			if doseAt.After(now) {
				continue
			}

			e := &domain.QuantityEvent{
				EventID:     fmt.Sprintf("seed-%s-%s", p.ProductID, doseAt.Format("2006-01-02")),
				ProductID:   p.ProductID,
				AmountMg:    d.doseMg,
				TimestampMs: doseAt.UnixMilli(),
				CreatedAt:   nowMs,
			}
			if err := e.Validate(); err != nil {
				return fmt.Errorf("event %s: %w", e.EventID, err)
			}

			switch err := quantities.Insert(ctx, e); {
			case err == nil:
				inserted++
			case errors.Is(err, storage.ErrDuplicateKey):
				skipped++
			default:
				return fmt.Errorf("insert event %s: %w", e.EventID, err)
			}
		}
	}

	logger.Printf("Seeded %d products, %d doses (%d already present)", len(demoProducts), inserted, skipped)
	return nil
}
