package archiver

import (
	"context"
	"log"
	"time"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/idhash"
	"github.com/LotusZaheer/antidepressant/internal/observability"
	"github.com/LotusZaheer/antidepressant/internal/projection"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// Runner periodically projects the trailing day window and persists the
// samples to the archive store. The archive is what history queries read
// after the raw events have been pruned or superseded.
type Runner struct {
	products   storage.ProductStore
	quantities storage.QuantityStore
	archive    storage.SampleArchiveStore
	interval   time.Duration
	logger     *log.Logger
	now        func() time.Time

	lastHash string // snapshot hash of the previous run, used to skip no-op runs
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Products   storage.ProductStore
	Quantities storage.QuantityStore
	Archive    storage.SampleArchiveStore
	Interval   time.Duration // Default: 1h
	Logger     *log.Logger
}

// NewRunner creates a new archive runner.
func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval == 0 {
		interval = 1 * time.Hour
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		products:   opts.Products,
		quantities: opts.Quantities,
		archive:    opts.Archive,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run starts the periodic archive loop. It blocks until context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("Archive runner started, interval: %v", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Archive runner stopping...")
			return ctx.Err()
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Printf("Archive run failed: %v", err)
			}
		}
	}
}

// RunOnce performs a single archive pass: project the trailing day window
// and bulk-insert the samples. Runs against an unchanged snapshot are
// skipped so repeated passes do not pile up identical rows.
func (r *Runner) RunOnce(ctx context.Context) error {
	products, err := r.products.GetAll(ctx)
	if err != nil {
		observability.RecordArchiveRun("error", 0)
		return err
	}

	events, err := r.quantities.GetAll(ctx)
	if err != nil {
		observability.RecordArchiveRun("error", 0)
		return err
	}

	nowMs := r.now().UnixMilli()
	win, err := projection.ResolveWindow(domain.PresetDay, nowMs)
	if err != nil {
		observability.RecordArchiveRun("error", 0)
		return err
	}

	// The window bounds track the clock and shift every tick, so they must
	// stay out of the skip hash; only the data decides whether a pass runs.
	hash := idhash.SnapshotHash(products, events, 0, 0, 0)
	if hash == r.lastHash {
		r.logger.Println("Archive run skipped: snapshot unchanged")
		observability.RecordArchiveRun("skipped", 0)
		return nil
	}

	start := time.Now()
	samples := projection.Project(products, events, win)
	observability.RecordProjection("archiver", len(samples), time.Since(start).Seconds())

	rows := flatten(samples, products, nowMs)
	if len(rows) == 0 {
		r.lastHash = hash
		observability.RecordArchiveRun("empty", 0)
		return nil
	}

	if err := r.archive.InsertBulk(ctx, rows); err != nil {
		observability.RecordArchiveRun("error", 0)
		return err
	}

	r.lastHash = hash
	observability.RecordArchiveRun("ok", len(rows))
	r.logger.Printf("Archived %d samples over [%d, %d]", len(rows), win.StartMs, win.EndMs)
	return nil
}

// flatten turns per-instant sample maps into one archive row per
// (product, instant) pair.
func flatten(samples []*projection.ChartSample, products []*domain.Product, computedAt int64) []*domain.ArchivedSample {
	rows := make([]*domain.ArchivedSample, 0, len(samples)*len(products))
	for _, s := range samples {
		for productID, concentration := range s.Values {
			rows = append(rows, &domain.ArchivedSample{
				ProductID:     productID,
				TimestampMs:   s.TimestampMs,
				Concentration: concentration,
				ComputedAt:    computedAt,
			})
		}
	}
	return rows
}
