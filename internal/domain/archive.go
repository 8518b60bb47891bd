package domain

// ArchivedSample represents one persisted projection sample.
// Corresponds to projection_archive table in ClickHouse.
type ArchivedSample struct {
	ProductID     string  // product the concentration belongs to
	TimestampMs   int64   // sample instant (ms)
	Concentration float64 // estimated concentration, mg
	ComputedAt    int64   // when the projection producing this sample ran (ms)
}
