package projection

import (
	"github.com/LotusZaheer/antidepressant/internal/domain"
)

const msPerHour = 3600 * 1000

// Window is the absolute time range and sample density for a projection.
type Window struct {
	StartMs             int64   // first sample instant (ms)
	EndMs               int64   // upper bound for sample instants, inclusive (ms)
	SampleIntervalHours float64 // spacing between samples, hours
}

// SpanHours returns the total window span in hours.
func (w Window) SpanHours() float64 {
	return float64(w.EndMs-w.StartMs) / msPerHour
}

// IntervalForSpan returns the sample interval for a window span.
// The policy is part of the projection contract: it keeps the sample count
// roughly bounded regardless of how wide the requested range is.
//
//	span <= 24h  -> 1h
//	span <= 168h -> 2h
//	otherwise    -> 6h
func IntervalForSpan(spanHours float64) float64 {
	switch {
	case spanHours <= 24:
		return 1
	case spanHours <= 168:
		return 2
	default:
		return 6
	}
}

// NewWindow builds a window over [startMs, endMs] with the interval chosen
// by the resolution policy.
func NewWindow(startMs, endMs int64) Window {
	w := Window{StartMs: startMs, EndMs: endMs}
	w.SampleIntervalHours = IntervalForSpan(w.SpanHours())
	return w
}

// ResolveWindow resolves a named preset into an absolute window ending at
// nowMs. Custom presets carry no fixed span and cannot be resolved here;
// callers pass explicit bounds to NewWindow instead.
func ResolveWindow(preset domain.WindowPreset, nowMs int64) (Window, error) {
	span, ok := preset.SpanHours()
	if !ok {
		return Window{}, domain.ErrUnknownPreset
	}
	start := nowMs - int64(span*msPerHour)
	return NewWindow(start, nowMs), nil
}
