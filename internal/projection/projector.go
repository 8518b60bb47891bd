// Package projection turns a snapshot of products and dose events into a
// discretized concentration time series using a single-compartment
// exponential elimination model. Every dose decays independently from its
// own timestamp; doses of the same product superpose by summation.
package projection

import (
	"math"

	"github.com/LotusZaheer/antidepressant/internal/domain"
)

// ChartSample is one time-indexed row of the projected series. Values holds
// a concentration per product id, present even when zero.
type ChartSample struct {
	TimestampMs int64
	Values      map[string]float64
}

// DecayConstant returns the elimination rate constant for a half-life:
// lambda = ln(2) / halfLife. Callers must reject non-positive half-lives
// before this point; the result is undefined otherwise.
func DecayConstant(halfLifeHours float64) float64 {
	return math.Ln2 / halfLifeHours
}

// ConcentrationAt returns a single dose's contribution at instant tMs.
// Doses in the future relative to tMs contribute zero, never negative.
func ConcentrationAt(amountMg float64, doseTsMs, tMs int64, lambda float64) float64 {
	if tMs < doseTsMs {
		return 0
	}
	dtHours := float64(tMs-doseTsMs) / msPerHour
	return amountMg * math.Exp(-lambda*dtHours)
}

// Project computes the concentration series for every product over the
// window. It is a pure derivation over its inputs: no side effects, safe to
// call concurrently.
//
// Sample instants run from w.StartMs stepped by w.SampleIntervalHours while
// t <= w.EndMs, so the final sample may land strictly before EndMs when the
// interval does not divide the span evenly. That boundary behavior is
// intentional and documented, not rounded away.
//
// Events referencing a product id absent from products are silently skipped.
// Empty products or empty events yield an empty series.
//
// Preconditions (enforced upstream, undefined here if violated): every
// half-life > 0, every amount > 0, StartMs <= EndMs, interval > 0.
func Project(products []*domain.Product, events []*domain.QuantityEvent, w Window) []*ChartSample {
	if len(products) == 0 || len(events) == 0 {
		return nil
	}

	// Per-product decay constants and event groups, keyed by product id.
	lambdas := make(map[string]float64, len(products))
	for _, p := range products {
		lambdas[p.ProductID] = DecayConstant(p.HalfLifeHours)
	}
	byProduct := make(map[string][]*domain.QuantityEvent, len(products))
	for _, e := range events {
		if _, ok := lambdas[e.ProductID]; !ok {
			continue // dangling reference
		}
		byProduct[e.ProductID] = append(byProduct[e.ProductID], e)
	}

	stepMs := int64(w.SampleIntervalHours * msPerHour)

	var samples []*ChartSample
	for t := w.StartMs; t <= w.EndMs; t += stepMs {
		sample := &ChartSample{
			TimestampMs: t,
			Values:      make(map[string]float64, len(products)),
		}
		for _, p := range products {
			lambda := lambdas[p.ProductID]
			total := 0.0
			for _, e := range byProduct[p.ProductID] {
				total += ConcentrationAt(e.AmountMg, e.TimestampMs, t, lambda)
			}
			// Guard against float underflow producing tiny negative noise.
			if total < 0 {
				total = 0
			}
			sample.Values[p.ProductID] = total
		}
		samples = append(samples, sample)
	}

	return samples
}
