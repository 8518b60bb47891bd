// Package export renders projection output for download.
package export

import (
	"fmt"
	"strings"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/projection"
)

// RenderCSV renders a projected series as a CSV string with one column per
// product, in the given product order. Concentrations are written with six
// decimal places; timestamps are Unix milliseconds.
func RenderCSV(products []*domain.Product, samples []*projection.ChartSample) string {
	var sb strings.Builder

	// Header
	sb.WriteString("timestamp_ms")
	for _, p := range products {
		sb.WriteString(",")
		sb.WriteString(csvEscape(p.Name))
	}
	sb.WriteString("\n")

	// Rows
	for _, s := range samples {
		sb.WriteString(fmt.Sprintf("%d", s.TimestampMs))
		for _, p := range products {
			sb.WriteString(fmt.Sprintf(",%.6f", s.Values[p.ProductID]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// csvEscape quotes a field when it contains separators or quotes.
func csvEscape(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
