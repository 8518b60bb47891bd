// Package idhash computes deterministic identifiers and digests over domain
// snapshots.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/LotusZaheer/antidepressant/internal/domain"
)

// SnapshotHash computes a deterministic digest over a projection input
// snapshot using SHA256. Two calls with identical products, events, and
// window bounds produce the same digest, so it can key a memo cache for
// projection results. Input order matters; callers pass store output, which
// is already deterministically ordered.
//
// Formula: SHA256(start|end|interval ; per product id|halfLife ; per event id|productId|amount|ts)
// Returns hex-encoded hash (64 characters).
func SnapshotHash(products []*domain.Product, events []*domain.QuantityEvent, startMs, endMs int64, intervalHours float64) string {
	var sb strings.Builder

	sb.WriteString(strconv.FormatInt(startMs, 10))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatInt(endMs, 10))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatFloat(intervalHours, 'g', -1, 64))

	for _, p := range products {
		fmt.Fprintf(&sb, ";%s|%g", p.ProductID, p.HalfLifeHours)
	}
	for _, e := range events {
		fmt.Fprintf(&sb, ";%s|%s|%g|%d", e.EventID, e.ProductID, e.AmountMg, e.TimestampMs)
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}
