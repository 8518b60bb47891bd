package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjection_DayRange(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedTestProduct(t, h, "p1", 24)

	doseTs := int64(1704067200000 - 12*3600*1000) // 12h before the fixed clock
	rec := doRequest(t, h, http.MethodPost, "/api/quantities", quantityPayload{
		ProductID: "p1", AmountMg: 40, TimestampMs: doseTs,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/projection?range=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp projectionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 1.0, resp.SampleIntervalHours)
	assert.Equal(t, int64(1704067200000), resp.EndMs)
	assert.Equal(t, resp.EndMs-24*3600*1000, resp.StartMs)
	// 24h span at 1h intervals, both endpoints included.
	require.Len(t, resp.Samples, 25)

	// Exactly at the dose instant the full amount is present.
	atDose := resp.Samples[12]
	assert.Equal(t, doseTs, atDose.TimestampMs)
	assert.InDelta(t, 40.0, atDose.Values["p1"], 1e-9)

	// Before the dose the level is zero, after it decays.
	assert.Equal(t, 0.0, resp.Samples[0].Values["p1"])
	assert.Less(t, resp.Samples[24].Values["p1"], 40.0)
	assert.Greater(t, resp.Samples[24].Values["p1"], 0.0)
}

func TestGetProjection_CustomBounds(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedTestProduct(t, h, "p1", 24)

	rec := doRequest(t, h, http.MethodPost, "/api/quantities", quantityPayload{
		ProductID: "p1", AmountMg: 20, TimestampMs: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A 9.5h span resolves to 1h intervals; the final sample lands at 9h,
	// undershooting end_ms rather than overshooting it.
	rec = doRequest(t, h, http.MethodGet, "/api/projection?start_ms=0&end_ms=34200000", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp projectionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1.0, resp.SampleIntervalHours)
	require.Len(t, resp.Samples, 10)
	assert.Equal(t, int64(9*3600*1000), resp.Samples[9].TimestampMs)
}

func TestGetProjection_EmptyData(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/projection?range=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp projectionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Samples)
}

func TestGetProjection_BadInput(t *testing.T) {
	h, _, _ := newTestHandler(t)

	cases := []string{
		"/api/projection?range=century",
		"/api/projection?range=custom",
		"/api/projection?start_ms=10&end_ms=5",
		"/api/projection?start_ms=abc",
	}
	for _, path := range cases {
		rec := doRequest(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetProjection_DefaultsToDay(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedTestProduct(t, h, "p1", 24)

	rec := doRequest(t, h, http.MethodGet, "/api/projection", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp projectionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1704067200000), resp.EndMs)
	assert.Equal(t, 1.0, resp.SampleIntervalHours)
}

func TestGetProjection_ReusesCachedResult(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedTestProduct(t, h, "p1", 24)

	rec := doRequest(t, h, http.MethodGet, "/api/projection?range=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, h.cache.Len())

	// Identical snapshot and window hash to the same key.
	rec = doRequest(t, h, http.MethodGet, "/api/projection?range=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.cache.Len())

	// A data change produces a new key.
	rec = doRequest(t, h, http.MethodPost, "/api/quantities", quantityPayload{
		ProductID: "p1", AmountMg: 20, TimestampMs: 1704000000000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/projection?range=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, h.cache.Len())
}

func TestExportProjectionCSV(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedTestProduct(t, h, "p1", 24)

	rec := doRequest(t, h, http.MethodPost, "/api/quantities", quantityPayload{
		ProductID: "p1", AmountMg: 40, TimestampMs: 1704000000000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/projection/export.csv?range=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "projection.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "timestamp_ms,p1", lines[0])
	assert.Len(t, lines, 26) // header plus 25 samples
}
