package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knight-ops/inkwell/internal/identify"
	"github.com/knight-ops/inkwell/internal/index"
	"github.com/knight-ops/inkwell/internal/match"
	"github.com/knight-ops/inkwell/internal/scan"
)

type fakeScanStore struct {
	total uint64
}

func (f *fakeScanStore) IncrementTotalScans(ctx context.Context) error {
	f.total++
	return nil
}

func (f *fakeScanStore) ReadTotalScans(ctx context.Context) (uint64, error) {
	return f.total, nil
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	idx := index.New()
	pool := identify.NewPool(1)
	t.Cleanup(pool.Close)

	counter := scan.NewCounter(&fakeScanStore{})
	svc := identify.NewService(idx, match.NewEngine(), counter, pool, "")
	return NewHandlers(svc, counter)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func testPNGBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * 5) ^ (y * 11))})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIdentifyEndpointReturnsWellFormedNoMatchOnEmptyIndex(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodPost, "/api/identify", bytes.NewReader(testPNGBytes(t)))
	rec := httptest.NewRecorder()
	h.Identify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body identifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Nil(t, body.Card)
	require.Equal(t, 0.0, body.Confidence)
}

func TestIdentifyEndpointRejectsOversizedBody(t *testing.T) {
	h := newTestHandlers(t)
	oversized := bytes.Repeat([]byte{0x00}, maxUploadBytes+10)
	req := httptest.NewRequest(http.MethodPost, "/api/identify", bytes.NewReader(oversized))
	rec := httptest.NewRecorder()
	h.Identify(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStatsEndpointReportsCounter(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, uint64(0), body.TotalScannedCards)
}
