package ingest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knight-ops/inkwell/internal/catalog"
)

type fakeStore struct {
	mu           sync.Mutex
	upserted     map[string]catalog.CardRecord
	metadataOnly map[string]bool
	complete     map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		upserted:     make(map[string]catalog.CardRecord),
		metadataOnly: make(map[string]bool),
		complete:     make(map[string]bool),
	}
}

func (f *fakeStore) Upsert(ctx context.Context, rec catalog.CardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted[rec.ID] = rec
	f.complete[rec.ID] = true
	return nil
}

func (f *fakeStore) UpsertMetadataOnly(ctx context.Context, id, name, subtitle, rarity, setCode string, cardNumber uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadataOnly[id] = true
	return nil
}

func (f *fakeStore) HasComplete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.complete[id], nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8((x * 7 % 256) ^ (y * 13 % 256))
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestJobRunProcessesNewItemFully(t *testing.T) {
	body := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	store := newFakeStore()
	dir := t.TempDir()
	job := NewJob(store, dir, srv.Client())

	items := []Item{{ID: "set1-1", Name: "Mickey Mouse", SetCode: "set1", CardNumber: 1, Rarity: "Common", ImageURL: srv.URL}}
	require.NoError(t, job.Run(context.Background(), items))

	rec, ok := store.upserted["set1-1"]
	require.True(t, ok)
	require.True(t, rec.IsComplete())
	require.FileExists(t, filepath.Join(dir, "set1-1.jpg"))
}

func TestJobRunSkipsDownloadWhenImageAlreadyPresentAndComplete(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(testPNG(t))
	}))
	defer srv.Close()

	store := newFakeStore()
	store.complete["set1-1"] = true
	dir := t.TempDir()

	// Pre-seed the image file so the job should not re-download.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "set1-1.jpg"), testPNG(t), 0o644))

	job := NewJob(store, dir, srv.Client())
	items := []Item{{ID: "set1-1", Name: "Mickey Mouse", SetCode: "set1", CardNumber: 1, Rarity: "Common", ImageURL: srv.URL}}
	require.NoError(t, job.Run(context.Background(), items))

	require.Equal(t, 0, calls)
	require.True(t, store.metadataOnly["set1-1"])
}

func TestJobRunIsolatesPerItemFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := newFakeStore()
	dir := t.TempDir()
	job := NewJob(store, dir, srv.Client())

	items := []Item{
		{ID: "bad-1", ImageURL: srv.URL},
		{ID: "bad-2", ImageURL: srv.URL},
	}
	// A run-level error is returned only for setup failures; per-item
	// download failures are logged and skipped, so Run still succeeds.
	require.NoError(t, job.Run(context.Background(), items))
	require.Empty(t, store.upserted)
}
