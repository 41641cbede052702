package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// downloadResult reports what downloadImage actually wrote, letting the
// caller log a human-readable size and a content hash for idempotence
// diagnostics (did a re-run fetch byte-identical content?).
type downloadResult struct {
	bytesWritten int64
	contentHash  uint64
}

// downloadImage fetches url and writes it to destPath atomically: the body
// lands in a sibling temp file first, then gets renamed into place, so a
// concurrent reader (or a crash mid-write) never observes a partial file.
func downloadImage(ctx context.Context, client *http.Client, url, destPath string) (downloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return downloadResult{}, fmt.Errorf("ingest: build request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return downloadResult{}, fmt.Errorf("ingest: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return downloadResult{}, fmt.Errorf("ingest: fetch %s: unexpected status %s", url, resp.Status)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return downloadResult{}, fmt.Errorf("ingest: create image directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*.tmp")
	if err != nil {
		return downloadResult{}, fmt.Errorf("ingest: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	hasher := xxhash.New()
	n, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		tmp.Close()
		return downloadResult{}, fmt.Errorf("ingest: write %s: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		return downloadResult{}, fmt.Errorf("ingest: close temp file for %s: %w", destPath, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return downloadResult{}, fmt.Errorf("ingest: finalize %s: %w", destPath, err)
	}

	klog.V(2).Infof("ingest: downloaded %s (%s, content hash %x)", url, humanize.Bytes(uint64(n)), hasher.Sum64())
	return downloadResult{bytesWritten: n, contentHash: hasher.Sum64()}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
