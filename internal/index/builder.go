package index

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/descriptor"
	"github.com/knight-ops/inkwell/internal/metrics"
)

// Store is the subset of catalog.Store the builder needs, kept narrow so
// tests can supply an in-memory fake without spinning up SQLite.
type Store interface {
	ScanAll(ctx context.Context) ([]catalog.CardRecord, error)
}

// Build performs a full catalog scan and constructs a new Snapshot: records
// with empty akaze_data are skipped (never extracted, or extraction found
// nothing), and any record whose akaze_data fails to decode
// (InvalidDescriptorBlob) is skipped and logged rather than aborting the
// whole build, matching §7's per-record isolation.
func Build(ctx context.Context, store Store) (*Snapshot, error) {
	records, err := store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: scan catalog: %w", err)
	}

	snap := &Snapshot{
		Records:  make([]catalog.CardRecord, 0, len(records)),
		Matrices: make([]descriptor.Matrix, 0, len(records)),
	}

	for _, rec := range records {
		if len(rec.AkazeData) == 0 {
			continue
		}
		m, err := descriptor.Decode(rec.AkazeData)
		if err != nil {
			klog.Warningf("index: skipping card %s, invalid descriptor blob: %s", rec.ID, err)
			continue
		}
		snap.Records = append(snap.Records, rec)
		snap.Matrices = append(snap.Matrices, m)
	}

	klog.Infof("index: built snapshot with %d of %d catalog records", len(snap.Records), len(records))
	metrics.IndexSize.Set(float64(len(snap.Records)))
	return snap, nil
}
