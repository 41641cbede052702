// Package index maintains the published, immutable IndexSnapshot the match
// engine reads: a parallel vector of catalog entries and a matcher-ready
// stack of descriptor matrices, hot-swapped atomically after each
// ingestion run.
package index

import (
	"sync/atomic"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/descriptor"
)

// Snapshot is an immutable, request-scoped view of the catalog. Records and
// Matrices are index-aligned: Matrices[i] is the descriptor matrix for
// Records[i], and len(Records) == len(Matrices) always holds.
type Snapshot struct {
	Records  []catalog.CardRecord
	Matrices []descriptor.Matrix
}

// Len reports the number of indexed references in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Index is the process-wide hot-swap cell holding the current Snapshot.
// Readers call Current to acquire a reference good for the lifetime of a
// single identification; a Publish never invalidates a Snapshot a reader
// already holds, since Snapshot is immutable and readers hold their own
// pointer, not a view into the cell.
type Index struct {
	current atomic.Pointer[Snapshot]
}

// New returns an Index initialized with an empty snapshot, so readers
// never observe a nil pointer before the first Publish.
func New() *Index {
	idx := &Index{}
	idx.Publish(&Snapshot{Records: []catalog.CardRecord{}, Matrices: []descriptor.Matrix{}})
	return idx
}

// Current returns the currently published snapshot. The returned pointer
// remains valid and internally consistent for as long as the caller holds
// it, even across later Publish calls from ingestion.
func (idx *Index) Current() *Snapshot {
	return idx.current.Load()
}

// Publish atomically replaces the current snapshot. The exclusive section
// is just the pointer swap; no reader is blocked.
func (idx *Index) Publish(s *Snapshot) {
	idx.current.Store(s)
}
