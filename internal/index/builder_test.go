package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/descriptor"
)

type fakeStore struct {
	records []catalog.CardRecord
}

func (f fakeStore) ScanAll(ctx context.Context) ([]catalog.CardRecord, error) {
	return f.records, nil
}

func validBlob(n int) []byte {
	return make([]byte, n*descriptor.RowWidth)
}

func TestBuildSkipsEmptyAndInvalidRecords(t *testing.T) {
	fs := fakeStore{records: []catalog.CardRecord{
		{ID: "complete", AkazeData: validBlob(3)},
		{ID: "no-features", AkazeData: nil},
		{ID: "corrupt", AkazeData: make([]byte, descriptor.RowWidth+1)},
	}}

	snap, err := Build(context.Background(), fs)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	require.Equal(t, "complete", snap.Records[0].ID)
	require.Equal(t, len(snap.Records), len(snap.Matrices))
	require.Equal(t, 3, snap.Matrices[0].Rows())
}

func TestPublishAndCurrentAreConsistent(t *testing.T) {
	idx := New()
	require.Equal(t, 0, idx.Current().Len())

	snap := &Snapshot{
		Records:  []catalog.CardRecord{{ID: "a"}},
		Matrices: []descriptor.Matrix{{}},
	}
	idx.Publish(snap)
	require.Same(t, snap, idx.Current())
}
