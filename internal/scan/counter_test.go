package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	total     uint64
	incErr    error
	readErr   error
	incCalled int
}

func (f *fakeStore) IncrementTotalScans(ctx context.Context) error {
	f.incCalled++
	if f.incErr != nil {
		return f.incErr
	}
	f.total++
	return nil
}

func (f *fakeStore) ReadTotalScans(ctx context.Context) (uint64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.total, nil
}

func TestRecordMatchIncrementsCounter(t *testing.T) {
	fs := &fakeStore{}
	c := NewCounter(fs)

	c.RecordMatch(context.Background())
	c.RecordMatch(context.Background())

	total, err := c.Total(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), total)
}

func TestRecordMatchSwallowsStoreError(t *testing.T) {
	fs := &fakeStore{incErr: errors.New("disk full")}
	c := NewCounter(fs)

	require.NotPanics(t, func() { c.RecordMatch(context.Background()) })
	require.Equal(t, 1, fs.incCalled)
}
