package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "inkwell.db")
	s, err := Open(context.Background(), "sqlite:"+dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrateSeedsCounterAtZero(t *testing.T) {
	s := openTestStore(t)
	total, err := s.ReadTotalScans(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(0), total)
}

func TestUpsertInsertThenConflictMergesAuthoritativeFieldsOnly(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	promo := "first-edition"
	require.NoError(t, s.Upsert(ctx, CardRecord{
		ID: "set1-001", Name: "Mickey Mouse", Subtitle: "Brave Little Tailor",
		SetCode: "set1", CardNumber: 1, Rarity: "Common", PromoGrouping: &promo,
		ImageURL: "card_images/set1-001.jpg", PHash: "a", AkazeData: []byte{1, 2, 3},
	}))

	// Conflicting upsert: promo_grouping is omitted (write-on-create only, §9b).
	require.NoError(t, s.Upsert(ctx, CardRecord{
		ID: "set1-001", Name: "Mickey Mouse (Renamed)", Subtitle: "Updated",
		SetCode: "set1", CardNumber: 1, Rarity: "Rare",
		ImageURL: "card_images/set1-001.jpg", PHash: "b", AkazeData: []byte{4, 5, 6},
	}))

	all, err := s.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	rec := all[0]
	require.Equal(t, "Mickey Mouse (Renamed)", rec.Name)
	require.Equal(t, "Rare", rec.Rarity)
	require.Equal(t, "b", rec.PHash)
	require.NotNil(t, rec.PromoGrouping)
	require.Equal(t, "first-edition", *rec.PromoGrouping)
}

func TestHasCompleteRequiresBothFingerprints(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Upsert(ctx, CardRecord{ID: "a", Name: "A", Rarity: "Unknown"}))
	ok, err := s.HasComplete(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Upsert(ctx, CardRecord{
		ID: "a", Name: "A", Rarity: "Unknown", PHash: "abc", AkazeData: []byte{1},
	}))
	ok, err = s.HasComplete(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.HasComplete(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpsertMetadataOnlyLeavesFingerprintsAlone(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Upsert(ctx, CardRecord{
		ID: "a", Name: "A", Rarity: "Unknown", PHash: "abc", AkazeData: []byte{1, 2},
	}))
	require.NoError(t, s.UpsertMetadataOnly(ctx, "a", "A Renamed", "Sub", "Rare", "set2", 7))

	all, err := s.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "A Renamed", all[0].Name)
	require.Equal(t, "Rare", all[0].Rarity)
	require.Equal(t, "abc", all[0].PHash)
	require.Equal(t, []byte{1, 2}, all[0].AkazeData)
}

func TestCounterMonotonic(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.IncrementTotalScans(ctx))
	require.NoError(t, s.IncrementTotalScans(ctx))
	total, err := s.ReadTotalScans(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), total)
}
