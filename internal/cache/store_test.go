package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
)

func fp(v float64) *float64 { return &v }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), observability.NewTestLogger())
	require.NoError(t, err)
	return store
}

func sampleSnapshot(key, tag string) domain.Snapshot {
	return domain.Snapshot{
		Key: key,
		Tag: tag,
		Records: []domain.CityRecord{
			{
				City: "Lisbon", Country: "Portugal", Region: "Europe",
				VisaFree: domain.VisaYes, MonthlyCost: 1523.75, AvgInternetMbps: 118.2, NomadScore: 81.37,
				RentUSD: fp(1200), FoodUSD: fp(323.75), MobileMbps: fp(86.4), FixedMbps: fp(150),
				Lat: fp(38.7223), Lon: fp(-9.1393),
			},
			{
				City: "Bangkok", Country: "Thailand", Region: "Asia",
				VisaFree: domain.VisaUnknown, MonthlyCost: 912.5, AvgInternetMbps: 64, NomadScore: 72.9,
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	snap := sampleSnapshot("default", "20260823")

	require.NoError(t, store.Write(snap))

	got, ok := store.ReadExact("default", "20260823")
	require.True(t, ok)
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot changed across round trip (-want +got):\n%s", diff)
	}
}

func TestStoreWriteIsImmutable(t *testing.T) {
	store := newTestStore(t)
	first := sampleSnapshot("default", "20260823")
	require.NoError(t, store.Write(first))

	second := sampleSnapshot("default", "20260823")
	second.Records = second.Records[:1]
	require.NoError(t, store.Write(second))

	got, ok := store.ReadExact("default", "20260823")
	require.True(t, ok)
	assert.Len(t, got.Records, 2, "existing snapshot must not be overwritten")
}

func TestStoreRejectsInvalidSnapshot(t *testing.T) {
	store := newTestStore(t)

	err := store.Write(domain.Snapshot{Key: "default", Tag: "20260823"})
	var structural *domain.StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestStoreReadLatestOrdersByTag(t *testing.T) {
	store := newTestStore(t)

	// Write newest first so filesystem mtime order disagrees with tag order.
	require.NoError(t, store.Write(sampleSnapshot("default", "20260823")))
	require.NoError(t, store.Write(sampleSnapshot("default", "20260821")))
	require.NoError(t, store.Write(sampleSnapshot("default", "20260822")))

	got, ok := store.ReadLatest("default")
	require.True(t, ok)
	assert.Equal(t, "20260823", got.Tag)
}

func TestStoreReadLatestSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(sampleSnapshot("default", "20260821")))

	// A newer file with garbage content reads as absent, not as an error.
	corrupt := filepath.Join(store.dir, "combined_default_20260823.csv")
	require.NoError(t, os.WriteFile(corrupt, []byte("not,a\nsnapshot"), 0o644))

	got, ok := store.ReadLatest("default")
	require.True(t, ok)
	assert.Equal(t, "20260821", got.Tag)
}

func TestStoreMissingRequiredColumnReadsAsAbsent(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.dir, "combined_default_20260823.csv")
	content := "city,country,region\nLisbon,Portugal,Europe\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, ok := store.ReadExact("default", "20260823")
	assert.False(t, ok)
}

func TestStoreKeysAreIsolated(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(sampleSnapshot("alpha", "20260823")))

	_, ok := store.ReadExact("beta", "20260823")
	assert.False(t, ok)
	_, ok = store.ReadLatest("beta")
	assert.False(t, ok)
}

func TestStorePurgeKeepsRetentionWindowAndInUseTag(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	store := newTestStore(t)
	for _, tag := range []string{"20260819", "20260821", "20260822", "20260823"} {
		require.NoError(t, store.Write(sampleSnapshot("default", tag)))
	}

	// Retention of one day keeps only today, except the in-use tag survives.
	store.PurgeOlderThan("default", 1, "20260821")

	assert.ElementsMatch(t, []string{"20260821", "20260823"}, store.tagsOnDisk("default"))
}

func TestStorePurgeWiderWindow(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	store := newTestStore(t)
	for _, tag := range []string{"20260819", "20260821", "20260822", "20260823"} {
		require.NoError(t, store.Write(sampleSnapshot("default", tag)))
	}

	store.PurgeOlderThan("default", 3, "20260823")

	assert.ElementsMatch(t, []string{"20260821", "20260822", "20260823"}, store.tagsOnDisk("default"))
}
