package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

func testCatalog(t *testing.T, name string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Feature{
		{ID: "disk", Name: name, Layer: catalog.LayerStorage, Keywords: []string{"raid"}, FeedsInto: []string{"share"}},
		{ID: "share", Name: "Share", Layer: catalog.LayerNetworkStorage, DependsOn: []string{"disk"}},
	})
	require.NoError(t, err)
	return c
}

func fixedClock(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = old })
	return at
}

// backends returns every backend that runs without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	bs, err := OpenBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })
	return map[string]Store{"file": fs, "badger": bs}
}

func TestStoreRoundTrip(t *testing.T) {
	at := fixedClock(t)
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := testCatalog(t, "Disk")

			info, err := s.Save(ctx, "home", c)
			require.NoError(t, err)
			assert.Equal(t, Info{Name: "home", Digest: c.Digest(), Features: 2, SavedAt: at}, info)

			back, err := s.Load(ctx, "home")
			require.NoError(t, err)
			assert.Equal(t, c.Digest(), back.Digest())
			assert.Equal(t, []string{"disk"}, idsOf(back.Chain("share", catalog.Upstream)))
		})
	}
}

func TestStoreOverwriteAndList(t *testing.T) {
	fixedClock(t)
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, "lab", testCatalog(t, "Old"))
			require.NoError(t, err)
			updated := testCatalog(t, "New")
			_, err = s.Save(ctx, "lab", updated)
			require.NoError(t, err)
			_, err = s.Save(ctx, "home", testCatalog(t, "Disk"))
			require.NoError(t, err)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "home", list[0].Name)
			assert.Equal(t, "lab", list[1].Name)
			assert.Equal(t, updated.Digest(), list[1].Digest)

			require.NoError(t, s.Delete(ctx, "lab"))
			require.NoError(t, s.Delete(ctx, "lab"))
			list, err = s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx, "missing")
			assert.True(t, herrors.Is(err, herrors.ErrCodeCatalogNotFound), "Load(missing) = %v", err)

			_, err = s.Save(ctx, "../escape", testCatalog(t, "Disk"))
			assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidPath), "Save(../escape) = %v", err)
		})
	}
}

func TestRecordBSON(t *testing.T) {
	at := fixedClock(t)
	c := testCatalog(t, "Disk")

	rec, err := newRecord("home", c)
	require.NoError(t, err)

	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "home", raw["_id"])
	assert.Equal(t, c.Digest(), raw["digest"])

	var back record
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, at, back.SavedAt.UTC())

	rebuilt, err := back.catalog()
	require.NoError(t, err)
	assert.Equal(t, c.Digest(), rebuilt.Digest())

	var info Info
	require.NoError(t, bson.Unmarshal(data, &info))
	assert.Equal(t, Info{Name: "home", Digest: c.Digest(), Features: 2, SavedAt: at}, Info{
		Name: info.Name, Digest: info.Digest, Features: info.Features, SavedAt: info.SavedAt.UTC(),
	})
}

func TestRecordRejectsTampering(t *testing.T) {
	rec, err := newRecord("home", testCatalog(t, "Disk"))
	require.NoError(t, err)
	rec.Document.Features[0].Name = "Changed"

	_, err = rec.catalog()
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidCatalog), "err = %v", err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Config{Backend: "sqlite"}, nil)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidConfig))

	_, err = Open(ctx, Config{Backend: BackendMongo}, nil)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidConfig), "mongo without URI: %v", err)

	_, err = Open(ctx, Config{Backend: BackendBadger}, nil)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidConfig), "badger without dir: %v", err)
}

func idsOf(features []catalog.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.ID
	}
	return out
}
