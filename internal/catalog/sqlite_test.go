package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSaveLoad(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	catalog := sampleCatalog()
	require.NoError(t, store.Save(catalog))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, catalog.Version, loaded.Version)
	assert.Equal(t, catalog.RunID, loaded.RunID)
	assert.Equal(t, catalog.Root, loaded.Root)
	assert.Equal(t, catalog.Degraded, loaded.Degraded)
	assert.True(t, catalog.GeneratedAt.Equal(loaded.GeneratedAt))
	assert.Equal(t, catalog.Entities, loaded.Entities)
	assert.Equal(t, catalog.UnitErrors, loaded.UnitErrors)
}

func TestSQLiteStoreEmbeddingBlobRoundTrip(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	catalog := sampleCatalog()
	require.NoError(t, store.Save(catalog))

	loaded, err := store.Load()
	require.NoError(t, err)

	require.Len(t, loaded.Entities, 2)
	assert.Equal(t, []float32{0.25, -0.5, 0.125}, loaded.Entities[0].Embedding,
		"vector survives the BLOB encoding bit-exactly")
	assert.Nil(t, loaded.Entities[1].Embedding, "absent vector stays absent")
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	require.NoError(t, store.Save(sampleCatalog()))

	second := sampleCatalog()
	second.RunID = "11111111-2222-4333-8444-555555555555"
	second.Entities = second.Entities[:1]
	second.UnitErrors = nil
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second.RunID, loaded.RunID)
	assert.Len(t, loaded.Entities, 1)
	assert.Empty(t, loaded.UnitErrors)
}

func TestSQLiteStoreLoadEmpty(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}
