package mapcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3thra/TrenchBroom/mapparser"
)

func TestKeyFor(t *testing.T) {
	a := KeyFor([]byte("one"))
	b := KeyFor([]byte("two"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, KeyFor([]byte("one")))
	assert.Len(t, a.String(), 64)
}

func TestPutGetRoundTrip(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)

	src := []byte(`{ "classname" "worldspawn" { ( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) TEX 0 0 0 1 1 } }`)
	p, err := mapparser.NewParser(src, mapparser.DialectStandard, mapparser.DialectStandard, nil)
	require.NoError(t, err)
	entities, err := p.ParseDocument()
	require.NoError(t, err)

	key := KeyFor(src)
	payload := &Payload{
		Dialect:  mapparser.DialectStandard,
		Entities: entities,
		Notes:    []mapparser.Note{{Line: 1, Severity: mapparser.SeverityWarning, Message: "note"}},
	}
	require.NoError(t, cache.Put(key, payload))

	got, hit, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, mapparser.DialectStandard, got.Dialect)
	assert.Equal(t, entities, got.Entities)
	assert.Equal(t, payload.Notes, got.Notes)
}

func TestGetMiss(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)

	_, hit, err := cache.Get(KeyFor([]byte("absent")))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSchemaMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir)
	require.NoError(t, err)

	key := KeyFor([]byte("doc"))
	require.NoError(t, cache.Put(key, &Payload{Dialect: mapparser.DialectQuake2}))

	// Corrupt the stored entry; decoding fails and counts as a miss.
	path := filepath.Join(dir, "maps", key.String()+".mp")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack"), 0o644))

	_, hit, err := cache.Get(key)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	require.NoError(t, cache.Put(KeyFor([]byte("x")), &Payload{}))
	_, hit, err := cache.Get(KeyFor([]byte("x")))
	require.NoError(t, err)
	assert.False(t, hit)
}
