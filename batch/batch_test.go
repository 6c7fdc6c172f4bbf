package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3thra/TrenchBroom/mapcache"
	"github.com/s3thra/TrenchBroom/mapparser"
)

const validMap = `{
"classname" "worldspawn"
{
( -64 -64 -16 ) ( -64 -63 -16 ) ( -63 -64 -16 ) floor 0 0 0 1 1
( -64 -64 16 ) ( -63 -64 16 ) ( -64 -63 16 ) ceil 0 0 0 1 1
( -64 -64 -16 ) ( -64 -63 -16 ) ( -64 -64 -15 ) west 0 0 0 1 1
( 64 64 16 ) ( 64 65 16 ) ( 64 64 17 ) east 0 0 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) south 0 0 0 1 1
( 64 64 16 ) ( 64 64 17 ) ( 65 64 16 ) north 0 0 0 1 1
}
}
`

const brokenMap = `{
"classname" "worldspawn"
`

func writeMaps(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestListMapsSortedAndFiltered(t *testing.T) {
	dir := writeMaps(t, map[string]string{
		"b.map":      validMap,
		"a.map":      validMap,
		"readme.txt": "not a map",
		"c.MAP":      validMap,
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.map"), 0o755))

	files, err := ListMaps(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.map", filepath.Base(files[0]))
	assert.Equal(t, "b.map", filepath.Base(files[1]))
	assert.Equal(t, "c.MAP", filepath.Base(files[2]))
}

func TestParseDir(t *testing.T) {
	dir := writeMaps(t, map[string]string{
		"one.map": validMap,
		"two.map": validMap,
	})

	results, err := ParseDir(context.Background(), dir, Options{
		Source: mapparser.DialectStandard,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		require.NoError(t, result.Err)
		require.Len(t, result.Entities, 1)
		assert.Equal(t, "worldspawn", result.Entities[0].Classname())
	}
}

func TestParseDirIsolatesFailures(t *testing.T) {
	dir := writeMaps(t, map[string]string{
		"bad.map":  brokenMap,
		"good.map": validMap,
	})

	results, err := ParseDir(context.Background(), dir, Options{
		Source: mapparser.DialectStandard,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "bad.map", filepath.Base(results[0].Path))
	require.Error(t, results[0].Err)
	assert.Nil(t, results[0].Entities)

	require.NoError(t, results[1].Err)
	require.Len(t, results[1].Entities, 1)
}

func TestParseDirEmitsEvents(t *testing.T) {
	dir := writeMaps(t, map[string]string{
		"bad.map":  brokenMap,
		"good.map": validMap,
	})

	emitter := NewEmitter()
	var types []EventType
	emitter.On(func(event Event) {
		types = append(types, event.Type)
	})

	_, err := ParseDir(context.Background(), dir, Options{
		Source:  mapparser.DialectStandard,
		Jobs:    1,
		Emitter: emitter,
	})
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventRunStarted,
		EventFileStarted,
		EventFileFailed,
		EventFileStarted,
		EventFileParsed,
		EventRunCompleted,
	}, types)
}

func TestParseDirUsesCache(t *testing.T) {
	dir := writeMaps(t, map[string]string{"one.map": validMap})
	cache, err := mapcache.Open(t.TempDir())
	require.NoError(t, err)

	opts := Options{Source: mapparser.DialectStandard, Cache: cache}

	first, err := ParseDir(context.Background(), dir, opts)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Cached)

	second, err := ParseDir(context.Background(), dir, opts)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Cached)
	assert.Equal(t, first[0].Entities, second[0].Entities)
}

func TestCacheKeyDependsOnDialectPair(t *testing.T) {
	src := []byte(validMap)
	standard := cacheKeySource(src, mapparser.DialectStandard, mapparser.DialectStandard)
	valve := cacheKeySource(src, mapparser.DialectStandard, mapparser.DialectValve)
	assert.NotEqual(t, mapcache.KeyFor(standard), mapcache.KeyFor(valve))
}

func TestConvertDir(t *testing.T) {
	dir := writeMaps(t, map[string]string{
		"bad.map":  brokenMap,
		"good.map": validMap,
	})
	outDir := filepath.Join(t.TempDir(), "out")

	results, err := ConvertDir(context.Background(), dir, outDir, Options{
		Source: mapparser.DialectStandard,
		Target: mapparser.DialectValve,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)

	_, err = os.Stat(filepath.Join(outDir, "bad.map"))
	assert.True(t, os.IsNotExist(err))

	out, err := os.ReadFile(filepath.Join(outDir, "good.map"))
	require.NoError(t, err)

	parser, err := mapparser.NewParser(out, mapparser.DialectValve, mapparser.DialectValve, nil)
	require.NoError(t, err)
	entities, err := parser.ParseDocument()
	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Len(t, entities[0].Brushes, 1)
	require.NotNil(t, entities[0].Brushes[0].Faces[0].Axes)
}

func TestParseDirCanceled(t *testing.T) {
	dir := writeMaps(t, map[string]string{"one.map": validMap})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseDir(ctx, dir, Options{Source: mapparser.DialectStandard})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmitterFanOut(t *testing.T) {
	emitter := NewEmitter()
	var a, b int
	emitter.On(func(Event) { a++ })
	emitter.On(func(Event) { b++ })
	require.Equal(t, 2, emitter.ListenerCount())

	emitter.Emit(FileStartedEvent("x.map", 0))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	var nilEmitter *Emitter
	nilEmitter.Emit(FileStartedEvent("x.map", 0))
}
