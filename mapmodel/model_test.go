package mapmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3thra/TrenchBroom/mapparser"
)

func parseEntities(t *testing.T, src string) []mapparser.Entity {
	t.Helper()
	p, err := mapparser.NewParser([]byte(src), mapparser.DialectStandard, mapparser.DialectStandard, nil)
	require.NoError(t, err)
	entities, err := p.ParseDocument()
	require.NoError(t, err)
	return entities
}

func TestBuildWorld(t *testing.T) {
	src := `{
"classname" "worldspawn"
"message" "the start"
{
( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) TEX 0 0 0 1 1
}
}
{
"classname" "info_player_start"
"origin" "32 32 24"
}
{
"classname" "info_player_start"
"origin" "64 64 24"
}`
	entities := parseEntities(t, src)
	world := Build(entities, BuildOptions{Game: "Quake", Dialect: mapparser.DialectStandard})

	assert.NotEmpty(t, world.ID)
	assert.Equal(t, "Quake", world.Game)
	assert.Equal(t, mapparser.DialectStandard, world.Dialect)
	require.Len(t, world.Entities, 3)

	spawn := world.Worldspawn()
	require.NotNil(t, spawn)
	message, ok := spawn.Property(PropMessage)
	assert.True(t, ok)
	assert.Equal(t, "the start", message)

	starts := world.EntitiesByClass("info_player_start")
	assert.Len(t, starts, 2)

	assert.Equal(t, 1, world.BrushCount())
	assert.Equal(t, 1, world.FaceCount())
	assert.Equal(t, 0, world.PatchCount())
}

func TestBuildAssignsUniqueIDs(t *testing.T) {
	src := `{
"classname" "worldspawn"
{
( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) TEX 0 0 0 1 1
}
{
( 0 0 16 ) ( 0 1 16 ) ( 1 0 16 ) TEX 0 0 0 1 1
}
}`
	world := Build(parseEntities(t, src), BuildOptions{})
	require.Len(t, world.Entities, 1)
	brushes := world.Entities[0].Brushes
	require.Len(t, brushes, 2)
	assert.NotEqual(t, brushes[0].ID, brushes[1].ID)
	assert.Equal(t, 3, brushes[0].Line)
}

func TestBuildEmptyDocument(t *testing.T) {
	world := Build(nil, BuildOptions{})
	assert.Empty(t, world.Entities)
	assert.Nil(t, world.Worldspawn())
}
