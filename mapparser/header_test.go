package mapparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadGameAndFormatComments(t *testing.T) {
	src := []byte(`// Game: Quake 2
// Format: Quake2
{
"classname" "worldspawn"
}`)
	assert.Equal(t, "Quake 2", ReadGameComment(src))
	assert.Equal(t, "Quake2", ReadFormatComment(src))
	assert.Equal(t, DialectQuake2, DetectDialect(src))
}

func TestReadHeaderCommentsInEitherOrder(t *testing.T) {
	src := []byte(`
// Format: Valve
// Game: Half-Life
{
}`)
	assert.Equal(t, "Half-Life", ReadGameComment(src))
	assert.Equal(t, DialectValve, DetectDialect(src))
}

func TestReadHeaderStopsAtFirstContentLine(t *testing.T) {
	src := []byte(`{
"classname" "worldspawn"
}
// Format: Quake2
`)
	assert.Equal(t, "", ReadFormatComment(src))
	assert.Equal(t, DialectUnknown, DetectDialect(src))
}

func TestReadHeaderMissing(t *testing.T) {
	assert.Equal(t, "", ReadGameComment([]byte("{}")))
	assert.Equal(t, "", ReadGameComment(nil))
}

func TestReadHeaderDoesNotConsumeTokenizerState(t *testing.T) {
	src := []byte(`// Game: Quake
// Format: Standard
{
"classname" "worldspawn"
}`)
	assert.Equal(t, "Quake", ReadGameComment(src))

	// A full parse of the same buffer still sees everything.
	p, err := NewParser(src, DialectStandard, DialectStandard, nil)
	assert.NoError(t, err)
	entities, err := p.ParseDocument()
	assert.NoError(t, err)
	assert.Len(t, entities, 1)
}
