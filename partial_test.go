package rustache

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialMap_ParsesOnceAndCaches(t *testing.T) {
	p := NewPartialMap().Set("greeting", "Hello, {{name}}!")

	first, err := p.Partial("greeting")
	require.NoError(t, err)
	second, err := p.Partial("greeting")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestPartialMap_SetInvalidatesCache(t *testing.T) {
	p := NewPartialMap().Set("note", "old")

	old, err := p.Partial("note")
	require.NoError(t, err)

	p.Set("note", "new")
	fresh, err := p.Partial("note")
	require.NoError(t, err)

	assert.NotSame(t, old, fresh)
	require.Len(t, fresh.Nodes, 1)
	assert.Equal(t, "new", fresh.Nodes[0].(*TextNode).Text)
}

func TestPartialMap_UnknownName(t *testing.T) {
	p := NewPartialMap()

	_, err := p.Partial("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialNotFound)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestPartialMap_ParseErrorSurfaces(t *testing.T) {
	p := NewPartialMap().Set("bad", "{{#open}}never closed")

	_, err := p.Partial("bad")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad", perr.Position().File)
}

func TestDirPartials_DefaultExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"header.mustache": {Data: []byte("== {{title}} ==")},
	}
	d := NewDirPartials(fsys, "")

	tpl, err := d.Partial("header")
	require.NoError(t, err)
	assert.Equal(t, "header.mustache", tpl.File)
}

func TestDirPartials_CustomExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"footer.tpl": {Data: []byte("-- end --")},
	}
	d := NewDirPartials(fsys, ".tpl")

	tpl, err := d.Partial("footer")
	require.NoError(t, err)
	require.Len(t, tpl.Nodes, 1)
	assert.Equal(t, "-- end --", tpl.Nodes[0].(*TextNode).Text)
}

func TestDirPartials_NotFound(t *testing.T) {
	d := NewDirPartials(fstest.MapFS{}, "")

	_, err := d.Partial("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialNotFound)
}

func TestDirPartials_Caches(t *testing.T) {
	fsys := fstest.MapFS{
		"p.mustache": {Data: []byte("x")},
	}
	d := NewDirPartials(fsys, "")

	first, err := d.Partial("p")
	require.NoError(t, err)
	second, err := d.Partial("p")
	require.NoError(t, err)
	assert.Same(t, first, second)
}
