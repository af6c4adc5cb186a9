package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLink(t *testing.T) {
	base := "https://prod6.seace.gob.pe/buscador-publico/contrataciones"

	got, err := ResolveLink(base, "/buscador-publico/contrataciones/1234#top")
	require.NoError(t, err)
	assert.Equal(t, "https://prod6.seace.gob.pe/buscador-publico/contrataciones/1234", got)

	got, err = ResolveLink(base, "HTTPS://PROD6.SEACE.GOB.PE/x")
	require.NoError(t, err)
	assert.Equal(t, "https://prod6.seace.gob.pe/x", got)

	_, err = ResolveLink(base, "")
	assert.ErrorIs(t, err, ErrNotAbsolute)

	_, err = ResolveLink(base, "javascript:void(0)")
	assert.ErrorIs(t, err, ErrNotAbsolute)

	_, err = ResolveLink("", "/relative/only")
	assert.ErrorIs(t, err, ErrNotAbsolute)
}

func TestPathMatches(t *testing.T) {
	p := "/buscador-publico/contrataciones/"
	assert.True(t, PathMatches("/buscador-publico/contrataciones/99", p))
	assert.True(t, PathMatches("https://h/buscador-publico/contrataciones/99?x=1", p))
	assert.False(t, PathMatches("/buscador-publico/contrataciones", p))
	assert.False(t, PathMatches("/otra/ruta", p))
}
