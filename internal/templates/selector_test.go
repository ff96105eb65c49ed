package templates

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesmith/internal/domain"
)

func TestNewHeroSelector(t *testing.T) {
	s, err := NewHeroSelector()
	require.NoError(t, err)

	keys := s.Keys()
	assert.Len(t, keys, 15)
	assert.IsIncreasing(t, keys)

	for _, k := range keys {
		tpl, err := s.Get(k)
		require.NoError(t, err, k)
		assert.Equal(t, k, tpl.Key)
		assert.Contains(t, tpl.Content, "hero--"+k)
	}
}

func TestGet_UnknownKeyIsNotFound(t *testing.T) {
	s, err := NewHeroSelector()
	require.NoError(t, err)

	for _, k := range []string{"", "SPLIT-IMAGE", "split-image.html", "nope"} {
		_, err := s.Get(k)
		require.Error(t, err, k)
		assert.True(t, domain.IsKind(err, domain.KindNotFound), k)
	}
}

func TestLoad_IgnoresOtherFiles(t *testing.T) {
	s, err := Load(fstest.MapFS{
		"b.html":    {Data: []byte("<b>")},
		"a.html":    {Data: []byte("<a>")},
		"notes.txt": {Data: []byte("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Keys())

	tpl, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "<a>", tpl.Content)
}
