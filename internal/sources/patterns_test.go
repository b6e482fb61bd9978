package sources

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPatternsKeysByDocumentName(t *testing.T) {
	root := t.TempDir()
	// The document name, not the file stem, is the lookup key.
	writeSource(t, root, CategoryRegexPattern, "encode-x265", "name: x265\npattern: \\bx265\\b\n")
	writeSource(t, root, CategoryRegexPattern, "broken", "{\n")
	writeSource(t, root, CategoryRegexPattern, "anonymous", "pattern: \\d+\n")

	cache, err := NewCache(root, zerolog.Nop())
	require.NoError(t, err)

	store := LoadPatterns(cache, zerolog.Nop())
	assert.Equal(t, 1, store.Len())

	pattern, ok := store.Get("x265")
	assert.True(t, ok)
	assert.Equal(t, `\bx265\b`, pattern)

	_, ok = store.Get("encode-x265")
	assert.False(t, ok, "file stems are not keys")
}

func TestLoadPatternsDuplicateLastWins(t *testing.T) {
	root := t.TempDir()
	// Files load in sorted stem order, so "b" overwrites "a".
	writeSource(t, root, CategoryRegexPattern, "a", "name: dupe\npattern: first\n")
	writeSource(t, root, CategoryRegexPattern, "b", "name: dupe\npattern: second\n")

	cache, err := NewCache(root, zerolog.Nop())
	require.NoError(t, err)

	store := LoadPatterns(cache, zerolog.Nop())
	pattern, ok := store.Get("dupe")
	assert.True(t, ok)
	assert.Equal(t, "second", pattern)
}

func TestNewPatternStoreCopies(t *testing.T) {
	src := map[string]string{"a": "1"}
	store := NewPatternStore(src)
	src["a"] = "mutated"

	pattern, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", pattern)
}
