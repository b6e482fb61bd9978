package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeSource(t *testing.T, root string, cat Category, stem, body string) {
	t.Helper()
	dir := filepath.Join(root, cat.Dir())
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".yml"), []byte(body), 0o640))
}

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	root := t.TempDir()
	writeSource(t, root, CategoryRegexPattern, "x265", "name: x265\npattern: \\bx265\\b\n")
	writeSource(t, root, CategoryCustomFormat, "HDR", "name: HDR\nconditions: []\n")
	writeSource(t, root, CategoryProfile, "1080p", "name: 1080p\nqualities:\n  - Bluray-1080p\n")

	cache, err := NewCache(root, zerolog.Nop())
	require.NoError(t, err)
	return cache, root
}

func TestCacheLoadsAllCategories(t *testing.T) {
	cache, _ := newTestCache(t)

	assert.Equal(t, []string{"x265"}, cache.Names(CategoryRegexPattern))
	assert.Equal(t, []string{"HDR"}, cache.Names(CategoryCustomFormat))
	assert.Equal(t, []string{"1080p"}, cache.Names(CategoryProfile))

	data, err := cache.Get(CategoryCustomFormat, "HDR")
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: HDR")

	// Extensions on lookups are ignored.
	_, err = cache.Get(CategoryCustomFormat, "HDR.yml")
	assert.NoError(t, err)
}

func TestCacheGetMissing(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(CategoryCustomFormat, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheUpdateWritesOrderedKeys(t *testing.T) {
	cache, root := newTestCache(t)

	// Keys deliberately out of order; the writer must put name first.
	in := "conditions: []\ndescription: encode\nname: x264\n"
	require.NoError(t, cache.Update(CategoryCustomFormat, "x264", []byte(in)))

	onDisk, err := os.ReadFile(filepath.Join(root, CategoryCustomFormat.Dir(), "x264.yml"))
	require.NoError(t, err)
	assert.True(t, string(onDisk) == string(mustRead(t, cache, CategoryCustomFormat, "x264")),
		"cache and disk must agree after update")

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(onDisk, &doc))
	keys := topLevelKeys(&doc)
	assert.Equal(t, []string{"name", "description", "conditions"}, keys)
}

func TestCacheRemove(t *testing.T) {
	cache, root := newTestCache(t)

	require.NoError(t, cache.Remove(CategoryCustomFormat, "HDR"))
	_, err := cache.Get(CategoryCustomFormat, "HDR")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(filepath.Join(root, CategoryCustomFormat.Dir(), "HDR.yml"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, cache.Remove(CategoryCustomFormat, "HDR"), ErrNotFound)
}

func TestCacheRenameRewritesNameKey(t *testing.T) {
	cache, _ := newTestCache(t)

	require.NoError(t, cache.Rename(CategoryCustomFormat, "HDR", "HDR10"))

	_, err := cache.Get(CategoryCustomFormat, "HDR")
	assert.ErrorIs(t, err, ErrNotFound)

	data := mustRead(t, cache, CategoryCustomFormat, "HDR10")
	var doc FormatDoc
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "HDR10", doc.Name)
}

func TestCacheRenameToSameNameKeepsFile(t *testing.T) {
	cache, _ := newTestCache(t)

	before := mustRead(t, cache, CategoryCustomFormat, "HDR")
	require.NoError(t, cache.Rename(CategoryCustomFormat, "HDR", "HDR"))

	after := mustRead(t, cache, CategoryCustomFormat, "HDR")
	assert.Equal(t, string(before), string(after))

	require.NoError(t, cache.Rename(CategoryCustomFormat, "HDR", "HDR.yml"))
	_, err := cache.Get(CategoryCustomFormat, "HDR")
	assert.NoError(t, err, "extension differences do not count as a rename")
}

func TestCacheReloadPicksUpExternalChanges(t *testing.T) {
	cache, root := newTestCache(t)

	writeSource(t, root, CategoryCustomFormat, "New", "name: New\nconditions: []\n")
	_, err := cache.Get(CategoryCustomFormat, "New")
	assert.ErrorIs(t, err, ErrNotFound, "cache is a mirror until reloaded")

	require.NoError(t, cache.Reload())
	_, err = cache.Get(CategoryCustomFormat, "New")
	assert.NoError(t, err)
}

func TestCacheIgnoresNonYAMLFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, CategoryCustomFormat.Dir())
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# docs"), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HDR.yaml"), []byte("name: HDR\n"), 0o640))

	cache, err := NewCache(root, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"HDR"}, cache.Names(CategoryCustomFormat))
}

func TestStripExt(t *testing.T) {
	assert.Equal(t, "HDR", StripExt("HDR.yml"))
	assert.Equal(t, "HDR", StripExt("HDR.yaml"))
	assert.Equal(t, "HDR", StripExt("HDR"))
	assert.Equal(t, "HDR.json", StripExt("HDR.json"))
}

func mustRead(t *testing.T, cache *Cache, cat Category, name string) []byte {
	t.Helper()
	data, err := cache.Get(cat, name)
	require.NoError(t, err)
	return data
}

func topLevelKeys(doc *yaml.Node) []string {
	root := doc.Content[0]
	var keys []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
	}
	return keys
}
