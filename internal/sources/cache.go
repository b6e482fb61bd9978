// Package sources owns the YAML source-of-truth directories: regex patterns,
// custom formats and quality profiles. The cache is the only path by which
// the compile pipeline reads source YAML.
package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Cache mirrors the three YAML directories in memory, keyed by file stem
// (file name without extension). Writers invalidate entries; git-state
// transitions in the surrounding layer call Reload.
type Cache struct {
	root   string
	files  map[Category]map[string][]byte
	mu     sync.RWMutex
	logger zerolog.Logger
}

// ErrNotFound is returned when a requested source file is not in the cache.
var ErrNotFound = fmt.Errorf("source file not found")

// NewCache walks every category directory under root and loads all *.yml
// files into memory.
func NewCache(root string, logger zerolog.Logger) (*Cache, error) {
	c := &Cache{
		root:   root,
		files:  make(map[Category]map[string][]byte),
		logger: logger.With().Str("component", "sources").Logger(),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload discards the in-memory mirror and re-walks every directory. Used at
// startup and after any branch switch or conflict resolution.
func (c *Cache) Reload() error {
	fresh := make(map[Category]map[string][]byte)
	for _, cat := range []Category{CategoryRegexPattern, CategoryCustomFormat, CategoryProfile} {
		entries, err := c.loadDir(cat)
		if err != nil {
			return err
		}
		fresh[cat] = entries
	}

	c.mu.Lock()
	c.files = fresh
	c.mu.Unlock()

	c.logger.Debug().
		Int("patterns", len(fresh[CategoryRegexPattern])).
		Int("formats", len(fresh[CategoryCustomFormat])).
		Int("profiles", len(fresh[CategoryProfile])).
		Msg("source cache reloaded")
	return nil
}

func (c *Cache) loadDir(cat Category) (map[string][]byte, error) {
	dir := filepath.Join(c.root, cat.Dir())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", cat.Dir(), err)
	}

	entries := make(map[string][]byte)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s directory: %w", cat.Dir(), err)
	}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			c.logger.Warn().Str("file", de.Name()).Err(err).Msg("skipping unreadable source file")
			continue
		}
		entries[StripExt(de.Name())] = data
	}
	return entries, nil
}

// Get returns the raw YAML for a single file by stem.
func (c *Cache) Get(cat Category, name string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.files[cat][StripExt(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, cat.Dir(), name)
	}
	return data, nil
}

// GetAll returns every file in a category keyed by stem. The returned map is
// a snapshot; mutating it does not affect the cache.
func (c *Cache) GetAll(cat Category) map[string][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]byte, len(c.files[cat]))
	for k, v := range c.files[cat] {
		out[k] = v
	}
	return out
}

// Names returns the sorted file stems for a category.
func (c *Cache) Names(cat Category) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.files[cat]))
	for k := range c.files[cat] {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Update writes a file to disk with the category's enforced key order and
// refreshes the cache entry.
func (c *Cache) Update(cat Category, name string, data []byte) error {
	ordered, err := ReorderKeys(cat, data)
	if err != nil {
		return err
	}

	stem := StripExt(name)
	path := filepath.Join(c.root, cat.Dir(), stem+".yml")
	if err := os.WriteFile(path, ordered, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	c.mu.Lock()
	c.files[cat][stem] = ordered
	c.mu.Unlock()
	return nil
}

// Remove deletes a file from disk and drops the cache entry.
func (c *Cache) Remove(cat Category, name string) error {
	stem := StripExt(name)

	c.mu.Lock()
	_, ok := c.files[cat][stem]
	delete(c.files[cat], stem)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, cat.Dir(), name)
	}
	path := filepath.Join(c.root, cat.Dir(), stem+".yml")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Rename moves a file to a new stem, rewriting its name key to match.
// Renaming to the current stem leaves the file untouched.
func (c *Cache) Rename(cat Category, oldName, newName string) error {
	data, err := c.Get(cat, oldName)
	if err != nil {
		return err
	}
	if StripExt(newName) == StripExt(oldName) {
		return nil
	}
	renamed, err := RewriteName(cat, data, StripExt(newName))
	if err != nil {
		return err
	}
	if err := c.Update(cat, newName, renamed); err != nil {
		return err
	}
	return c.Remove(cat, oldName)
}
