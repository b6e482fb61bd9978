package sources

import (
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// PatternStore is an immutable name→pattern mapping taken from the cache at
// the start of a compile pass. It does not validate the regexes.
type PatternStore struct {
	patterns map[string]string
}

// LoadPatterns decodes every pattern file in the cache. When two files carry
// the same pattern name the last read wins; a warning is logged for the
// collision.
func LoadPatterns(cache *Cache, logger zerolog.Logger) *PatternStore {
	patterns := make(map[string]string)
	for _, stem := range cache.Names(CategoryRegexPattern) {
		data, err := cache.Get(CategoryRegexPattern, stem)
		if err != nil {
			continue
		}
		var doc PatternDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			logger.Warn().Str("file", stem).Err(err).Msg("skipping malformed pattern file")
			continue
		}
		if doc.Name == "" {
			logger.Warn().Str("file", stem).Msg("skipping pattern file without a name")
			continue
		}
		if _, exists := patterns[doc.Name]; exists {
			logger.Warn().Str("name", doc.Name).Str("file", stem).Msg("duplicate pattern name, last read wins")
		}
		patterns[doc.Name] = doc.Pattern
	}
	return &PatternStore{patterns: patterns}
}

// NewPatternStore builds a store from an explicit mapping. Used by tests and
// by the language-format synthesizer.
func NewPatternStore(patterns map[string]string) *PatternStore {
	copied := make(map[string]string, len(patterns))
	for k, v := range patterns {
		copied[k] = v
	}
	return &PatternStore{patterns: copied}
}

// Get resolves a pattern by name.
func (s *PatternStore) Get(name string) (string, bool) {
	p, ok := s.patterns[name]
	return p, ok
}

// Len returns the number of stored patterns.
func (s *PatternStore) Len() int {
	return len(s.patterns)
}
