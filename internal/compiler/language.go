package compiler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/profilarr/profilarr/internal/sources"
	"gopkg.in/yaml.v3"
)

// LanguageBehavior selects how an advanced language profile treats
// non-matching releases.
type LanguageBehavior string

const (
	// BehaviorSimple sets the profile's native language field directly.
	BehaviorSimple LanguageBehavior = ""
	// BehaviorMust penalizes releases missing the wanted language.
	BehaviorMust LanguageBehavior = "must"
	// BehaviorOnly additionally penalizes releases carrying any other language.
	BehaviorOnly LanguageBehavior = "only"
)

// LanguageSelector is a parsed profile language string: "any", a bare code,
// or "<behavior>_<code>".
type LanguageSelector struct {
	Behavior LanguageBehavior
	Code     string
}

// ParseLanguageSelector splits a language selector. Codes may themselves
// contain underscores ("must_portuguese_brazil"), so only a leading
// must_/only_ marks advanced mode.
func ParseLanguageSelector(s string) LanguageSelector {
	value := strings.TrimSpace(s)
	if value == "" {
		return LanguageSelector{Code: "any"}
	}
	switch {
	case strings.HasPrefix(value, "must_"):
		return LanguageSelector{Behavior: BehaviorMust, Code: strings.TrimPrefix(value, "must_")}
	case strings.HasPrefix(value, "only_"):
		return LanguageSelector{Behavior: BehaviorOnly, Code: strings.TrimPrefix(value, "only_")}
	}
	return LanguageSelector{Code: value}
}

// Advanced reports whether the selector materializes synthesized formats
// instead of setting the profile's native language.
func (s LanguageSelector) Advanced() bool {
	return s.Behavior != BehaviorSimple
}

// FormatNames returns the names of the synthesized formats for an advanced
// selector, in synthesis order.
func (s LanguageSelector) FormatNames() []string {
	if !s.Advanced() {
		return nil
	}
	code := capitalize(s.Code)
	names := []string{"Not " + code}
	if s.Behavior == BehaviorOnly {
		names = append(names, "Not Only "+code, "Not Only "+code+" (Missing)")
	}
	return names
}

// languageTemplates are the template format files rewritten per language.
var languageTemplates = map[LanguageBehavior][]string{
	BehaviorMust: {"Not English"},
	BehaviorOnly: {"Not English", "Not Only English", "Not Only English (Missing)"},
}

// Synthesizer generates the derived language-penalty formats. The downstream
// applications lack first-class "require language X" semantics, so profiles
// in advanced mode score these formats instead. Results are memoized per
// selector for the duration of a batch.
type Synthesizer struct {
	cache *sources.Cache
	mu    sync.Mutex
	memo  map[LanguageSelector][]*sources.FormatDoc
}

// NewSynthesizer creates a synthesizer reading templates from the cache.
func NewSynthesizer(cache *sources.Cache) *Synthesizer {
	return &Synthesizer{
		cache: cache,
		memo:  make(map[LanguageSelector][]*sources.FormatDoc),
	}
}

// Formats returns the synthesized format documents for an advanced selector.
func (s *Synthesizer) Formats(sel LanguageSelector) ([]*sources.FormatDoc, error) {
	if !sel.Advanced() {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if docs, ok := s.memo[sel]; ok {
		return docs, nil
	}

	code := capitalize(sel.Code)
	templates := languageTemplates[sel.Behavior]
	docs := make([]*sources.FormatDoc, 0, len(templates))
	for _, tmpl := range templates {
		data, err := s.cache.Get(sources.CategoryCustomFormat, tmpl)
		if err != nil {
			return nil, fmt.Errorf("language template %q not found: %w", tmpl, err)
		}
		var doc sources.FormatDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("language template %q is malformed: %w", tmpl, err)
		}
		rewriteLanguageTemplate(&doc, tmpl, sel.Code, code)
		docs = append(docs, &doc)
	}

	s.memo[sel] = docs
	return docs, nil
}

// rewriteLanguageTemplate retargets an English template at another language:
// the format name and any "English" in condition names take the capitalized
// code, and every language condition points at the requested code.
func rewriteLanguageTemplate(doc *sources.FormatDoc, templateName, code, capitalized string) {
	doc.Name = strings.ReplaceAll(templateName, "English", capitalized)
	for i := range doc.Conditions {
		cond := &doc.Conditions[i]
		cond.Name = strings.ReplaceAll(cond.Name, "English", capitalized)
		if cond.Type == "language" {
			cond.Language = code
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
