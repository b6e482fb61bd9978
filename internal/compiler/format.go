package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/profilarr/profilarr/internal/mappings"
	"github.com/profilarr/profilarr/internal/sources"
)

// FormatOptions carries the collaborators a format compile needs.
type FormatOptions struct {
	// Patterns resolves pattern name references in text conditions.
	Patterns *sources.PatternStore
	// IncludeInRename reports whether a format name is marked for inclusion
	// in renaming. Nil means never.
	IncludeInRename func(name string) bool
}

// CompileFormat converts one custom format document into the target payload.
// Conditions that are not meaningful for the target are dropped silently;
// conditions with unresolvable references are dropped with a warning. The
// format itself always compiles.
func CompileFormat(doc *sources.FormatDoc, target mappings.Target, opts FormatOptions) (*CompiledFormat, []string) {
	out := &CompiledFormat{
		Name:           doc.Name,
		Specifications: make([]Specification, 0, len(doc.Conditions)),
	}
	if opts.IncludeInRename != nil && opts.IncludeInRename(doc.Name) {
		out.IncludeCustomFormatWhenRenaming = true
	}

	var warnings []string
	for i := range doc.Conditions {
		cond := &doc.Conditions[i]
		spec, warn, ok := compileCondition(cond, target, opts.Patterns)
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", doc.Name, warn))
		}
		if !ok {
			continue
		}
		out.Specifications = append(out.Specifications, spec)
	}
	return out, warnings
}

// compileCondition narrows a raw condition to its tagged specification. The
// second return is a warning for dropped conditions; unsupported-for-target
// drops are silent.
func compileCondition(cond *sources.Condition, target mappings.Target, patterns *sources.PatternStore) (Specification, string, bool) {
	spec := Specification{
		Name:     cond.Name,
		Negate:   cond.Negate,
		Required: cond.Required,
	}

	switch cond.Type {
	case "release_title", "release_group", "edition":
		pattern, ok := patterns.Get(cond.Pattern)
		if !ok {
			return spec, fmt.Sprintf("condition %q references unknown pattern %q", cond.Name, cond.Pattern), false
		}
		spec.Implementation = map[string]string{
			"release_title": "ReleaseTitleSpecification",
			"release_group": "ReleaseGroupSpecification",
			"edition":       "EditionSpecification",
		}[cond.Type]
		spec.Fields = []SpecField{{Name: "value", Value: pattern}}

	case "source":
		value, ok := mappings.Source(cond.Source, target)
		if !ok {
			return spec, fmt.Sprintf("condition %q has unknown source %q", cond.Name, cond.Source), false
		}
		spec.Implementation = "SourceSpecification"
		spec.Fields = []SpecField{{Name: "value", Value: value}}

	case "resolution":
		value, err := parseResolution(cond.Resolution)
		if err != nil {
			return spec, fmt.Sprintf("condition %q: %v", cond.Name, err), false
		}
		spec.Implementation = "ResolutionSpecification"
		spec.Fields = []SpecField{{Name: "value", Value: value}}

	case "indexer_flag":
		value, ok := mappings.IndexerFlag(cond.Flag, target)
		if !ok {
			return spec, fmt.Sprintf("condition %q has unknown indexer flag %q", cond.Name, cond.Flag), false
		}
		spec.Implementation = "IndexerFlagSpecification"
		spec.Fields = []SpecField{{Name: "value", Value: value}}

	case "quality_modifier":
		if target != mappings.TargetRadarr {
			return spec, "", false
		}
		value, ok := mappings.QualityModifier(cond.QualityModifier)
		if !ok {
			return spec, fmt.Sprintf("condition %q has unknown quality modifier %q", cond.Name, cond.QualityModifier), false
		}
		spec.Implementation = "QualityModifierSpecification"
		spec.Fields = []SpecField{{Name: "value", Value: value}}

	case "release_type":
		if target != mappings.TargetSonarr {
			return spec, "", false
		}
		value, ok := mappings.ReleaseType(cond.ReleaseType)
		if !ok {
			return spec, fmt.Sprintf("condition %q has unknown release type %q", cond.Name, cond.ReleaseType), false
		}
		spec.Implementation = "ReleaseTypeSpecification"
		spec.Fields = []SpecField{{Name: "value", Value: value}}

	case "size":
		spec.Implementation = "SizeSpecification"
		spec.Fields = []SpecField{
			{Name: "min", Value: intOrZero(cond.Min)},
			{Name: "max", Value: intOrZero(cond.Max)},
		}

	case "year":
		spec.Implementation = "YearSpecification"
		spec.Fields = []SpecField{
			{Name: "min", Value: intOrZero(cond.Min)},
			{Name: "max", Value: intOrZero(cond.Max)},
		}

	case "language":
		lang, ok := mappings.LanguageByName(cond.Language, target, false)
		if !ok {
			return spec, fmt.Sprintf("condition %q has unknown language %q", cond.Name, cond.Language), false
		}
		spec.Implementation = "LanguageSpecification"
		spec.Fields = []SpecField{{Name: "value", Value: lang.ID}}
		if cond.ExceptLanguage != nil {
			spec.Fields = append(spec.Fields, SpecField{Name: "exceptLanguage", Value: *cond.ExceptLanguage})
		}

	default:
		return spec, fmt.Sprintf("condition %q has unknown type %q", cond.Name, cond.Type), false
	}

	return spec, "", true
}

// parseResolution accepts "2160p", "2160" or "1080i" style spellings.
func parseResolution(s string) (int, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(strings.ToLower(s)), "pi")
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("unknown resolution %q", s)
	}
	return value, nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
