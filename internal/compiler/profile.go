package compiler

import (
	"fmt"

	"github.com/profilarr/profilarr/internal/mappings"
	"github.com/profilarr/profilarr/internal/sources"
)

// DefaultLanguageFormatScore is the score attached to synthesized language
// formats when no settings override is present.
const DefaultLanguageFormatScore = -9999

// ProfileOptions carries the tunables a profile compile consults.
type ProfileOptions struct {
	// LanguageFormatScore overrides the score given to synthesized language
	// formats. Nil means DefaultLanguageFormatScore.
	LanguageFormatScore *int
}

func (o ProfileOptions) languageScore() int {
	if o.LanguageFormatScore != nil {
		return *o.LanguageFormatScore
	}
	return DefaultLanguageFormatScore
}

// CompileProfile converts one quality profile document into the target
// payload. Unknown quality names are dropped with a warning; the profile
// itself always compiles.
func CompileProfile(doc *sources.ProfileDoc, target mappings.Target, opts ProfileOptions) (*CompiledProfile, []string) {
	var warnings []string

	out := &CompiledProfile{
		Name:                  doc.Name,
		UpgradeAllowed:        doc.UpgradesAllowed == nil || *doc.UpgradesAllowed,
		MinFormatScore:        doc.MinCustomFormatScore,
		CutoffFormatScore:     doc.UpgradeUntilScore,
		MinUpgradeFormatScore: max(1, doc.MinScoreIncrement),
	}

	sel := ParseLanguageSelector(doc.Language)
	out.Language = profileLanguage(sel, target, doc.Name, &warnings)
	out.Items = compileQualityItems(doc, target, &warnings)
	out.Cutoff = compileCutoff(doc, target, &warnings)
	out.FormatItems = compileFormatItems(doc, target, sel, opts)

	return out, warnings
}

// profileLanguage resolves the profile's native language field. Advanced
// selectors force it to Any; the filtering happens through synthesized
// formats instead.
func profileLanguage(sel LanguageSelector, target mappings.Target, profile string, warnings *[]string) *mappings.Language {
	if sel.Advanced() {
		lang := mappings.LanguageAny
		if target == mappings.TargetSonarr {
			// Sonarr's profile language is always the Original sentinel.
			lang, _ = mappings.LanguageByName("any", target, true)
		}
		return &lang
	}

	lang, ok := mappings.LanguageByName(sel.Code, target, true)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("%s: unknown language %q, using any", profile, sel.Code))
		lang = mappings.LanguageAny
	}
	return &lang
}

// compileQualityItems builds the full quality list: the qualities the profile
// names (in source order, allowed), every remaining target quality appended
// disallowed, then the whole list reversed so higher-ranked entries come
// first. The targets require every known quality to be present.
func compileQualityItems(doc *sources.ProfileDoc, target mappings.Target, warnings *[]string) []ProfileItem {
	used := make(map[int]bool)
	items := make([]ProfileItem, 0, len(doc.Qualities))

	for _, entry := range doc.Qualities {
		if entry.IsGroup() {
			group, ok := compileQualityGroup(entry, target, doc.Name, used, warnings)
			if !ok {
				continue
			}
			items = append(items, group)
			continue
		}

		q, ok := mappings.QualityByName(entry.Name, target)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("%s: unknown quality %q", doc.Name, entry.Name))
			continue
		}
		if used[q.ID] {
			*warnings = append(*warnings, fmt.Sprintf("%s: quality %q listed twice", doc.Name, entry.Name))
			continue
		}
		used[q.ID] = true
		items = append(items, ProfileItem{Quality: &q, Items: []ProfileItem{}, Allowed: true})
	}

	for _, q := range mappings.QualitiesFor(target) {
		if used[q.ID] {
			continue
		}
		quality := q
		items = append(items, ProfileItem{Quality: &quality, Items: []ProfileItem{}, Allowed: false})
	}

	reverseItems(items)
	return items
}

func compileQualityGroup(entry sources.QualityEntry, target mappings.Target, profile string, used map[int]bool, warnings *[]string) (ProfileItem, bool) {
	members := make([]ProfileItem, 0, len(entry.Qualities))
	for _, name := range entry.Qualities {
		q, ok := mappings.QualityByName(name, target)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("%s: unknown quality %q in group %q", profile, name, entry.Name))
			continue
		}
		if used[q.ID] {
			continue
		}
		used[q.ID] = true
		members = append(members, ProfileItem{Quality: &q, Items: []ProfileItem{}, Allowed: true})
	}
	if len(members) == 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s: group %q has no resolvable qualities", profile, entry.Name))
		return ProfileItem{}, false
	}
	return ProfileItem{
		ID:      groupID(entry.ID),
		Name:    entry.Name,
		Items:   members,
		Allowed: true,
	}, true
}

// compileCutoff resolves the upgrade_until reference. Group references use
// the same 1000+|id| encoding as the items.
func compileCutoff(doc *sources.ProfileDoc, target mappings.Target, warnings *[]string) int {
	if doc.UpgradeUntil == nil {
		return 0
	}
	if doc.UpgradeUntil.ID < 0 {
		return groupID(doc.UpgradeUntil.ID)
	}
	q, ok := mappings.QualityByName(doc.UpgradeUntil.Name, target)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("%s: unknown cutoff quality %q", doc.Name, doc.UpgradeUntil.Name))
		return 0
	}
	return q.ID
}

// compileFormatItems concatenates, in order: synthesized language formats,
// the profile's own custom_formats, then the target-specific overlay. The
// server-assigned format ids are filled in by the import engine after the
// format upload phase. Duplicate names are appended as-is; the server's
// response dictates how they land.
func compileFormatItems(doc *sources.ProfileDoc, target mappings.Target, sel LanguageSelector, opts ProfileOptions) []FormatItem {
	items := make([]FormatItem, 0, len(doc.CustomFormats))

	for _, name := range sel.FormatNames() {
		items = append(items, FormatItem{Name: name, Score: opts.languageScore()})
	}
	for _, cf := range doc.CustomFormats {
		items = append(items, FormatItem{Name: cf.Name, Score: cf.Score})
	}

	overlay := doc.CustomFormatsRadarr
	if target == mappings.TargetSonarr {
		overlay = doc.CustomFormatsSonarr
	}
	for _, cf := range overlay {
		items = append(items, FormatItem{Name: cf.Name, Score: cf.Score})
	}
	return items
}

// ReferencedFormatNames returns the union of format names a profile scores
// for the given target, in first-seen order. The import engine compiles and
// uploads these before the profile itself.
func ReferencedFormatNames(doc *sources.ProfileDoc, target mappings.Target) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(list []sources.FormatScore) {
		for _, cf := range list {
			if seen[cf.Name] {
				continue
			}
			seen[cf.Name] = true
			names = append(names, cf.Name)
		}
	}
	add(doc.CustomFormats)
	if target == mappings.TargetSonarr {
		add(doc.CustomFormatsSonarr)
	} else {
		add(doc.CustomFormatsRadarr)
	}
	return names
}

func reverseItems(items []ProfileItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
