package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilarr/profilarr/internal/mappings"
	"github.com/profilarr/profilarr/internal/sources"
)

func testPatterns() *sources.PatternStore {
	return sources.NewPatternStore(map[string]string{
		"golden-popcorn": `(?i)\bgolden\s?popcorn\b`,
		"x265":           `(?i)\bx265\b`,
	})
}

func fieldValue(t *testing.T, spec Specification, name string) any {
	t.Helper()
	for _, f := range spec.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("spec %q has no field %q", spec.Name, name)
	return nil
}

func TestCompileFormatPatternConditions(t *testing.T) {
	doc := &sources.FormatDoc{
		Name: "Golden Popcorn",
		Conditions: []sources.Condition{
			{Name: "Release Title", Type: "release_title", Pattern: "golden-popcorn", Required: true},
			{Name: "Group", Type: "release_group", Pattern: "x265", Negate: true},
			{Name: "Edition", Type: "edition", Pattern: "golden-popcorn"},
		},
	}

	out, warnings := CompileFormat(doc, mappings.TargetRadarr, FormatOptions{Patterns: testPatterns()})
	require.Empty(t, warnings)
	require.Len(t, out.Specifications, 3)

	assert.Equal(t, "Golden Popcorn", out.Name)
	assert.Equal(t, "ReleaseTitleSpecification", out.Specifications[0].Implementation)
	assert.True(t, out.Specifications[0].Required)
	assert.Equal(t, `(?i)\bgolden\s?popcorn\b`, fieldValue(t, out.Specifications[0], "value"))

	assert.Equal(t, "ReleaseGroupSpecification", out.Specifications[1].Implementation)
	assert.True(t, out.Specifications[1].Negate)
	assert.Equal(t, `(?i)\bx265\b`, fieldValue(t, out.Specifications[1], "value"))

	assert.Equal(t, "EditionSpecification", out.Specifications[2].Implementation)
}

func TestCompileFormatUnknownPatternDropsCondition(t *testing.T) {
	doc := &sources.FormatDoc{
		Name: "Broken",
		Conditions: []sources.Condition{
			{Name: "Good", Type: "release_title", Pattern: "x265"},
			{Name: "Bad", Type: "release_title", Pattern: "nope"},
		},
	}

	out, warnings := CompileFormat(doc, mappings.TargetRadarr, FormatOptions{Patterns: testPatterns()})
	require.Len(t, out.Specifications, 1)
	assert.Equal(t, "Good", out.Specifications[0].Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Broken: ")
	assert.Contains(t, warnings[0], `unknown pattern "nope"`)
}

func TestCompileFormatValueConditions(t *testing.T) {
	except := true
	min, max := 20, 60
	doc := &sources.FormatDoc{
		Name: "Values",
		Conditions: []sources.Condition{
			{Name: "Bluray", Type: "source", Source: "bluray"},
			{Name: "2160p", Type: "resolution", Resolution: "2160p"},
			{Name: "Interlaced", Type: "resolution", Resolution: "1080i"},
			{Name: "Internal", Type: "indexer_flag", Flag: "internal"},
			{Name: "Size", Type: "size", Min: &min, Max: &max},
			{Name: "Year", Type: "year", Min: &min},
			{Name: "French", Type: "language", Language: "french", ExceptLanguage: &except},
		},
	}

	out, warnings := CompileFormat(doc, mappings.TargetRadarr, FormatOptions{Patterns: testPatterns()})
	require.Empty(t, warnings)
	require.Len(t, out.Specifications, 7)

	assert.Equal(t, "SourceSpecification", out.Specifications[0].Implementation)
	assert.Equal(t, 9, fieldValue(t, out.Specifications[0], "value"))

	assert.Equal(t, "ResolutionSpecification", out.Specifications[1].Implementation)
	assert.Equal(t, 2160, fieldValue(t, out.Specifications[1], "value"))
	assert.Equal(t, 1080, fieldValue(t, out.Specifications[2], "value"))

	assert.Equal(t, "IndexerFlagSpecification", out.Specifications[3].Implementation)
	assert.Equal(t, 32, fieldValue(t, out.Specifications[3], "value"))

	assert.Equal(t, "SizeSpecification", out.Specifications[4].Implementation)
	assert.Equal(t, 20, fieldValue(t, out.Specifications[4], "min"))
	assert.Equal(t, 60, fieldValue(t, out.Specifications[4], "max"))

	assert.Equal(t, "YearSpecification", out.Specifications[5].Implementation)
	assert.Equal(t, 0, fieldValue(t, out.Specifications[5], "max"))

	assert.Equal(t, "LanguageSpecification", out.Specifications[6].Implementation)
	assert.Equal(t, 2, fieldValue(t, out.Specifications[6], "value"))
	assert.Equal(t, true, fieldValue(t, out.Specifications[6], "exceptLanguage"))
}

func TestCompileFormatTargetSpecificConditions(t *testing.T) {
	doc := &sources.FormatDoc{
		Name: "Split",
		Conditions: []sources.Condition{
			{Name: "Remux", Type: "quality_modifier", QualityModifier: "remux"},
			{Name: "Season Pack", Type: "release_type", ReleaseType: "season_pack"},
		},
	}

	radarr, warnings := CompileFormat(doc, mappings.TargetRadarr, FormatOptions{})
	require.Empty(t, warnings)
	require.Len(t, radarr.Specifications, 1)
	assert.Equal(t, "QualityModifierSpecification", radarr.Specifications[0].Implementation)
	assert.Equal(t, 5, fieldValue(t, radarr.Specifications[0], "value"))

	sonarr, warnings := CompileFormat(doc, mappings.TargetSonarr, FormatOptions{})
	require.Empty(t, warnings, "cross-target drops are silent")
	require.Len(t, sonarr.Specifications, 1)
	assert.Equal(t, "ReleaseTypeSpecification", sonarr.Specifications[0].Implementation)
	assert.Equal(t, 3, fieldValue(t, sonarr.Specifications[0], "value"))
}

func TestCompileFormatUnknownConditionType(t *testing.T) {
	doc := &sources.FormatDoc{
		Name: "Odd",
		Conditions: []sources.Condition{
			{Name: "Mystery", Type: "bitrate"},
		},
	}

	out, warnings := CompileFormat(doc, mappings.TargetRadarr, FormatOptions{})
	assert.Empty(t, out.Specifications)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `unknown type "bitrate"`)
}

func TestCompileFormatIncludeInRename(t *testing.T) {
	doc := &sources.FormatDoc{Name: "x265"}

	out, _ := CompileFormat(doc, mappings.TargetRadarr, FormatOptions{
		IncludeInRename: func(name string) bool { return name == "x265" },
	})
	assert.True(t, out.IncludeCustomFormatWhenRenaming)

	out, _ = CompileFormat(doc, mappings.TargetRadarr, FormatOptions{})
	assert.False(t, out.IncludeCustomFormatWhenRenaming)
}
