package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilarr/profilarr/internal/mappings"
	"github.com/profilarr/profilarr/internal/sources"
)

// collectQualityIDs flattens items and group members into the set of quality
// ids the profile carries.
func collectQualityIDs(items []ProfileItem) map[int]bool {
	ids := make(map[int]bool)
	for _, item := range items {
		if item.Quality != nil {
			ids[item.Quality.ID] = true
		}
		for _, member := range item.Items {
			if member.Quality != nil {
				ids[member.Quality.ID] = true
			}
		}
	}
	return ids
}

func TestCompileProfileQualityItems(t *testing.T) {
	doc := &sources.ProfileDoc{
		Name: "1080p",
		Qualities: []sources.QualityEntry{
			{Name: "Bluray-1080p"},
			{ID: -2, Name: "WEB 1080p", Qualities: []string{"WEBDL-1080p", "WEBRip-1080p"}},
		},
		UpgradeUntil: &sources.UpgradeUntil{ID: -2},
	}

	out, warnings := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	require.Empty(t, warnings)

	all := mappings.QualitiesFor(mappings.TargetRadarr)
	// One item per explicit entry plus one disallowed item per remaining
	// target quality.
	require.Len(t, out.Items, 2+len(all)-3)

	ids := collectQualityIDs(out.Items)
	for _, q := range all {
		assert.True(t, ids[q.ID], "quality %s missing from profile", q.Name)
	}

	// The list is reversed: explicit entries land at the end, highest last.
	last := out.Items[len(out.Items)-1]
	require.NotNil(t, last.Quality)
	assert.Equal(t, "Bluray-1080p", last.Quality.Name)
	assert.True(t, last.Allowed)

	group := out.Items[len(out.Items)-2]
	assert.Equal(t, 1002, group.ID)
	assert.Equal(t, "WEB 1080p", group.Name)
	assert.True(t, group.Allowed)
	require.Len(t, group.Items, 2)
	assert.Equal(t, "WEBDL-1080p", group.Items[0].Quality.Name)

	// Everything before the explicit entries is the disallowed remainder.
	for _, item := range out.Items[:len(out.Items)-2] {
		assert.False(t, item.Allowed)
	}

	assert.Equal(t, 1002, out.Cutoff, "group cutoff uses the 1000+|id| encoding")
}

func TestCompileProfileCutoffByName(t *testing.T) {
	doc := &sources.ProfileDoc{
		Name:         "Cutoff",
		Qualities:    []sources.QualityEntry{{Name: "Bluray-1080p"}},
		UpgradeUntil: &sources.UpgradeUntil{Name: "Bluray-1080p"},
	}
	out, warnings := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	require.Empty(t, warnings)
	assert.Equal(t, 7, out.Cutoff)

	doc.UpgradeUntil = &sources.UpgradeUntil{Name: "Betamax"}
	out, warnings = CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	assert.Equal(t, 0, out.Cutoff)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `unknown cutoff quality "Betamax"`)

	doc.UpgradeUntil = nil
	out, _ = CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	assert.Equal(t, 0, out.Cutoff)
}

func TestCompileProfileScores(t *testing.T) {
	upgrades := false
	doc := &sources.ProfileDoc{
		Name:                 "Scores",
		UpgradesAllowed:      &upgrades,
		MinCustomFormatScore: -100,
		UpgradeUntilScore:    5000,
		MinScoreIncrement:    25,
	}

	out, _ := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	assert.False(t, out.UpgradeAllowed)
	assert.Equal(t, -100, out.MinFormatScore)
	assert.Equal(t, 5000, out.CutoffFormatScore)
	assert.Equal(t, 25, out.MinUpgradeFormatScore)

	// Defaults: upgrades on, increment floored at 1.
	out, _ = CompileProfile(&sources.ProfileDoc{Name: "Defaults"}, mappings.TargetRadarr, ProfileOptions{})
	assert.True(t, out.UpgradeAllowed)
	assert.Equal(t, 1, out.MinUpgradeFormatScore)
}

func TestCompileProfileLanguage(t *testing.T) {
	tests := []struct {
		name     string
		language string
		target   mappings.Target
		wantID   int
		wantName string
	}{
		{"radarr simple", "german", mappings.TargetRadarr, 4, "German"},
		{"radarr default", "", mappings.TargetRadarr, -1, "Any"},
		{"radarr advanced", "must_german", mappings.TargetRadarr, -1, "Any"},
		{"sonarr simple", "german", mappings.TargetSonarr, -2, "Original"},
		{"sonarr advanced", "only_german", mappings.TargetSonarr, -2, "Original"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &sources.ProfileDoc{Name: "Lang", Language: tt.language}
			out, warnings := CompileProfile(doc, tt.target, ProfileOptions{})
			require.Empty(t, warnings)
			require.NotNil(t, out.Language)
			assert.Equal(t, tt.wantID, out.Language.ID)
			assert.Equal(t, tt.wantName, out.Language.Name)
		})
	}
}

func TestCompileProfileUnknownLanguageFallsBack(t *testing.T) {
	doc := &sources.ProfileDoc{Name: "Lang", Language: "klingon"}
	out, warnings := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	require.NotNil(t, out.Language)
	assert.Equal(t, -1, out.Language.ID)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `unknown language "klingon"`)
}

func TestCompileProfileFormatItems(t *testing.T) {
	doc := &sources.ProfileDoc{
		Name:     "Formats",
		Language: "only_german",
		CustomFormats: []sources.FormatScore{
			{Name: "x265", Score: 100},
			{Name: "Upscaled", Score: -10000},
		},
		CustomFormatsRadarr: []sources.FormatScore{{Name: "3D", Score: -5000}},
		CustomFormatsSonarr: []sources.FormatScore{{Name: "Multi-Episode", Score: 50}},
	}

	out, _ := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	require.Len(t, out.FormatItems, 6)
	assert.Equal(t, FormatItem{Name: "Not German", Score: -9999}, out.FormatItems[0])
	assert.Equal(t, FormatItem{Name: "Not Only German", Score: -9999}, out.FormatItems[1])
	assert.Equal(t, FormatItem{Name: "Not Only German (Missing)", Score: -9999}, out.FormatItems[2])
	assert.Equal(t, FormatItem{Name: "x265", Score: 100}, out.FormatItems[3])
	assert.Equal(t, FormatItem{Name: "Upscaled", Score: -10000}, out.FormatItems[4])
	assert.Equal(t, FormatItem{Name: "3D", Score: -5000}, out.FormatItems[5])

	out, _ = CompileProfile(doc, mappings.TargetSonarr, ProfileOptions{})
	require.Len(t, out.FormatItems, 6)
	assert.Equal(t, FormatItem{Name: "Multi-Episode", Score: 50}, out.FormatItems[5])
}

func TestCompileProfileLanguageScoreOverride(t *testing.T) {
	score := -20000
	doc := &sources.ProfileDoc{Name: "Override", Language: "must_french"}

	out, _ := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{LanguageFormatScore: &score})
	require.Len(t, out.FormatItems, 1)
	assert.Equal(t, FormatItem{Name: "Not French", Score: -20000}, out.FormatItems[0])
}

func TestCompileProfileQualityWarnings(t *testing.T) {
	doc := &sources.ProfileDoc{
		Name: "Warnings",
		Qualities: []sources.QualityEntry{
			{Name: "Bluray-1080p"},
			{Name: "Bluray-1080p"},
			{Name: "VHS"},
			{ID: -1, Name: "Empty", Qualities: []string{"Betamax"}},
		},
	}

	out, warnings := CompileProfile(doc, mappings.TargetRadarr, ProfileOptions{})
	require.Len(t, warnings, 4)
	assert.Contains(t, warnings[0], `quality "Bluray-1080p" listed twice`)
	assert.Contains(t, warnings[1], `unknown quality "VHS"`)
	assert.Contains(t, warnings[2], `unknown quality "Betamax" in group "Empty"`)
	assert.Contains(t, warnings[3], `group "Empty" has no resolvable qualities`)

	// One explicit item survives; the rest of the target set is appended.
	all := mappings.QualitiesFor(mappings.TargetRadarr)
	assert.Len(t, out.Items, len(all))
}

func TestCompileProfileRemuxSpelling(t *testing.T) {
	doc := &sources.ProfileDoc{
		Name:      "Remux",
		Qualities: []sources.QualityEntry{{Name: "Remux-1080p"}},
	}

	out, warnings := CompileProfile(doc, mappings.TargetSonarr, ProfileOptions{})
	require.Empty(t, warnings)
	last := out.Items[len(out.Items)-1]
	require.NotNil(t, last.Quality)
	assert.Equal(t, "Bluray-1080p Remux", last.Quality.Name)
	assert.Equal(t, 20, last.Quality.ID)
}

func TestReferencedFormatNames(t *testing.T) {
	doc := &sources.ProfileDoc{
		Name: "Refs",
		CustomFormats: []sources.FormatScore{
			{Name: "x265", Score: 100},
			{Name: "x265", Score: 200},
			{Name: "HDR", Score: 50},
		},
		CustomFormatsRadarr: []sources.FormatScore{{Name: "3D", Score: -5000}, {Name: "HDR", Score: 60}},
		CustomFormatsSonarr: []sources.FormatScore{{Name: "Multi-Episode", Score: 50}},
	}

	assert.Equal(t, []string{"x265", "HDR", "3D"}, ReferencedFormatNames(doc, mappings.TargetRadarr))
	assert.Equal(t, []string{"x265", "HDR", "Multi-Episode"}, ReferencedFormatNames(doc, mappings.TargetSonarr))
}
