// Package mappings holds the static per-target enumerations used when
// compiling custom formats and quality profiles into Radarr/Sonarr payloads.
// The numeric identifiers mirror what each application reports over its v3
// API and must not be changed.
package mappings

import "strings"

// Target identifies a downstream application family.
type Target string

const (
	TargetRadarr Target = "radarr"
	TargetSonarr Target = "sonarr"
)

// Valid reports whether the target is a known application family.
func (t Target) Valid() bool {
	return t == TargetRadarr || t == TargetSonarr
}

// normalizeKey lowercases a name and collapses hyphen/space spellings to
// underscores so "Double Upload", "double-upload" and "double_upload" all
// resolve to the same entry.
func normalizeKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// radarrSources maps source condition values to Radarr's source enum.
var radarrSources = map[string]int{
	"cam":       1,
	"telesync":  2,
	"telecine":  3,
	"workprint": 4,
	"dvd":       5,
	"tv":        6,
	"webdl":     7,
	"webrip":    8,
	"bluray":    9,
}

// sonarrSources maps source condition values to Sonarr's source enum.
// "web" is accepted as an alias for webdl.
var sonarrSources = map[string]int{
	"television":     1,
	"television_raw": 2,
	"web":            3,
	"webdl":          3,
	"webrip":         4,
	"dvd":            5,
	"bluray":         6,
	"bluray_raw":     7,
}

// radarrIndexerFlags maps flag names to Radarr's indexer flag bit values.
var radarrIndexerFlags = map[string]int{
	"freeleech":     1,
	"halfleech":     2,
	"double_upload": 4,
	"ptp_golden":    8,
	"ptp_approved":  16,
	"internal":      32,
	"scene":         128,
	"freeleech_75":  256,
	"freeleech_25":  512,
	"nuked":         1024,
}

// sonarrIndexerFlags maps flag names to Sonarr's indexer flag bit values.
// Sonarr packs its flags differently from Radarr for the same names.
var sonarrIndexerFlags = map[string]int{
	"freeleech":     1,
	"halfleech":     2,
	"double_upload": 4,
	"internal":      8,
	"scene":         16,
	"freeleech_75":  32,
	"freeleech_25":  64,
	"nuked":         128,
}

// qualityModifiers maps modifier names to Radarr's quality modifier enum.
// Sonarr has no modifier concept.
var qualityModifiers = map[string]int{
	"none":     0,
	"regional": 1,
	"screener": 2,
	"rawhd":    3,
	"brdisk":   4,
	"remux":    5,
}

// releaseTypes maps release type names to Sonarr's release type enum.
// Radarr has no release type concept.
var releaseTypes = map[string]int{
	"single_episode": 1,
	"multi_episode":  2,
	"season_pack":    3,
}

// Source resolves a source name to the target's numeric source value.
func Source(name string, target Target) (int, bool) {
	key := normalizeKey(name)
	if target == TargetSonarr {
		v, ok := sonarrSources[key]
		return v, ok
	}
	v, ok := radarrSources[key]
	return v, ok
}

// IndexerFlag resolves a flag name to the target's numeric flag value.
func IndexerFlag(name string, target Target) (int, bool) {
	key := normalizeKey(name)
	if target == TargetSonarr {
		v, ok := sonarrIndexerFlags[key]
		return v, ok
	}
	v, ok := radarrIndexerFlags[key]
	return v, ok
}

// QualityModifier resolves a modifier name to Radarr's numeric value.
func QualityModifier(name string) (int, bool) {
	v, ok := qualityModifiers[normalizeKey(name)]
	return v, ok
}

// ReleaseType resolves a release type name to Sonarr's numeric value.
func ReleaseType(name string) (int, bool) {
	v, ok := releaseTypes[normalizeKey(name)]
	return v, ok
}
