package mappings

import "strings"

// Quality is a single named quality as a target application defines it.
type Quality struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	Resolution int    `json:"resolution"`
}

// radarrQualities lists every quality Radarr knows, worst first. Profile
// items are built over this order before the final reversal.
var radarrQualities = []Quality{
	{ID: 0, Name: "Unknown", Source: "unknown", Resolution: 0},
	{ID: 24, Name: "WORKPRINT", Source: "workprint", Resolution: 0},
	{ID: 25, Name: "CAM", Source: "cam", Resolution: 0},
	{ID: 26, Name: "TELESYNC", Source: "telesync", Resolution: 0},
	{ID: 27, Name: "TELECINE", Source: "telecine", Resolution: 0},
	{ID: 29, Name: "REGIONAL", Source: "dvd", Resolution: 480},
	{ID: 28, Name: "DVDSCR", Source: "dvd", Resolution: 480},
	{ID: 1, Name: "SDTV", Source: "tv", Resolution: 480},
	{ID: 2, Name: "DVD", Source: "dvd", Resolution: 480},
	{ID: 23, Name: "DVD-R", Source: "dvd", Resolution: 480},
	{ID: 8, Name: "WEBDL-480p", Source: "webdl", Resolution: 480},
	{ID: 12, Name: "WEBRip-480p", Source: "webrip", Resolution: 480},
	{ID: 20, Name: "Bluray-480p", Source: "bluray", Resolution: 480},
	{ID: 21, Name: "Bluray-576p", Source: "bluray", Resolution: 576},
	{ID: 4, Name: "HDTV-720p", Source: "tv", Resolution: 720},
	{ID: 5, Name: "WEBDL-720p", Source: "webdl", Resolution: 720},
	{ID: 14, Name: "WEBRip-720p", Source: "webrip", Resolution: 720},
	{ID: 6, Name: "Bluray-720p", Source: "bluray", Resolution: 720},
	{ID: 9, Name: "HDTV-1080p", Source: "tv", Resolution: 1080},
	{ID: 3, Name: "WEBDL-1080p", Source: "webdl", Resolution: 1080},
	{ID: 15, Name: "WEBRip-1080p", Source: "webrip", Resolution: 1080},
	{ID: 7, Name: "Bluray-1080p", Source: "bluray", Resolution: 1080},
	{ID: 30, Name: "Remux-1080p", Source: "bluray", Resolution: 1080},
	{ID: 16, Name: "HDTV-2160p", Source: "tv", Resolution: 2160},
	{ID: 18, Name: "WEBDL-2160p", Source: "webdl", Resolution: 2160},
	{ID: 17, Name: "WEBRip-2160p", Source: "webrip", Resolution: 2160},
	{ID: 19, Name: "Bluray-2160p", Source: "bluray", Resolution: 2160},
	{ID: 31, Name: "Remux-2160p", Source: "bluray", Resolution: 2160},
	{ID: 22, Name: "BR-DISK", Source: "bluray", Resolution: 1080},
	{ID: 10, Name: "Raw-HD", Source: "tv", Resolution: 1080},
}

// sonarrQualities lists every quality Sonarr knows, worst first. Note that
// Sonarr reuses ids 13/20/21/22 with different meanings than Radarr.
var sonarrQualities = []Quality{
	{ID: 0, Name: "Unknown", Source: "unknown", Resolution: 0},
	{ID: 1, Name: "SDTV", Source: "television", Resolution: 480},
	{ID: 2, Name: "DVD", Source: "dvd", Resolution: 480},
	{ID: 8, Name: "WEBDL-480p", Source: "web", Resolution: 480},
	{ID: 12, Name: "WEBRip-480p", Source: "webrip", Resolution: 480},
	{ID: 13, Name: "Bluray-480p", Source: "bluray", Resolution: 480},
	{ID: 22, Name: "Bluray-576p", Source: "bluray", Resolution: 576},
	{ID: 4, Name: "HDTV-720p", Source: "television", Resolution: 720},
	{ID: 5, Name: "WEBDL-720p", Source: "web", Resolution: 720},
	{ID: 14, Name: "WEBRip-720p", Source: "webrip", Resolution: 720},
	{ID: 6, Name: "Bluray-720p", Source: "bluray", Resolution: 720},
	{ID: 9, Name: "HDTV-1080p", Source: "television", Resolution: 1080},
	{ID: 3, Name: "WEBDL-1080p", Source: "web", Resolution: 1080},
	{ID: 15, Name: "WEBRip-1080p", Source: "webrip", Resolution: 1080},
	{ID: 7, Name: "Bluray-1080p", Source: "bluray", Resolution: 1080},
	{ID: 20, Name: "Bluray-1080p Remux", Source: "bluray", Resolution: 1080},
	{ID: 16, Name: "HDTV-2160p", Source: "television", Resolution: 2160},
	{ID: 18, Name: "WEBDL-2160p", Source: "web", Resolution: 2160},
	{ID: 17, Name: "WEBRip-2160p", Source: "webrip", Resolution: 2160},
	{ID: 19, Name: "Bluray-2160p", Source: "bluray", Resolution: 2160},
	{ID: 21, Name: "Bluray-2160p Remux", Source: "bluray", Resolution: 2160},
	{ID: 10, Name: "Raw-HD", Source: "television", Resolution: 1080},
}

// remuxRenames translates remux quality names between the two applications.
// Sonarr spells them "Bluray-XXXXp Remux", Radarr spells them "Remux-XXXXp".
var remuxRenames = map[Target]map[string]string{
	TargetSonarr: {
		"remux-1080p": "Bluray-1080p Remux",
		"remux-2160p": "Bluray-2160p Remux",
	},
	TargetRadarr: {
		"bluray-1080p remux": "Remux-1080p",
		"bluray-2160p remux": "Remux-2160p",
	},
}

// qualityAliases maps common alternate spellings to canonical names.
var qualityAliases = map[string]string{
	"br-disk":   "BR-DISK",
	"brdisk":    "BR-DISK",
	"telecine":  "TELECINE",
	"telesync":  "TELESYNC",
	"workprint": "WORKPRINT",
	"cam":       "CAM",
	"dvdscr":    "DVDSCR",
	"dvd-scr":   "DVDSCR",
	"raw-hd":    "Raw-HD",
	"rawhd":     "Raw-HD",
}

var (
	radarrQualityByName map[string]Quality
	sonarrQualityByName map[string]Quality
)

func init() {
	radarrQualityByName = make(map[string]Quality, len(radarrQualities))
	for _, q := range radarrQualities {
		radarrQualityByName[strings.ToLower(q.Name)] = q
	}
	sonarrQualityByName = make(map[string]Quality, len(sonarrQualities))
	for _, q := range sonarrQualities {
		sonarrQualityByName[strings.ToLower(q.Name)] = q
	}
}

// QualitiesFor returns every quality the target knows, worst first. The
// returned slice is a copy and safe to reorder.
func QualitiesFor(target Target) []Quality {
	src := radarrQualities
	if target == TargetSonarr {
		src = sonarrQualities
	}
	out := make([]Quality, len(src))
	copy(out, src)
	return out
}

// QualityName canonicalizes a quality name for the target: case-insensitive,
// remux renames applied, alias spellings resolved. Unknown names are returned
// unchanged so the caller can report them.
func QualityName(name string, target Target) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if renamed, ok := remuxRenames[target][key]; ok {
		return renamed
	}
	if alias, ok := qualityAliases[key]; ok {
		return alias
	}
	if q, ok := qualityLookup(key, target); ok {
		return q.Name
	}
	return name
}

// QualityByName resolves a (possibly aliased) quality name to the target's
// quality record.
func QualityByName(name string, target Target) (Quality, bool) {
	canonical := QualityName(name, target)
	return qualityLookup(strings.ToLower(canonical), target)
}

func qualityLookup(lower string, target Target) (Quality, bool) {
	if target == TargetSonarr {
		q, ok := sonarrQualityByName[lower]
		return q, ok
	}
	q, ok := radarrQualityByName[lower]
	return q, ok
}
