package sources

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category identifies one of the three source directories.
type Category string

const (
	CategoryRegexPattern Category = "regex_pattern"
	CategoryCustomFormat Category = "custom_format"
	CategoryProfile      Category = "profile"
)

// Dir returns the on-disk directory name for the category.
func (c Category) Dir() string {
	switch c {
	case CategoryRegexPattern:
		return "regex_patterns"
	case CategoryCustomFormat:
		return "custom_formats"
	case CategoryProfile:
		return "profiles"
	}
	return string(c)
}

// Valid reports whether the category is one of the three known kinds.
func (c Category) Valid() bool {
	return c == CategoryRegexPattern || c == CategoryCustomFormat || c == CategoryProfile
}

// PatternDoc is a single regex pattern file.
type PatternDoc struct {
	Name    string        `yaml:"name"`
	Pattern string        `yaml:"pattern"`
	Tests   []PatternTest `yaml:"tests,omitempty"`
}

// PatternTest is an expectation recorded alongside a pattern. The compiler
// ignores tests; they travel with the file.
type PatternTest struct {
	ID       int    `yaml:"id,omitempty"`
	Input    string `yaml:"input"`
	Expected bool   `yaml:"expected"`
}

// FormatDoc is a single custom format file.
type FormatDoc struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Tags        []string    `yaml:"tags,omitempty"`
	Conditions  []Condition `yaml:"conditions"`
	Tests       []yaml.Node `yaml:"tests,omitempty"`
}

// Condition is one entry of a format's condition list. Type decides which of
// the remaining fields are meaningful; the compiler narrows it to a tagged
// specification.
type Condition struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	Pattern         string `yaml:"pattern,omitempty"`
	Source          string `yaml:"source,omitempty"`
	Resolution      string `yaml:"resolution,omitempty"`
	Flag            string `yaml:"flag,omitempty"`
	QualityModifier string `yaml:"qualityModifier,omitempty"`
	ReleaseType     string `yaml:"releaseType,omitempty"`
	Language        string `yaml:"language,omitempty"`
	ExceptLanguage  *bool  `yaml:"exceptLanguage,omitempty"`
	Min             *int   `yaml:"min,omitempty"`
	Max             *int   `yaml:"max,omitempty"`
	Required        bool   `yaml:"required,omitempty"`
	Negate          bool   `yaml:"negate,omitempty"`
}

// ProfileDoc is a single quality profile file.
type ProfileDoc struct {
	Name                 string         `yaml:"name"`
	Description          string         `yaml:"description,omitempty"`
	Tags                 []string       `yaml:"tags,omitempty"`
	UpgradesAllowed      *bool          `yaml:"upgradesAllowed,omitempty"`
	MinCustomFormatScore int            `yaml:"minCustomFormatScore,omitempty"`
	UpgradeUntilScore    int            `yaml:"upgradeUntilScore,omitempty"`
	MinScoreIncrement    int            `yaml:"minScoreIncrement,omitempty"`
	CustomFormats        []FormatScore  `yaml:"custom_formats,omitempty"`
	CustomFormatsRadarr  []FormatScore  `yaml:"custom_formats_radarr,omitempty"`
	CustomFormatsSonarr  []FormatScore  `yaml:"custom_formats_sonarr,omitempty"`
	Qualities            []QualityEntry `yaml:"qualities"`
	UpgradeUntil         *UpgradeUntil  `yaml:"upgrade_until,omitempty"`
	Language             string         `yaml:"language,omitempty"`
}

// FormatScore binds a custom format name to a score inside a profile.
type FormatScore struct {
	Name  string `yaml:"name"`
	Score int    `yaml:"score"`
}

// QualityEntry is either a bare quality name or a quality group with a
// negative id and member qualities.
type QualityEntry struct {
	ID        int
	Name      string
	Qualities []string
}

// UnmarshalYAML accepts both the scalar form ("Bluray-1080p") and the
// mapping form ({id: -2, name: WEB 1080p, qualities: [...]}).
func (q *QualityEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		q.Name = value.Value
		return nil
	}
	var aux struct {
		ID        int      `yaml:"id"`
		Name      string   `yaml:"name"`
		Qualities []string `yaml:"qualities"`
	}
	if err := value.Decode(&aux); err != nil {
		return fmt.Errorf("invalid quality entry: %w", err)
	}
	q.ID = aux.ID
	q.Name = aux.Name
	q.Qualities = aux.Qualities
	return nil
}

// MarshalYAML writes the scalar form for plain qualities and the mapping
// form for groups.
func (q QualityEntry) MarshalYAML() (any, error) {
	if q.ID == 0 && len(q.Qualities) == 0 {
		return q.Name, nil
	}
	return struct {
		ID        int      `yaml:"id"`
		Name      string   `yaml:"name"`
		Qualities []string `yaml:"qualities"`
	}{q.ID, q.Name, q.Qualities}, nil
}

// IsGroup reports whether the entry is a quality group.
func (q QualityEntry) IsGroup() bool {
	return q.ID < 0 || len(q.Qualities) > 0
}

// UpgradeUntil is the profile cutoff reference: a group id or a quality name.
type UpgradeUntil struct {
	ID   int    `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// StripExt removes a trailing .yml or .yaml from a file name.
func StripExt(name string) string {
	for _, ext := range []string{".yml", ".yaml"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
