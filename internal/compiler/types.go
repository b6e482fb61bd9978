// Package compiler turns YAML custom formats and quality profiles into the
// JSON payloads the target application's v3 API expects.
package compiler

import (
	"github.com/profilarr/profilarr/internal/mappings"
)

// SpecField is one field of a specification. The arr API models every
// specification parameter as a {name, value} pair.
type SpecField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Specification is the target-native shape of a single format condition.
type Specification struct {
	Name           string      `json:"name"`
	Implementation string      `json:"implementation"`
	Negate         bool        `json:"negate"`
	Required       bool        `json:"required"`
	Fields         []SpecField `json:"fields"`
}

// CompiledFormat is the custom format payload for POST/PUT
// /api/v3/customformat. Field order is part of the wire contract.
type CompiledFormat struct {
	Name                            string          `json:"name"`
	IncludeCustomFormatWhenRenaming bool            `json:"includeCustomFormatWhenRenaming,omitempty"`
	Specifications                  []Specification `json:"specifications"`
}

// ProfileItem is one entry of a profile's quality list. Plain qualities set
// Quality; groups set ID (the 1000+|id| encoding), Name and Items.
type ProfileItem struct {
	ID      int               `json:"id,omitempty"`
	Name    string            `json:"name,omitempty"`
	Quality *mappings.Quality `json:"quality,omitempty"`
	Items   []ProfileItem     `json:"items"`
	Allowed bool              `json:"allowed"`
}

// FormatItem binds a custom format to a score inside a profile. Format is the
// server-assigned id, filled by the import engine after uploads.
type FormatItem struct {
	Format int    `json:"format,omitempty"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// CompiledProfile is the quality profile payload for POST/PUT
// /api/v3/qualityprofile.
type CompiledProfile struct {
	Name                  string             `json:"name"`
	UpgradeAllowed        bool               `json:"upgradeAllowed"`
	Items                 []ProfileItem      `json:"items"`
	FormatItems           []FormatItem       `json:"formatItems"`
	MinFormatScore        int                `json:"minFormatScore"`
	CutoffFormatScore     int                `json:"cutoffFormatScore"`
	MinUpgradeFormatScore int                `json:"minUpgradeFormatScore"`
	Language              *mappings.Language `json:"language,omitempty"`
	Cutoff                int                `json:"cutoff,omitempty"`
}

// groupIDOffset converts the negative group ids used in profile YAML into the
// positive composite-group encoding the targets expect. Legacy encoding,
// preserved verbatim for wire compatibility.
const groupIDOffset = 1000

func groupID(sourceID int) int {
	if sourceID < 0 {
		return groupIDOffset - sourceID
	}
	return groupIDOffset + sourceID
}
