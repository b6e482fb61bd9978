// Package arrsync orchestrates the compile→upload→ID-sync pipeline that
// pushes compiled custom formats and quality profiles to a configured
// Radarr or Sonarr server.
package arrsync

import (
	"fmt"

	"github.com/profilarr/profilarr/internal/compiler"
)

// Strategy selects what a sync run pushes.
type Strategy string

const (
	StrategyFormat  Strategy = "format"
	StrategyProfile Strategy = "profile"
)

// Valid reports whether the strategy is known.
func (s Strategy) Valid() bool {
	return s == StrategyFormat || s == StrategyProfile
}

// Status summarizes a batch outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// statusFor derives the batch status from its counters.
func statusFor(added, updated, failed int) Status {
	switch {
	case failed == 0:
		return StatusSuccess
	case added+updated > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// statusLine renders the counters for logs and progress messages.
func statusLine(added, updated, failed int) string {
	return fmt.Sprintf("%d added, %d updated, %d failed", added, updated, failed)
}

// Action is the per-item outcome of a sync run.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
)

// Request is the payload that triggers a sync run.
type Request struct {
	ArrID     int64    `json:"arrID"`
	Strategy  Strategy `json:"strategy"`
	Filenames []string `json:"filenames"`
	DryRun    bool     `json:"dryRun"`
}

// Detail records the outcome for one item.
type Detail struct {
	Name   string `json:"name"`
	Action Action `json:"action"`
	Error  string `json:"error,omitempty"`
}

// CompiledData carries the payloads a dry run would have sent.
type CompiledData struct {
	Formats  []*compiler.CompiledFormat  `json:"formats,omitempty"`
	Profiles []*compiler.CompiledProfile `json:"profiles,omitempty"`
}

// Result is the outcome of one strategy run.
type Result struct {
	Success       bool          `json:"success"`
	Status        Status        `json:"status"`
	Strategy      Strategy      `json:"strategy"`
	ArrConfigID   int64         `json:"arr_config_id"`
	ArrConfigName string        `json:"arr_config_name"`
	Added         int           `json:"added"`
	Updated       int           `json:"updated"`
	Failed        int           `json:"failed"`
	Details       []Detail      `json:"details"`
	Warnings      []string      `json:"warnings,omitempty"`
	Error         string        `json:"error,omitempty"`
	DryRun        bool          `json:"dry_run,omitempty"`
	CompiledData  *CompiledData `json:"compiled_data,omitempty"`
}

// uniqueSuffix is appended to artifact names when a config imports as
// unique, so managed artifacts never collide with hand-authored ones.
const uniqueSuffix = " [Dictionarry]"

// Batch sizes at and below which uploads run sequentially.
const (
	smallBatchFormats  = 5
	smallBatchProfiles = 2
)

// dryRunIDBase is where minted ids start during a dry run, well above any
// realistic server-assigned id.
const dryRunIDBase = 10000
