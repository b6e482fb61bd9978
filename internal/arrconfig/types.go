package arrconfig

import (
	"time"

	"github.com/profilarr/profilarr/internal/mappings"
)

// SyncMethod selects how a configuration is synchronized.
type SyncMethod string

const (
	// SyncManual configs only sync when a user triggers them.
	SyncManual SyncMethod = "manual"
	// SyncPull configs are invoked by the git-pull collaborator.
	SyncPull SyncMethod = "pull"
	// SyncSchedule configs register a scheduler task.
	SyncSchedule SyncMethod = "schedule"
)

// Valid reports whether the sync method is known.
func (m SyncMethod) Valid() bool {
	return m == SyncManual || m == SyncPull || m == SyncSchedule
}

// DataToSync names the source files a configuration pushes to its server.
// Entries may carry a .yml suffix; it is stripped on use.
type DataToSync struct {
	CustomFormats []string `json:"customFormats"`
	Profiles      []string `json:"profiles"`
}

// Config identifies one downstream server and what to sync to it. The core
// pipeline borrows a snapshot for the duration of a sync; LastSyncTime and
// SyncPercentage are written back afterwards.
type Config struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Type                mappings.Target `json:"type"`
	ArrServer           string          `json:"arrServer"`
	APIKey              string          `json:"apiKey"`
	ImportAsUnique      bool            `json:"importAsUnique"`
	SyncMethod          SyncMethod      `json:"syncMethod"`
	SyncIntervalMinutes int             `json:"syncIntervalMinutes"`
	DataToSync          DataToSync      `json:"dataToSync"`
	LastSyncTime        *time.Time      `json:"lastSyncTime,omitempty"`
	SyncPercentage      int             `json:"syncPercentage"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// CreateInput is the payload for creating or updating a configuration.
type CreateInput struct {
	Name                string          `json:"name"`
	Type                mappings.Target `json:"type"`
	ArrServer           string          `json:"arrServer"`
	APIKey              string          `json:"apiKey"`
	ImportAsUnique      bool            `json:"importAsUnique"`
	SyncMethod          SyncMethod      `json:"syncMethod"`
	SyncIntervalMinutes int             `json:"syncIntervalMinutes"`
	DataToSync          DataToSync      `json:"dataToSync"`
}
