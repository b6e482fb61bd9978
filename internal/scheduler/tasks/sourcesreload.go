// Package tasks registers the application's static scheduled tasks.
// Per-server sync schedules are dynamic and managed by the sync dispatcher.
package tasks

import (
	"context"

	"github.com/profilarr/profilarr/internal/scheduler"
	"github.com/profilarr/profilarr/internal/sources"
)

// RegisterSourcesReloadTask registers a nightly re-read of the YAML source
// tree, picking up files edited outside the API.
func RegisterSourcesReloadTask(sched *scheduler.Scheduler, cache *sources.Cache) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "sources-reload",
		Name:        "Reload Source Files",
		Description: "Re-reads regex patterns, custom formats and profiles from disk",
		Cron:        "0 3 * * *", // 3 AM daily
		RunOnStart:  false,
		Func: func(ctx context.Context) error {
			return cache.Reload()
		},
	})
}
