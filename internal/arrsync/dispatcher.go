package arrsync

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/profilarr/profilarr/internal/arrconfig"
	"github.com/profilarr/profilarr/internal/scheduler"
	"github.com/profilarr/profilarr/internal/sources"
)

// taskIDPrefix namespaces the per-config scheduler tasks.
const taskIDPrefix = "arr-sync-"

// Dispatcher runs full scheduled syncs for configurations whose sync method
// is "schedule" and keeps the scheduler's task set in step with the stored
// configurations.
type Dispatcher struct {
	syncSvc *Service
	configs *arrconfig.Service
	sched   *scheduler.Scheduler
	logger  zerolog.Logger
}

// NewDispatcher creates the scheduled-sync dispatcher.
func NewDispatcher(syncSvc *Service, configs *arrconfig.Service, sched *scheduler.Scheduler, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		syncSvc: syncSvc,
		configs: configs,
		sched:   sched,
		logger:  logger.With().Str("component", "arrsync-dispatcher").Logger(),
	}
}

// RunScheduled executes one full sync for a configuration: its selected
// custom formats first, then its selected profiles, then persists the sync
// timestamp and completion percentage.
func (d *Dispatcher) RunScheduled(ctx context.Context, configID int64) error {
	cfg, err := d.configs.GetByID(ctx, configID)
	if err != nil {
		return fmt.Errorf("failed to load arr config %d: %w", configID, err)
	}

	var added, updated, failed int
	run := func(strategy Strategy, filenames []string) {
		if len(filenames) == 0 {
			return
		}
		result := d.syncSvc.Run(ctx, cfg, Request{
			ArrID:     cfg.ID,
			Strategy:  strategy,
			Filenames: filenames,
		})
		added += result.Added
		updated += result.Updated
		failed += result.Failed
		if result.Error != "" {
			// Items the aborted batch never reached count as failed
			if remaining := len(filenames) - result.Added - result.Updated - result.Failed; remaining > 0 {
				failed += remaining
			}
			d.logger.Error().
				Str("config", cfg.Name).
				Str("strategy", string(strategy)).
				Str("error", result.Error).
				Msg("Scheduled sync batch aborted")
		}
	}

	run(StrategyFormat, stripExtensions(cfg.DataToSync.CustomFormats))
	run(StrategyProfile, stripExtensions(cfg.DataToSync.Profiles))

	pct := syncPercentage(added, updated, failed)
	if err := d.configs.UpdateSyncStatus(ctx, cfg.ID, time.Now().UTC(), pct); err != nil {
		return fmt.Errorf("failed to record sync status: %w", err)
	}

	d.logger.Info().
		Str("config", cfg.Name).
		Int("added", added).
		Int("updated", updated).
		Int("failed", failed).
		Int("percentage", pct).
		Msg("Scheduled sync finished")
	return nil
}

// Reconcile aligns the scheduler's task set with the stored configurations:
// one interval task per schedule-method config, nothing for the rest.
func (d *Dispatcher) Reconcile(ctx context.Context) error {
	configs, err := d.configs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list arr configs: %w", err)
	}

	desired := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		if cfg.SyncMethod != arrconfig.SyncSchedule || cfg.SyncIntervalMinutes < 1 {
			continue
		}
		id := taskID(cfg.ID)
		desired[id] = true

		// Re-register so interval changes take effect
		if err := d.sched.UnregisterTask(id); err != nil {
			return err
		}
		configID := cfg.ID
		err := d.sched.RegisterTask(scheduler.TaskConfig{
			ID:          id,
			Name:        "Sync " + cfg.Name,
			Description: "Pushes selected custom formats and profiles to " + cfg.Name,
			Every:       time.Duration(cfg.SyncIntervalMinutes) * time.Minute,
			Func: func(ctx context.Context) error {
				return d.RunScheduled(ctx, configID)
			},
		})
		if err != nil {
			return fmt.Errorf("failed to schedule sync for %q: %w", cfg.Name, err)
		}
	}

	for _, task := range d.sched.ListTasks() {
		if strings.HasPrefix(task.ID, taskIDPrefix) && !desired[task.ID] {
			if err := d.sched.UnregisterTask(task.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func taskID(configID int64) string {
	return fmt.Sprintf("%s%d", taskIDPrefix, configID)
}

// syncPercentage is the share of attempted items that landed, rounded to
// the nearest whole percent. No attempts means zero, not a division error.
func syncPercentage(added, updated, failed int) int {
	total := added + updated + failed
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(added+updated) / float64(total)))
}

func stripExtensions(filenames []string) []string {
	out := make([]string, 0, len(filenames))
	for _, fn := range filenames {
		out = append(out, sources.StripExt(fn))
	}
	return out
}
