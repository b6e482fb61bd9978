package arrsync

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/profilarr/profilarr/internal/arr"
	"github.com/profilarr/profilarr/internal/arrconfig"
	"github.com/profilarr/profilarr/internal/progress"
	"github.com/profilarr/profilarr/internal/settings"
	"github.com/profilarr/profilarr/internal/sources"
)

// ArrClient is the slice of the arr API the sync engine uses.
type ArrClient interface {
	ListFormats(ctx context.Context) ([]arr.Resource, error)
	ListProfiles(ctx context.Context) ([]arr.Resource, error)
	CreateFormat(ctx context.Context, body any) (*arr.Resource, error)
	UpdateFormat(ctx context.Context, id int, body any) error
	CreateProfile(ctx context.Context, body any) (*arr.Resource, error)
	UpdateProfile(ctx context.Context, id int, body any) error
}

// ClientFactory builds a client for a target configuration.
type ClientFactory func(cfg arr.Config) ArrClient

// maxConcurrentUploads bounds the upload worker pool, matching the client's
// per-host connection cap.
const maxConcurrentUploads = 5

// Service runs sync batches against configured servers.
type Service struct {
	cache     *sources.Cache
	settings  *settings.Service
	progress  *progress.Manager
	logger    zerolog.Logger
	newClient ClientFactory
}

// NewService creates the sync service. The progress manager may be nil.
func NewService(cache *sources.Cache, settingsSvc *settings.Service, progressMgr *progress.Manager, logger zerolog.Logger) *Service {
	return &Service{
		cache:    cache,
		settings: settingsSvc,
		progress: progressMgr,
		logger:   logger.With().Str("component", "arrsync").Logger(),
		newClient: func(cfg arr.Config) ArrClient {
			return arr.NewClient(cfg)
		},
	}
}

// SetClientFactory replaces the client constructor. Used by tests.
func (s *Service) SetClientFactory(f ClientFactory) {
	s.newClient = f
}

// Run executes one strategy against the given configuration and returns the
// per-item outcomes. Item-level errors never escape; a list-phase transport
// error aborts the batch with a single top-level error.
func (s *Service) Run(ctx context.Context, cfg *arrconfig.Config, req Request) *Result {
	logger := s.logger.With().
		Str("config", cfg.Name).
		Str("strategy", string(req.Strategy)).
		Bool("dryRun", req.DryRun).
		Logger()
	rep := NewReporter(logger)

	client := s.newClient(arr.Config{BaseURL: cfg.ArrServer, APIKey: cfg.APIKey})

	activity := s.startActivity(cfg, req)

	var result *Result
	switch req.Strategy {
	case StrategyProfile:
		result = s.runProfileStrategy(ctx, client, cfg, req, rep)
	default:
		result = s.runFormatStrategy(ctx, client, cfg, req, rep)
	}

	rep.Summary(req.Strategy)
	s.finishActivity(activity, result)
	return result
}

// assemble builds the result object from the reporter state.
func (s *Service) assemble(cfg *arrconfig.Config, req Request, rep *Reporter, batchErr error, compiled *CompiledData) *Result {
	added, updated, failed := rep.Counts()
	result := &Result{
		Strategy:      req.Strategy,
		ArrConfigID:   cfg.ID,
		ArrConfigName: cfg.Name,
		Added:         added,
		Updated:       updated,
		Failed:        failed,
		Details:       rep.Details(),
		Warnings:      rep.Warnings(),
	}
	if batchErr != nil {
		result.Status = StatusFailed
		result.Error = batchErr.Error()
		return result
	}
	result.Status = statusFor(added, updated, failed)
	result.Success = result.Status == StatusSuccess
	if req.DryRun {
		result.DryRun = true
		result.CompiledData = compiled
	}
	return result
}

// runUploads executes n upload tasks, fanning out over a bounded pool when
// the batch is above the small-batch threshold. A cancelled context is
// observed by each task and recorded as a per-item failure.
func runUploads(n int, concurrent bool, fn func(i int)) {
	if !concurrent || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	sem := make(chan struct{}, maxConcurrentUploads)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

func (s *Service) startActivity(cfg *arrconfig.Config, req Request) string {
	if s.progress == nil || req.DryRun {
		return ""
	}
	id := "arrsync-" + cfg.Name
	s.progress.Start(id, progress.ActivitySync, "Syncing "+cfg.Name)
	return id
}

func (s *Service) finishActivity(id string, result *Result) {
	if s.progress == nil || id == "" {
		return
	}
	summary := result.summaryLine()
	if result.Status == StatusFailed {
		s.progress.Fail(id, summary)
		return
	}
	s.progress.Complete(id, summary)
}

func (r *Result) summaryLine() string {
	if r.Error != "" {
		return r.Error
	}
	added, updated, failed := r.Added, r.Updated, r.Failed
	return statusLine(added, updated, failed)
}
