package arrsync

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/profilarr/profilarr/internal/arr"
	"github.com/profilarr/profilarr/internal/arrconfig"
	"github.com/profilarr/profilarr/internal/compiler"
	"github.com/profilarr/profilarr/internal/sources"
)

// formatPayload wraps a compiled format with the server-assigned id for PUT
// bodies. The embedded pointer promotes the format fields into the object.
type formatPayload struct {
	ID int `json:"id"`
	*compiler.CompiledFormat
}

// runFormatStrategy compiles the named custom format files and pushes them
// to the server, creating or updating by name.
func (s *Service) runFormatStrategy(ctx context.Context, client ArrClient, cfg *arrconfig.Config, req Request, rep *Reporter) *Result {
	opts := s.formatOptions(ctx)

	rep.StartCompile(len(req.Filenames))
	compiled := make([]*compiler.CompiledFormat, 0, len(req.Filenames))
	for _, fn := range req.Filenames {
		cf := s.compileFormatFile(fn, cfg, opts, rep)
		rep.CompileDone()
		if cf != nil {
			compiled = append(compiled, cf)
		}
	}

	if err := s.uploadFormats(ctx, client, compiled, len(compiled) > smallBatchFormats, req.DryRun, rep); err != nil {
		return s.assemble(cfg, req, rep, err, nil)
	}
	return s.assemble(cfg, req, rep, nil, &CompiledData{Formats: compiled})
}

// formatOptions resolves the pattern store and rename policy for one batch.
func (s *Service) formatOptions(ctx context.Context) compiler.FormatOptions {
	opts := compiler.FormatOptions{
		Patterns: sources.LoadPatterns(s.cache, s.logger),
	}
	include, err := s.settings.IncludeInRename(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load rename settings, formats will not be renamed")
	} else {
		opts.IncludeInRename = include
	}
	return opts
}

// compileFormatFile loads one custom format document from the cache and
// compiles it for the target. Load and decode errors are recorded as item
// failures and return nil.
func (s *Service) compileFormatFile(filename string, cfg *arrconfig.Config, opts compiler.FormatOptions, rep *Reporter) *compiler.CompiledFormat {
	stem := sources.StripExt(filename)
	data, err := s.cache.Get(sources.CategoryCustomFormat, stem)
	if err != nil {
		rep.Failed(stem, err)
		return nil
	}
	var doc sources.FormatDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		rep.Failed(stem, fmt.Errorf("failed to parse custom format: %w", err))
		return nil
	}
	cf, warnings := compiler.CompileFormat(&doc, cfg.Type, opts)
	for _, w := range warnings {
		rep.Warn("%s", w)
	}
	if cfg.ImportAsUnique {
		cf.Name += uniqueSuffix
	}
	return cf
}

// uploadFormats fetches the server's format inventory once, then creates or
// updates each compiled format by name. A failed inventory fetch aborts the
// whole batch; per-item upload errors only mark that item.
func (s *Service) uploadFormats(ctx context.Context, client ArrClient, formats []*compiler.CompiledFormat, concurrent, dryRun bool, rep *Reporter) error {
	existing, err := client.ListFormats(ctx)
	if err != nil {
		return fmt.Errorf("failed to list custom formats: %w", err)
	}
	byName := arr.NameIDMap(existing)

	rep.StartUpload(len(formats))
	runUploads(len(formats), concurrent, func(i int) {
		cf := formats[i]
		if err := ctx.Err(); err != nil {
			rep.Failed(cf.Name, err)
			return
		}
		id, exists := byName[cf.Name]
		switch {
		case dryRun && exists:
			rep.Updated(cf.Name)
		case dryRun:
			rep.Added(cf.Name)
		case exists:
			if err := client.UpdateFormat(ctx, id, formatPayload{ID: id, CompiledFormat: cf}); err != nil {
				rep.Failed(cf.Name, err)
			} else {
				rep.Updated(cf.Name)
			}
		default:
			if _, err := client.CreateFormat(ctx, cf); err != nil {
				rep.Failed(cf.Name, err)
			} else {
				rep.Added(cf.Name)
			}
		}
	})
	return nil
}
