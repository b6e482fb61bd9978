package arrsync

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/profilarr/profilarr/internal/arr"
	"github.com/profilarr/profilarr/internal/arrconfig"
	"github.com/profilarr/profilarr/internal/compiler"
	"github.com/profilarr/profilarr/internal/sources"
)

// profilePayload wraps a compiled profile with the server-assigned id for
// PUT bodies.
type profilePayload struct {
	ID int `json:"id"`
	*compiler.CompiledProfile
}

// runProfileStrategy compiles the named profiles together with every custom
// format they reference, uploads the formats first, refetches format ids,
// rewires each profile's formatItems against the fresh inventory and only
// then uploads the profiles.
func (s *Service) runProfileStrategy(ctx context.Context, client ArrClient, cfg *arrconfig.Config, req Request, rep *Reporter) *Result {
	fmtOpts := s.formatOptions(ctx)
	profOpts := s.profileOptions(ctx)
	synth := compiler.NewSynthesizer(s.cache)

	seen := make(map[string]bool)
	var depFormats []*compiler.CompiledFormat

	// compileDep compiles one referenced custom format exactly once per
	// batch, keyed by its source name before unique-suffixing.
	compileDep := func(name string, doc *sources.FormatDoc) {
		if seen[name] {
			return
		}
		seen[name] = true
		if doc == nil {
			data, err := s.cache.Get(sources.CategoryCustomFormat, name)
			if err != nil {
				rep.Warn("referenced custom format %q not found", name)
				return
			}
			doc = &sources.FormatDoc{}
			if err := yaml.Unmarshal(data, doc); err != nil {
				rep.Warn("referenced custom format %q is malformed: %v", name, err)
				return
			}
		}
		cf, warnings := compiler.CompileFormat(doc, cfg.Type, fmtOpts)
		for _, w := range warnings {
			rep.Warn("%s", w)
		}
		if cfg.ImportAsUnique {
			cf.Name += uniqueSuffix
		}
		depFormats = append(depFormats, cf)
	}

	rep.StartCompile(len(req.Filenames))
	profiles := make([]*compiler.CompiledProfile, 0, len(req.Filenames))
	for _, fn := range req.Filenames {
		stem := sources.StripExt(fn)
		data, err := s.cache.Get(sources.CategoryProfile, stem)
		if err != nil {
			rep.Failed(stem, err)
			rep.CompileDone()
			continue
		}
		var doc sources.ProfileDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			rep.Failed(stem, fmt.Errorf("failed to parse profile: %w", err))
			rep.CompileDone()
			continue
		}

		for _, name := range compiler.ReferencedFormatNames(&doc, cfg.Type) {
			compileDep(name, nil)
		}
		if sel := compiler.ParseLanguageSelector(doc.Language); sel.Advanced() {
			synthesized, err := synth.Formats(sel)
			if err != nil {
				rep.Failed(stem, fmt.Errorf("failed to synthesize language formats: %w", err))
				rep.CompileDone()
				continue
			}
			for _, sd := range synthesized {
				compileDep(sd.Name, sd)
			}
		}

		compiled, warnings := compiler.CompileProfile(&doc, cfg.Type, profOpts)
		for _, w := range warnings {
			rep.Warn("%s", w)
		}
		if cfg.ImportAsUnique {
			compiled.Name += uniqueSuffix
			for i := range compiled.FormatItems {
				compiled.FormatItems[i].Name += uniqueSuffix
			}
		}
		profiles = append(profiles, compiled)
		rep.CompileDone()
	}

	if err := s.uploadFormats(ctx, client, depFormats, len(depFormats) > smallBatchFormats, req.DryRun, rep); err != nil {
		return s.assemble(cfg, req, rep, err, nil)
	}

	// Upload barrier: the profiles below must reference ids the server
	// actually assigned, so the inventory is refetched after the format
	// uploads land. A dry run mints synthetic ids instead.
	serverFormats, err := s.formatInventory(ctx, client, depFormats, req.DryRun)
	if err != nil {
		return s.assemble(cfg, req, rep, err, nil)
	}
	for _, p := range profiles {
		p.FormatItems = resolveFormatItems(p.Name, p.FormatItems, serverFormats, rep)
	}

	if err := s.uploadProfiles(ctx, client, profiles, len(profiles) > smallBatchProfiles, req.DryRun, rep); err != nil {
		return s.assemble(cfg, req, rep, err, nil)
	}
	return s.assemble(cfg, req, rep, nil, &CompiledData{Formats: depFormats, Profiles: profiles})
}

// profileOptions resolves the configurable language penalty score.
func (s *Service) profileOptions(ctx context.Context) compiler.ProfileOptions {
	sync, err := s.settings.GetSyncSettings(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load sync settings, using default language score")
		return compiler.ProfileOptions{}
	}
	return compiler.ProfileOptions{LanguageFormatScore: sync.LanguageFormatScore}
}

// formatInventory returns the server's format name→id map as it stands
// after the dependent-format uploads. During a dry run no uploads happened,
// so formats that would have been created get monotonically increasing
// synthetic ids.
func (s *Service) formatInventory(ctx context.Context, client ArrClient, uploaded []*compiler.CompiledFormat, dryRun bool) (map[string]int, error) {
	existing, err := client.ListFormats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh custom formats: %w", err)
	}
	byName := arr.NameIDMap(existing)
	if dryRun {
		next := dryRunIDBase
		for _, cf := range uploaded {
			if _, ok := byName[cf.Name]; !ok {
				byName[cf.Name] = next
				next++
			}
		}
	}
	return byName, nil
}

// resolveFormatItems rewires a profile's format scores against the server
// inventory. Explicitly scored entries come first in their original order;
// every remaining server format is appended with a zero score so the
// produced list covers the full inventory. Entries naming a format the
// server does not have are dropped with a warning.
func resolveFormatItems(profileName string, items []compiler.FormatItem, serverFormats map[string]int, rep *Reporter) []compiler.FormatItem {
	out := make([]compiler.FormatItem, 0, len(serverFormats))
	used := make(map[string]bool, len(items))
	for _, it := range items {
		id, ok := serverFormats[it.Name]
		if !ok {
			rep.Warn("profile %q scores custom format %q which is not on the server", profileName, it.Name)
			continue
		}
		used[it.Name] = true
		out = append(out, compiler.FormatItem{Format: id, Name: it.Name, Score: it.Score})
	}

	rest := make([]string, 0, len(serverFormats))
	for name := range serverFormats {
		if !used[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, compiler.FormatItem{Format: serverFormats[name], Name: name})
	}
	return out
}

// uploadProfiles creates or updates the compiled profiles by name. A failed
// inventory fetch aborts the batch.
func (s *Service) uploadProfiles(ctx context.Context, client ArrClient, profiles []*compiler.CompiledProfile, concurrent, dryRun bool, rep *Reporter) error {
	existing, err := client.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list quality profiles: %w", err)
	}
	byName := arr.NameIDMap(existing)

	rep.StartUpload(len(profiles))
	runUploads(len(profiles), concurrent, func(i int) {
		p := profiles[i]
		if err := ctx.Err(); err != nil {
			rep.Failed(p.Name, err)
			return
		}
		id, exists := byName[p.Name]
		switch {
		case dryRun && exists:
			rep.Updated(p.Name)
		case dryRun:
			rep.Added(p.Name)
		case exists:
			if err := client.UpdateProfile(ctx, id, profilePayload{ID: id, CompiledProfile: p}); err != nil {
				rep.Failed(p.Name, err)
			} else {
				rep.Updated(p.Name)
			}
		default:
			if _, err := client.CreateProfile(ctx, p); err != nil {
				rep.Failed(p.Name, err)
			} else {
				rep.Added(p.Name)
			}
		}
	})
	return nil
}
