// Package pipeline orchestrates the catalog stages: curate (fetch + solve),
// interpolate, and NAMD (point estimates + Monte Carlo), threading snapshots
// through the store between stages.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/starfield-labs/exonamd/internal/catalog"
	"github.com/starfield-labs/exonamd/internal/config"
	"github.com/starfield-labs/exonamd/internal/interp"
	"github.com/starfield-labs/exonamd/internal/model"
	"github.com/starfield-labs/exonamd/internal/solve"
	"github.com/starfield-labs/exonamd/internal/store"
	"github.com/starfield-labs/exonamd/pkg/nexsci"
)

// Pipeline wires the stages to their dependencies.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	archive   nexsci.Client
	predictor interp.Predictor
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, archive nexsci.Client, predictor interp.Predictor) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, archive: archive, predictor: predictor}
}

// Run executes curate, interpolate, and NAMD in order.
func (p *Pipeline) Run(ctx context.Context, fromScratch bool) error {
	planets, err := p.Curate(ctx, fromScratch)
	if err != nil {
		return err
	}
	planets, err = p.Interp(ctx, planets)
	if err != nil {
		return err
	}
	_, err = p.NAMD(ctx, planets)
	return err
}

// Curate fetches confirmed-planet rows (incrementally unless fromScratch),
// canonicalizes names, resolves each row's parameter triads, merges with the
// previous curated snapshot, and stores the result.
func (p *Pipeline) Curate(ctx context.Context, fromScratch bool) ([]model.Planet, error) {
	log := zap.L().With(zap.String("stage", store.StageCurated))
	start := time.Now()

	since := ""
	var previous []model.Planet
	if !fromScratch {
		mark, err := p.store.LatestRowUpdate(ctx)
		if err != nil {
			return nil, err
		}
		if mark != "" {
			since = backOneDay(mark) // slack against same-day updates
			prev, _, err := p.store.LoadSnapshot(ctx, store.StageCurated)
			if err != nil {
				return nil, err
			}
			previous = prev
		}
	}

	planets, err := p.archive.ConfirmedPlanets(ctx, since, p.cfg.Archive.MinPlanets)
	if err != nil {
		return nil, err
	}

	if err := p.canonicalize(ctx, planets); err != nil {
		return nil, err
	}

	for i := range planets {
		solve.SolveRow(&planets[i])
	}

	planets = mergeKeepLast(previous, planets)

	idx := hostIndexLoose(planets)
	for _, host := range catalog.InconsistentHosts(planets, idx) {
		log.Warn("curate: inconsistent planet names", zap.String("hostname", host))
	}

	snap, err := p.store.SaveSnapshot(ctx, store.StageCurated, planets)
	if err != nil {
		return nil, err
	}
	log.Info("curate: stage complete",
		zap.Int("rows", len(planets)),
		zap.String("snapshot", snap.ID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return planets, nil
}

// Interp collapses duplicate solutions onto the canonical row, imputes
// missing attributes with provenance flags, drops incomplete systems, and
// derives the relative-inclination and obliquity columns.
func (p *Pipeline) Interp(ctx context.Context, planets []model.Planet) ([]model.Planet, error) {
	log := zap.L().With(zap.String("stage", store.StageInterp))
	start := time.Now()

	if planets == nil {
		loaded, snap, err := p.store.LoadSnapshot(ctx, store.StageCurated)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, eris.New("pipeline: no curated snapshot to interpolate")
		}
		planets = loaded
	}

	planets, err := catalog.CollapseDefaults(planets)
	if err != nil {
		return nil, err
	}

	it := interp.New(p.predictor)
	for i := range planets {
		it.Eccentricity(&planets[i])
	}
	for i := range planets {
		if err := it.Mass(ctx, &planets[i]); err != nil {
			return nil, err
		}
	}

	before := len(planets)
	planets = dropIncompleteSystems(planets)
	if dropped := before - len(planets); dropped > 0 {
		log.Info("interp: dropped incomplete systems", zap.Int("rows", dropped))
	}

	idx, err := model.BuildSystemIndex(planets)
	if err != nil {
		return nil, err
	}
	for i := range planets {
		it.Inclination(planets, idx, i)
	}
	for i := range planets {
		it.SMAErr(&planets[i])
	}

	planets, err = catalog.GroupApplyMerge(ctx, planets, idx,
		func(system []model.Planet) ([]model.Planet, error) {
			return solve.SolveRelIncl(system), nil
		},
		catalog.ApplyOptions{AllowOverwrite: true, Workers: p.cfg.Pipeline.Workers},
	)
	if err != nil {
		return nil, err
	}

	for i := range planets {
		it.Obliquity(planets, idx, i)
	}

	snap, err := p.store.SaveSnapshot(ctx, store.StageInterp, planets)
	if err != nil {
		return nil, err
	}
	log.Info("interp: stage complete",
		zap.Int("rows", len(planets)),
		zap.String("snapshot", snap.ID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return planets, nil
}

// NAMD computes point-estimate NAMD for both kinds, optionally restricts to
// the core sample, then propagates uncertainties by Monte Carlo.
func (p *Pipeline) NAMD(ctx context.Context, planets []model.Planet) ([]model.Planet, error) {
	log := zap.L().With(zap.String("stage", store.StageNAMD))
	start := time.Now()

	if planets == nil {
		loaded, snap, err := p.store.LoadSnapshot(ctx, store.StageInterp)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, eris.New("pipeline: no interpolated snapshot for NAMD")
		}
		planets = loaded
	}

	idx, err := model.BuildSystemIndex(planets)
	if err != nil {
		return nil, err
	}

	for _, kind := range []solve.Kind{solve.KindRelative, solve.KindAbsolute} {
		planets, err = catalog.GroupApplyMerge(ctx, planets, idx,
			func(system []model.Planet) ([]model.Planet, error) {
				return solve.SolveNAMD(system, kind)
			},
			catalog.ApplyOptions{AllowOverwrite: true, Workers: p.cfg.Pipeline.Workers},
		)
		if err != nil {
			return nil, err
		}
	}

	if p.cfg.Pipeline.CoreOnly {
		planets = coreSample(planets, idx)
		idx, err = model.BuildSystemIndex(planets)
		if err != nil {
			return nil, err
		}
		log.Info("namd: restricted to core sample", zap.Int("rows", len(planets)))
	}

	mcCfg := solve.MCConfig{
		Samples:   p.cfg.MC.Samples,
		Threshold: p.cfg.MC.Threshold,
		Seed:      p.cfg.MC.Seed,
	}
	for _, kind := range []solve.Kind{solve.KindRelative, solve.KindAbsolute} {
		planets, err = catalog.GroupApplyMerge(ctx, planets, idx,
			func(system []model.Planet) ([]model.Planet, error) {
				return solve.ApplyNAMDMC(system, kind, mcCfg)
			},
			catalog.ApplyOptions{AllowOverwrite: true, Workers: p.cfg.Pipeline.Workers},
		)
		if err != nil {
			return nil, err
		}
	}

	snap, err := p.store.SaveSnapshot(ctx, store.StageNAMD, planets)
	if err != nil {
		return nil, err
	}
	log.Info("namd: stage complete",
		zap.Int("rows", len(planets)),
		zap.String("snapshot", snap.ID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return planets, nil
}

// canonicalize normalizes hostnames, applies operator overrides and archive
// alias resolution, and renames planets to follow their host.
func (p *Pipeline) canonicalize(ctx context.Context, planets []model.Planet) error {
	overrides, err := nexsci.LoadAliasOverrides(p.cfg.Archive.AliasOverrides)
	if err != nil {
		return err
	}

	resolved := make(map[string]string)
	for i := range planets {
		host := nexsci.NormalizeName(planets[i].Hostname)
		canonical, ok := resolved[host]
		if !ok {
			if o, hit := overrides[host]; hit {
				canonical = o
			} else {
				canonical, err = p.archive.ResolveHost(ctx, host)
				if err != nil {
					return err
				}
			}
			resolved[host] = canonical
		}
		name := nexsci.NormalizeName(planets[i].Name)
		planets[i].Name = nexsci.RenamePlanet(name, host, canonical)
		planets[i].Hostname = canonical
	}
	return nil
}

// mergeKeepLast concatenates the previous snapshot with fresh rows, keeping
// the newest row per (hostname, planet, rowupdate, default_flag) solution.
func mergeKeepLast(previous, fresh []model.Planet) []model.Planet {
	if len(previous) == 0 {
		return fresh
	}
	type key struct {
		host, name, update string
		def                int
	}
	seen := make(map[key]int)
	out := make([]model.Planet, 0, len(previous)+len(fresh))
	for _, batch := range [][]model.Planet{previous, fresh} {
		for _, p := range batch {
			k := key{p.Hostname, p.Name, p.RowUpdate, p.DefaultFlag}
			if i, ok := seen[k]; ok {
				out[i] = p // later batch wins
				continue
			}
			seen[k] = len(out)
			out = append(out, p)
		}
	}
	return out
}

// dropIncompleteSystems removes systems where any planet still lacks mass or
// semi-major axis; NAMD is undefined for them.
func dropIncompleteSystems(planets []model.Planet) []model.Planet {
	incomplete := make(map[string]bool)
	for i := range planets {
		if planets[i].Mass.Missing() || planets[i].SMA.Missing() {
			incomplete[planets[i].Hostname] = true
		}
	}
	out := planets[:0:0]
	for i := range planets {
		if !incomplete[planets[i].Hostname] {
			out = append(out, planets[i])
		}
	}
	return out
}

// coreSample keeps systems whose every row carries a core flag.
func coreSample(planets []model.Planet, idx model.SystemIndex) []model.Planet {
	var out []model.Planet
	for _, host := range idx.Hosts() {
		core := true
		for _, i := range idx[host] {
			if !planets[i].Flag.Core() {
				core = false
				break
			}
		}
		if core {
			for _, i := range idx[host] {
				out = append(out, planets[i])
			}
		}
	}
	return out
}

// hostIndexLoose groups rows by hostname without the duplicate-identity
// check; curated tables legitimately hold multiple solutions per planet.
func hostIndexLoose(planets []model.Planet) model.SystemIndex {
	idx := make(model.SystemIndex)
	for i := range planets {
		idx[planets[i].Hostname] = append(idx[planets[i].Hostname], i)
	}
	return idx
}

// backOneDay shifts an ISO date one day back.
func backOneDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}
