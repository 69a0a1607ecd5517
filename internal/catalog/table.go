// Package catalog provides the table-level operations of the engine:
// per-host group apply with merge-back, default-solution collapse, and the
// CSV codec for stage snapshots.
package catalog

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starfield-labs/exonamd/internal/model"
)

// GroupFunc transforms one host-system partition. It receives a copy of the
// partition and returns the (possibly augmented) rows in the same order.
type GroupFunc func(system []model.Planet) ([]model.Planet, error)

// ApplyOptions controls GroupApplyMerge.
type ApplyOptions struct {
	// AllowOverwrite replaces pre-existing target columns. When false and
	// Applied reports every row as already populated, the table is returned
	// untouched.
	AllowOverwrite bool
	// Applied probes whether the op's target columns are populated on a row.
	Applied func(*model.Planet) bool
	// Workers bounds parallel per-system execution; <= 0 means sequential.
	Workers int
}

// GroupApplyMerge applies fn to every host-system partition and merges the
// results back onto the full table, aligned by row index. Partitions are
// copied before the call (copy-on-write), and systems never depend on each
// other's rows, so per-system execution runs in parallel.
func GroupApplyMerge(ctx context.Context, planets []model.Planet, idx model.SystemIndex, fn GroupFunc, opts ApplyOptions) ([]model.Planet, error) {
	if !opts.AllowOverwrite && opts.Applied != nil && allApplied(planets, opts.Applied) {
		return planets, nil
	}

	out := make([]model.Planet, len(planets))
	copy(out, planets)

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}

	for _, host := range idx.Hosts() {
		members := idx[host]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			system := make([]model.Planet, len(members))
			for k, i := range members {
				system[k] = planets[i]
			}
			res, err := fn(system)
			if err != nil {
				return err
			}
			for k, i := range members {
				out[i] = res[k]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func allApplied(planets []model.Planet, applied func(*model.Planet) bool) bool {
	for i := range planets {
		if !applied(&planets[i]) {
			return false
		}
	}
	return len(planets) > 0
}

// CollapseDefaults reduces duplicate reported solutions per planet to the
// canonical default_flag=1 row, filling that row's gaps with the per-planet
// median across all solutions. The returned table holds only canonical rows;
// residual duplicate identities are a fatal validation error surfaced by the
// system index build.
func CollapseDefaults(planets []model.Planet) ([]model.Planet, error) {
	type key struct{ host, name string }
	groups := make(map[key][]int)
	for i, p := range planets {
		groups[key{p.Hostname, p.Name}] = append(groups[key{p.Hostname, p.Name}], i)
	}

	var out []model.Planet
	for i := range planets {
		p := planets[i]
		if p.DefaultFlag != 1 {
			continue
		}
		members := groups[key{p.Hostname, p.Name}]
		fields := numericFields(&p)
		for fi, fptr := range fields {
			if !math.IsNaN(*fptr) {
				continue
			}
			var vals []float64
			for _, j := range members {
				q := planets[j]
				v := *numericFields(&q)[fi]
				if !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}
			if len(vals) > 0 {
				*fptr = median(vals)
			}
		}
		out = append(out, p)
	}
	if _, err := model.BuildSystemIndex(out); err != nil {
		return nil, err
	}
	return out, nil
}

// numericFields returns the physical columns eligible for median fill, in a
// fixed order shared by value and lookup passes.
func numericFields(p *model.Planet) []*float64 {
	quantities := []*model.Quantity{
		&p.StRad, &p.StMass, &p.Period, &p.SMA,
		&p.Radius, &p.Mass, &p.Ecc, &p.Incl,
	}
	var fields []*float64
	for _, q := range quantities {
		fields = append(fields, &q.Val, &q.Err1, &q.Err2)
	}
	return append(fields, &p.SMARatio, &p.RadiusRatio)
}

func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return 0.5 * (vals[n/2-1] + vals[n/2])
}

// InconsistentHosts returns hostnames whose planet names do not all carry the
// hostname as a prefix, flagging alias resolutions that went sideways.
func InconsistentHosts(planets []model.Planet, idx model.SystemIndex) []string {
	var hosts []string
	for _, host := range idx.Hosts() {
		for _, i := range idx[host] {
			if len(planets[i].Name) < len(host) || planets[i].Name[:len(host)] != host {
				hosts = append(hosts, host)
				break
			}
		}
	}
	return hosts
}
