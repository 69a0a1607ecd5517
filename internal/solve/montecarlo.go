package solve

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/starfield-labs/exonamd/internal/model"
)

// MCConfig configures one Monte Carlo propagation run.
type MCConfig struct {
	Samples   int    // draws per parameter per planet
	Threshold int    // minimum surviving samples for defined quantiles
	Seed      uint64 // deterministic stream when reproducibility matters
	Full      bool   // also return the raw surviving NAMD samples
}

// MCResult is the outcome of one system's propagation. Samples is populated
// only in Full mode and only when the threshold gate passed.
type MCResult struct {
	Quantiles model.Quantiles
	Samples   []float64
}

// SolveNAMDMC propagates per-parameter uncertainty into the system NAMD. For
// each planet it draws Samples normal deviates per parameter using the
// symmetric sigma 0.5*(err1-err2), consuming the random stream in a fixed
// order (mass, eccentricity, angle, sma; planets in table order) so equal
// seeds reproduce bit-for-bit. A draw is invalid for the whole system when
// any planet's draw is unphysical: mass <= 0, e outside [0,1), angle outside
// [0,180), or sma <= 0. Fewer surviving samples than Threshold yields NaN
// quantiles with the count preserved.
func SolveNAMDMC(system []model.Planet, kind Kind, cfg MCConfig) (MCResult, error) {
	if err := kind.Validate(); err != nil {
		return MCResult{}, err
	}

	n := cfg.Samples
	src := rand.NewSource(cfg.Seed)
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}

	num := make([]float64, n) // sum of per-planet AMD per draw
	den := make([]float64, n) // sum of m*sqrt(a) per draw

	for i := range system {
		p := &system[i]
		mass := drawNormal(src, p.Mass, n)
		ecc := drawNormal(src, p.Ecc, n)
		angle := drawNormal(src, kind.angle(p), n)
		sma := drawNormal(src, p.SMA, n)

		for j := 0; j < n; j++ {
			if !valid[j] {
				continue
			}
			// Negated-form comparisons so NaN draws fail the check too.
			if !(mass[j] > 0) || !(ecc[j] >= 0 && ecc[j] < 1) ||
				!(angle[j] >= 0 && angle[j] < 180) || !(sma[j] > 0) {
				valid[j] = false
				continue
			}
			num[j] += AMD(mass[j], ecc[j], angle[j], sma[j])
			den[j] += mass[j] * math.Sqrt(sma[j])
		}
	}

	namd := make([]float64, 0, n)
	for j := 0; j < n; j++ {
		if valid[j] {
			namd = append(namd, num[j]/den[j])
		}
	}

	if len(namd) < cfg.Threshold {
		return MCResult{Quantiles: model.NaNQuantiles(len(namd))}, nil
	}

	sort.Float64s(namd)
	res := MCResult{
		Quantiles: model.Quantiles{
			Q16: stat.Quantile(0.16, stat.Empirical, namd, nil),
			Q50: stat.Quantile(0.50, stat.Empirical, namd, nil),
			Q84: stat.Quantile(0.84, stat.Empirical, namd, nil),
			N:   len(namd),
		},
	}
	if cfg.Full {
		res.Samples = namd
	}
	return res, nil
}

// ApplyNAMDMC runs SolveNAMDMC and writes the quantiles onto every row of the
// system. Like SolveNAMD it short-circuits when every row already carries a
// computed result; a run where every draw masked out counts as computed.
func ApplyNAMDMC(system []model.Planet, kind Kind, cfg MCConfig) ([]model.Planet, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	cached := true
	for i := range system {
		if !kind.mcTarget(&system[i]).Computed() {
			cached = false
			break
		}
	}
	if cached {
		return system, nil
	}

	res, err := SolveNAMDMC(system, kind, cfg)
	if err != nil {
		return nil, err
	}
	for i := range system {
		*kind.mcTarget(&system[i]) = res.Quantiles
	}
	return system, nil
}

// drawNormal draws n deviates around q's central value with the symmetric
// sigma convention. A zero sigma collapses to the central value; missing
// members propagate NaN so downstream masking rejects the whole system draw.
func drawNormal(src rand.Source, q model.Quantity, n int) []float64 {
	sigma := q.Sigma()
	out := make([]float64, n)
	if sigma <= 0 || math.IsNaN(sigma) {
		// Still consume the stream so parameter order stays fixed.
		dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		for i := range out {
			dist.Rand()
			out[i] = q.Val
		}
		return out
	}
	dist := distuv.Normal{Mu: q.Val, Sigma: sigma, Src: src}
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}
