// Package interp imputes missing planet attributes from population priors,
// an external mass-radius predictor, and same-system fallbacks, recording
// every substitution on the row's provenance flag.
package interp

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/starfield-labs/exonamd/internal/model"
)

// Predictor is the external mass-radius relation, consumed as a black box:
// given a radius and its symmetric uncertainty (Earth radii) it returns a
// sample distribution of plausible masses (Earth masses).
type Predictor interface {
	PredictMass(ctx context.Context, radius, sigma float64) ([]float64, error)
}

// Radius plausibility window (Earth radii, open interval) for querying the
// mass-radius relation.
const (
	MinRadius = 0.5
	MaxRadius = 6.0
)

// Interpolator fills missing attributes row by row. Each method is
// idempotent when nothing is missing.
type Interpolator struct {
	predictor Predictor
}

// New creates an Interpolator using the given mass-radius predictor.
func New(predictor Predictor) *Interpolator {
	return &Interpolator{predictor: predictor}
}

// Eccentricity imputes a missing eccentricity from the population relation
// e = 0.63 * N^(-1.02), N being the system's planet count, then zeroes any
// still-missing error bound independently.
func (it *Interpolator) Eccentricity(p *model.Planet) {
	if p.Ecc.Missing() {
		p.Ecc.Val = 0.63 * math.Pow(float64(p.SyPNum), -1.02)
		p.Ecc.Err1 = 0
		p.Ecc.Err2 = 0
		p.Flag.Append(model.StageEccentricity, model.SideBoth)
	}
	zeroErrs(&p.Ecc, &p.Flag, model.StageEccentricity)
}

// Mass queries the mass-radius predictor for rows with a missing mass and a
// plausible, well-constrained radius, taking the 16/50/84 percentiles of the
// returned distribution as (lower, central, upper). Rows outside the gate are
// left alone beyond error zeroing.
func (it *Interpolator) Mass(ctx context.Context, p *model.Planet) error {
	if p.Mass.Missing() &&
		!p.Radius.Missing() &&
		p.Radius.Val > MinRadius && p.Radius.Val < MaxRadius &&
		!math.IsNaN(p.Radius.Err1) && !math.IsNaN(p.Radius.Err2) {

		samples, err := it.predictor.PredictMass(ctx, p.Radius.Val, p.Radius.Sigma())
		if err != nil {
			return eris.Wrapf(err, "interp: predict mass for %s", p.Name)
		}
		sort.Float64s(samples)
		q16 := stat.Quantile(0.16, stat.Empirical, samples, nil)
		q50 := stat.Quantile(0.50, stat.Empirical, samples, nil)
		q84 := stat.Quantile(0.84, stat.Empirical, samples, nil)

		p.Mass.Val = q50
		p.Mass.Err1 = q84 - q50
		p.Mass.Err2 = q16 - q50
		p.Flag.Append(model.StageMass, model.SideBoth)
	}
	zeroErrs(&p.Mass, &p.Flag, model.StageMass)
	return nil
}

// Inclination resolves the row's orbital inclination with the three-way
// policy: self-known rows only get missing errors zeroed; if no planet in the
// system reports one, default to 90 degrees (edge-on assumption); otherwise
// copy from the most massive planet that does report it.
func (it *Interpolator) Inclination(planets []model.Planet, idx model.SystemIndex, i int) {
	it.angle(planets, idx, i,
		model.StageInclination,
		func(q *model.Planet) *model.Quantity { return &q.Incl },
		func() model.Quantity { return model.Quantity{Val: 90, Err1: 0, Err2: 0} },
	)
}

// Obliquity resolves the row's true obliquity with the same policy as
// Inclination, except the all-unknown default is the row's relative
// inclination (physical equivalence when no independent obliquity exists).
func (it *Interpolator) Obliquity(planets []model.Planet, idx model.SystemIndex, i int) {
	p := &planets[i]
	it.angle(planets, idx, i,
		model.StageObliquity,
		func(q *model.Planet) *model.Quantity { return &q.TrueObliq },
		func() model.Quantity {
			d := p.RelIncl
			if math.IsNaN(d.Err1) {
				d.Err1 = 0
			}
			if math.IsNaN(d.Err2) {
				d.Err2 = 0
			}
			return d
		},
	)
}

// angle is the shared inclination/obliquity branch. The fallback always
// prefers the most massive reporting planet over any other ordering.
func (it *Interpolator) angle(
	planets []model.Planet,
	idx model.SystemIndex,
	i int,
	stage int,
	attr func(*model.Planet) *model.Quantity,
	allUnknown func() model.Quantity,
) {
	p := &planets[i]
	q := attr(p)

	if !q.Missing() {
		zeroErrs(q, &p.Flag, stage)
		return
	}

	members := idx[p.Hostname]
	donor := -1
	for _, j := range members { // descending mass order
		if !attr(&planets[j]).Missing() {
			donor = j
			break
		}
	}

	if donor < 0 {
		*q = allUnknown()
		p.Flag.Append(stage, model.SideBoth)
		return
	}

	src := *attr(&planets[donor])
	if math.IsNaN(src.Err1) {
		src.Err1 = 0
	}
	if math.IsNaN(src.Err2) {
		src.Err2 = 0
	}
	*q = src
	p.Flag.Append(stage, model.SideBoth)
}

// SMAErr zeroes missing semi-major-axis error bounds independently.
func (it *Interpolator) SMAErr(p *model.Planet) {
	zeroErrs(&p.SMA, &p.Flag, model.StageSMAErr)
}

// zeroErrs replaces missing error bounds with zero, tagging each side that
// was defaulted.
func zeroErrs(q *model.Quantity, f *model.Flag, stage int) {
	if math.IsNaN(q.Err1) {
		q.Err1 = 0
		f.Append(stage, model.SideUpper)
	}
	if math.IsNaN(q.Err2) {
		q.Err2 = 0
		f.Append(stage, model.SideLower)
	}
}
