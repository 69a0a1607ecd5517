package solve

import (
	"math"

	"github.com/starfield-labs/exonamd/internal/model"
)

// SolveRelIncl fills every row's inclination relative to the system's most
// massive planet. Errors combine in quadrature with the reference planet's;
// the reference itself gets 0 by the same formula. Rows whose own inclination
// is missing stay NaN.
func SolveRelIncl(system []model.Planet) []model.Planet {
	ref, ok := mostMassive(system)
	if !ok {
		return system
	}
	refIncl := system[ref].Incl
	for i := range system {
		p := &system[i]
		if p.Incl.Missing() || refIncl.Missing() {
			p.RelIncl = model.NaNQuantity()
			continue
		}
		p.RelIncl = model.Quantity{
			Val:  math.Abs(p.Incl.Val - refIncl.Val),
			Err1: math.Hypot(p.Incl.Err1, refIncl.Err1),
			Err2: -math.Hypot(p.Incl.Err2, refIncl.Err2),
		}
	}
	return system
}

// mostMassive returns the index of the heaviest planet by point-estimate
// mass, skipping rows with unknown mass.
func mostMassive(system []model.Planet) (int, bool) {
	best, found := 0, false
	for i, p := range system {
		if p.Mass.Missing() {
			continue
		}
		if !found || p.Mass.Val > system[best].Mass.Val {
			best, found = i, true
		}
	}
	return best, found
}
