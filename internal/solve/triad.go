// Package solve implements the deterministic physics of the catalog: the
// three-relation parameter solver, the AMD/NAMD formulas, relative
// inclination, and the Monte Carlo propagation engine.
package solve

import (
	"math"

	"github.com/starfield-labs/exonamd/internal/model"
	"github.com/starfield-labs/exonamd/internal/units"
)

// ARsResult is the solved (semi-major axis, stellar radius, ratio) triad.
type ARsResult struct {
	SMA      float64 // AU
	StRad    float64 // R_sun
	SMARatio float64
}

// SolveARs fills the one missing member of the sma / stellar-radius / ratio
// triad. With zero or more than one member missing the triad is returned
// unchanged: nothing to do, or not enough known to solve.
func SolveARs(sma, rstar, ars float64) ARsResult {
	res := ARsResult{SMA: sma, StRad: rstar, SMARatio: ars}
	if countNaN(sma, rstar, ars) != 1 {
		return res
	}
	switch {
	case math.IsNaN(sma):
		res.SMA = ars * rstar * units.RSunAU
	case math.IsNaN(rstar):
		res.StRad = sma / ars / units.RSunAU
	default:
		res.SMARatio = sma / (rstar * units.RSunAU)
	}
	return res
}

// RpRsResult is the solved (planet radius, stellar radius, ratio) triad.
type RpRsResult struct {
	Radius      float64 // R_earth
	StRad       float64 // R_sun
	RadiusRatio float64
}

// SolveRpRs fills the one missing member of the planet-radius /
// stellar-radius / ratio triad.
func SolveRpRs(rplanet, rstar, rprs float64) RpRsResult {
	res := RpRsResult{Radius: rplanet, StRad: rstar, RadiusRatio: rprs}
	if countNaN(rplanet, rstar, rprs) != 1 {
		return res
	}
	switch {
	case math.IsNaN(rplanet):
		res.Radius = rprs * rstar * units.RSunREarth
	case math.IsNaN(rstar):
		res.StRad = rplanet / rprs / units.RSunREarth
	default:
		res.RadiusRatio = rplanet / (rstar * units.RSunREarth)
	}
	return res
}

// APeriodResult is the solved (period, semi-major axis, stellar mass) triad.
type APeriodResult struct {
	Period float64 // days
	SMA    float64 // AU
	StMass float64 // M_sun
}

// SolveAPeriod fills the one missing member of the Kepler triad.
func SolveAPeriod(period, sma, mstar float64) APeriodResult {
	res := APeriodResult{Period: period, SMA: sma, StMass: mstar}
	if countNaN(period, sma, mstar) != 1 {
		return res
	}
	switch {
	case math.IsNaN(mstar):
		res.StMass = units.MStarMSun(sma, period)
	case math.IsNaN(period):
		res.Period = units.PeriodDays(sma, mstar)
	default:
		res.SMA = units.SMAAU(period, mstar)
	}
	return res
}

// SolveRow resolves a planet row's triads in ascending order of missingness,
// so the most determined triad runs first and may unlock the next one (a
// resolved semi-major axis feeds the Kepler triad). Unresolved members stay
// NaN; that is the designed terminal state, not a failure.
func SolveRow(p *model.Planet) {
	for range 3 {
		counts := [3]int{
			countNaN(p.SMA.Val, p.StRad.Val, p.SMARatio),
			countNaN(p.Radius.Val, p.StRad.Val, p.RadiusRatio),
			countNaN(p.Period.Val, p.SMA.Val, p.StMass.Val),
		}
		order := rankTriads(counts)
		before := counts

		for _, t := range order {
			switch t {
			case 0:
				r := SolveARs(p.SMA.Val, p.StRad.Val, p.SMARatio)
				p.SMA.Val, p.StRad.Val, p.SMARatio = r.SMA, r.StRad, r.SMARatio
			case 1:
				r := SolveRpRs(p.Radius.Val, p.StRad.Val, p.RadiusRatio)
				p.Radius.Val, p.StRad.Val, p.RadiusRatio = r.Radius, r.StRad, r.RadiusRatio
			case 2:
				r := SolveAPeriod(p.Period.Val, p.SMA.Val, p.StMass.Val)
				p.Period.Val, p.SMA.Val, p.StMass.Val = r.Period, r.SMA, r.StMass
			}
		}

		after := [3]int{
			countNaN(p.SMA.Val, p.StRad.Val, p.SMARatio),
			countNaN(p.Radius.Val, p.StRad.Val, p.RadiusRatio),
			countNaN(p.Period.Val, p.SMA.Val, p.StMass.Val),
		}
		if after == before {
			return
		}
	}
}

// rankTriads returns triad indices sorted by ascending missingness count,
// ties kept in declaration order.
func rankTriads(counts [3]int) [3]int {
	order := [3]int{0, 1, 2}
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && counts[order[j]] < counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

func countNaN(vals ...float64) int {
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
