package solve

import (
	"math"

	"github.com/starfield-labs/exonamd/internal/units"
)

// AMD returns a single planet's angular momentum deficit contribution:
// m * sqrt(a) * (1 - sqrt(1 - e^2) * cos(i)). The inclination is in degrees.
func AMD(mass, ecc, inclDeg, sma float64) float64 {
	return mass * math.Sqrt(sma) * (1 - math.Sqrt(1-ecc*ecc)*math.Cos(units.Deg2Rad(inclDeg)))
}

// AMDBatch evaluates AMD element-wise over equal-length sample slices,
// writing into dst (allocated when nil). Used unchanged for point estimates
// and full Monte Carlo sample arrays.
func AMDBatch(dst, mass, ecc, inclDeg, sma []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(mass))
	}
	for i := range mass {
		dst[i] = AMD(mass[i], ecc[i], inclDeg[i], sma[i])
	}
	return dst
}

// NAMD normalizes summed per-planet AMD by the system's characteristic
// angular momentum: sum(amd) / sum(m * sqrt(a)).
func NAMD(amd, mass, sma []float64) float64 {
	var num, den float64
	for i := range amd {
		num += amd[i]
		den += mass[i] * math.Sqrt(sma[i])
	}
	return num / den
}
