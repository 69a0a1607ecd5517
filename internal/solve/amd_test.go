package solve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAMD_CircularCoplanarIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, AMD(1.0, 0.0, 0.0, 1.0), 1e-15)
}

func TestAMD_GrowsWithExcitation(t *testing.T) {
	base := AMD(1.0, 0.1, 5.0, 1.0)
	assert.Greater(t, AMD(1.0, 0.3, 5.0, 1.0), base, "higher eccentricity, higher deficit")
	assert.Greater(t, AMD(1.0, 0.1, 20.0, 1.0), base, "higher inclination, higher deficit")
}

func TestAMD_MaxEccentricityLimit(t *testing.T) {
	// e -> 1 with i = 0 approaches the full m*sqrt(a).
	assert.InDelta(t, 2.0*math.Sqrt(4.0), AMD(2.0, 0.999999, 0.0, 4.0), 1e-2)
}

func TestAMDBatch_MatchesScalar(t *testing.T) {
	mass := []float64{1, 5, 10}
	ecc := []float64{0.0, 0.1, 0.3}
	incl := []float64{0, 5, 45}
	sma := []float64{0.1, 1, 10}

	out := AMDBatch(nil, mass, ecc, incl, sma)
	for i := range mass {
		assert.Equal(t, AMD(mass[i], ecc[i], incl[i], sma[i]), out[i])
	}
}

func TestAMDBatch_ReusesDst(t *testing.T) {
	dst := make([]float64, 2)
	out := AMDBatch(dst, []float64{1, 2}, []float64{0, 0}, []float64{10, 10}, []float64{1, 1})
	assert.Equal(t, &dst[0], &out[0])
}

func TestNAMD_ScaleInvariantInMass(t *testing.T) {
	mass := []float64{1, 2, 3}
	ecc := []float64{0.1, 0.2, 0.05}
	incl := []float64{2, 7, 1}
	sma := []float64{0.1, 0.5, 1.2}

	amd := AMDBatch(nil, mass, ecc, incl, sma)
	v1 := NAMD(amd, mass, sma)

	scaled := make([]float64, len(mass))
	for i := range mass {
		scaled[i] = mass[i] * 1000
	}
	amd2 := AMDBatch(nil, scaled, ecc, incl, sma)
	v2 := NAMD(amd2, scaled, sma)

	assert.InDelta(t, v1, v2, 1e-12)
}

func TestNAMD_BoundedByUnityForPhysicalInputs(t *testing.T) {
	mass := []float64{3, 8}
	ecc := []float64{0.9, 0.4}
	incl := []float64{80, 30}
	sma := []float64{0.2, 0.9}

	amd := AMDBatch(nil, mass, ecc, incl, sma)
	v := NAMD(amd, mass, sma)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 2.0)
}
