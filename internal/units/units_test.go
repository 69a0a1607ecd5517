package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeplerRoundTrip(t *testing.T) {
	// Earth: 1 AU around 1 M_sun is one year.
	period := PeriodDays(1, 1)
	assert.InDelta(t, 365.25, period, 0.1)

	assert.InDelta(t, 1.0, SMAAU(period, 1), 1e-12)
	assert.InDelta(t, 1.0, MStarMSun(1, period), 1e-12)
}

func TestSMAAU_ScalesWithMass(t *testing.T) {
	// Same period around a heavier star means a wider orbit, a ~ M^(1/3).
	a1 := SMAAU(365.25, 1)
	a2 := SMAAU(365.25, 8)
	assert.InDelta(t, 2.0, a2/a1, 1e-12)
}

func TestRSunAU(t *testing.T) {
	assert.InDelta(t, 0.00465047, RSunAU, 1e-8)
}

func TestRSunREarth(t *testing.T) {
	assert.InDelta(t, 109.076, RSunREarth, 0.01)
}

func TestDeg2Rad(t *testing.T) {
	assert.Equal(t, 0.0, Deg2Rad(0))
	assert.InDelta(t, math.Pi/2, Deg2Rad(90), 1e-15)
	assert.InDelta(t, math.Pi, Deg2Rad(180), 1e-15)
}
