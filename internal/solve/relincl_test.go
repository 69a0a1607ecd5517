package solve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfield-labs/exonamd/internal/model"
)

func TestSolveRelIncl_ReferenceIsMostMassive(t *testing.T) {
	b := model.NewPlanet("X", "X b")
	b.Mass.Val = 10
	b.Incl = model.Quantity{Val: 88.0, Err1: 0.5, Err2: -0.4}

	c := model.NewPlanet("X", "X c")
	c.Mass.Val = 2
	c.Incl = model.Quantity{Val: 89.5, Err1: 0.3, Err2: -0.3}

	system := SolveRelIncl([]model.Planet{b, c})

	// Reference planet: zero offset, errors combine with themselves.
	assert.Equal(t, 0.0, system[0].RelIncl.Val)
	assert.InDelta(t, math.Hypot(0.5, 0.5), system[0].RelIncl.Err1, 1e-15)

	assert.InDelta(t, 1.5, system[1].RelIncl.Val, 1e-12)
	assert.InDelta(t, math.Hypot(0.3, 0.5), system[1].RelIncl.Err1, 1e-15)
	assert.InDelta(t, -math.Hypot(0.3, 0.4), system[1].RelIncl.Err2, 1e-15)
}

func TestSolveRelIncl_MissingOwnInclinationStaysNaN(t *testing.T) {
	b := model.NewPlanet("X", "X b")
	b.Mass.Val = 10
	b.Incl = model.Quantity{Val: 90, Err1: 0, Err2: 0}

	c := model.NewPlanet("X", "X c")
	c.Mass.Val = 2 // inclination unknown

	system := SolveRelIncl([]model.Planet{b, c})
	assert.True(t, system[1].RelIncl.Missing())
}

func TestSolveRelIncl_NoMassKnown(t *testing.T) {
	b := model.NewPlanet("X", "X b")
	b.Incl = model.Quantity{Val: 90, Err1: 0, Err2: 0}

	system := SolveRelIncl([]model.Planet{b})
	assert.True(t, system[0].RelIncl.Missing(), "no reference without any known mass")
}

func TestSolveRelIncl_AbsoluteOffset(t *testing.T) {
	b := model.NewPlanet("X", "X b")
	b.Mass.Val = 10
	b.Incl = model.Quantity{Val: 88, Err1: 0, Err2: 0}

	c := model.NewPlanet("X", "X c")
	c.Mass.Val = 2
	c.Incl = model.Quantity{Val: 86, Err1: 0, Err2: 0}

	system := SolveRelIncl([]model.Planet{b, c})
	require.Len(t, system, 2)
	assert.Equal(t, 2.0, system[1].RelIncl.Val, "offset below the reference is still positive")
}
