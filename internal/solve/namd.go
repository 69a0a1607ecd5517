package solve

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/starfield-labs/exonamd/internal/model"
)

// Kind selects which angle feeds the NAMD: relative inclination or true
// obliquity.
type Kind string

const (
	KindRelative Kind = "rel"
	KindAbsolute Kind = "abs"
)

// Validate rejects unknown selectors. An invalid kind is a configuration
// error surfaced immediately, never masked.
func (k Kind) Validate() error {
	switch k {
	case KindRelative, KindAbsolute:
		return nil
	}
	return eris.Errorf("solve: invalid kind %q", string(k))
}

// angle returns the kind's angle quantity for a row.
func (k Kind) angle(p *model.Planet) model.Quantity {
	if k == KindRelative {
		return p.RelIncl
	}
	return p.TrueObliq
}

// namdTarget returns the row's point-estimate NAMD column for the kind.
func (k Kind) namdTarget(p *model.Planet) *float64 {
	if k == KindRelative {
		return &p.NAMDRel
	}
	return &p.NAMDAbs
}

// mcTarget returns the row's Monte Carlo quantile column for the kind.
func (k Kind) mcTarget(p *model.Planet) *model.Quantiles {
	if k == KindRelative {
		return &p.NAMDRelMC
	}
	return &p.NAMDAbsMC
}

// SolveNAMD computes the system NAMD from point estimates and writes it onto
// every row. When every row already carries the target value the system is
// returned unchanged, so repeated passes over an augmented table do not
// recompute.
func SolveNAMD(system []model.Planet, kind Kind) ([]model.Planet, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	cached := true
	for i := range system {
		if math.IsNaN(*kind.namdTarget(&system[i])) {
			cached = false
			break
		}
	}
	if cached {
		return system, nil
	}

	n := len(system)
	mass := make([]float64, n)
	ecc := make([]float64, n)
	angle := make([]float64, n)
	sma := make([]float64, n)
	for i := range system {
		p := &system[i]
		mass[i] = p.Mass.Val
		ecc[i] = p.Ecc.Val
		angle[i] = kind.angle(p).Val
		sma[i] = p.SMA.Val
	}

	amd := AMDBatch(nil, mass, ecc, angle, sma)
	namd := NAMD(amd, mass, sma)
	for i := range system {
		*kind.namdTarget(&system[i]) = namd
	}
	return system, nil
}
