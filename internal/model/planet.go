// Package model defines the planet record, its provenance flag, and the
// per-system mass index shared by the solver, interpolator, and Monte Carlo
// engine.
package model

import "math"

// Planet is one catalog row, identified by (Hostname, Name). Quantities use
// NaN for missing members; the solver and interpolator fill gaps in place but
// never alter an already-present reported value.
type Planet struct {
	Hostname    string `json:"hostname"`
	Name        string `json:"pl_name"`
	DefaultFlag int    `json:"default_flag"`
	RowUpdate   string `json:"rowupdate"` // YYYY-MM-DD, drives incremental refresh
	SyPNum      int    `json:"sy_pnum"`

	StRad  Quantity `json:"st_rad"`  // stellar radius (R_sun)
	StMass Quantity `json:"st_mass"` // stellar mass (M_sun)

	Period    Quantity `json:"pl_orbper"`   // orbital period (days)
	SMA       Quantity `json:"pl_orbsmax"`  // semi-major axis (AU)
	Radius    Quantity `json:"pl_rade"`     // planet radius (R_earth)
	Mass      Quantity `json:"pl_bmasse"`   // planet mass (M_earth)
	Ecc       Quantity `json:"pl_orbeccen"` // eccentricity
	Incl      Quantity `json:"pl_orbincl"`  // orbital inclination (deg)
	RelIncl   Quantity `json:"pl_relincl"`  // inclination w.r.t. most massive planet (deg)
	TrueObliq Quantity `json:"pl_trueobliq"`

	SMARatio    float64 `json:"pl_ratdor"` // sma / stellar radius
	RadiusRatio float64 `json:"pl_ratror"` // planet radius / stellar radius

	Flag Flag `json:"flag"`

	NAMDRel   float64   `json:"namd_rel"`
	NAMDAbs   float64   `json:"namd_abs"`
	NAMDRelMC Quantiles `json:"namd_rel_mc"`
	NAMDAbsMC Quantiles `json:"namd_abs_mc"`
}

// Quantiles summarizes a Monte Carlo sample distribution. All quantiles are
// NaN when fewer than the threshold count of valid samples survived masking;
// N records the surviving count, which can legitimately be zero. An N of -1
// marks a result that has never been computed.
type Quantiles struct {
	Q16 float64 `json:"q16"`
	Q50 float64 `json:"q50"`
	Q84 float64 `json:"q84"`
	N   int     `json:"n"`
}

// Computed reports whether a Monte Carlo run produced this result, even one
// where every draw masked out.
func (q Quantiles) Computed() bool {
	return q.N >= 0
}

// NaNQuantiles returns undefined quantiles with the given surviving count.
func NaNQuantiles(n int) Quantiles {
	nan := math.NaN()
	return Quantiles{Q16: nan, Q50: nan, Q84: nan, N: n}
}

// UnsetQuantiles returns the not-yet-computed state.
func UnsetQuantiles() Quantiles {
	nan := math.NaN()
	return Quantiles{Q16: nan, Q50: nan, Q84: nan, N: -1}
}

// NewPlanet returns a Planet with every quantity missing.
func NewPlanet(hostname, name string) Planet {
	nan := math.NaN()
	return Planet{
		Hostname:    hostname,
		Name:        name,
		StRad:       NaNQuantity(),
		StMass:      NaNQuantity(),
		Period:      NaNQuantity(),
		SMA:         NaNQuantity(),
		Radius:      NaNQuantity(),
		Mass:        NaNQuantity(),
		Ecc:         NaNQuantity(),
		Incl:        NaNQuantity(),
		RelIncl:     NaNQuantity(),
		TrueObliq:   NaNQuantity(),
		SMARatio:    nan,
		RadiusRatio: nan,
		NAMDRel:     nan,
		NAMDAbs:     nan,
		NAMDRelMC:   UnsetQuantiles(),
		NAMDAbsMC:   UnsetQuantiles(),
	}
}
