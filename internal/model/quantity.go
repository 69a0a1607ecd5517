package model

import "math"

// Quantity is a physical value with asymmetric one-sigma bounds. Err1 is the
// upper offset (non-negative), Err2 the lower offset (non-positive), matching
// the archive's err1/err2 column convention. NaN marks a missing member.
type Quantity struct {
	Val  float64 `json:"val"`
	Err1 float64 `json:"err1"`
	Err2 float64 `json:"err2"`
}

// NaNQuantity returns a Quantity with all members missing.
func NaNQuantity() Quantity {
	nan := math.NaN()
	return Quantity{Val: nan, Err1: nan, Err2: nan}
}

// Missing reports whether the central value is unknown.
func (q Quantity) Missing() bool {
	return math.IsNaN(q.Val)
}

// Sigma returns the symmetric one-sigma used for Monte Carlo sampling,
// 0.5 * (err1 - err2).
func (q Quantity) Sigma() float64 {
	return 0.5 * (q.Err1 - q.Err2)
}
