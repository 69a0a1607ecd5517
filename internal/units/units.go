// Package units holds the physical constants and unit conversions used by the
// relation solver. All conversions go through SI so that mixed-unit relations
// (AU, solar radii, Earth radii, solar masses, days) never pick up silent
// scale factors.
package units

import "math"

// IAU 2015 nominal values and CODATA GM_sun.
const (
	AUMeters     = 1.495978707e11    // astronomical unit (m)
	RSunMeters   = 6.957e8           // nominal solar radius (m)
	REarthMeters = 6.3781e6          // nominal Earth equatorial radius (m)
	GMSun        = 1.3271244e20      // G * M_sun (m^3 s^-2)
	DaySeconds   = 86400.0           // day (s)
)

// RSunAU is one solar radius expressed in AU.
const RSunAU = RSunMeters / AUMeters

// RSunREarth is one solar radius expressed in Earth radii.
const RSunREarth = RSunMeters / REarthMeters

// PeriodDays returns the orbital period (days) for a semi-major axis in AU
// and a stellar mass in solar masses, via Kepler's third law.
func PeriodDays(smaAU, mstarMSun float64) float64 {
	a := smaAU * AUMeters
	return 2 * math.Pi * math.Sqrt(a*a*a/(GMSun*mstarMSun)) / DaySeconds
}

// SMAAU returns the semi-major axis (AU) for an orbital period in days and a
// stellar mass in solar masses.
func SMAAU(periodDays, mstarMSun float64) float64 {
	t := periodDays * DaySeconds / (2 * math.Pi)
	return math.Cbrt(t*t*GMSun*mstarMSun) / AUMeters
}

// MStarMSun returns the stellar mass (solar masses) for a semi-major axis in
// AU and an orbital period in days.
func MStarMSun(smaAU, periodDays float64) float64 {
	a := smaAU * AUMeters
	t := periodDays * DaySeconds / (2 * math.Pi)
	return a * a * a / (t * t * GMSun)
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
