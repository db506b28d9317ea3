package core

import "math"

// Version identifies the propagation method implemented by this package.
const Version = "P.533-13.8"

// Physical and numerical constants shared by every stage.
const (
	R0   = 6371.009     // mean Earth radius, km (IUGG)
	D2R  = 0.0174532925 // degrees to radians
	R2D  = 57.2957795   // radians to degrees
	VofL = 299792458.0  // speed of light, m/s

	// TinyDB is the smallest representable level in dB and marks an unset
	// or vanishing power.
	TinyDB = -307.0
)

// TooBig marks a path basic MUF that could not be determined.
const TooBig = math.MaxFloat64

const (
	maxSSN      = 160
	minElevDeg  = 3.0
	maxHopKm    = 4000.0
	hrELayerKm  = 110.0
	unsetMUF    = 99.9
	unsetLength = 999999.9

	// noLowestMode stands in for the hop index of a missing lowest order
	// mode.
	noLowestMode = 99
)

// cmax returns a when it compares greater than b, otherwise b. Unlike
// math.Max a NaN in a yields b.
func cmax(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Control point slots within Path.CP.
const (
	T1k  = 0 // T + 1000 km
	Td02 = 1 // T + d0/2
	MP   = 2 // mid-path
	Rd02 = 3 // R - d0/2
	R1k  = 4 // R - 1000 km
)

// NumControlPoints is the number of persistent control points per path.
const NumControlPoints = 5

// Antenna lookup direction.
const (
	TXToRX = 1
	RXToTX = 2
)

// Calendar months as used by every month-indexed table.
const (
	jan = iota
	feb
	mar
	apr
	may
	jun
	jul
	aug
	sep
	oct
	nov
	dec
)
