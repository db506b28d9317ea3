package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// IonosphericMap supplies the monthly foF2 and M(3000)F2 grid. Indices
// follow the 1.5 degree grid whose origin is 180W, 90S; ssn 0 is SSN=0 and
// ssn 1 is SSN=100.
type IonosphericMap interface {
	Lookup(hour, lng, lat, ssn int) (foF2, m3kF2 float64)
}

// DecileTable supplies the P.1239 foF2 variability factors.
type DecileTable interface {
	Lookup(season, hour, lat, ssn, decile int) float64
}

type gridNode struct {
	j, k int // longitude and latitude indices
}

// CalculateCPParameters populates the ionospheric, solar and geomagnetic
// fields of cp for the path's current month, hour and SSN.
func CalculateCPParameters(p *Path, cp *model.ControlPoint) {
	calculateCPAt(p, cp, p.Hour)
}

// calculateCPAt is CalculateCPParameters at an arbitrary UTC hour, used by
// the 24-hour sweeps of the long model.
func calculateCPAt(p *Path, cp *model.ControlPoint, hour int) {
	cp.FoF2, cp.M3kF2 = IonosphericParameters(p.Iono, cp.L, hour, p.SSN)
	cp.Sun = SolarParameters(cp.L, p.Month, float64(hour))
	cp.LTime = float64(hour)
	cp.FoE = FindfoE(cp, p.Month, hour, p.SSN)
	cp.Dip[model.Height100km], cp.FH[model.Height100km] = Magfit(cp.L, 100.0)
	cp.Dip[model.Height300km], cp.FH[model.Height300km] = Magfit(cp.L, 300.0)
}

// IonosphericParameters interpolates foF2 and M(3000)F2 at loc from the four
// surrounding grid nodes, then linearly in SSN (clamped to 160). Neighbour
// selection is quadrant dependent: longitude wraps at the date line and
// latitude collapses at the poles.
func IonosphericParameters(m IonosphericMap, loc model.Location, hour, ssn int) (foF2, m3kF2 float64) {
	const (
		zeroLat = 60
		zeroLng = 120
		nLng    = model.IonoLngs
		nLat    = model.IonoLats
	)
	inc := 1.5 * D2R

	var UL, UR, LL, LR gridNode
	kIdx := zeroLat + int(loc.Lat/inc)
	jIdx := zeroLng + int(loc.Lng/inc)

	switch {
	case loc.Lat >= 0 && loc.Lng >= 0: // NE
		LL = gridNode{jIdx, kIdx}
		LR = gridNode{LL.j + 1, LL.k}
		UR = gridNode{LL.j + 1, LL.k + 1}
		UL = gridNode{LL.j, LL.k + 1}
		switch {
		case LL.j != nLng-1 && LL.k == nLat-1:
			UR.k, UL.k = LL.k, LL.k
		case LL.j == nLng-1 && LL.k != nLat-1:
			LR.j, UR.j = 0, 0
		case LL.j == nLng-1:
			LR = gridNode{0, LL.k}
			UR = gridNode{0, LL.k}
			UL = gridNode{LL.j, LL.k}
		}
	case loc.Lat >= 0: // NW
		LR = gridNode{jIdx, kIdx}
		LL = gridNode{LR.j - 1, LR.k}
		UL = gridNode{LR.j - 1, LR.k + 1}
		UR = gridNode{LR.j, LR.k + 1}
		switch {
		case LR.j != 0 && LR.k == nLat-1:
			UR.k, UL.k = LR.k, LR.k
		case LR.j == 0 && LR.k != nLat-1:
			LL.j, UL.j = nLng-1, nLng-1
		case LR.j == 0:
			LL = gridNode{nLng - 1, LR.k}
			UR = gridNode{LR.j, LR.k}
			UL = gridNode{nLng - 1, LR.k}
		}
	case loc.Lng >= 0: // SE
		UL = gridNode{jIdx, kIdx}
		UR = gridNode{UL.j + 1, UL.k}
		LL = gridNode{UL.j, UL.k - 1}
		LR = gridNode{UL.j + 1, UL.k - 1}
		switch {
		case UL.j != nLng-1 && UL.k == 0:
			LL.k, LR.k = UL.k, UL.k
		case UL.j == nLng-1 && UL.k != 0:
			LR.j, UR.j = 0, 0
		case UL.j == nLng-1:
			LR = gridNode{0, UL.k}
			UR = gridNode{0, UL.k}
			LL = gridNode{UL.j, UL.k}
		}
	default: // SW
		UR = gridNode{jIdx, kIdx}
		UL = gridNode{UR.j - 1, UR.k}
		LL = gridNode{UR.j - 1, UR.k - 1}
		LR = gridNode{UR.j, UR.k - 1}
		switch {
		case UR.j != 0 && UR.k == 0:
			LR.k, LL.k = UR.k, UR.k
		case UR.j == 0 && UR.k != 0:
			LL.j, UL.j = nLng-1, nLng-1
		case UR.j == 0:
			LR = gridNode{UR.j, UR.k}
			LL = gridNode{nLng - 1, UR.k}
			UL = gridNode{nLng - 1, UR.k}
		}
	}

	frack := math.Abs(loc.Lat/inc) - float64(int(math.Abs(loc.Lat/inc)))
	fracj := math.Abs(loc.Lng/inc) - float64(int(math.Abs(loc.Lng/inc)))

	var fo, mk [2]float64
	for s := 0; s < 2; s++ {
		llF, llM := m.Lookup(hour, LL.j, LL.k, s)
		lrF, lrM := m.Lookup(hour, LR.j, LR.k, s)
		ulF, ulM := m.Lookup(hour, UL.j, UL.k, s)
		urF, urM := m.Lookup(hour, UR.j, UR.k, s)
		fo[s] = BilinearInterpolation(llF, lrF, ulF, urF, frack, fracj)
		mk[s] = BilinearInterpolation(llM, lrM, ulM, urM, frack, fracj)
	}

	r := float64(min(ssn, maxSSN))
	foF2 = (fo[1]*r + fo[0]*(100.0-r)) / 100.0
	m3kF2 = (mk[1]*r + mk[0]*(100.0-r)) / 100.0
	return foF2, m3kF2
}

// FindfoE returns the E-layer critical frequency at cp by the P.1239
// regression. cp.Sun must already be populated for the same hour.
func FindfoE(cp *model.ControlPoint, month, hour, ssn int) float64 {
	r := float64(min(ssn, maxSSN))
	lat := cp.L.Lat
	sun := cp.Sun

	phi := 63.7 + 0.728*r + 0.00089*r*r
	A := 1.0 + 0.0094*(phi-66.0)

	var M, X, Y float64
	if math.Abs(lat) < 32.0*D2R {
		M = -1.93 + 1.92*math.Cos(lat)
		X, Y = 23.0, 116.0
	} else {
		M = 0.11 - 0.49*math.Cos(lat)
		X, Y = 92.0, 35.0
	}

	N := 80.0 * D2R
	if math.Abs(lat-sun.Decl) < 80.0*D2R {
		N = lat - sun.Decl
	}
	B := math.Pow(math.Cos(N), M)
	C := X + Y*math.Cos(lat)

	p := 1.2
	if math.Abs(lat) <= 12.0*D2R {
		p = 1.31
	}

	var D float64
	switch {
	case sun.SZA <= 73.0*D2R:
		D = math.Pow(math.Cos(sun.SZA), p)
	case sun.SZA < math.Pi/2.0:
		dsza := 6.27e-13 * math.Pow(sun.SZA*R2D-50.0, 8.0) * D2R
		D = math.Pow(math.Cos(sun.SZA-dsza), p)
	default:
		h := hoursAfterSunset(float64(hour), sun)
		night := math.Pow(0.072, p) * math.Exp(25.2-0.28*sun.SZA*R2D)
		// Polar winter test as published: the southern branch compares
		// against +72.5622 degrees.
		polarWinter := (lat > 72.5622*D2R && (month == nov || month == dec || month == jan)) ||
			(lat < 72.5622*D2R && (month == may || month == jun || month == jul))
		if polarWinter {
			D = night
		} else {
			D = math.Max(math.Pow(0.072, p)*math.Exp(-1.4*h), night)
		}
	}

	return math.Max(math.Pow(A*B*C*D, 0.25), math.Pow(0.004*math.Pow(1.0+0.021*phi, 2), 0.25))
}

func hoursAfterSunset(hour float64, sun model.Sun) float64 {
	switch {
	case sun.LSS >= sun.LSR && hour >= sun.LSS && hour >= sun.LSR:
		return hour - sun.LSS
	case sun.LSS < sun.LSR && hour >= sun.LSS && hour < sun.LSR:
		return hour - sun.LSS
	case sun.LSS >= sun.LSR && hour < sun.LSS && hour < sun.LSR:
		return 24.0 - sun.LSS + hour
	default:
		return 0.0
	}
}
