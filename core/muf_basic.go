package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// BasicMUF finds the lowest-order E and F2 modes and the basic MUF of every
// mode, then the path basic MUF. Paths beyond 9000 km are left to the long
// model.
//
// Reads: Distance, CP[MP], CP[T1k], CP[R1k], Frequency, Iono.
// Writes: CP[MP].Hr, CP[Td02], CP[Rd02], N0F2, N0E, Dmax, BMUF,
// F2[].BMUF, E[].BMUF, E[].Hr.
func BasicMUF(p *Path) {
	if p.Distance > 9000 {
		return
	}
	basicMUFF2(p)
	basicMUFE(p)

	switch {
	case p.N0E.Valid() && p.N0F2.Valid():
		p.BMUF = math.Max(p.Mode(p.N0E).BMUF, p.Mode(p.N0F2).BMUF)
	case p.N0E.Valid():
		p.BMUF = p.Mode(p.N0E).BMUF
	case p.N0F2.Valid():
		p.BMUF = p.Mode(p.N0F2).BMUF
	default:
		p.BMUF = TooBig
	}
}

// lowestOrderMode returns the smallest hop index whose hop is shorter than
// the horizon hop dh, or -1.
func lowestOrderMode(distance, dh float64, maxModes int) int {
	for n := 0; n < maxModes; n++ {
		if dh > distance/float64(n+1) {
			return n
		}
	}
	return -1
}

func basicMUFF2(p *Path) {
	mp := &p.CP[MP]
	hr := math.Min(1490.0/mp.M3kF2-176.0, 500.0)
	mp.Hr = hr

	n0 := lowestOrderMode(p.Distance, horizonHop(hr), model.MaxF2Modes)
	if n0 < 0 {
		return
	}
	p.N0F2 = model.F2Mode(n0)

	p.Dmax = math.Min(Calcdmax(mp), maxHopKm)
	dmax := p.Dmax
	d0 := p.Distance / float64(n0+1)

	if p.Distance <= dmax {
		p.F2[n0].BMUF = CalcF2DMUF(mp, d0, dmax, CalcB(mp))
	} else {
		td, rd := &p.CP[Td02], &p.CP[Rd02]
		frac := 1.0 / (2.0 * float64(n0+1))
		placeControlPoint(p, td, frac)
		placeControlPoint(p, rd, 1.0-frac)
		CalculateCPParameters(p, td)
		CalculateCPParameters(p, rd)
		p.F2[n0].BMUF = math.Min(
			CalcF2DMUF(td, d0, dmax, CalcB(td)),
			CalcF2DMUF(rd, d0, dmax, CalcB(rd)),
		)
	}
	p.BMUF = p.F2[n0].BMUF

	for n := n0 + 1; n < model.MaxF2Modes; n++ {
		dn := p.Distance / float64(n+1)
		if p.Distance <= dmax {
			p.F2[n].BMUF = CalcF2DMUF(mp, dn, dmax, CalcB(mp))
			continue
		}
		// Higher-order modes scale the lowest-order MUF; dmax is not capped here.
		td, rd := &p.CP[Td02], &p.CP[Rd02]
		mn0T := CalcF2DMUF(td, d0, Calcdmax(td), CalcB(td))
		mn0R := CalcF2DMUF(rd, d0, Calcdmax(rd), CalcB(rd))
		mnT := CalcF2DMUF(td, dn, Calcdmax(td), CalcB(td))
		mnR := CalcF2DMUF(rd, dn, Calcdmax(rd), CalcB(rd))
		p.F2[n].BMUF = p.BMUF * math.Min(mnT/mn0T, mnR/mn0R)
	}
}

func basicMUFE(p *Path) {
	if p.Distance >= 4000.0 {
		return
	}
	hr := hrELayerKm
	n0 := lowestOrderMode(p.Distance, horizonHop(hr), model.MaxEModes)
	if n0 < 0 {
		return
	}
	p.N0E = model.EMode(n0)

	for n := n0; n < model.MaxEModes; n++ {
		m := &p.E[n]
		m.Hr = hr
		dh := math.Min(p.Distance/float64(n+1), maxHopKm)
		i110 := IncidenceAngle(ElevationAngle(dh, hr), hr)
		if p.Distance < 2000.0 {
			m.BMUF = p.CP[MP].FoE / math.Cos(i110)
		} else {
			m.BMUF = math.Min(p.CP[R1k].FoE, p.CP[T1k].FoE) / math.Cos(i110)
		}
	}
}

// Calcdmax returns the maximum single-hop F2 distance at cp. The result is
// not capped at 4000 km.
func Calcdmax(cp *model.ControlPoint) float64 {
	B := CalcB(cp)
	x := cp.X
	return 4780.0 + (12610.0+2140.0/math.Pow(x, 2)-49720.0/math.Pow(x, 4)+688900.0/math.Pow(x, 6))*(1.0/B-0.303)
}

// CalcB returns the intermediate B of the F2(D)MUF regression and stores
// the foF2/foE ratio (at least 2) on cp.
func CalcB(cp *model.ControlPoint) float64 {
	if cp.FoE != 0.0 {
		cp.X = math.Max(cp.FoF2/cp.FoE, 2.0)
	} else {
		cp.X = 2.0
	}
	return cp.M3kF2 - 0.124 + (cp.M3kF2*cp.M3kF2-4)*(0.0215+0.005*math.Sin(7.854/cp.X-1.9635))
}

// CalcCd evaluates the distance polynomial Cd for hop d and dmax.
func CalcCd(d, dmax float64) float64 {
	Z := 1.0 - 2.0*d/dmax
	return 0.74 - 0.591*Z - 0.424*math.Pow(Z, 2) - 0.090*math.Pow(Z, 3) +
		0.088*math.Pow(Z, 4) + 0.181*math.Pow(Z, 5) + 0.096*math.Pow(Z, 6)
}

// CalcF2DMUF returns the F2 basic MUF at cp for hop distance d.
func CalcF2DMUF(cp *model.ControlPoint, distance, dmax, B float64) float64 {
	d := math.Min(distance, dmax)
	Cd := CalcCd(d, dmax)
	C3k := CalcCd(3000.0, dmax)
	return (1.0+(Cd/C3k)*(B-1.0))*cp.FoF2 + (cp.FH[model.Height300km]/2.0)*(1.0-distance/dmax)
}
