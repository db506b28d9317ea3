package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

const (
	longHr          = 300.0 // km
	longLy          = -0.17 // dB
	fLDecay         = 0.7945
	penetrationHr   = 90.0 // km
	lowerHopLimitKm = 3000.0
	upperHopLimitKm = 4000.0
)

// longSweep holds 24 hours of the auxiliary points of the long model: the
// 90 km penetration points used for fL and the dM/2 points used for fM.
type longSweep struct {
	pen    [][model.IonoHours]model.ControlPoint
	td, rd [model.IonoHours]model.ControlPoint
}

// LongPathFieldStrength computes the long-model field strength El for paths
// of 7000 km and more from the upper and lower reference frequencies. Beyond
// 9000 km it also owns the path MUFs, elevation and control points.
//
// Reads: Distance, TX, RX, Month, Hour, SSN, Season, Frequency, TXPower,
// TXAntenna, CP[MP], Iono, Deciles.
// Writes: Ptick, E0, Gtl, Gap, Ly, FH, FM, K, FL, F, El; beyond 9000 km
// also BMUF, MUF50/90/10, OPMUF/90/10, Ele, CP[T1k], CP[Td02], CP[Rd02],
// CP[R1k], Dmax.
func LongPathFieldStrength(p *Path) {
	if p.Distance < 7000.0 {
		return
	}

	nL := hopsFor(p.Distance, lowerHopLimitKm)
	dL := p.Distance / float64(nL+1)
	deltaL := ElevationAngle(dL, longHr)

	nM := hopsFor(p.Distance, upperHopLimitKm)
	dM := p.Distance / float64(nM+1)
	deltaM := ElevationAngle(dM, longHr)
	if deltaM < minElevDeg*D2R {
		nM++
		dM = p.Distance / float64(nM+1)
		deltaM = ElevationAngle(dM, longHr)
	}

	i90 := IncidenceAngle(deltaL, penetrationHr)
	dh90 := R0 * (math.Pi/2.0 - deltaL - i90)
	sw := sweepLong(p, nL, dL, dh90, nM)

	psi := dM / (2.0 * R0)
	p.Ptick = math.Abs(slantRange(deltaM, psi)) * float64(nM+1)
	p.E0 = 139.6 - 20.0*math.Log10(p.Ptick)
	p.Gtl, _ = AntennaGain08(p, p.TXAntenna, TXToRX)

	D := p.Distance
	p.Gap = math.Min(10.0*math.Log10(D/(R0*math.Abs(math.Sin(D/R0)))), 15.0)
	p.Ly = longLy
	p.FH = (sw.td[p.Hour].FH[model.Height300km] + sw.rd[p.Hour].FH[model.Height300km]) / 2.0

	findMUFsAndfM(p, sw, dM)
	findfL(p, sw, p.Ptick, p.FH, i90)

	f := p.Frequency
	fLH := math.Pow(p.FL+p.FH, 2)
	fMH := math.Pow(p.FM+p.FH, 2)
	fH := math.Pow(f+p.FH, 2)
	etl := (fLH/fH + fH/fMH) * (fMH / (fMH + fLH))
	p.F = 1.0 - etl
	p.El = p.E0*(1.0-etl) - 30.0 + p.TXPower + p.Gtl + p.Gap - p.Ly

	if p.Distance > 9000.0 {
		p.Ele = deltaM
		p.CP[Rd02] = sw.rd[p.Hour]
		p.CP[Td02] = sw.td[p.Hour]
		p.CP[T1k] = sw.pen[0][p.Hour]
		p.CP[R1k] = sw.pen[2*nL][p.Hour]
		p.Dmax = maxHopKm
	}
}

// hopsFor returns the smallest hop index whose hops are no longer than
// limit.
func hopsFor(distance, limit float64) int {
	n := 0
	for distance/float64(n+1) > limit {
		n++
	}
	return n
}

// sweepLong resolves the penetration points of an (nL+1)-hop path and the
// dM/2 points of an (nM+1)-hop path at every hour of the day.
func sweepLong(p *Path, nL int, dL, dh90 float64, nM int) *longSweep {
	sw := &longSweep{pen: make([][model.IonoHours]model.ControlPoint, 2*(nL+1))}
	fracM := 1.0 / (2.0 * float64(nM+1))

	for h := 0; h < model.IonoHours; h++ {
		for i := 0; i <= nL; i++ {
			tx, rx := &sw.pen[2*i][h], &sw.pen[2*i+1][h]
			placeControlPoint(p, tx, (float64(i)*dL+dh90)/p.Distance)
			calculateCPAt(p, tx, h)
			tx.Hr = penetrationHr

			placeControlPoint(p, rx, (float64(i+1)*dL-dh90)/p.Distance)
			calculateCPAt(p, rx, h)
			rx.Hr = penetrationHr
		}

		for _, pt := range []struct {
			cp   *model.ControlPoint
			frac float64
		}{{&sw.td[h], fracM}, {&sw.rd[h], 1.0 - fracM}} {
			placeControlPoint(p, pt.cp, pt.frac)
			calculateCPAt(p, pt.cp, h)
			pt.cp.X = 0.0
			pt.cp.FoE = 0.0
			pt.cp.Hr = longHr
		}
	}
	return sw
}

// Azimuth interpolated K coefficients, [east-west, north-south].
var (
	kW = [2]float64{0.1, 0.2}
	kX = [2]float64{1.2, 0.2}
	kY = [2]float64{0.6, 0.4}
)

// findMUFsAndfM sets the upper reference frequency fM and, beyond 9000 km,
// the path basic and operational MUFs with their deciles.
func findMUFsAndfM(p *Path, sw *longSweep, dM float64) {
	fD := ((((((-2.40074637494790e-24*dM+
		25.8520201885984e-21)*dM+
		-92.4986988833091e-18)*dM+
		102.342990689362e-15)*dM+
		22.0776941764705e-12)*dM+
		87.4376851991085e-9)*dM +
		29.1996868566837e-6) * dM

	ends := [2]*[model.IonoHours]model.ControlPoint{&sw.td, &sw.rd}
	var fBM [2][model.IonoHours]float64
	var fBMmin [2]float64
	var noon [2]int
	for n, end := range ends {
		noon[n] = (int(12.0-end[0].L.Lng/(15.0*D2R)) - 1 + 24) % 24
		fBMmin[n] = 100.0
		for t := range end {
			cp := &end[t]
			f4 := 1.1 * cp.FoF2 * cp.M3kF2
			fz := cp.FoF2 + 0.5*cp.FH[model.Height300km]
			fBM[n][t] = fz + (f4-fz)*fD
			fBMmin[n] = math.Min(fBM[n][t], fBMmin[n])
		}
	}

	A := Bearing(p.CP[MP].L, p.RX)
	if A > math.Pi {
		A -= math.Pi
	}
	if A >= math.Pi/2.0 {
		A -= math.Pi / 2.0
	} else {
		A = math.Pi/2.0 - A
	}
	ew := A / (math.Pi / 2.0)
	iw := kW[0]*(1.0-ew) + kW[1]*ew
	ix := kX[0]*(1.0-ew) + kX[1]*ew
	iy := kY[0]*(1.0-ew) + kY[1]*ew

	h := p.Hour
	for n := range p.K {
		atNoon := fBM[n][noon[n]]
		p.K[n] = 1.2 + iw*(fBM[n][h]/atNoon) + ix*(math.Cbrt(atNoon/fBM[n][h])-1.0) + iy*math.Pow(fBMmin[n]/atNoon, 2)
	}
	p.FM = math.Min(p.K[0]*fBM[0][h], p.K[1]*fBM[1][h])

	if p.Distance <= 9000.0 {
		return
	}
	smaller := &sw.rd[h]
	p.BMUF = fBM[1][h]
	if fBM[0][h] < fBM[1][h] {
		smaller = &sw.td[h]
		p.BMUF = fBM[0][h]
	}
	deltaL := FindfoF2var(p, smaller.LTime, smaller.L.Lat, model.DecileLower)
	deltaU := FindfoF2var(p, smaller.LTime, smaller.L.Lat, model.DecileUpper)

	p.MUF50 = p.BMUF
	p.MUF10 = p.MUF50 * deltaU
	p.MUF90 = p.MUF50 * deltaL
	p.OPMUF = p.FM
	p.OPMUF10 = p.OPMUF * deltaU
	p.OPMUF90 = p.OPMUF * deltaL
}

// winterAnomaly is the Aw factor at 60 degrees latitude by month,
// [north, south].
var winterAnomaly = [12][2]float64{
	{0.30, 0.00}, {0.15, 0.00}, {0.03, 0.00}, {0.00, 0.03},
	{0.00, 0.15}, {0.00, 0.30}, {0.00, 0.30}, {0.00, 0.15},
	{0.00, 0.03}, {0.03, 0.00}, {0.15, 0.00}, {0.30, 0.00},
}

// WinterAnomaly returns the winter anomaly factor at lat (radians), peaking
// at 60 degrees and zero within 30 degrees of the equator.
func WinterAnomaly(lat float64, month int) float64 {
	ns := 0
	if lat < 0.0 {
		ns = 1
	}
	lat = math.Abs(lat)
	switch {
	case lat <= 30.0*D2R || lat >= 90.0*D2R:
		return 0.0
	case lat < 60.0*D2R:
		return winterAnomaly[month][ns] * (lat*R2D - 30.0) / 30.0
	default:
		return winterAnomaly[month][ns] * (90.0 - lat*R2D) / 30.0
	}
}

// findfL sets the lower reference frequency from 24 hours of zenith angle
// sums over the penetration points, with an exponential decay applied for
// three hours after the day to night transition.
func findfL(p *Path, sw *longSweep, ptick, fH, i90 float64) {
	var sumCosChi [model.IonoHours]float64
	for t := range sumCosChi {
		for i := range sw.pen {
			chi := sw.pen[i][t].Sun.SZA
			if chi > 0.0 && chi < math.Pi/2.0 {
				sumCosChi[t] += math.Sqrt(math.Cos(chi))
			}
		}
	}

	aw := WinterAnomaly(p.CP[MP].L.Lat, p.Month)
	fLN := math.Sqrt(p.Distance / 3000.0)
	ssn := float64(min(p.SSN, maxSSN))

	var fL [model.IonoHours]float64
	for i := range fL {
		v := 5.3*math.Sqrt((1.0+0.009*ssn)*sumCosChi[i]/(math.Cos(i90)*math.Log(9.5e6/ptick))) - fH
		fL[i] = cmax(v*(aw+1.0), fLN)
	}

	tr := -1
	for now := 0; now < model.IonoHours && tr < 0; now++ {
		prev := (now - 1 + 24) % 24
		if fL[prev] >= 2.0*fLN && fL[now] <= 2.0*fLN {
			tr = now
			dt := (2.0*fLN - fL[tr]) / (fL[prev] - fL[tr])
			fL[tr] = fLDecay * fL[prev] * (dt*(1.0-fLDecay) + fLDecay)
		}
	}
	if tr >= 0 {
		for i := 1; i < 4; i++ {
			now := (tr + i) % 24
			prev := (now - 1 + 24) % 24
			fL[now] = cmax(fL[prev]*fLDecay, fL[now])
		}
	}

	// The sweep is indexed from the hour ending at the prediction hour.
	p.FL = fL[(p.Hour+1)%24]
}
