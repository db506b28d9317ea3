package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// ShortPathFieldStrength computes the loss and field strength of every
// considered mode and their power sum Es. Paths beyond 9000 km are left to
// the long model.
//
// Reads: Distance, Dmax, N0E, N0F2, E[].BMUF, F2[].BMUF, F2[].Fs, CP[],
// Frequency, SSN, Month, TXPower, TXAntenna.
// Writes: Ptick, Lz, Es, E[].Ele, E[].Lb, E[].Ew, E[].MC and the same for
// F2[].
func ShortPathFieldStrength(p *Path) {
	if p.Distance > 9000 {
		return
	}
	s := shortModel{p: p, ssn: float64(min(p.SSN, maxSSN))}

	s.hrF2 = p.CP[MP].Hr
	if p.Distance > p.Dmax {
		s.hrF2 = math.Min(1490.0/p.CP[SmallestCPfoF2(p)].M3kF2-176.0, 500.0)
	}

	tz := int(p.CP[MP].L.Lng / (15.0 * D2R))
	s.mpltime = int(math.Mod(p.CP[MP].LTime+float64(tz), 24))

	if p.N0E.Valid() {
		for n := p.N0E.Hop(); n < model.MaxEModes; n++ {
			if !p.eModeConsidered(n) {
				break
			}
			s.mode(&p.E[n], n, hrELayerKm, s.controlPointsE(), eAboveMUFLoss)
		}
	}
	if p.N0F2.Valid() {
		for n := p.N0F2.Hop(); n < model.MaxF2Modes; n++ {
			if !p.f2ModeConsidered(n) {
				continue
			}
			s.mode(&p.F2[n], n, s.hrF2, s.controlPointsF2(), f2AboveMUFLoss)
		}
	}

	var etw float64
	for n := range p.E {
		if p.N0E.Valid() && n >= p.N0E.Hop() && p.eModeConsidered(n) {
			etw += math.Pow(10.0, p.E[n].Ew/10.0)
			p.E[n].MC = true
		}
	}
	for n := range p.F2 {
		if p.N0F2.Valid() && n >= p.N0F2.Hop() && p.f2ModeConsidered(n) {
			etw += math.Pow(10.0, p.F2[n].Ew/10.0)
			p.F2[n].MC = true
		}
	}

	p.Es = TinyDB
	if etw != 0.0 {
		p.Es = 10.0 * math.Log10(etw)
	}
}

// eModeConsidered reports whether the n-hop E mode contributes: the lowest
// order with hops up to 2000 km, and any higher order that exists.
func (p *Path) eModeConsidered(n int) bool {
	n0 := p.N0E.Hop()
	if n == n0 {
		return p.Distance/float64(n0+1) <= 2000.0
	}
	return n > n0 && p.E[n].Exists()
}

// f2ModeConsidered reports whether the n-hop F2 mode contributes: the
// lowest order with hops up to dmax, and any higher order that exists, in
// both cases only when the E layer does not screen it.
func (p *Path) f2ModeConsidered(n int) bool {
	n0 := p.N0F2.Hop()
	if p.F2[n].Fs >= p.Frequency {
		return false
	}
	if n == n0 {
		return p.Distance/float64(n0+1) <= p.Dmax
	}
	return n > n0 && p.F2[n].Exists()
}

// shortModel carries the per-path values shared by every mode.
type shortModel struct {
	p       *Path
	ssn     float64
	hrF2    float64
	mpltime int
}

// controlPointsE returns the points averaged for fL and Lh on E modes.
func (s *shortModel) controlPointsE() []*model.ControlPoint {
	p := s.p
	if p.Distance <= 2000.0 {
		return []*model.ControlPoint{&p.CP[MP]}
	}
	return []*model.ControlPoint{&p.CP[MP], &p.CP[T1k], &p.CP[R1k]}
}

// controlPointsF2 returns the points averaged for fL and Lh on F2 modes.
func (s *shortModel) controlPointsF2() []*model.ControlPoint {
	p := s.p
	switch {
	case p.Distance <= 2000.0:
		return []*model.ControlPoint{&p.CP[MP]}
	case p.Distance <= p.Dmax:
		return []*model.ControlPoint{&p.CP[MP], &p.CP[T1k], &p.CP[R1k]}
	default:
		return []*model.ControlPoint{&p.CP[MP], &p.CP[T1k], &p.CP[R1k], &p.CP[Td02], &p.CP[Rd02]}
	}
}

func eAboveMUFLoss(f, bmuf, _ float64) float64 {
	return math.Min(46.0*math.Sqrt(f/bmuf-1.0)+5.0, 58.0)
}

func f2AboveMUFLoss(f, bmuf, distance float64) float64 {
	if distance <= 3000.0 {
		return math.Min(36.0*math.Sqrt(f/bmuf-1.0)+5.0, 60.0)
	}
	return math.Min(70.0*(f/bmuf-1.0)+8.0, 80.0)
}

// mode fills the loss and field strength of the n-hop mode m reflecting at
// hr.
func (s *shortModel) mode(m *model.Mode, n int, hr float64, cps []*model.ControlPoint, aboveMUF func(f, bmuf, d float64) float64) {
	p := s.p
	f := p.Frequency
	hops := float64(n + 1)
	dh := p.Distance / hops

	delta := ElevationAngle(dh, hr)
	m.Ele = delta
	aoi110 := IncidenceAngle(delta, hrELayerKm)
	fv := f * math.Cos(aoi110)
	psi := dh / (2.0 * R0)
	p.Ptick = math.Abs(slantRange(delta, psi)) * hops

	AT := PenetrationPoints(p, n, hr, fv)

	var fL, Lh float64
	for _, cp := range cps {
		fL += math.Abs(cp.FH[model.Height100km] * math.Sin(cp.Dip[model.Height100km]))
		Lh += FindLh(cp, dh, s.mpltime, p.Month)
	}
	fL /= float64(len(cps))
	Lh /= float64(len(cps))

	Li := hops * (1.0 + 0.0067*s.ssn) * AT / (math.Pow(f+fL, 2) * math.Cos(aoi110))

	var Lm float64
	if f > m.BMUF {
		Lm = aboveMUF(f, m.BMUF, p.Distance)
	}
	Lg := 2.0 * float64(n)
	p.Lz = notOtherwiseIncludedLoss

	m.Lb = 32.45 + 20.0*math.Log10(f) + 20.0*math.Log10(p.Ptick) + Li + Lm + Lg + Lh + p.Lz
	Gt := AntennaGain(p, p.TXAntenna, delta, TXToRX)
	m.Ew = 136.6 + p.TXPower + Gt + 20.0*math.Log10(f) - m.Lb
}
