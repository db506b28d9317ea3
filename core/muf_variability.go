package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// Fixed E-layer MUF decile factors.
const (
	eLowerDecile = 0.95
	eUpperDecile = 1.05
)

// MUFVariability sets the median, decile MUFs and the probability of
// ionospheric support of every existing mode, and the path MUF deciles as
// the largest over all modes.
//
// Reads: BMUF, F2[], E[], CP[MP], Season, SSN, Frequency, Deciles.
// Writes: MUF50, MUF90, MUF10 and the per-mode MUF50, MUF90, MUF10,
// DeltaL, DeltaU, Fprob.
func MUFVariability(p *Path) {
	if p.Distance > 9000 {
		return
	}
	p.MUF50 = p.BMUF

	mp := &p.CP[MP]
	for i := range p.F2 {
		m := &p.F2[i]
		if !m.Exists() {
			continue
		}
		m.DeltaL = FindfoF2var(p, mp.LTime, mp.L.Lat, model.DecileLower)
		m.DeltaU = FindfoF2var(p, mp.LTime, mp.L.Lat, model.DecileUpper)
		applyVariability(m, p.Frequency)
	}
	for i := range p.E {
		m := &p.E[i]
		if !m.Exists() {
			continue
		}
		m.DeltaL = eLowerDecile
		m.DeltaU = eUpperDecile
		applyVariability(m, p.Frequency)
	}

	var muf90, muf10 float64
	for _, m := range p.allModes() {
		if !m.Exists() {
			continue
		}
		muf90 = math.Max(muf90, m.MUF90)
		muf10 = math.Max(muf10, m.MUF10)
	}
	p.MUF90 = muf90
	p.MUF10 = muf10
}

func applyVariability(m *model.Mode, f float64) {
	m.MUF50 = m.BMUF
	m.MUF10 = m.DeltaU * m.MUF50
	m.MUF90 = m.DeltaL * m.MUF50
	if f < m.MUF50 {
		m.Fprob = math.Min(1.3-0.8/(1.0+(1.0-f/m.MUF50)/(1.0-m.DeltaL)), 1.0)
	} else {
		m.Fprob = math.Max(0.8/(1.0+(f/m.MUF50-1.0)/(m.DeltaU-1.0))-0.3, 0.0)
	}
}

// allModes returns pointers to the E modes followed by the F2 modes, in
// slot order.
func (p *Path) allModes() []*model.Mode {
	out := make([]*model.Mode, 0, model.MaxModes)
	for i := range p.E {
		out = append(out, &p.E[i])
	}
	for i := range p.F2 {
		out = append(out, &p.F2[i])
	}
	return out
}

// ssnBand returns the decile table SSN band.
func ssnBand(ssn int) int {
	switch {
	case ssn < 50:
		return 0
	case ssn <= 100:
		return 1
	default:
		return 2
	}
}

// FindfoF2var interpolates the foF2 variability factor for the path season
// and SSN at a fractional hour and latitude.
func FindfoF2var(p *Path, hour, lat float64, decile int) float64 {
	lat = math.Abs(lat / (5.0 * D2R))
	r := lat - float64(int(lat))
	c := hour - float64(int(hour))

	latL := int(math.Floor(lat))
	latU := int(math.Ceil(lat))
	if latL < 0 {
		latL = model.DecileLats - 1
		r = 1.0 - r
	}
	if latU > model.DecileLats-1 {
		latU = 0
	}
	hourL := int(math.Floor(hour))
	hourU := int(math.Ceil(hour))
	if hourL < 0 {
		hourL = 23
		c = 1.0 - c
	}
	if hourU > 23 {
		hourU = 0
	}

	s, band := int(p.Season), ssnBand(p.SSN)
	LL := p.Deciles.Lookup(s, hourL, latL, band, decile)
	LR := p.Deciles.Lookup(s, hourU, latL, band, decile)
	UL := p.Deciles.Lookup(s, hourL, latU, band, decile)
	UR := p.Deciles.Lookup(s, hourU, latU, band, decile)
	return BilinearInterpolation(LL, LR, UL, UR, r, c)
}
