package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// ReceiverPower computes the median available receiver power and selects
// Ep for the path regime. Up to 7000 km each considered mode is weighted by
// the receive antenna and the strongest becomes the dominant mode; beyond
// that the best low-angle receive gain is applied to Ei or El.
//
// Reads: Distance, N0E, N0F2, E[], F2[], Dmax, Frequency, RXAntenna, Es,
// Ei, El.
// Writes: E[].Grw, E[].Prw, F2[].Grw, F2[].Prw, Pr, Ep, Dominant, Grw, Ele.
func ReceiverPower(p *Path) {
	switch {
	case p.Distance <= 7000.0:
		shortReceiverPower(p)
		p.Ep = p.Es
	case p.Distance < 9000.0:
		p.Grw, p.Ele = AntennaGain08(p, p.RXAntenna, RXToTX)
		p.Pr = p.Ei + p.Grw - 20.0*math.Log10(p.Frequency) - 107.2
		p.Ep = p.Ei
	default:
		p.Grw, p.Ele = AntennaGain08(p, p.RXAntenna, RXToTX)
		p.Pr = p.El + p.Grw - 20.0*math.Log10(p.Frequency) - 107.2
		p.Ep = p.El
	}
}

func shortReceiverPower(p *Path) {
	var sum float64
	best := TinyDB
	p.Dominant = model.NoMode

	consider := func(m *model.Mode, idx model.ModeIndex) {
		m.Grw = AntennaGain(p, p.RXAntenna, m.Ele, RXToTX)
		m.Prw = m.Ew + m.Grw - 20.0*math.Log10(p.Frequency) - 107.2
		if best < m.Prw {
			best = m.Prw
			p.Dominant = idx
		}
		sum += math.Pow(10.0, m.Prw/10.0)
	}

	if p.N0E.Valid() {
		for n := p.N0E.Hop(); n < model.MaxEModes; n++ {
			if p.eModeConsidered(n) {
				consider(&p.E[n], model.EMode(n))
			}
		}
	}
	if p.N0F2.Valid() {
		for n := p.N0F2.Hop(); n < model.MaxF2Modes; n++ {
			if p.f2ModeConsidered(n) {
				consider(&p.F2[n], model.F2Mode(n))
			}
		}
	}

	if sum == 0.0 || !p.Dominant.Valid() {
		p.Pr = TinyDB
		return
	}
	p.Pr = 10.0 * math.Log10(sum)
	dm := p.DominantMode()
	p.Grw = dm.Grw
	p.Ele = dm.Ele
}
