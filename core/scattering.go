package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// Spread widths of the scattering model.
const (
	timeSpread      = 1.0 // ms
	frequencySpread = 3.0 // Hz
)

// dblMin is the smallest normalized double, marking an unset spread
// weight.
const dblMin = 2.2250738585072014e-308

// EquatorialScattering sets the probability of equatorial scattering and
// the overall reliability in its presence. Spread weights are computed per
// signal mode in slot order; control point selection compares them by
// control point slot.
//
// Reads: Distance, TW, FW, A, Frequency, Month, N0F2, Dmax, CP[], BCR,
// MIR, E[], F2[].
// Writes: ProbOcc, OCRs.
func EquatorialScattering(p *Path, signal []model.ModeIndex) {
	if p.Distance > 9000.0 || len(signal) == 0 {
		return
	}

	var pt [model.MaxModes]float64
	for i := range pt {
		pt[i] = dblMin
	}
	for i, idx := range signal {
		m := p.Mode(idx)
		pt[i] = 0.056 * m.Ew * math.Exp(-math.Pow(p.TW-m.Tau, 2)/(2.0*timeSpread*timeSpread))
	}

	pm := p.Mode(signal[0]).Ew
	fm := p.Frequency * 1e6
	f := p.FW
	pf := [2]float64{
		0.056 * pm * math.Exp(-math.Pow(f-fm, 2)/(2.0*frequencySpread*frequencySpread)),
		0.056 * pm * math.Exp(-math.Pow(-f-fm, 2)/(2.0*frequencySpread*frequencySpread)),
	}

	use := false
	for _, w := range pt {
		if w != dblMin && pm-w >= p.A {
			use = true
		}
	}
	for _, w := range pf {
		if pm-w >= p.A {
			use = true
		}
	}

	if !use {
		p.OCRs = p.BCR * p.MIR / 100.0
		return
	}

	// The solar activity factor is held at its SSN 160 value.
	FR := 0.1 + 0.008*float64(maxSSN)
	FS := 0.55 + 0.45*math.Sin(60.0*D2R*(float64(p.Month+1)-1.5))

	var biggest float64
	for _, idx := range signal {
		if idx.Layer() != model.LayerF2 {
			continue
		}
		cp := scatteringControlPoint(p, idx, &pt)
		if cp == nil {
			continue
		}
		biggest = math.Max(biggest, FindFlambdad(cp)*FindFTl(cp)*FR*FS)
	}
	p.ProbOcc = biggest
	p.OCRs = p.BCR * p.MIR * (100.0 - p.ProbOcc) / 10000.0
}

// scatteringControlPoint picks the control point with the largest spread
// weight for an F2 signal mode. The lowest order mode uses the mid-path
// point, or the larger of the dM/2 points beyond dmax. Ties are broken in
// the order T1k, R1k, MP, Td02, Rd02.
func scatteringControlPoint(p *Path, idx model.ModeIndex, pt *[model.MaxModes]float64) *model.ControlPoint {
	if idx == p.N0F2 {
		switch {
		case p.Distance <= p.Dmax:
			return &p.CP[MP]
		case pt[Td02] >= pt[Rd02]:
			return &p.CP[Td02]
		default:
			return &p.CP[Rd02]
		}
	}

	candidates := []int{T1k, R1k, MP}
	if p.Distance > p.Dmax {
		candidates = []int{T1k, R1k, MP, Td02, Rd02}
	}
	for _, c := range candidates {
		largest := true
		for _, o := range candidates {
			if pt[c] < pt[o] {
				largest = false
				break
			}
		}
		if largest {
			return &p.CP[c]
		}
	}
	return nil
}

// FindFlambdad returns the dip-latitude factor of the scattering
// probability at cp. The middle segment evaluates its polynomial on the
// dip in radians.
func FindFlambdad(cp *model.ControlPoint) float64 {
	lambdad := math.Abs(cp.Dip[model.Height100km])
	switch {
	case lambdad < 15.0*D2R:
		return 1.0
	case lambdad < 25.0*D2R:
		return math.Pow((25.0-lambdad)/10.0, 2) * ((lambdad - 10.0) / 5.0)
	default:
		return 0.0
	}
}

// FindFTl returns the local time factor of the scattering probability at
// cp, taken from its stored hour.
func FindFTl(cp *model.ControlPoint) float64 {
	Tl := cp.LTime
	switch {
	case Tl > 0.0 && Tl <= 3.0:
		return 1.0
	case Tl > 3.0 && Tl <= 7.0:
		return math.Pow((7.0-Tl)/4.0, 2) * ((Tl - 1.0) / 2.0)
	case Tl > 7.0 && Tl <= 19.0:
		return 0.0
	case Tl > 19.0 && Tl <= 20.0:
		return math.Pow(Tl-19.0, 2) * (41.0 - 2.0*Tl)
	case Tl > 20.0 && Tl <= 24.0:
		return 1.0
	default:
		return 0.0
	}
}
