package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// ScreeningFrequency sets the mirror reflection height and E-layer
// screening frequency of the F2 modes from the lowest order up. Paths
// longer than 4000 km are not screened.
//
// Reads: Distance, Dmax, N0F2, CP[MP], CP[Td02], CP[Rd02], CP[T1k],
// CP[R1k], SSN, Frequency.
// Writes: F2[].Hr, F2[].Fs.
func ScreeningFrequency(p *Path) {
	if p.Distance > 4000 || !p.N0F2.Valid() {
		return
	}
	for k := p.N0F2.Hop(); k < model.MaxF2Modes; k++ {
		m := &p.F2[k]
		dh := p.Distance / float64(k+1)
		if p.Distance <= p.Dmax {
			m.Hr = MirrorReflectionHeight(p, &p.CP[MP], dh)
		} else {
			m.Hr = (MirrorReflectionHeight(p, &p.CP[Td02], dh) +
				MirrorReflectionHeight(p, &p.CP[MP], dh) +
				MirrorReflectionHeight(p, &p.CP[Rd02], dh)) / 3.0
		}
		i := IncidenceAngle(ElevationAngle(dh, m.Hr), hrELayerKm)
		if p.Distance <= 2000 {
			m.Fs = 1.05 * p.CP[MP].FoE / math.Cos(i)
		} else {
			m.Fs = 1.05 * math.Max(p.CP[T1k].FoE, p.CP[R1k].FoE) / math.Cos(i)
		}
	}
}

// MirrorReflectionHeight returns the F2 mirror reflection height (km) at cp
// for hop length d, capped at 800 km.
func MirrorReflectionHeight(p *Path, cp *model.ControlPoint, d float64) float64 {
	x := cp.FoF2 / cp.FoE
	y := math.Max(x, 1.8)
	deltaM := 0.18/(y-1.4) + 0.096*(float64(min(p.SSN, maxSSN))-25.0)/150.0
	xr := p.Frequency / cp.FoF2
	H := 1490.0/(cp.M3kF2+deltaM) - 316.0

	switch {
	case x > 3.33 && xr >= 1.0:
		E1 := -0.09707*math.Pow(xr, 3) + 0.6870*xr*xr - 0.7506*xr + 0.6
		var F1, G float64
		if xr <= 1.71 {
			F1 = -1.862*math.Pow(xr, 4) + 12.95*math.Pow(xr, 3) - 32.03*xr*xr + 33.50*xr - 10.91
		} else {
			F1 = 1.21 + 0.2*xr
		}
		if xr <= 3.7 {
			// The linear term of the published polynomial is absent.
			G = -2.102*math.Pow(xr, 4) + 19.50*math.Pow(xr, 3) - 63.15*xr*xr - 44.73
		} else {
			G = 19.25
		}
		ds := 160.0 + (H+43.0)*G
		a := (d - ds) / (H + 140.0)
		A1 := 140.0 + (H-47.0)*E1
		B1 := 150.0 + (H-17.0)*F1 - A1
		h := A1 + B1
		if B1 >= 0.0 && a >= 0.0 {
			h = A1 + B1*math.Pow(2.4, -a)
		}
		return math.Min(h, 800.0)
	case x > 3.33:
		Z := math.Max(xr, 0.1)
		E2 := 0.1906*Z*Z + 0.00583*Z + 0.1936
		A2 := 151.0 + (H-47.0)*E2
		F2 := 0.645*Z*Z + 0.883*Z + 0.162
		B2 := 141.0 + (H-24.0)*F2 - A2
		df := math.Min(0.115*d/(Z*(H+140.0)), 0.65)
		b := -7.535*math.Pow(df, 4) + 15.75*math.Pow(df, 3) - 8.834*df*df - 0.378*df + 1.0
		h := A2 + B2
		if B2 >= 0.0 {
			h = A2 + B2*b
		}
		return math.Min(h, 800.0)
	default:
		J := -0.7126*math.Pow(y, 3) + 5.863*y*y - 16.13*y + 16.07
		U := 8.0e-5*(H-80.0)*(1.0+11.0*math.Pow(y, -2.2)) + 1.2e-3*H*math.Pow(y, -3.6)
		return math.Min(115.0+H*J+U*d, 800.0)
	}
}
