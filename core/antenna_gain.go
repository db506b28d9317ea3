package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// AntennaGain returns the gain of ant (dBi) at elevation delta (radians)
// toward the far end of the path. The pattern for the frequency nearest the
// operating frequency is interpolated bilinearly over the whole-degree
// bearing and elevation neighbours. direction is TXToRX or RXToTX.
func AntennaGain(p *Path, ant *model.Antenna, delta float64, direction int) float64 {
	fi := ant.FreqIndex(p.Frequency)

	deg := delta * R2D
	var B float64
	if direction == RXToTX {
		B = Bearing(p.RX, p.TX) * R2D
	} else {
		B = Bearing(p.TX, p.RX) * R2D
	}

	deltaU := clampElevation(int(math.Ceil(deg)))
	deltaL := clampElevation(int(math.Floor(deg)))
	BR := int(math.Ceil(B)) % model.AntennaAzimuths
	BL := int(math.Floor(B)) % model.AntennaAzimuths

	LL := ant.At(fi, BL, deltaL)
	LR := ant.At(fi, BR, deltaL)
	UL := ant.At(fi, BL, deltaU)
	UR := ant.At(fi, BR, deltaU)

	r := deg - float64(int(deg))
	c := B - float64(int(B))
	return BilinearInterpolation(LL, LR, UL, UR, r, c)
}

func clampElevation(el int) int {
	return max(0, min(el, model.AntennaElevations-1))
}

// AntennaGain08 returns the largest gain of ant over elevations 0..8
// degrees in whole-degree steps, and the elevation (radians) at which it
// occurs.
func AntennaGain08(p *Path, ant *model.Antenna, direction int) (gain, elevation float64) {
	gain = TinyDB
	elevation = 0.0
	for i := 0; i < 9; i++ {
		delta := float64(i) * D2R
		if g := AntennaGain(p, ant, delta, direction); g > gain {
			gain, elevation = g, delta
		}
	}
	return gain, elevation
}
