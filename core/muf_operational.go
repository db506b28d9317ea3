package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// rop is the ratio of median operational MUF to median basic MUF for F2
// modes, indexed [power][season][day/night].
var rop = [2][3][2]float64{
	{{1.20, 1.30}, {1.15, 1.25}, {1.10, 1.20}},
	{{1.15, 1.25}, {1.20, 1.30}, {1.25, 1.35}},
}

const (
	ropDay   = 0
	ropNight = 1
)

// OperationalMUF sets the operational MUF and its deciles for every
// existing mode and the largest of each over the path.
//
// Reads: F2[], E[], CP[MP], Season, EIRP.
// Writes: OPMUF, OPMUF10, OPMUF90 and the per-mode equivalents.
func OperationalMUF(p *Path) {
	if p.Distance > 9000 {
		return
	}
	mp := &p.CP[MP]
	period := ropNight
	if mp.LTime < mp.Sun.LSS && mp.LTime > mp.Sun.LSR {
		period = ropDay
	}

	ratio := rop[ropPowerIndex(p.EIRP)][p.Season][period]
	var op, op10, op90 float64
	for i := range p.F2 {
		m := &p.F2[i]
		if !m.Exists() {
			continue
		}
		m.OPMUF = m.MUF50 * ratio
		setOperationalDeciles(m)
		op, op10, op90 = math.Max(op, m.OPMUF), math.Max(op10, m.OPMUF10), math.Max(op90, m.OPMUF90)
	}
	for i := range p.E {
		m := &p.E[i]
		if !m.Exists() {
			continue
		}
		m.OPMUF = m.BMUF
		setOperationalDeciles(m)
		op, op10, op90 = math.Max(op, m.OPMUF), math.Max(op10, m.OPMUF10), math.Max(op90, m.OPMUF90)
	}
	p.OPMUF, p.OPMUF10, p.OPMUF90 = op, op10, op90
}

// ropPowerIndex selects the Rop power column. The high-power column is
// tabulated for EIRP above 30 dBW but is never selected.
func ropPowerIndex(eirp float64) int {
	if eirp <= 30.0 {
		return 0
	}
	return 0
}

func setOperationalDeciles(m *model.Mode) {
	m.OPMUF10 = m.OPMUF * m.DeltaU
	m.OPMUF90 = m.OPMUF * m.DeltaL
}
