package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// Path is the state of one prediction: a single (month, hour, frequency,
// receiver) evaluation. Stages read inputs and results written by earlier
// stages and write their own results in place, so a Path must not be shared
// between concurrent evaluations. Reference data (Iono, Deciles, antennas)
// is read-only and may be shared.
type Path struct {
	// Inputs.
	Name   string `msgpack:"name"`
	TXName string `msgpack:"txName"`
	RXName string `msgpack:"rxName"`

	Year  int `msgpack:"year"`
	Month int `msgpack:"month"` // 0..11
	Hour  int `msgpack:"hour"`  // 0..23 UTC
	SSN   int `msgpack:"ssn"`

	Modulation model.Modulation `msgpack:"modulation"`
	Kind       model.PathKind   `msgpack:"kind"`

	Frequency float64 `msgpack:"frequency"` // MHz
	BW        float64 `msgpack:"bw"`        // Hz
	TXPower   float64 `msgpack:"txPower"`   // dB(1 kW)
	SNRXXp    int     `msgpack:"snrxxp"`    // required reliability, percent
	SNRr      float64 `msgpack:"snrr"`      // required SNR, dB
	SIRr      float64 `msgpack:"sirr"`      // required SIR, dB
	F0        float64 `msgpack:"f0"`        // frequency dispersion, Hz
	T0        float64 `msgpack:"t0"`        // time spread, ms
	A         float64 `msgpack:"a"`         // amplitude ratio, dB
	TW        float64 `msgpack:"tw"`        // time window, ms
	FW        float64 `msgpack:"fw"`        // frequency window, Hz

	TX model.Location `msgpack:"tx"`
	RX model.Location `msgpack:"rx"`

	TXAntenna *model.Antenna `msgpack:"txAntenna"`
	RXAntenna *model.Antenna `msgpack:"rxAntenna"`

	Iono    IonosphericMap `msgpack:"-"`
	Deciles DecileTable    `msgpack:"-"`

	// Results.
	Season   model.Season `msgpack:"season"`
	Distance float64      `msgpack:"distance"`
	Ptick    float64      `msgpack:"ptick"` // slant range, km
	Dmax     float64      `msgpack:"dmax"`
	B        float64      `msgpack:"b"`
	Ele      float64      `msgpack:"ele"`

	BMUF    float64 `msgpack:"bmuf"`
	MUF50   float64 `msgpack:"muf50"`
	MUF90   float64 `msgpack:"muf90"`
	MUF10   float64 `msgpack:"muf10"`
	OPMUF   float64 `msgpack:"opmuf"`
	OPMUF90 float64 `msgpack:"opmuf90"`
	OPMUF10 float64 `msgpack:"opmuf10"`

	N0F2 model.ModeIndex `msgpack:"n0F2"`
	N0E  model.ModeIndex `msgpack:"n0E"`

	Es float64 `msgpack:"es"` // short model field strength
	El float64 `msgpack:"el"` // long model field strength
	Ei float64 `msgpack:"ei"` // interpolated field strength
	Ep float64 `msgpack:"ep"` // authoritative field strength
	Pr float64 `msgpack:"pr"` // median available receiver power, dBW

	Lz  float64    `msgpack:"lz"`
	E0  float64    `msgpack:"e0"`
	Gap float64    `msgpack:"gap"`
	Ly  float64    `msgpack:"ly"`
	FM  float64    `msgpack:"fM"`
	FL  float64    `msgpack:"fL"`
	F   float64    `msgpack:"f"`
	FH  float64    `msgpack:"fH"`
	Gtl float64    `msgpack:"gtl"`
	K   [2]float64 `msgpack:"k"`

	SNR   float64 `msgpack:"snr"`
	DuSN  float64 `msgpack:"dusn"`
	DlSN  float64 `msgpack:"dlsn"`
	SNRXX float64 `msgpack:"snrxx"`
	SIR   float64 `msgpack:"sir"`
	DuSI  float64 `msgpack:"dusi"`
	DlSI  float64 `msgpack:"dlsi"`

	RSN     float64 `msgpack:"rsn"`
	RT      float64 `msgpack:"rt"`
	RF      float64 `msgpack:"rf"`
	BCR     float64 `msgpack:"bcr"`
	OCR     float64 `msgpack:"ocr"`
	OCRs    float64 `msgpack:"ocrs"`
	MIR     float64 `msgpack:"mir"`
	ProbOcc float64 `msgpack:"probocc"`
	Grw     float64 `msgpack:"grw"`
	EIRP    float64 `msgpack:"eirp"`

	CP [NumControlPoints]model.ControlPoint `msgpack:"cp"`
	E  [model.MaxEModes]model.Mode          `msgpack:"e"`
	F2 [model.MaxF2Modes]model.Mode         `msgpack:"f2"`

	Dominant model.ModeIndex  `msgpack:"dominant"`
	Noise    model.NoiseParams `msgpack:"noise"`
}

// Mode returns the mode addressed by i, or nil for NoMode.
func (p *Path) Mode(i model.ModeIndex) *model.Mode {
	switch i.Layer() {
	case model.LayerE:
		return &p.E[i.Hop()]
	case model.LayerF2:
		return &p.F2[i.Hop()]
	default:
		return nil
	}
}

// DominantMode returns the mode with the largest received power, or nil
// when none was selected.
func (p *Path) DominantMode() *model.Mode { return p.Mode(p.Dominant) }

// BMUFValid reports whether a path basic MUF was determined.
func (p *Path) BMUFValid() bool { return p.BMUF != TooBig }

// Regime names the distance regime that owns Ep.
func (p *Path) Regime() string {
	switch {
	case p.Distance <= 7000.0:
		return "short"
	case p.Distance >= 9000.0:
		return "long"
	default:
		return "between"
	}
}

// Initialize resets every result to its unset value, computes the path
// distance, places and resolves the fixed control points and finds the
// mid-path season. Inputs are assumed valid.
//
// Reads: TX, RX, Kind, Month, Hour, SSN, Iono.
// Writes: all results, CP[MP], CP[T1k], CP[R1k].
func (p *Path) Initialize() {
	p.B = unsetMUF
	p.BCR = 0.0
	p.BMUF = unsetMUF
	p.Dominant = model.NoMode
	p.DlSI, p.DlSN, p.DuSI, p.DuSN = TinyDB, TinyDB, TinyDB, TinyDB
	p.EIRP = TinyDB
	p.Ei, p.El, p.E0, p.Ep, p.Es = TinyDB, TinyDB, TinyDB, TinyDB, TinyDB
	p.F = TinyDB
	p.FH = 0.0
	p.Gap, p.Grw, p.Gtl = TinyDB, TinyDB, TinyDB
	p.K = [2]float64{}
	p.Lz, p.Ly = 0.0, 0.0
	p.MIR = TinyDB
	p.MUF10, p.MUF50, p.MUF90 = unsetMUF, unsetMUF, unsetMUF
	p.OCR, p.OCRs = 0.0, 0.0
	p.OPMUF, p.OPMUF10, p.OPMUF90 = unsetMUF, unsetMUF, unsetMUF
	p.Pr = TinyDB
	p.RF, p.RSN, p.RT = 0.0, 0.0, 0.0
	p.SIR, p.SNR, p.SNRXX = TinyDB, TinyDB, TinyDB
	p.Dmax = unsetLength
	p.Ele = 2.0 * math.Pi
	p.FL, p.FM = 0.0, 0.0
	p.N0E, p.N0F2 = model.NoMode, model.NoMode
	p.ProbOcc = 0.0
	p.Ptick = 0.0

	initializeModes(p.E[:])
	initializeModes(p.F2[:])

	p.Distance = GreatCircleDistance(p.TX, p.RX)
	if p.Distance == 0.0 {
		p.Distance = epsilon
	}
	if p.Kind == model.LongPath {
		p.Distance = R0*math.Pi*2 - p.Distance
	}

	p.initializeControlPoints()

	mm := p.Noise.ManMade
	p.Noise = model.NoiseParams{ManMade: mm}

	p.Season = WhatSeason(p.CP[MP].L, p.Month)
}

// epsilon is the double precision machine epsilon.
const epsilon = 2.2204460492503131e-16

func initializeModes(modes []model.Mode) {
	for i := range modes {
		modes[i] = model.Mode{
			Lb:  -TinyDB,
			Ew:  TinyDB,
			Prw: TinyDB,
			Grw: TinyDB,
		}
	}
}

// initializeControlPoints clears the five control points and resolves the
// mid-path point, plus the points 1000 km from either end on paths of at
// least 2000 km. The d0/2 points wait for the lowest-order F2 mode.
func (p *Path) initializeControlPoints() {
	for i := range p.CP {
		p.CP[i] = model.ControlPoint{}
	}

	placeControlPoint(p, &p.CP[MP], 0.5)
	CalculateCPParameters(p, &p.CP[MP])

	if p.Distance >= 2000.0 {
		placeControlPoint(p, &p.CP[R1k], (p.Distance-1000)/p.Distance)
		placeControlPoint(p, &p.CP[T1k], 1000.0/p.Distance)
		CalculateCPParameters(p, &p.CP[T1k])
		CalculateCPParameters(p, &p.CP[R1k])
	}
}
