package core

import (
	"context"
	"math"
	"testing"

	"github.com/signalsfoundry/hfprop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predicted(t *testing.T, p *Path) *Path {
	t.Helper()
	require.NoError(t, NewEngine(quietNoise()).Predict(context.Background(), p))
	return p
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func TestEngine_PolarNightIsFinite(t *testing.T) {
	cases := []struct {
		name   string
		tx, rx model.Location
		month  int
		hour   int
		freq   float64
		regime string
	}{
		{"between", model.Location{Lat: -86.4 * D2R}, model.Location{Lat: -8 * D2R}, may, 10, 2.04, "between"},
		{"short", model.Location{Lat: -80 * D2R}, model.Location{Lat: -70 * D2R, Lng: 30 * D2R}, jun, 0, 5, "short"},
		{"north", model.Location{Lat: 85 * D2R, Lng: 20 * D2R}, model.Location{Lat: 70 * D2R, Lng: 20 * D2R}, dec, 6, 3.5, "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testPath(0)
			p.TX, p.RX = tc.tx, tc.rx
			p.Month, p.Hour = tc.month, tc.hour
			p.Frequency = tc.freq
			predicted(t, p)

			require.Equal(t, tc.regime, p.Regime(), "distance %v", p.Distance)
			for name, v := range map[string]float64{
				"Ep": p.Ep, "Pr": p.Pr, "SNR": p.SNR, "BCR": p.BCR, "SNRXX": p.SNRXX,
			} {
				if !finite(v) {
					t.Errorf("%s = %v", name, v)
				}
			}
		})
	}
}

func TestEngine_SSNAbove160MatchesSSN160(t *testing.T) {
	cases := []struct {
		name       string
		lngDeg     float64
		modulation model.Modulation
	}{
		{"short digital", 30, model.Digital},
		{"between", 72, model.Analog},
		{"long", 120, model.Analog},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			at := func(ssn int) *Path {
				p := testPath(tc.lngDeg)
				p.SSN = ssn
				p.Modulation = tc.modulation
				p.T0, p.F0 = 3, 10
				return predicted(t, p)
			}
			a, b := at(160), at(250)
			assert.Equal(t, a.Ep, b.Ep, "Ep")
			assert.Equal(t, a.Pr, b.Pr, "Pr")
			assert.Equal(t, a.BMUF, b.BMUF, "BMUF")
			assert.Equal(t, a.OPMUF, b.OPMUF, "OPMUF")
			assert.Equal(t, a.BCR, b.BCR, "BCR")
			assert.Equal(t, a.OCRs, b.OCRs, "OCRs")
			assert.Equal(t, a.FL, b.FL, "fL")
		})
	}
}

func TestLongPathFieldStrength(t *testing.T) {
	p := predicted(t, testPath(120))
	require.Greater(t, p.Distance, 9000.0)

	if p.FL < math.Sqrt(p.Distance/3000.0) {
		t.Errorf("fL = %v below its night floor", p.FL)
	}
	if p.Gap > 15 {
		t.Errorf("focus gain = %v, want at most 15", p.Gap)
	}
	if p.Ele < minElevDeg*D2R {
		t.Errorf("elevation = %v deg, want at least %v", p.Ele*R2D, minElevDeg)
	}
	assert.Equal(t, maxHopKm, p.Dmax)
	assert.Equal(t, p.BMUF, p.MUF50)
	assert.Equal(t, p.FM, p.OPMUF)
	if !(p.MUF90 <= p.MUF50 && p.MUF50 <= p.MUF10) {
		t.Errorf("MUF deciles out of order: %v %v %v", p.MUF90, p.MUF50, p.MUF10)
	}

	want := p.E0*p.F - 30.0 + p.TXPower + p.Gtl + p.Gap - p.Ly
	assert.InDelta(t, want, p.El, 1e-9)
	assert.Equal(t, p.El, p.Ep)
}

func TestLongPathFieldStrength_ShortPathUntouched(t *testing.T) {
	p := testPath(30)
	p.Distance = 6999
	LongPathFieldStrength(p)
	if p.El != 0 || p.Ptick != 0 || p.FM != 0 {
		t.Fatalf("long model ran below 7000 km: El %v Ptick %v fM %v", p.El, p.Ptick, p.FM)
	}
}

func TestInterpolateFieldStrength(t *testing.T) {
	cp := model.ControlPoint{FoF2: 8, FoE: 2, M3kF2: 3}
	cp.FH[model.Height300km] = 1.2

	dmuf := func(d0 float64) float64 {
		c := cp
		return CalcF2DMUF(&c, d0, math.Min(Calcdmax(&c), maxHopKm), CalcB(&c))
	}

	cases := []struct {
		name     string
		distance float64
		es, el   float64
		n0       model.ModeIndex
		wantEi   float64
		wantBMUF float64
	}{
		{"7000 km is short", 7000, 0, 100, model.F2Mode(1), -1, -1},
		{"9000 km is long", 9000, 0, 100, model.F2Mode(1), -1, -1},
		{"midpoint", 8000, 0, 100, model.F2Mode(1), 100 * math.Log10(5.5), dmuf(4000)},
		{"equal fields", 7500, 20, 20, model.F2Mode(2), 20, dmuf(2500)},
		{"no lowest mode", 8000, 20, 20, model.NoMode, 20, dmuf(80)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Path{Distance: tc.distance, Es: tc.es, El: tc.el, N0F2: tc.n0, Ei: -1, BMUF: -1}
			p.CP[Td02], p.CP[Rd02] = cp, cp
			InterpolateFieldStrength(p)
			assert.InDelta(t, tc.wantEi, p.Ei, 1e-9)
			assert.InDelta(t, tc.wantBMUF, p.BMUF, 1e-9)
		})
	}
}
