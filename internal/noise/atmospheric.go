package noise

import (
	"math"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/model"
)

// famStats are the atmospheric noise statistics for one time block.
type famStats struct {
	block    int
	fa       float64 // dB above kT0b
	du, dl   float64
	sigmaDu  float64
	sigmaDl  float64
	sigmaFam float64
}

// Atmospheric returns the atmospheric noise at rx and its decile
// deviations. The time block containing the receiver local mean time is
// blended in the power domain with its neighbour.
func Atmospheric(c *Coefficients, hour int, rx model.Location, freq float64) (fa, du, dl float64) {
	lmt := localMeanTime(hour, rx.Lng)
	now, adj := timeBlocks(lmt)

	sNow := famParameters(c, now, rx, freq)
	sAdj := famParameters(c, adj, rx, freq)

	slp := math.Mod(lmt, 4.0) / 4.0
	blend := func(a, b float64) float64 {
		pa, pb := math.Pow(10.0, a/10.0), math.Pow(10.0, b/10.0)
		return 10.0 * math.Log10(pa+(pb-pa)*slp)
	}
	return blend(sNow.fa, sAdj.fa), blend(sNow.du, sAdj.du), blend(sNow.dl, sAdj.dl)
}

// localMeanTime returns the receiver local mean time in (0, 24], offset by
// one hour.
func localMeanTime(hour int, lng float64) float64 {
	lmt := float64(hour) + 1.0 + lng/(15.0*core.D2R)
	if lmt < 0.0 {
		lmt += 24.0
	}
	if lmt > 24.0 {
		lmt -= 24.0
	}
	return lmt
}

// timeBlocks returns the zero-based time block holding lmt and the block it
// is blended with. The neighbour test compares lmt against half the block's
// midpoint hour.
func timeBlocks(lmt float64) (now, adj int) {
	now = 6
	if lmt < 20.0 {
		now = int(lmt/4.0 + 1.0)
	}

	adj = (4*now - 2) / 2
	switch {
	case lmt < float64(adj):
		adj = now - 1
	case lmt == float64(adj):
		adj = now
	default:
		adj = now + 1
	}
	if adj <= 0 {
		adj = 6
	} else if adj > 6 {
		adj = 1
	}
	return now - 1, adj - 1
}

// famParameters evaluates the Fourier series for the 1 MHz noise level in
// block, moves it to freq and evaluates the decile polynomials.
func famParameters(c *Coefficients, block int, rx model.Location, freq float64) famStats {
	fs := famStats{block: block}

	// Longitude is measured east from 0 to 2pi and halved.
	q := rx.Lng / 2.0
	if rx.Lng < 0.0 {
		q = (rx.Lng + 2.0*math.Pi) / 2.0
	}

	var zz [FakpLats]float64
	for j := range zz {
		var r float64
		for k := 0; k < FakpTerms-1; k++ {
			r += math.Sin(float64(k+1)*q) * c.fakp(block, k, j)
		}
		zz[j] = r + c.fakp(block, FakpTerms-1, j)
	}

	q = rx.Lat + math.Pi/2.0
	var r float64
	for j, z := range zz {
		r += math.Sin(float64(j+1)*q) * z
	}
	fam1MHz := r + c.fakabp(block, 0) + c.fakabp(block, 1)*q

	i := block
	if rx.Lat < 0 {
		i += TimeBlocks
	}

	// Lucas and Harper frequency dependence: the first pass at U=-0.75
	// fixes the 1 MHz level, the second evaluates at freq.
	u := [2]float64{-0.75, (8.0*math.Pow(2.0, math.Log10(freq)) - 11.0) / 4.0}
	var cz, pz, px float64
	for k, uk := range u {
		pz = uk*c.fam(i, 0) + c.fam(i, 1)
		px = uk*c.fam(i, 7) + c.fam(i, 8)
		for j := 2; j < 7; j++ {
			pz = uk*pz + c.fam(i, j)
			px = uk*px + c.fam(i, j+7)
		}
		if k == 0 {
			cz = fam1MHz*(2.0-pz) - px
		}
	}
	fs.fa = cz*pz + px

	// The decile curves stop at 20 MHz and sigma Fam at 10 MHz.
	x := math.Log10(math.Min(freq, 20.0))
	var v [DudParams]float64
	for j := range v {
		if j == 4 && freq > 10.0 {
			x = 1.0
		}
		y := c.dud(j, i, 0)
		for k := 1; k < DudTerms; k++ {
			y = y*x + c.dud(j, i, k)
		}
		v[j] = y
	}
	fs.du, fs.dl = v[0], v[1]
	fs.sigmaDu, fs.sigmaDl, fs.sigmaFam = v[2], v[3], v[4]
	return fs
}
