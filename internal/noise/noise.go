// Package noise implements the ITU-R P.372 radio noise model: atmospheric
// noise from the monthly Fourier coefficient tables, man-made noise by
// environmental category and galactic noise, combined into a total with
// upper and lower decile deviations.
package noise

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/model"
)

// Version identifies the noise method.
const Version = "P.372-13.3"

// ErrNoCoefficients is returned when no coefficient set exists for a month.
var ErrNoCoefficients = errors.New("no noise coefficients")

// Source supplies the coefficient set for a month (0..11).
type Source interface {
	Coefficients(month int) (*Coefficients, error)
}

// Model computes noise at a receiver. It is safe for concurrent use when its
// Source is.
type Model struct {
	src Source
}

var _ core.NoiseProvider = (*Model)(nil)

// New returns a Model reading coefficients from src.
func New(src Source) *Model {
	return &Model{src: src}
}

// Noise returns the noise components at rx for the UTC hour and frequency
// (MHz). A negative man-made setting overrides the calculation: the total
// becomes its magnitude and every decile is zero.
func (m *Model) Noise(month, hour int, rx model.Location, freq float64, mm model.ManMade) (model.NoiseParams, error) {
	np := model.NoiseParams{ManMade: mm}
	if mm.IsOverride() {
		np.FaM = float64(mm)
		np.FamT = -float64(mm)
		return np, nil
	}
	if m == nil || m.src == nil {
		return np, ErrNoCoefficients
	}
	c, err := m.src.Coefficients(month)
	if err != nil {
		return np, fmt.Errorf("month %d: %w", month+1, err)
	}
	if err := c.Validate(); err != nil {
		return np, fmt.Errorf("month %d: %w", month+1, err)
	}

	np.FaA, np.DuA, np.DlA = Atmospheric(c, hour, rx, freq)
	np.FaG, np.DuG, np.DlG = Galactic(freq)
	np.FaM, np.DuM, np.DlM = ManMade(mm, freq)
	np.FamT, np.DuT, np.DlT = Combine(np)
	return np, nil
}

// Galactic returns the galactic noise and its fixed 2 dB deciles.
func Galactic(freq float64) (fa, du, dl float64) {
	return 52.0 - 23.0*math.Log10(freq), 2.0, 2.0
}

// manMadeCurve is the median man-made noise c - d*log10(f) with its decile
// deviations.
type manMadeCurve struct {
	c, d, du, dl float64
}

var manMadeCurves = map[model.ManMade]manMadeCurve{
	model.City:        {76.8, 27.7, 11.0, 6.7},
	model.Residential: {72.5, 27.7, 10.6, 5.3},
	model.Rural:       {67.2, 27.7, 9.2, 4.6},
	model.QuietRural:  {53.6, 28.6, 9.2, 4.6},
	model.Quiet:       {65.2, 29.1, 9.2, 4.6},
	model.Noisy:       {83.2, 37.5, 11.0, 6.7},
}

// ManMade returns the man-made noise for a category, or for an explicit
// noise power at 3 MHz in dBW. Explicit levels take the city deciles with
// upper and lower exchanged.
func ManMade(mm model.ManMade, freq float64) (fa, du, dl float64) {
	if cv, ok := manMadeCurves[mm]; ok {
		return cv.c - cv.d*math.Log10(freq), cv.du, cv.dl
	}
	return -float64(mm) + 204.0, 6.7, 11.0
}

// Combine returns the total noise and its decile deviations from the three
// components, treating each as log-normal. The total is the smaller of the
// two estimates made from the upper and lower deviations.
func Combine(np model.NoiseParams) (famT, duT, dlT float64) {
	famU, sigmaU := combineDecile(np.FaA, np.FaG, np.FaM, np.DuA, np.DuG, np.DuM)
	famL, sigmaL := combineDecile(np.FaA, np.FaG, np.FaM, np.DlA, np.DlG, np.DlM)
	return math.Min(famU, famL), 1.282 * sigmaU, 1.282 * sigmaL
}

func combineDecile(faA, faG, faM, dA, dG, dM float64) (fam, sigmaT float64) {
	c := 10.0 / math.Ln10
	sigmas := [3]float64{dA / 1.282, 1.56, dM / 1.282}
	levels := [3]float64{faA, faG, faM}

	var alpha, beta, gamma float64
	for i, fa := range levels {
		s := sigmas[i]
		e := math.Exp(fa/c + s*s/(2.0*c*c))
		alpha += e
		beta += e * e * (math.Exp(math.Pow(s/c, 2)) - 1.0)
		gamma += math.Exp(fa / c)
	}

	if dA > 12.0 || dG > 12.0 || dM > 12.0 {
		sigmaT = c * math.Sqrt(2.0*math.Log(alpha/gamma))
	} else {
		sigmaT = c * math.Sqrt(math.Log(1.0+beta/(alpha*alpha)))
	}
	return c * (math.Log(alpha) - sigmaT*sigmaT/(2.0*c*c)), sigmaT
}
