package model

import (
	"fmt"
	"math"
)

// Antenna pattern dimensions: one-degree azimuth and elevation steps.
const (
	AntennaAzimuths   = 360
	AntennaElevations = 91
)

// Antenna is a gain table in dBi indexed by frequency, azimuth (0..359
// degrees) and elevation (0..90 degrees). Pattern is flat with the
// elevation varying fastest.
type Antenna struct {
	Name    string    `json:"name" msgpack:"name"`
	Freqs   []float64 `json:"freqs" msgpack:"freqs"`
	Pattern []float64 `json:"-" msgpack:"-"`
}

// NewAntenna allocates a pattern for the given frequencies.
func NewAntenna(name string, freqs []float64) *Antenna {
	if len(freqs) == 0 {
		freqs = []float64{0}
	}
	return &Antenna{
		Name:    name,
		Freqs:   append([]float64(nil), freqs...),
		Pattern: make([]float64, len(freqs)*AntennaAzimuths*AntennaElevations),
	}
}

// Isotropic returns a single-frequency antenna with gain g in every direction.
func Isotropic(g float64) *Antenna {
	a := NewAntenna("ISOTROPIC", nil)
	for i := range a.Pattern {
		a.Pattern[i] = g
	}
	return a
}

func (a *Antenna) offset(fi, az, el int) int {
	return (fi*AntennaAzimuths+az)*AntennaElevations + el
}

// At returns the gain for frequency index fi at integral azimuth and
// elevation in degrees.
func (a *Antenna) At(fi, az, el int) float64 {
	return a.Pattern[a.offset(fi, az, el)]
}

// Set stores the gain for frequency index fi at azimuth az and elevation el.
func (a *Antenna) Set(fi, az, el int, g float64) {
	a.Pattern[a.offset(fi, az, el)] = g
}

// FreqIndex returns the index of the pattern closest to freq (MHz). Single
// pattern antennas always return 0.
func (a *Antenna) FreqIndex(freq float64) int {
	if len(a.Freqs) <= 1 {
		return 0
	}
	best := 0
	minDelta := math.MaxFloat64
	for i, f := range a.Freqs {
		if d := math.Abs(f - freq); d < minDelta {
			minDelta = d
			best = i
		}
	}
	return best
}

// Validate checks the pattern is fully allocated.
func (a *Antenna) Validate() error {
	if a == nil {
		return fmt.Errorf("antenna is nil")
	}
	if len(a.Freqs) == 0 {
		return fmt.Errorf("antenna %q has no frequencies", a.Name)
	}
	if want := len(a.Freqs) * AntennaAzimuths * AntennaElevations; len(a.Pattern) != want {
		return fmt.Errorf("antenna %q pattern has %d values, want %d", a.Name, len(a.Pattern), want)
	}
	return nil
}
