// Package kbtest provides an in-memory kb.Source with flat synthetic
// reference data for tests that exercise the full prediction stack.
package kbtest

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/kb"
	"github.com/signalsfoundry/hfprop/model"
)

// Source returns the same ionosphere, deciles and atmospheric noise for
// every month. Months listed in Missing fail with fs.ErrNotExist.
type Source struct {
	FoF2, M3kF2              float32
	LowerDecile, UpperDecile float64

	// Atmospheric noise at 1 MHz and its decile deviations.
	Fa, Du, Dl float64

	Missing map[int]bool

	mu       sync.Mutex
	antennas map[string]*model.Antenna
	loads    map[string]int
}

var _ kb.Source = (*Source)(nil)

// New returns a Source with mid-latitude daytime values.
func New() *Source {
	return &Source{
		FoF2:        8,
		M3kF2:       3,
		LowerDecile: 0.8,
		UpperDecile: 1.2,
		Fa:          60,
		Du:          8,
		Dl:          6,
		Missing:     map[int]bool{},
		antennas:    map[string]*model.Antenna{},
		loads:       map[string]int{},
	}
}

// AddAntenna registers a pattern under path. Registered patterns are
// returned as is, whatever the bearing.
func (s *Source) AddAntenna(path string, a *model.Antenna) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.antennas[path] = a
}

// Loads reports how many times kind ("iono", "coefficients", "deciles",
// "antenna") was loaded.
func (s *Source) Loads(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[kind]
}

func (s *Source) count(kind string) {
	s.mu.Lock()
	s.loads[kind]++
	s.mu.Unlock()
}

func (s *Source) missing(month int, name string) error {
	if s.Missing[month] {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return nil
}

func (s *Source) IonoMap(month int) (*model.IonoMap, error) {
	s.count(kb.KindIono)
	if err := s.missing(month, loader.IonoFileName(month, loader.FormatBin)); err != nil {
		return nil, err
	}
	m := model.NewIonoMap(month)
	for i := range m.FoF2 {
		m.FoF2[i] = s.FoF2
		m.M3kF2[i] = s.M3kF2
	}
	return m, nil
}

func (s *Source) Coefficients(month int) (*noise.Coefficients, error) {
	s.count(kb.KindCoefficients)
	if err := s.missing(month, loader.CoeffFileName(month)); err != nil {
		return nil, err
	}
	c := noise.NewCoefficients(month)
	for b := 0; b < noise.TimeBlocks; b++ {
		c.SetFakabp(b, 0, s.Fa)
	}
	for b := 0; b < noise.FamBlocks; b++ {
		c.SetFam(b, 6, 1)
		c.SetDud(0, b, noise.DudTerms-1, s.Du)
		c.SetDud(1, b, noise.DudTerms-1, s.Dl)
	}
	return c, nil
}

func (s *Source) Deciles() (*model.DecileTable, error) {
	s.count(kb.KindDeciles)
	d := model.NewDecileTable()
	for i := range d.Factors {
		if i%model.DecileCount == model.DecileLower {
			d.Factors[i] = s.LowerDecile
		} else {
			d.Factors[i] = s.UpperDecile
		}
	}
	return d, nil
}

func (s *Source) Antenna(path string, bearing, gos float64) (*model.Antenna, error) {
	s.count(kb.KindAntenna)
	if path == loader.IsotropicName {
		return model.Isotropic(gos), nil
	}
	s.mu.Lock()
	a, ok := s.antennas[path]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("antenna %s: %w", path, fs.ErrNotExist)
	}
	return a, nil
}
