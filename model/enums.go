package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Modulation selects the reliability procedure.
type Modulation int

const (
	Analog Modulation = iota
	Digital
)

func (m Modulation) String() string {
	if m == Digital {
		return "DIGITAL"
	}
	return "ANALOG"
}

// ParseModulation accepts "ANALOG" or "DIGITAL" in any case.
func ParseModulation(s string) (Modulation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ANALOG", "":
		return Analog, nil
	case "DIGITAL":
		return Digital, nil
	}
	return Analog, fmt.Errorf("unknown modulation %q", s)
}

// PathKind selects the short or long great-circle path.
type PathKind int

const (
	ShortPath PathKind = iota
	LongPath
)

func (k PathKind) String() string {
	if k == LongPath {
		return "LONGPATH"
	}
	return "SHORTPATH"
}

// ParsePathKind accepts "SHORTPATH" or "LONGPATH".
func ParsePathKind(s string) (PathKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SHORTPATH", "SHORT", "":
		return ShortPath, nil
	case "LONGPATH", "LONG":
		return LongPath, nil
	}
	return ShortPath, fmt.Errorf("unknown path kind %q", s)
}

// Season of the year at a control point.
type Season int

const (
	Winter Season = iota
	Equinox
	Summer
)

func (s Season) String() string {
	switch s {
	case Winter:
		return "WINTER"
	case Summer:
		return "SUMMER"
	default:
		return "EQUINOX"
	}
}

// ManMade is the man-made noise setting: one of the category constants, an
// explicit noise power at 3 MHz in dBW (100 to 200), or a negative value
// whose magnitude overrides the total noise.
type ManMade float64

const (
	City        ManMade = 0
	Residential ManMade = 1
	Rural       ManMade = 2
	QuietRural  ManMade = 3
	Noisy       ManMade = 4
	Quiet       ManMade = 5
)

var manMadeNames = map[string]ManMade{
	"CITY":        City,
	"RESIDENTIAL": Residential,
	"RURAL":       Rural,
	"QUIETRURAL":  QuietRural,
	"NOISY":       Noisy,
	"QUIET":       Quiet,
}

// IsCategory reports whether m names one of the environmental categories.
func (m ManMade) IsCategory() bool {
	switch m {
	case City, Residential, Rural, QuietRural, Noisy, Quiet:
		return true
	}
	return false
}

// IsOverride reports whether m overrides the noise calculation.
func (m ManMade) IsOverride() bool { return m < 0 }

func (m ManMade) String() string {
	for name, v := range manMadeNames {
		if v == m {
			return name
		}
	}
	return strconv.FormatFloat(float64(m), 'f', -1, 64)
}

// ParseManMade accepts a category name or a number.
func ParseManMade(s string) (ManMade, error) {
	s = strings.TrimSpace(s)
	if v, ok := manMadeNames[strings.ToUpper(s)]; ok {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("man-made noise %q: %w", s, err)
	}
	return ManMade(f), nil
}
