package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Maximum number of modes considered per layer.
const (
	MaxEModes  = 3
	MaxF2Modes = 6
	MaxModes   = MaxEModes + MaxF2Modes
)

// Mode is one ionospheric hop pattern. A mode exists only when its basic
// MUF is non-zero; every other field is meaningless otherwise.
type Mode struct {
	BMUF    float64 `msgpack:"bmuf"`
	MUF90   float64 `msgpack:"muf90"`
	MUF50   float64 `msgpack:"muf50"`
	MUF10   float64 `msgpack:"muf10"`
	OPMUF   float64 `msgpack:"opmuf"`
	OPMUF10 float64 `msgpack:"opmuf10"`
	OPMUF90 float64 `msgpack:"opmuf90"`
	Fprob   float64 `msgpack:"fprob"`
	DeltaL  float64 `msgpack:"deltal"`
	DeltaU  float64 `msgpack:"deltau"`

	Hr  float64 `msgpack:"hr"`  // reflection height, km
	Fs  float64 `msgpack:"fs"`  // E-layer screening frequency, F2 modes only
	Lb  float64 `msgpack:"lb"`  // basic transmission loss, dB
	Ew  float64 `msgpack:"ew"`  // field strength, dB(1 uV/m)
	Ele float64 `msgpack:"ele"` // elevation angle
	Prw float64 `msgpack:"prw"` // available receiver power, dBW
	Grw float64 `msgpack:"grw"` // receive antenna gain, dBi
	Tau float64 `msgpack:"tau"` // group delay, ms

	// MC marks the mode as included in the field-strength summation.
	MC bool `msgpack:"mc"`
}

// Exists reports whether the mode was found to propagate.
func (m *Mode) Exists() bool { return m != nil && m.BMUF != 0 }

// Layer is the ionospheric layer a mode reflects from.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerE
	LayerF2
)

func (l Layer) String() string {
	switch l {
	case LayerE:
		return "E"
	case LayerF2:
		return "F2"
	default:
		return "none"
	}
}

// ModeIndex identifies a mode by layer and zero-based hop index, or no mode
// at all. The zero value is NoMode.
type ModeIndex struct {
	layer Layer
	hop   uint8
}

// NoMode is the absent mode index.
var NoMode = ModeIndex{}

// EMode returns the index of the E mode with hop index n (0 is one hop).
func EMode(n int) ModeIndex {
	if n < 0 || n >= MaxEModes {
		return NoMode
	}
	return ModeIndex{layer: LayerE, hop: uint8(n)}
}

// F2Mode returns the index of the F2 mode with hop index n.
func F2Mode(n int) ModeIndex {
	if n < 0 || n >= MaxF2Modes {
		return NoMode
	}
	return ModeIndex{layer: LayerF2, hop: uint8(n)}
}

// ModeFromSlot maps a combined slot (E 0..2, F2 3..8) to a ModeIndex.
func ModeFromSlot(slot int) ModeIndex {
	switch {
	case slot >= 0 && slot < MaxEModes:
		return EMode(slot)
	case slot >= MaxEModes && slot < MaxModes:
		return F2Mode(slot - MaxEModes)
	default:
		return NoMode
	}
}

// Valid reports whether the index refers to a mode.
func (i ModeIndex) Valid() bool { return i.layer != LayerNone }

// Layer returns the layer of the mode.
func (i ModeIndex) Layer() Layer { return i.layer }

// Hop returns the zero-based hop index, or -1 for NoMode.
func (i ModeIndex) Hop() int {
	if !i.Valid() {
		return -1
	}
	return int(i.hop)
}

// Slot returns the combined slot number (E 0..2, F2 3..8), or -1.
func (i ModeIndex) Slot() int {
	switch i.layer {
	case LayerE:
		return int(i.hop)
	case LayerF2:
		return MaxEModes + int(i.hop)
	default:
		return -1
	}
}

// String renders the mode in the usual "2F2" notation.
func (i ModeIndex) String() string {
	if !i.Valid() {
		return "none"
	}
	return fmt.Sprintf("%d%s", i.hop+1, i.layer)
}

// MarshalText encodes the index for reports and JSON output.
func (i ModeIndex) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText parses the notation written by MarshalText.
func (i *ModeIndex) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "none" || s == "" {
		*i = NoMode
		return nil
	}
	var (
		hops string
		mk   func(int) ModeIndex
	)
	switch {
	case strings.HasSuffix(s, "F2"):
		hops, mk = strings.TrimSuffix(s, "F2"), F2Mode
	case strings.HasSuffix(s, "E"):
		hops, mk = strings.TrimSuffix(s, "E"), EMode
	default:
		return fmt.Errorf("mode %q: unknown layer", s)
	}
	n, err := strconv.Atoi(hops)
	if err != nil {
		return fmt.Errorf("mode %q: %w", s, err)
	}
	idx := mk(n - 1)
	if !idx.Valid() {
		return fmt.Errorf("mode %q: hop count out of range", s)
	}
	*i = idx
	return nil
}
