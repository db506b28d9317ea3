package loader

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/model"
)

// IsotropicName selects a uniform pattern instead of a file.
const IsotropicName = "ISOTROPIC"

// VOACAP antenna file types.
const (
	AntennaType11 = 11 // 91 elevation gains, omnidirectional
	AntennaType13 = 13 // 360 x 91 gains at one frequency
	AntennaType14 = 14 // 30 frequencies x 91 elevation gains
)

const type14Freqs = 30

// LoadAntenna returns the pattern at path. The name ISOTROPIC yields a
// uniform pattern of gos dBi. bearing (radians) points the main beam of
// type 13 patterns; the other types are azimuth independent.
func LoadAntenna(path string, bearing, gos float64) (*model.Antenna, error) {
	if path == IsotropicName {
		return model.Isotropic(gos), nil
	}
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadAntenna(rc, path, bearing)
}

type antennaHeader struct {
	name  string
	maxG  float64
	atype int
}

// ReadAntenna reads a VOACAP pattern, dispatching on the antenna type held
// on the fourth line.
func ReadAntenna(r io.Reader, name string, bearing float64) (*model.Antenna, error) {
	lr := newLineReader(r, name)
	h, err := readAntennaHeader(lr)
	if err != nil {
		return nil, err
	}
	switch h.atype {
	case AntennaType11:
		return readType11(lr, h)
	case AntennaType13:
		return readType13(lr, h, bearing)
	case AntennaType14:
		return readType14(lr, h)
	default:
		return nil, lr.errorf("unsupported antenna type %d", h.atype)
	}
}

func readAntennaHeader(lr *lineReader) (antennaHeader, error) {
	var h antennaHeader
	line, err := lr.next()
	if err != nil {
		return h, err
	}
	h.name = strings.TrimSpace(line)

	if err := lr.skip(1); err != nil { // parameter count
		return h, err
	}
	if h.maxG, err = leadingFloat(lr); err != nil {
		return h, err
	}
	t, err := leadingFloat(lr)
	if err != nil {
		return h, err
	}
	h.atype = int(t)
	return h, nil
}

// leadingFloat parses the value at the start of the next "value [n] label"
// parameter line.
func leadingFloat(lr *lineReader) (float64, error) {
	line, err := lr.next()
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, lr.errorf("missing parameter")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, lr.errorf("bad parameter %q", fields[0])
	}
	return v, nil
}

func readType11(lr *lineReader, h antennaHeader) (*model.Antenna, error) {
	if err := lr.skip(1); err != nil { // efficiency
		return nil, err
	}
	gains, err := lr.floats(model.AntennaElevations)
	if err != nil {
		return nil, err
	}
	a := model.NewAntenna(h.name, nil)
	fillAzimuths(a, 0, gains, h.maxG)
	return a, nil
}

// readType13 reads 360 azimuth blocks, each led by its azimuth, rotated so
// the pattern's zero azimuth lies on bearing. Rotation is to the nearest
// lower whole degree.
func readType13(lr *lineReader, h antennaHeader, bearing float64) (*model.Antenna, error) {
	if err := lr.skip(1); err != nil { // efficiency
		return nil, err
	}
	freq, err := leadingFloat(lr)
	if err != nil {
		return nil, err
	}
	a := model.NewAntenna(h.name, []float64{freq})

	offset := int(bearing * core.R2D)
	for i := 0; i < model.AntennaAzimuths; i++ {
		block, err := lr.floats(model.AntennaElevations + 1)
		if err != nil {
			return nil, err
		}
		az := ((offset+i)%model.AntennaAzimuths + model.AntennaAzimuths) % model.AntennaAzimuths
		for el, g := range block[1:] {
			a.Set(0, az, el, g)
		}
	}
	return a, nil
}

// readType14 reads 30 frequency blocks of frequency, efficiency and 91
// elevation gains.
func readType14(lr *lineReader, h antennaHeader) (*model.Antenna, error) {
	if err := lr.skip(1); err != nil { // design frequency
		return nil, err
	}
	freqs := make([]float64, type14Freqs)
	blocks := make([][]float64, type14Freqs)
	for i := range blocks {
		block, err := lr.floats(model.AntennaElevations + 2)
		if err != nil {
			return nil, err
		}
		freqs[i] = block[0]
		blocks[i] = block[2:]
	}

	a := model.NewAntenna(h.name, freqs)
	for i, gains := range blocks {
		fillAzimuths(a, i, gains, h.maxG)
	}
	return a, nil
}

// fillAzimuths copies one elevation cut, offset by maxG, to every azimuth.
func fillAzimuths(a *model.Antenna, fi int, gains []float64, maxG float64) {
	for az := 0; az < model.AntennaAzimuths; az++ {
		for el, g := range gains {
			a.Set(fi, az, el, g+maxG)
		}
	}
}

// Bearings returns the transmitter and receiver antenna bearings (radians)
// that point each main beam along the great circle at the other end.
func Bearings(tx, rx model.Location) (txBearing, rxBearing float64) {
	return core.Bearing(tx, rx), core.Bearing(rx, tx)
}

// BearingDegrees rounds a bearing to the whole degree used for rotation.
func BearingDegrees(bearing float64) int {
	d := int(bearing * core.R2D)
	if d < 0 {
		d += 360
	}
	return d % 360
}

// Describe is a short human readable label for reports.
func Describe(a *model.Antenna) string {
	if a == nil {
		return "none"
	}
	if len(a.Freqs) > 1 {
		return fmt.Sprintf("%s (%d frequencies)", a.Name, len(a.Freqs))
	}
	if math.Abs(a.Freqs[0]) > 0 {
		return fmt.Sprintf("%s (%.3f MHz)", a.Name, a.Freqs[0])
	}
	return a.Name
}
