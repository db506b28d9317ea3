package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/signalsfoundry/hfprop/model"
)

// Ionospheric map formats.
const (
	FormatBin = "bin"
	FormatTxt = "txt"
)

// Byte counts of the record markers around the two binary grids.
const (
	binHeaderLen = 5
	binGapLen    = 10
)

// txtHourGroups is the number of hours on each of the six lines holding one
// grid node in the text maps.
var txtHourGroups = [6]int{5, 3, 5, 3, 5, 3}

// IonoFileName returns the monthly map name for month (0..11).
func IonoFileName(month int, format string) string {
	return fmt.Sprintf("ionos%02d.%s", month+1, format)
}

// LoadIonoMap reads the month's map from dir in the given format.
func LoadIonoMap(dir string, month int, format string) (*model.IonoMap, error) {
	if format != FormatBin && format != FormatTxt {
		return nil, fmt.Errorf("unknown ionospheric map format %q", format)
	}
	rc, name, err := openData(dir, IonoFileName(month, format))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if format == FormatBin {
		return ReadIonosBin(rc, name, month)
	}
	return ReadIonosTxt(rc, name, month)
}

// ReadIonosBin reads a binary map: a 5 byte record header, the foF2 grid as
// little-endian float32, 10 bytes of record trailer and header, then the
// M(3000)F2 grid.
func ReadIonosBin(r io.Reader, name string, month int) (*model.IonoMap, error) {
	m := model.NewIonoMap(month)

	readGrid := func(skip int, dst []float32, what string) error {
		if _, err := io.CopyN(io.Discard, r, int64(skip)); err != nil {
			return binErr(name, what, err)
		}
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return binErr(name, what, err)
		}
		return nil
	}
	if err := readGrid(binHeaderLen, m.FoF2, "foF2"); err != nil {
		return nil, err
	}
	if err := readGrid(binGapLen, m.M3kF2, "M3kF2"); err != nil {
		return nil, err
	}
	return m, nil
}

func binErr(name, what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w: %s grid truncated", name, ErrMalformed, what)
	}
	return fmt.Errorf("%s: %s: %w", name, what, err)
}

// ReadIonosTxt reads a text map. Each grid node (SSN, longitude, latitude)
// takes six lines covering the 24 hours; all foF2 nodes precede the
// M(3000)F2 nodes.
func ReadIonosTxt(r io.Reader, name string, month int) (*model.IonoMap, error) {
	m := model.NewIonoMap(month)
	lr := newLineReader(r, name)

	for _, grid := range [][]float32{m.FoF2, m.M3kF2} {
		for s := 0; s < model.IonoSSNs; s++ {
			for j := 0; j < model.IonoLngs; j++ {
				for k := 0; k < model.IonoLats; k++ {
					hour := 0
					for _, n := range txtHourGroups {
						vals, err := lr.lineFloats(n)
						if err != nil {
							return nil, err
						}
						for _, v := range vals {
							grid[model.IonoIndex(hour, j, k, s)] = float32(v)
							hour++
						}
					}
				}
			}
		}
	}
	return m, nil
}
