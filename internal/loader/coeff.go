package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/hfprop/internal/noise"
)

// coeffSkipLines covers the file header and the ionospheric coefficient
// blocks (xf2, xfm3, xe, xesu, xes, xels, xhpo1, xhpo2, xhp) that the noise
// model does not use.
const coeffSkipLines = 1 + 400 + 181 + 84 + 114 + 175 + 114 + 155 + 202 + 138

// CoeffFileName returns the coefficient file name for month (0..11).
func CoeffFileName(month int) string {
	return fmt.Sprintf("COEFF%02dW.txt", month+1)
}

// LoadCoefficients reads the month's noise coefficients from dir.
func LoadCoefficients(dir string, month int) (*noise.Coefficients, error) {
	rc, name, err := openData(dir, CoeffFileName(month))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCoefficients(rc, name, month)
}

// ReadCoefficients reads the fakp, fakabp, dud and fam tables, each
// introduced by a label line naming its Fortran dimensions.
func ReadCoefficients(r io.Reader, name string, month int) (*noise.Coefficients, error) {
	lr := newLineReader(r, name)
	if err := lr.skip(coeffSkipLines); err != nil {
		return nil, err
	}

	c := &noise.Coefficients{Month: month}
	blocks := []struct {
		label string
		n     int
		dst   *[]float64
	}{
		{"fakp", noise.FakpSize, &c.Fakp},
		{"fakabp", noise.FakabpLen, &c.Fakabp},
		{"dud", noise.DudSize, &c.Dud},
		{"fam", noise.FamSize, &c.Fam},
	}
	for _, b := range blocks {
		line, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(strings.TrimSpace(line), b.label+"(") {
			return nil, lr.errorf("expected %s table, got %q", b.label, line)
		}
		vals, err := lr.floats(b.n)
		if err != nil {
			return nil, err
		}
		*b.dst = vals
	}
	return c, nil
}
