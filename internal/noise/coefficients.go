package noise

import "fmt"

// Dimensions of the atmospheric noise coefficient tables held in each
// monthly COEFF file. Time blocks are the six four-hour blocks of receiver
// local time; the fam and dud tables carry a second set of six for the
// southern hemisphere.
const (
	TimeBlocks = 6

	FakpTerms  = 16 // 15 longitude harmonics and a constant
	FakpLats   = 29 // latitude harmonics
	FakabpSize = 2

	FamBlocks = 2 * TimeBlocks
	FamTerms  = 14

	DudParams = 5 // Du, Dl, sigma Du, sigma Dl, sigma Fam
	DudBlocks = 2 * TimeBlocks
	DudTerms  = 5
)

// Sizes of the flat coefficient slices.
const (
	FakpSize  = TimeBlocks * FakpTerms * FakpLats
	FakabpLen = TimeBlocks * FakabpSize
	FamSize   = FamBlocks * FamTerms
	DudSize   = DudParams * DudBlocks * DudTerms
)

// Coefficients are the atmospheric noise tables for one month, flat in the
// order they appear in the coefficient file.
type Coefficients struct {
	Month  int
	Fakp   []float64 // [time block][term][latitude harmonic]
	Fakabp []float64 // [time block][2]
	Fam    []float64 // [block][term]
	Dud    []float64 // [param][block][term]
}

// NewCoefficients allocates zeroed tables for month (0..11).
func NewCoefficients(month int) *Coefficients {
	return &Coefficients{
		Month:  month,
		Fakp:   make([]float64, FakpSize),
		Fakabp: make([]float64, FakabpLen),
		Fam:    make([]float64, FamSize),
		Dud:    make([]float64, DudSize),
	}
}

func (c *Coefficients) fakp(block, term, lat int) float64 {
	return c.Fakp[(block*FakpTerms+term)*FakpLats+lat]
}

func (c *Coefficients) fakabp(block, i int) float64 {
	return c.Fakabp[block*FakabpSize+i]
}

func (c *Coefficients) fam(block, term int) float64 {
	return c.Fam[block*FamTerms+term]
}

func (c *Coefficients) dud(param, block, term int) float64 {
	return c.Dud[(param*DudBlocks+block)*DudTerms+term]
}

// SetFam stores one fam coefficient.
func (c *Coefficients) SetFam(block, term int, v float64) {
	c.Fam[block*FamTerms+term] = v
}

// SetDud stores one dud coefficient.
func (c *Coefficients) SetDud(param, block, term int, v float64) {
	c.Dud[(param*DudBlocks+block)*DudTerms+term] = v
}

// SetFakabp stores one fakabp coefficient.
func (c *Coefficients) SetFakabp(block, i int, v float64) {
	c.Fakabp[block*FakabpSize+i] = v
}

// Validate checks every table is fully allocated.
func (c *Coefficients) Validate() error {
	if c == nil {
		return fmt.Errorf("noise coefficients are nil")
	}
	switch {
	case len(c.Fakp) != FakpSize:
		return fmt.Errorf("fakp has %d values, want %d", len(c.Fakp), FakpSize)
	case len(c.Fakabp) != FakabpLen:
		return fmt.Errorf("fakabp has %d values, want %d", len(c.Fakabp), FakabpLen)
	case len(c.Fam) != FamSize:
		return fmt.Errorf("fam has %d values, want %d", len(c.Fam), FamSize)
	case len(c.Dud) != DudSize:
		return fmt.Errorf("dud has %d values, want %d", len(c.Dud), DudSize)
	}
	return nil
}
