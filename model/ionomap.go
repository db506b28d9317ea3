package model

import "fmt"

// Dimensions of the monthly ionospheric coefficient grid: 1.5 degree steps
// from 180W and 90S, 24 UTC hours and two sunspot levels (SSN 0 and 100).
const (
	IonoHours = 24
	IonoLngs  = 241
	IonoLats  = 121
	IonoSSNs  = 2
)

// IonoMap holds foF2 and M(3000)F2 for one month. The slices are flat in
// file order: SSN, longitude, latitude, hour with the hour varying fastest.
type IonoMap struct {
	Month int
	FoF2  []float32
	M3kF2 []float32
}

// IonoMapSize is the number of values in each of the two grids.
const IonoMapSize = IonoSSNs * IonoLngs * IonoLats * IonoHours

// NewIonoMap allocates an empty map for month (0..11).
func NewIonoMap(month int) *IonoMap {
	return &IonoMap{
		Month: month,
		FoF2:  make([]float32, IonoMapSize),
		M3kF2: make([]float32, IonoMapSize),
	}
}

// IonoIndex returns the flat offset of (hour, lng, lat, ssn).
func IonoIndex(hour, lng, lat, ssn int) int {
	return ((ssn*IonoLngs+lng)*IonoLats+lat)*IonoHours + hour
}

// Lookup returns foF2 and M(3000)F2 at a grid node.
func (m *IonoMap) Lookup(hour, lng, lat, ssn int) (foF2, m3kF2 float64) {
	i := IonoIndex(hour, lng, lat, ssn)
	return float64(m.FoF2[i]), float64(m.M3kF2[i])
}

// Validate checks both grids are fully populated.
func (m *IonoMap) Validate() error {
	if m == nil {
		return fmt.Errorf("ionospheric map is nil")
	}
	if len(m.FoF2) != IonoMapSize || len(m.M3kF2) != IonoMapSize {
		return fmt.Errorf("ionospheric map for month %d has %d/%d values, want %d",
			m.Month+1, len(m.FoF2), len(m.M3kF2), IonoMapSize)
	}
	return nil
}

// Dimensions of the P.1239 foF2 decile table.
const (
	DecileSeasons = 3
	DecileHours   = 24
	DecileLats    = 19 // 0..90 degrees in 5 degree steps
	DecileSSNs    = 3  // SSN < 50, 50..100, > 100
	DecileCount   = 2  // lower, upper
)

// Decile positions within a table entry.
const (
	DecileLower = 0
	DecileUpper = 1
)

// DecileTableSize is the number of factors in a complete table.
const DecileTableSize = DecileSeasons * DecileHours * DecileLats * DecileSSNs * DecileCount

// DecileTable holds the foF2 variability factors, flat in
// season, hour, latitude, SSN, decile order.
type DecileTable struct {
	Factors []float64
}

// NewDecileTable allocates an empty table.
func NewDecileTable() *DecileTable {
	return &DecileTable{Factors: make([]float64, DecileTableSize)}
}

func decileIndex(season, hour, lat, ssn, decile int) int {
	return (((season*DecileHours+hour)*DecileLats+lat)*DecileSSNs+ssn)*DecileCount + decile
}

// Lookup returns one variability factor.
func (d *DecileTable) Lookup(season, hour, lat, ssn, decile int) float64 {
	return d.Factors[decileIndex(season, hour, lat, ssn, decile)]
}

// Set stores one variability factor.
func (d *DecileTable) Set(season, hour, lat, ssn, decile int, v float64) {
	d.Factors[decileIndex(season, hour, lat, ssn, decile)] = v
}

// Validate checks the table is fully allocated.
func (d *DecileTable) Validate() error {
	if d == nil {
		return fmt.Errorf("decile table is nil")
	}
	if len(d.Factors) != DecileTableSize {
		return fmt.Errorf("decile table has %d values, want %d", len(d.Factors), DecileTableSize)
	}
	return nil
}
