package core

import "math"

// InterpolateFieldStrength blends the short and long model field strengths
// for paths strictly between 7000 and 9000 km and recomputes the basic MUF
// from the dM/2 control points.
//
// Reads: Distance, Es, El, N0F2, CP[Td02], CP[Rd02].
// Writes: Ei, BMUF.
func InterpolateFieldStrength(p *Path) {
	if p.Distance <= 7000.0 || p.Distance >= 9000.0 {
		return
	}
	xl := math.Pow(10.0, p.El/100.0)
	xs := math.Pow(10.0, p.Es/100.0)
	xi := xs + ((p.Distance-7000.0)/2000.0)*(xl-xs)
	p.Ei = 100.0 * math.Log10(xi)

	n0 := noLowestMode
	if p.N0F2.Valid() {
		n0 = p.N0F2.Hop()
	}
	d0 := p.Distance / float64(n0+1)
	td, rd := &p.CP[Td02], &p.CP[Rd02]
	p.BMUF = math.Min(
		CalcF2DMUF(td, d0, math.Min(Calcdmax(td), maxHopKm), CalcB(td)),
		CalcF2DMUF(rd, d0, math.Min(Calcdmax(rd), maxHopKm), CalcB(rd)),
	)
}
