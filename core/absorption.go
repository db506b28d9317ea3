package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// Penetration point ends within a hop.
const (
	txEnd = 0
	rxEnd = 1
)

// notOtherwiseIncludedLoss is the Lz term of the short model, dB.
const notOtherwiseIncludedLoss = 8.72

// AbsorptionTerm returns the product of the noon absorption factor, the
// layer penetration factor for vertical frequency fv and the diurnal
// variation of the solar zenith angle at cp.
func AbsorptionTerm(cp *model.ControlPoint, month int, fv float64) float64 {
	p := DiurnalAbsorptionExponent(cp, month)

	chij := math.Min(cp.Sun.SZA, 102.0*D2R)
	fchij := cmax(math.Pow(math.Cos(0.881*chij), p), 0.02)

	noon := SolarParameters(cp.L, month, cp.Sun.LSN)
	// Past about 102 degrees the cosine is negative and the power is NaN,
	// which takes the floor.
	fchijnoon := cmax(math.Pow(math.Cos(0.881*noon.SZA), p), 0.02)

	ATnoon := AbsorptionFactor(cp, month)
	phin := AbsorptionLayerPenetrationFactor(fv / cp.FoE)
	return ATnoon * phin * fchij / fchijnoon
}

// Diurnal absorption exponent coefficients. ppt is the modified dip break
// point per month in degrees; pval is [month][below/above break][term].
var (
	ppt = [12]float64{30.0, 30.0, 30.0, 27.5, 32.5, 35.0, 37.5, 35.0, 32.5, 30.0, 30.0, 30.0}

	pval = [12][2][7]float64{
		{{1.510, -0.353, -0.090, 0.191, 0.133, -0.067, -0.053}, {1.400, -0.365, -1.212, -0.049, 1.187, 0.119, -0.400}},
		{{1.490, -0.348, -0.055, 0.164, 0.160, -0.041, -0.080}, {1.450, -0.119, -0.913, -0.640, 0.347, 0.458, 0.107}},
		{{1.520, -0.410, -0.138, 0.308, 0.267, -0.113, -0.133}, {1.500, -0.492, -0.958, 0.216, 0.267, -0.029, 0.187}},
		{{1.580, -0.129, -0.228, -0.192, 0.200, 0.116, -0.027}, {1.530, -0.468, -1.312, 0.096, 0.973, 0.057, -0.187}},
		{{1.590, 0.002, -0.102, -0.579, -0.467, 0.522, 0.613}, {1.490, -0.937, -1.622, 1.365, 1.720, -0.873, -0.453}},
		{{1.600, -0.060, -0.175, -0.037, 0.147, -0.008, -0.027}, {1.460, -0.881, -1.595, 0.901, 2.133, -0.395, -0.933}},
		{{1.60, -0.030, -0.135, -0.137, 0.053, 0.072, 0.027}, {1.43, -0.902, -1.667, 0.905, 2.480, -0.383, -1.173}},
		{{1.59, -0.032, -0.083, -0.119, 0.000, 0.031, 0.053}, {1.46, -0.831, -1.653, 0.708, 2.320, -0.257, -1.067}},
		{{1.59, -0.060, -0.180, -0.181, 0.267, 0.081, -0.107}, {1.51, -0.809, -1.740, 0.750, 2.240, -0.301, -0.960}},
		{{1.57, -0.189, -0.207, -0.005, 0.293, 0.004, -0.107}, {1.52, -0.433, -1.015, -0.017, 0.440, 0.115, 0.080}},
		{{1.55, -0.292, -0.275, 0.093, 0.427, -0.026, -0.187}, {1.44, -0.279, -0.770, -0.266, 0.053, 0.245, 0.267}},
		{{1.51, -0.347, -0.082, 0.160, 0.093, -0.048, -0.027}, {1.40, -0.355, -1.212, -0.102, 1.187, 0.172, -0.400}},
	}
)

// DiurnalAbsorptionExponent returns the exponent p as a function of month
// and modified magnetic dip at cp. Southern hemisphere months are shifted
// by six.
func DiurnalAbsorptionExponent(cp *model.ControlPoint, month int) float64 {
	moddip := math.Abs(math.Atan2(cp.Dip[model.Height100km], math.Sqrt(math.Cos(cp.L.Lat))))
	moddip = math.Min(moddip, 70.0*D2R)

	if cp.L.Lat < 0.0 {
		month = (month + 6) % 12
	}

	PP := ppt[month] * D2R
	i := 0
	if moddip > PP {
		i = 1
		moddip = -1.0 + 2.0*(moddip-PP)/(70.0*D2R-PP)
	} else {
		moddip = -1.0 + 2.0*moddip/PP
	}

	var p float64
	sx := 1.0
	for _, a := range pval[month][i] {
		p += a * sx
		sx *= moddip
	}
	return p
}

// atno is the absorption factor at local noon and zero sunspot number in
// 2.5 degree latitude steps from the equator. Rows are shared between
// months, see atnoRow.
var atno = [9][29]float64{
	{323.9, 297.5, 274.5, 256.4, 244.2, 235.0, 229.5, 226.1, 226.8, 229.0, 232.5, 237.0, 243.4, 249.9, 258.1, 267.5, 277.5, 283.3, 283.2, 273.1, 257.0, 232.1, 201.4, 171.5, 146.0, 123.0, 103.1, 83.0, 66.6},
	{312.1, 285.1, 263.1, 251.8, 249.5, 250.9, 254.5, 260.3, 266.7, 272.3, 277.8, 280.3, 283.9, 284.5, 284.4, 283.0, 278.6, 273.0, 265.7, 256.3, 244.8, 232.0, 218.1, 204.5, 189.9, 172.3, 155.3, 135.5, 116.2},
	{347.7, 321.9, 302.5, 293.8, 291.4, 289.3, 292.1, 296.6, 304.3, 313.0, 321.7, 333.8, 342.6, 349.6, 355.2, 355.6, 352.2, 341.7, 327.3, 308.4, 286.0, 265.0, 244.1, 223.8, 202.8, 181.8, 160.8, 141.6, 123.4},
	{338.0, 313.2, 297.0, 290.2, 292.1, 299.4, 308.0, 320.4, 331.6, 340.7, 347.8, 353.8, 357.0, 360.0, 359.8, 358.3, 355.8, 350.8, 344.5, 332.7, 316.4, 292.5, 266.1, 236.4, 214.0, 193.8, 177.5, 165.0, 155.9},
	{328.1, 303.8, 287.7, 282.5, 284.4, 289.4, 294.8, 303.6, 312.9, 322.7, 332.3, 343.8, 350.6, 358.7, 364.3, 365.8, 362.4, 356.0, 346.7, 333.0, 318.8, 299.7, 282.1, 260.5, 240.5, 220.6, 203.9, 186.3, 173.0},
	{305.1, 288.5, 275.2, 273.7, 278.6, 288.9, 302.5, 319.3, 333.6, 346.3, 356.3, 364.7, 371.7, 373.6, 374.2, 373.1, 370.5, 365.1, 358.5, 347.7, 335.0, 320.3, 299.1, 276.6, 253.2, 230.7, 214.0, 196.6, 185.3},
	{345.4, 319.4, 298.7, 290.1, 290.0, 291.8, 296.3, 302.9, 312.1, 320.1, 327.8, 334.1, 340.2, 343.3, 345.7, 346.5, 345.3, 341.1, 334.5, 321.7, 304.2, 286.8, 265.9, 244.8, 224.1, 204.5, 183.6, 164.1, 145.2},
	{341.9, 314.8, 295.3, 277.9, 265.0, 258.2, 254.4, 255.8, 257.3, 262.9, 268.5, 279.0, 287.5, 295.2, 299.6, 300.2, 298.9, 291.5, 279.0, 262.6, 245.7, 227.0, 203.6, 182.3, 163.2, 147.1, 133.9, 119.9, 110.8},
	{318.8, 293.3, 268.3, 251.7, 240.4, 233.1, 229.4, 228.8, 230.5, 235.5, 239.7, 242.6, 245.4, 247.5, 248.9, 249.9, 248.5, 244.4, 237.3, 225.6, 213.5, 195.2, 172.7, 151.3, 131.1, 113.1, 100.1, 89.0, 80.0},
}

// atnoRow maps a month to its atno row.
var atnoRow = [12]int{0, 1, 2, 3, 4, 5, 5, 4, 6, 7, 8, 0}

// AbsorptionFactor returns ATnoon, the absorption factor at local noon and
// zero sunspot number, interpolated in latitude at cp.
func AbsorptionFactor(cp *model.ControlPoint, month int) float64 {
	x := math.Abs(cp.L.Lat * R2D)
	if x >= 70.0 {
		x = 69.99
	}
	x /= 2.5
	j := int(x)
	x -= float64(j)
	row := &atno[atnoRow[month]]
	return row[j+1]*x + row[j]*(1.0-x)
}

// AbsorptionLayerPenetrationFactor returns the normalized penetration factor
// phi for T, the ratio of the vertical-incidence frequency to foE.
func AbsorptionLayerPenetrationFactor(T float64) float64 {
	var phi float64
	switch {
	case T < 0.0:
		phi = 0.0
	case T <= 1.0:
		X := (T - 0.475) / 0.475
		phi = (((((-0.093*X+0.04)*X+0.127)*X-0.027)*X+0.044)*X+0.159)*X + 0.225
		phi = math.Min(phi, 0.53)
	case T <= 2.2:
		X := (T - 1.65) / 0.55
		phi = (((((0.043*X-0.07)*X-0.027)*X+0.034)*X+0.054)*X-0.049)*X + 0.375
		phi = math.Min(phi, 0.53)
	case T <= 10.0:
		phi = 0.34 + (10.0-T)*0.02/7.8
	default:
		phi = 0.34
	}
	return phi / 0.34
}

// lh is the auroral and other signal loss in dB indexed
// [range][season][geomagnetic latitude band][mid-path local time band].
// Range 0 covers hops up to 2500 km.
var lh = [2][3][8][8]float64{
	{
		{
			{2.0, 6.6, 6.2, 1.5, 0.5, 1.4, 1.5, 1.0},
			{3.4, 8.3, 8.6, 0.9, 0.5, 2.5, 3.0, 3.0},
			{6.2, 15.6, 12.8, 2.3, 1.5, 4.6, 7.0, 5.0},
			{7.0, 16.0, 14.0, 3.6, 2.0, 6.8, 9.8, 6.6},
			{2.0, 4.5, 6.6, 1.4, 0.8, 2.7, 3.0, 2.0},
			{1.3, 1.0, 3.2, 0.3, 0.4, 1.8, 2.3, 0.9},
			{0.9, 0.6, 2.2, 0.2, 0.2, 1.2, 1.5, 0.6},
			{0.4, 0.3, 1.1, 0.1, 0.1, 0.6, 0.7, 0.3},
		},
		{
			{1.4, 2.5, 7.4, 3.8, 1.0, 2.4, 2.4, 3.3},
			{3.3, 11.0, 11.6, 5.1, 2.6, 4.0, 6.0, 7.0},
			{6.5, 12.0, 21.4, 8.5, 4.8, 6.0, 10.0, 13.7},
			{6.7, 11.2, 17.0, 9.0, 7.2, 9.0, 10.9, 15.0},
			{2.4, 4.4, 7.5, 5.0, 2.6, 4.8, 5.5, 6.1},
			{1.7, 2.0, 5.0, 3.0, 2.2, 4.0, 3.0, 4.0},
			{1.1, 1.3, 3.3, 2.0, 1.4, 2.6, 2.0, 2.6},
			{0.5, 0.6, 1.6, 1.0, 0.7, 1.3, 1.0, 1.3},
		},
		{
			{2.2, 2.7, 1.2, 2.3, 2.2, 3.8, 4.2, 3.8},
			{2.4, 3.0, 2.8, 3.0, 2.7, 4.2, 4.8, 4.5},
			{4.9, 4.2, 6.2, 4.5, 3.8, 5.4, 7.7, 7.2},
			{6.5, 4.8, 9.0, 6.0, 4.8, 9.1, 9.5, 8.9},
			{3.2, 2.7, 4.0, 3.0, 3.0, 6.5, 6.7, 5.0},
			{2.5, 1.8, 2.4, 2.3, 2.6, 5.0, 4.6, 4.0},
			{1.6, 1.2, 1.6, 1.5, 1.7, 3.3, 3.1, 2.6},
			{0.8, 0.6, 0.8, 0.7, 0.8, 1.6, 1.5, 1.3},
		},
	},
	{
		{
			{1.5, 2.7, 2.5, 0.8, 0.0, 0.9, 0.8, 1.6},
			{2.5, 4.5, 4.3, 0.8, 0.3, 1.6, 2.0, 4.8},
			{5.5, 5.0, 7.0, 1.9, 0.5, 3.0, 4.5, 9.6},
			{5.3, 7.0, 5.9, 2.0, 0.7, 4.0, 4.5, 10.0},
			{1.6, 2.4, 2.7, 0.6, 0.4, 1.7, 1.8, 3.5},
			{0.9, 1.0, 1.3, 0.1, 0.1, 1.0, 1.5, 1.4},
			{0.6, 0.6, 0.8, 0.1, 0.1, 0.6, 1.0, 0.5},
			{0.3, 0.3, 0.4, 0.0, 0.0, 0.3, 0.5, 0.4},
		},
		{
			{1.0, 1.2, 2.7, 3.0, 0.6, 2.0, 2.3, 1.6},
			{1.8, 2.9, 4.1, 5.7, 1.5, 3.2, 5.6, 3.6},
			{3.7, 5.6, 7.7, 8.1, 3.5, 5.0, 9.5, 7.3},
			{3.9, 5.2, 7.6, 9.0, 5.0, 7.5, 10.0, 7.9},
			{1.4, 2.0, 3.2, 3.8, 1.8, 4.0, 5.4, 3.4},
			{0.9, 0.9, 1.8, 2.0, 1.3, 3.1, 2.7, 2.0},
			{0.6, 0.6, 1.2, 1.3, 0.8, 2.0, 1.8, 1.3},
			{0.3, 0.3, 0.6, 0.6, 0.4, 1.0, 0.9, 0.6},
		},
		{
			{1.9, 3.8, 2.2, 1.1, 2.1, 1.2, 2.3, 2.4},
			{1.9, 4.6, 2.9, 1.3, 2.2, 1.3, 2.8, 2.7},
			{4.4, 6.3, 5.9, 1.9, 3.3, 1.7, 4.4, 4.5},
			{5.5, 8.5, 7.6, 2.6, 4.2, 3.2, 5.5, 5.7},
			{2.8, 3.8, 3.7, 1.4, 2.7, 1.6, 4.5, 3.2},
			{2.2, 2.4, 2.2, 1.0, 2.2, 1.2, 4.4, 2.5},
			{1.4, 1.6, 1.4, 0.6, 1.4, 0.8, 2.9, 1.6},
			{0.7, 0.8, 0.7, 0.3, 0.7, 0.4, 1.4, 0.8},
		},
	},
}

// FindLh returns the auroral and other signal loss at cp for hop length dh
// and the mid-path local hour. Points below 42.5 degrees geomagnetic
// latitude have no loss.
func FindLh(cp *model.ControlPoint, dh float64, hour, month int) float64 {
	gn := GeomagneticCoords(cp.L)
	glat := math.Abs(gn.Lat) * R2D
	if glat < 42.5 {
		return 0.0
	}
	gmlat := 0
	if glat < 77.5 {
		gmlat = int(math.Ceil((77.5 - glat) / 5.0))
	}

	rng := 0
	if dh > 2500.0 {
		rng = 1
	}

	// Bands are three hours wide starting at 01; 22..01 wraps to the last.
	mplt := 7
	if hour >= 1 && hour < 22 {
		mplt = (hour - 1) / 3
	}

	return lh[rng][WhatSeasonforLh(cp.L, month)][gmlat][mplt]
}

// WhatSeasonforLh returns the three-month season used by the Lh table:
// northern winter is Dec..Feb, summer is Jun..Aug, and the hemispheres swap.
func WhatSeasonforLh(loc model.Location, month int) model.Season {
	north := loc.Lat >= 0
	switch month {
	case dec, jan, feb:
		if north {
			return model.Winter
		}
		return model.Summer
	case jun, jul, aug:
		if north {
			return model.Summer
		}
		return model.Winter
	default:
		return model.Equinox
	}
}

// SmallestCPfoF2 returns the control point slot used for the F2 reflection
// height on paths longer than dmax. The ordering is a pairwise exchange
// over all slots; the last entry that is not T1k wins.
func SmallestCPfoF2(p *Path) int {
	idx := [NumControlPoints]int{0, 1, 2, 3, 4}
	for i := range idx {
		for j := range idx {
			if p.CP[idx[i]].FoF2 > p.CP[idx[j]].FoF2 {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
	}
	slot := 0
	for _, v := range idx {
		if v != T1k {
			slot = v
		}
	}
	return slot
}

// PenetrationPoints returns the absorption term averaged over the 90 km
// penetration points of an n-hop mode reflecting at hr. Each hop has two,
// one near each end.
func PenetrationPoints(p *Path, n int, hr, fv float64) float64 {
	hops := float64(n + 1)
	dh := p.Distance / hops
	delta := ElevationAngle(dh, hr)
	aoi90 := IncidenceAngle(delta, 90.0)
	dh90 := R0 * (math.Pi/2.0 - delta - aoi90)

	var sum float64
	var pp [2]model.ControlPoint
	for i := 0; i <= n; i++ {
		pp[txEnd] = model.ControlPoint{}
		pp[rxEnd] = model.ControlPoint{}

		placeControlPoint(p, &pp[txEnd], (float64(i)*dh+dh90)/p.Distance)
		CalculateCPParameters(p, &pp[txEnd])
		pp[txEnd].Hr = 90.0
		sum += AbsorptionTerm(&pp[txEnd], p.Month, fv)

		placeControlPoint(p, &pp[rxEnd], (float64(i+1)*dh-dh90)/p.Distance)
		CalculateCPParameters(p, &pp[rxEnd])
		pp[rxEnd].Hr = 90.0
		sum += AbsorptionTerm(&pp[rxEnd], p.Month, fv)
	}
	return sum / (2.0 * hops)
}
