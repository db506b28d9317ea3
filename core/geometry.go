package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// GreatCircleDistance returns the great-circle distance in km between a and b.
func GreatCircleDistance(a, b model.Location) float64 {
	sLat := math.Sin((a.Lat - b.Lat) / 2.0)
	sLng := math.Sin((a.Lng - b.Lng) / 2.0)
	return 2.0 * R0 * math.Asin(math.Sqrt(sLat*sLat+math.Cos(a.Lat)*math.Cos(b.Lat)*sLng*sLng))
}

// GreatCirclePoint returns the location fraction*distance along the great
// circle from a toward b, together with its distance from a. A zero distance
// collapses to a.
func GreatCirclePoint(a, b model.Location, distance, fraction float64) (model.Location, float64) {
	if distance == 0 {
		return a, 0
	}
	d := distance / R0
	A := math.Sin((1-fraction)*d) / math.Sin(d)
	B := math.Sin(fraction*d) / math.Sin(d)
	x := A*math.Cos(a.Lat)*math.Cos(a.Lng) + B*math.Cos(b.Lat)*math.Cos(b.Lng)
	y := A*math.Cos(a.Lat)*math.Sin(a.Lng) + B*math.Cos(b.Lat)*math.Sin(b.Lng)
	z := A*math.Sin(a.Lat) + B*math.Sin(b.Lat)
	return model.Location{
		Lat: math.Atan2(z, math.Sqrt(x*x+y*y)),
		Lng: math.Atan2(y, x),
	}, distance * fraction
}

// placeControlPoint positions cp on the path at the given fraction.
func placeControlPoint(p *Path, cp *model.ControlPoint, fraction float64) {
	cp.L, cp.Distance = GreatCirclePoint(p.TX, p.RX, p.Distance, fraction)
}

// Bearing returns the initial great-circle bearing from a to b in [0, 2π).
func Bearing(a, b model.Location) float64 {
	num := math.Sin(b.Lng-a.Lng) * math.Cos(b.Lat)
	den := math.Cos(a.Lat)*math.Sin(b.Lat) - math.Sin(a.Lat)*math.Cos(b.Lat)*math.Cos(b.Lng-a.Lng)
	return math.Mod(2.0*math.Pi+math.Atan2(num, den), 2.0*math.Pi)
}

// GeomagneticCoords converts a geographic location to geomagnetic
// coordinates using the fixed 1955 pole at 78.5N 68.2W.
func GeomagneticCoords(g model.Location) model.Location {
	poleLat := 78.5 * D2R
	poleLng := -68.2 * D2R
	lat := math.Asin(math.Sin(g.Lat)*math.Sin(poleLat) + math.Cos(g.Lat)*math.Cos(poleLat)*math.Cos(g.Lng-poleLng))
	lng := math.Asin(math.Cos(g.Lat) * math.Sin(g.Lng-poleLng) / math.Cos(lat))
	return model.Location{Lat: lat, Lng: lng}
}

// ElevationAngle returns the ray elevation for hop length dh (km) reflected
// at height hr (km).
func ElevationAngle(dh, hr float64) float64 {
	psi := dh / (2.0 * R0)
	return math.Atan(1.0/math.Tan(psi) - (R0/(R0+hr))/math.Sin(psi))
}

// IncidenceAngle returns the angle of incidence at height hr for a ray
// leaving the ground at elevation delta.
func IncidenceAngle(delta, hr float64) float64 {
	return math.Asin(R0 * math.Cos(delta) / (R0 + hr))
}

// BilinearInterpolation blends four neighbours by fractional row r and
// fractional column c.
func BilinearInterpolation(LL, LR, UL, UR, r, c float64) float64 {
	return LL*((1.0-r)*(1.0-c)) +
		UL*(r*(1.0-c)) +
		LR*((1.0-r)*c) +
		UR*(r*c)
}

// horizonHop returns the longest hop (km) whose ray leaves the ground at
// the minimum elevation and reflects at height hr, capped at 4000 km.
func horizonHop(hr float64) float64 {
	minele := minElevDeg * D2R
	aoi := IncidenceAngle(minele, hr)
	return math.Min((math.Pi-aoi-(math.Pi/2.0+minele))*R0*2.0, maxHopKm)
}

// slantRange returns the one-hop slant range for elevation delta and the
// half-hop angle psi.
func slantRange(delta, psi float64) float64 {
	return 2.0 * R0 * math.Sin(psi) / math.Cos(delta+psi)
}
