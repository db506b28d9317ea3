package model

// Location is a geographic position in radians, north and east positive.
type Location struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lng float64 `json:"lng" msgpack:"lng"`
}

// Heights at which the geomagnetic field is evaluated for a control point.
const (
	Height100km = 0
	Height300km = 1
)

// Sun is the solar geometry seen from a control point at one instant.
// Sunrise, noon and sunset are UTC hours in [0, 24).
type Sun struct {
	HA   float64 `msgpack:"ha"`   // hour angle
	SHA  float64 `msgpack:"sha"`  // sunrise/sunset hour angle, NaN during polar day or night
	SZA  float64 `msgpack:"sza"`  // zenith angle
	Decl float64 `msgpack:"decl"` // declination
	EOT  float64 `msgpack:"eot"`  // equation of time in minutes
	LSR  float64 `msgpack:"lsr"`
	LSN  float64 `msgpack:"lsn"`
	LSS  float64 `msgpack:"lss"`
}

// ControlPoint is a point on the great-circle path where the ionosphere is
// sampled. Its ionospheric fields are only meaningful after the resolver has
// populated it for the current hour.
type ControlPoint struct {
	L        Location `msgpack:"l"`
	Distance float64  `msgpack:"distance"` // from the transmitter, km

	FoE   float64 `msgpack:"foE"`
	FoF2  float64 `msgpack:"foF2"`
	M3kF2 float64 `msgpack:"m3kF2"`

	// Indexed by Height100km and Height300km.
	Dip [2]float64 `msgpack:"dip"`
	FH  [2]float64 `msgpack:"fH"`

	LTime float64 `msgpack:"ltime"`
	Hr    float64 `msgpack:"hr"` // mirror reflection height, km
	X     float64 `msgpack:"x"`  // foF2/foE ratio

	Sun Sun `msgpack:"sun"`
}
