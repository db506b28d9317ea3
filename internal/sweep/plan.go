// Package sweep drives the prediction engine over a grid of months, hours,
// frequencies and receiver locations, in the manner of the ITURHFProp
// driver program.
package sweep

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/model"
)

// ErrInvalidPlan is matched by every plan validation failure.
var ErrInvalidPlan = errors.New("invalid sweep plan")

// Antenna orientations.
const (
	// OrientTX2RX points each antenna's main beam at the other terminal.
	OrientTX2RX = "TX2RX"
	// OrientManual uses TXBearing and RXBearing as given.
	OrientManual = "MANUAL"
)

// Frequency limits accepted by the driver, MHz.
const (
	MinFrequency = 1.6
	MaxFrequency = 30.0
)

// gridTweak keeps float division from truncating a whole step count.
const gridTweak = 1e-8

// Point is a location in degrees, north and east positive.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location converts p to radians.
func (p Point) Location() model.Location {
	return model.Location{Lat: p.Lat * core.D2R, Lng: p.Lng * core.D2R}
}

// Area is a receiver grid from its south-west (LL) to north-east (UR)
// corner in LatInc and LngInc degree steps.
type Area struct {
	LL     Point   `json:"LL"`
	UR     Point   `json:"UR"`
	LatInc float64 `json:"LatInc"`
	LngInc float64 `json:"LngInc"`
}

// Plan is a sweep request. Field names follow the ITURHFProp input
// keywords. Angles are degrees, months 1..12 and hours 1..24 UTC, where 24
// is midnight.
type Plan struct {
	PathName   string `json:"PathName"`
	PathTXName string `json:"PathTXName"`
	PathRXName string `json:"PathRXName"`

	TX   Point  `json:"TX"`
	RX   *Point `json:"RX,omitempty"`
	Area *Area  `json:"Area,omitempty"`

	Year   int       `json:"Year"`
	Months []int     `json:"Months"`
	Hours  []int     `json:"Hours"`
	Freqs  []float64 `json:"Freqs"`
	SSN    int       `json:"SSN"`

	TXAntFilePath      string  `json:"TXAntFilePath"`
	RXAntFilePath      string  `json:"RXAntFilePath"`
	AntennaOrientation string  `json:"AntennaOrientation"`
	TXBearing          float64 `json:"TXBearing"`
	RXBearing          float64 `json:"RXBearing"`
	TXGOS              float64 `json:"TXGOS"`
	RXGOS              float64 `json:"RXGOS"`

	TXPower      float64 `json:"TXPower"` // dB(1 kW)
	ManMadeNoise string  `json:"ManMadeNoise"`
	Modulation   string  `json:"Modulation"`
	SorL         string  `json:"SorL"`
	BW           float64 `json:"BW"`
	SNRr         float64 `json:"SNRr"`
	SNRXXp       int     `json:"SNRXXp"`
	SIRr         float64 `json:"SIRr"`
	A            float64 `json:"A"`
	TW           float64 `json:"TW"`
	FW           float64 `json:"FW"`
	T0           float64 `json:"T0"`
	F0           float64 `json:"F0"`
}

// DefaultPlan returns the driver defaults: isotropic antennas pointed at
// each other, noisy man-made environment, analog short path.
func DefaultPlan() Plan {
	return Plan{
		PathName:           "Path Data",
		PathTXName:         "Transmitter",
		PathRXName:         "Receiver",
		Year:               2022,
		SSN:                99,
		TXAntFilePath:      loader.IsotropicName,
		RXAntFilePath:      loader.IsotropicName,
		AntennaOrientation: OrientTX2RX,
		ManMadeNoise:       "NOISY",
		Modulation:         model.Analog.String(),
		SorL:               model.ShortPath.String(),
	}
}

// ReadPlan decodes a JSON plan over the defaults. Unknown fields are
// rejected.
func ReadPlan(r io.Reader) (Plan, error) {
	p := DefaultPlan()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return p, nil
}

// LoadPlan reads a JSON plan file.
func LoadPlan(path string) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, err
	}
	defer f.Close()

	p, err := ReadPlan(f)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func invalidPlan(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPlan, fmt.Sprintf(format, args...))
}

// Validate checks the driver-level inputs. Per-path inputs such as SSN or
// bandwidth are checked by the engine for every evaluation.
func (p *Plan) Validate() error {
	if len(p.Months) == 0 {
		return invalidPlan("no months")
	}
	for _, m := range p.Months {
		if m < 1 || m > 12 {
			return invalidPlan("month %d outside 1..12", m)
		}
	}
	if len(p.Hours) == 0 {
		return invalidPlan("no hours")
	}
	for _, h := range p.Hours {
		if h < 1 || h > 24 {
			return invalidPlan("hour %d outside 1..24", h)
		}
	}
	if len(p.Freqs) == 0 {
		return invalidPlan("no frequencies")
	}
	for _, f := range p.Freqs {
		if f < MinFrequency || f > MaxFrequency {
			return invalidPlan("frequency %v MHz outside %v..%v", f, MinFrequency, MaxFrequency)
		}
	}

	switch strings.ToUpper(p.AntennaOrientation) {
	case OrientTX2RX, "":
		p.AntennaOrientation = OrientTX2RX
	case OrientManual, "ARBITRARY":
		p.AntennaOrientation = OrientManual
	default:
		return invalidPlan("antenna orientation %q", p.AntennaOrientation)
	}
	if p.TXBearing < 0 || p.TXBearing > 360 {
		return invalidPlan("TX bearing %v outside 0..360", p.TXBearing)
	}
	if p.RXBearing < 0 || p.RXBearing > 360 {
		return invalidPlan("RX bearing %v outside 0..360", p.RXBearing)
	}
	if p.TXGOS < core.TinyDB || p.TXGOS > 60 {
		return invalidPlan("TX gain offset %v outside %v..60", p.TXGOS, core.TinyDB)
	}
	if p.RXGOS < core.TinyDB || p.RXGOS > 60 {
		return invalidPlan("RX gain offset %v outside %v..60", p.RXGOS, core.TinyDB)
	}
	if p.TXAntFilePath == "" || p.RXAntFilePath == "" {
		return invalidPlan("antenna file paths are required")
	}

	if _, err := model.ParseManMade(p.ManMadeNoise); err != nil {
		return invalidPlan("%v", err)
	}
	if _, err := model.ParseModulation(p.Modulation); err != nil {
		return invalidPlan("%v", err)
	}
	if _, err := model.ParsePathKind(p.SorL); err != nil {
		return invalidPlan("%v", err)
	}

	if err := checkPoint("TX", p.TX); err != nil {
		return err
	}
	switch {
	case p.RX != nil && p.Area != nil:
		return invalidPlan("RX and Area are exclusive")
	case p.RX != nil:
		return checkPoint("RX", *p.RX)
	case p.Area != nil:
		return p.Area.validate()
	default:
		return invalidPlan("either RX or Area is required")
	}
}

func checkPoint(name string, pt Point) error {
	if math.Abs(pt.Lat) > 90 {
		return invalidPlan("%s latitude %v outside -90..90", name, pt.Lat)
	}
	if math.Abs(pt.Lng) > 180 {
		return invalidPlan("%s longitude %v outside -180..180", name, pt.Lng)
	}
	return nil
}

func (a *Area) validate() error {
	if err := checkPoint("Area LL", a.LL); err != nil {
		return err
	}
	if err := checkPoint("Area UR", a.UR); err != nil {
		return err
	}
	if a.LL.Lat > a.UR.Lat {
		return invalidPlan("Area LL latitude %v north of UR %v", a.LL.Lat, a.UR.Lat)
	}
	if a.LL.Lng > a.UR.Lng {
		return invalidPlan("Area LL longitude %v east of UR %v", a.LL.Lng, a.UR.Lng)
	}
	if a.LatInc <= 0 {
		a.LatInc = 1
	}
	if a.LngInc <= 0 {
		a.LngInc = 1
	}
	return nil
}

// Receivers returns the receiver locations in sweep order: latitude rows
// from south to north, each row west to east.
func (p *Plan) Receivers() []model.Location {
	if p.Area == nil {
		if p.RX == nil {
			return nil
		}
		return []model.Location{p.RX.Location()}
	}
	a := p.Area
	nlat := int(gridTweak+(a.UR.Lat-a.LL.Lat)/a.LatInc) + 1
	nlng := int(gridTweak+(a.UR.Lng-a.LL.Lng)/a.LngInc) + 1

	out := make([]model.Location, 0, nlat*nlng)
	for i := 0; i < nlat; i++ {
		for j := 0; j < nlng; j++ {
			out = append(out, Point{
				Lat: a.LL.Lat + float64(i)*a.LatInc,
				Lng: a.LL.Lng + float64(j)*a.LngInc,
			}.Location())
		}
	}
	return out
}

// MonthIndexes returns the months as 0..11.
func (p *Plan) MonthIndexes() []int {
	out := make([]int, len(p.Months))
	for i, m := range p.Months {
		out[i] = m - 1
	}
	return out
}

// HourIndexes returns the hours as 0..23 UTC.
func (p *Plan) HourIndexes() []int {
	out := make([]int, len(p.Hours))
	for i, h := range p.Hours {
		out[i] = h % 24
	}
	return out
}

// Evaluations is the number of engine runs the plan requires.
func (p *Plan) Evaluations() int {
	return len(p.Months) * len(p.Hours) * len(p.Freqs) * len(p.Receivers())
}

// template returns a Path holding every input shared by the sweep.
// Validate must have succeeded.
func (p *Plan) template() core.Path {
	mm, _ := model.ParseManMade(p.ManMadeNoise)
	mod, _ := model.ParseModulation(p.Modulation)
	kind, _ := model.ParsePathKind(p.SorL)
	return core.Path{
		Name:       p.PathName,
		TXName:     p.PathTXName,
		RXName:     p.PathRXName,
		Year:       p.Year,
		SSN:        p.SSN,
		Modulation: mod,
		Kind:       kind,
		BW:         p.BW,
		TXPower:    p.TXPower,
		SNRXXp:     p.SNRXXp,
		SNRr:       p.SNRr,
		SIRr:       p.SIRr,
		F0:         p.F0,
		T0:         p.T0,
		A:          p.A,
		TW:         p.TW,
		FW:         p.FW,
		TX:         p.TX.Location(),
		Noise:      model.NoiseParams{ManMade: mm},
	}
}
