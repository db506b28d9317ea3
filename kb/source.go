package kb

import (
	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/model"
)

// DirSource reads the ITU reference files from a data directory. Antenna
// paths are used as given.
type DirSource struct {
	Dir        string
	IonoFormat string // loader.FormatBin or loader.FormatTxt
}

var _ Source = DirSource{}

func (s DirSource) IonoMap(month int) (*model.IonoMap, error) {
	format := s.IonoFormat
	if format == "" {
		format = loader.FormatBin
	}
	return loader.LoadIonoMap(s.Dir, month, format)
}

func (s DirSource) Coefficients(month int) (*noise.Coefficients, error) {
	return loader.LoadCoefficients(s.Dir, month)
}

func (s DirSource) Deciles() (*model.DecileTable, error) {
	return loader.LoadDeciles(s.Dir)
}

func (s DirSource) Antenna(path string, bearing, gos float64) (*model.Antenna, error) {
	return loader.LoadAntenna(path, bearing, gos)
}
