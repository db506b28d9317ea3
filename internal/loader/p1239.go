package loader

import (
	"io"
	"strings"

	"github.com/signalsfoundry/hfprop/model"
)

// DecileFileName is the P.1239 foF2 variability table.
const DecileFileName = "P1239-3 Decile Factors.txt"

const (
	decileFileHeader  = 2
	decileBlockHeader = 4
)

// LoadDeciles reads the decile table from dir.
func LoadDeciles(dir string) (*model.DecileTable, error) {
	rc, name, err := openData(dir, DecileFileName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadDeciles(rc, name)
}

// ReadDeciles reads the decile factors. Blocks run lower then upper decile,
// then season, then SSN band; each has four heading lines and one line per
// latitude from 90 degrees down to 0, a label followed by 24 hourly factors.
func ReadDeciles(r io.Reader, name string) (*model.DecileTable, error) {
	d := model.NewDecileTable()
	lr := newLineReader(r, name)
	if err := lr.skip(decileFileHeader); err != nil {
		return nil, err
	}

	for decile := 0; decile < model.DecileCount; decile++ {
		for season := 0; season < model.DecileSeasons; season++ {
			for ssn := 0; ssn < model.DecileSSNs; ssn++ {
				if err := lr.skip(decileBlockHeader); err != nil {
					return nil, err
				}
				for lat := model.DecileLats - 1; lat >= 0; lat-- {
					line, err := lr.next()
					if err != nil {
						return nil, err
					}
					fields := strings.Fields(line)
					if len(fields) == 0 {
						return nil, lr.errorf("empty latitude row")
					}
					vals, err := parseFloats(strings.Join(fields[1:], " "))
					if err != nil {
						return nil, lr.errorf("%v", err)
					}
					if len(vals) != model.DecileHours {
						return nil, lr.errorf("got %d hourly factors, want %d", len(vals), model.DecileHours)
					}
					for hour, v := range vals {
						d.Set(season, hour, lat, ssn, decile, v)
					}
				}
			}
		}
	}
	return d, nil
}
