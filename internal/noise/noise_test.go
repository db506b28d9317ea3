package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource map[int]*Coefficients

func (s staticSource) Coefficients(month int) (*Coefficients, error) {
	c, ok := s[month]
	if !ok {
		return nil, ErrNoCoefficients
	}
	return c, nil
}

// flatCoefficients yields a 1 MHz atmospheric level of fa everywhere with
// constant decile deviations, independent of frequency.
func flatCoefficients(month int, fa, du, dl float64) *Coefficients {
	c := NewCoefficients(month)
	for b := 0; b < TimeBlocks; b++ {
		c.SetFakabp(b, 0, fa)
	}
	for b := 0; b < FamBlocks; b++ {
		c.SetFam(b, 6, 1)
		c.SetDud(0, b, DudTerms-1, du)
		c.SetDud(1, b, DudTerms-1, dl)
	}
	return c
}

func TestGalactic(t *testing.T) {
	fa, du, dl := Galactic(10)
	assert.InDelta(t, 29.0, fa, 1e-12)
	if du != 2 || dl != 2 {
		t.Fatalf("deciles = %v/%v, want 2/2", du, dl)
	}
}

func TestManMade_Categories(t *testing.T) {
	cases := []struct {
		mm     model.ManMade
		fa     float64
		du, dl float64
	}{
		{model.City, 76.8 - 27.7, 11.0, 6.7},
		{model.Residential, 72.5 - 27.7, 10.6, 5.3},
		{model.Rural, 67.2 - 27.7, 9.2, 4.6},
		{model.QuietRural, 53.6 - 28.6, 9.2, 4.6},
		{model.Noisy, 83.2 - 37.5, 11.0, 6.7},
		{model.Quiet, 65.2 - 29.1, 9.2, 4.6},
	}
	for _, tc := range cases {
		fa, du, dl := ManMade(tc.mm, 10)
		assert.InDelta(t, tc.fa, fa, 1e-9, "category %v", tc.mm)
		if du != tc.du || dl != tc.dl {
			t.Errorf("%v deciles = %v/%v, want %v/%v", tc.mm, du, dl, tc.du, tc.dl)
		}
	}
}

func TestManMade_ExplicitLevel(t *testing.T) {
	fa, du, dl := ManMade(140, 10)
	assert.InDelta(t, 64.0, fa, 1e-12)
	if du != 6.7 || dl != 11.0 {
		t.Fatalf("deciles = %v/%v, want 6.7/11.0", du, dl)
	}
}

func TestTimeBlocks(t *testing.T) {
	cases := []struct {
		lmt      float64
		now, adj int
	}{
		{1, 0, 0},
		{3, 0, 1},
		{11, 2, 3},
		{23, 5, 0},
	}
	for _, tc := range cases {
		now, adj := timeBlocks(tc.lmt)
		if now != tc.now || adj != tc.adj {
			t.Errorf("timeBlocks(%v) = %d,%d want %d,%d", tc.lmt, now, adj, tc.now, tc.adj)
		}
	}
}

func TestLocalMeanTime_Wraps(t *testing.T) {
	assert.InDelta(t, 1.0, localMeanTime(0, 0), 1e-12)
	assert.InDelta(t, 19.0, localMeanTime(0, -6*15*core.D2R), 1e-6)
	assert.InDelta(t, 11.0, localMeanTime(22, 12*15*core.D2R), 1e-6)
}

func TestAtmospheric_FlatTables(t *testing.T) {
	c := flatCoefficients(0, 40, 9, 6)
	for _, rx := range []model.Location{{Lat: 0.5, Lng: 1}, {Lat: -0.7, Lng: -2}} {
		for _, hour := range []int{0, 7, 13, 21} {
			fa, du, dl := Atmospheric(c, hour, rx, 10)
			assert.InDelta(t, 40.0, fa, 1e-9)
			assert.InDelta(t, 9.0, du, 1e-9)
			assert.InDelta(t, 6.0, dl, 1e-9)
		}
	}
}

func TestModel_Noise(t *testing.T) {
	m := New(staticSource{3: flatCoefficients(3, 40, 9, 6)})
	np, err := m.Noise(3, 12, model.Location{Lat: 0.6, Lng: 0.1}, 10, model.Rural)
	require.NoError(t, err)

	assert.InDelta(t, 40.0, np.FaA, 1e-9)
	assert.InDelta(t, 39.5, np.FaM, 1e-9)
	assert.InDelta(t, 29.0, np.FaG, 1e-9)
	if np.ManMade != model.Rural {
		t.Fatalf("ManMade = %v, want RURAL", np.ManMade)
	}

	// The total sits above the strongest component but below the sum of
	// components raised by their upper deciles.
	if np.FamT <= 40 {
		t.Fatalf("FamT = %v, want above the atmospheric level", np.FamT)
	}
	upper := 10 * math.Log10(math.Pow(10, 4.9)+math.Pow(10, 4.87)+math.Pow(10, 3.1))
	if np.FamT >= upper {
		t.Fatalf("FamT = %v, want below %v", np.FamT, upper)
	}
	if np.DuT <= 0 || np.DlT <= 0 {
		t.Fatalf("total deciles %v/%v should be positive", np.DuT, np.DlT)
	}
}

func TestModel_Override(t *testing.T) {
	np, err := New(nil).Noise(0, 0, model.Location{}, 10, -150)
	require.NoError(t, err)
	if np.FamT != 150 || np.FaM != -150 {
		t.Fatalf("override gave FamT %v FaM %v", np.FamT, np.FaM)
	}
	if np.DuT != 0 || np.DlT != 0 || np.FaA != 0 || np.FaG != 0 {
		t.Fatalf("override should zero the other components: %+v", np)
	}
}

func TestModel_MissingMonth(t *testing.T) {
	_, err := New(staticSource{}).Noise(5, 0, model.Location{}, 10, model.City)
	if !errors.Is(err, ErrNoCoefficients) {
		t.Fatalf("got %v, want ErrNoCoefficients", err)
	}
}

func TestModel_IncompleteCoefficients(t *testing.T) {
	bad := NewCoefficients(0)
	bad.Fam = bad.Fam[:3]
	if _, err := New(staticSource{0: bad}).Noise(0, 0, model.Location{}, 10, model.City); err == nil {
		t.Fatal("expected an error for truncated tables")
	}
}
