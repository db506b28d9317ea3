package sweep

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/kb"
	"github.com/signalsfoundry/hfprop/kb/kbtest"
	"github.com/signalsfoundry/hfprop/model"
	"github.com/signalsfoundry/hfprop/timectrl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan() Plan {
	p := DefaultPlan()
	p.Year = 2024
	p.Months = []int{6}
	p.Hours = []int{12}
	p.Freqs = []float64{10}
	p.SSN = 80
	p.TXPower = 10
	p.BW = 3000
	p.SNRr = 10
	p.SNRXXp = 90
	p.SIRr = 3
	p.A = 3
	p.TW = 0.1
	p.FW = 10
	p.TX = Point{Lat: 0, Lng: 0}
	p.RX = &Point{Lat: 0, Lng: 30}
	return p
}

func newTestRunner(t *testing.T, opts ...Option) (*Runner, *kbtest.Source) {
	t.Helper()
	src := kbtest.New()
	store, err := kb.New(src, 2)
	require.NoError(t, err)
	return NewRunner(store, core.NewEngine(noise.New(store)), opts...), src
}

func collect(t *testing.T, r *Runner, plan Plan) []Result {
	t.Helper()
	var out []Result
	err := r.Run(context.Background(), plan, func(res Result) error {
		out = append(out, res)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestReadPlan_Defaults(t *testing.T) {
	p, err := ReadPlan(strings.NewReader(`{"Months":[1],"Hours":[24],"Freqs":[7.1],"TX":{"lat":10,"lng":20},"RX":{"lat":11,"lng":21}}`))
	require.NoError(t, err)
	if p.Year != 2022 || p.SSN != 99 || p.TXAntFilePath != "ISOTROPIC" || p.ManMadeNoise != "NOISY" {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.RX == nil || p.RX.Lat != 11 {
		t.Fatalf("RX = %+v", p.RX)
	}
}

func TestReadPlan_UnknownField(t *testing.T) {
	_, err := ReadPlan(strings.NewReader(`{"Frequency":7}`))
	if !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("err = %v, want ErrInvalidPlan", err)
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"PathName":"test","Months":[3]}`), 0o600))
	p, err := LoadPlan(path)
	require.NoError(t, err)
	if p.PathName != "test" || len(p.Months) != 1 {
		t.Fatalf("plan = %+v", p)
	}

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestPlanValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Plan)
	}{
		{"no months", func(p *Plan) { p.Months = nil }},
		{"month 13", func(p *Plan) { p.Months = []int{13} }},
		{"hour 0", func(p *Plan) { p.Hours = []int{0} }},
		{"low frequency", func(p *Plan) { p.Freqs = []float64{1.5} }},
		{"high frequency", func(p *Plan) { p.Freqs = []float64{30.1} }},
		{"orientation", func(p *Plan) { p.AntennaOrientation = "SIDEWAYS" }},
		{"bearing", func(p *Plan) { p.TXBearing = 361 }},
		{"gain offset", func(p *Plan) { p.RXGOS = 61 }},
		{"antenna path", func(p *Plan) { p.RXAntFilePath = "" }},
		{"man-made noise", func(p *Plan) { p.ManMadeNoise = "LOUD" }},
		{"modulation", func(p *Plan) { p.Modulation = "FM" }},
		{"path kind", func(p *Plan) { p.SorL = "MEDIUMPATH" }},
		{"tx latitude", func(p *Plan) { p.TX.Lat = 91 }},
		{"no receiver", func(p *Plan) { p.RX = nil }},
		{"rx and area", func(p *Plan) { p.Area = &Area{} }},
		{"inverted area", func(p *Plan) {
			p.RX = nil
			p.Area = &Area{LL: Point{Lat: 10}, UR: Point{Lat: 0}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testPlan()
			tc.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidPlan) {
				t.Fatalf("err = %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestPlanValidate_NormalizesOrientation(t *testing.T) {
	p := testPlan()
	p.AntennaOrientation = "arbitrary"
	require.NoError(t, p.Validate())
	if p.AntennaOrientation != OrientManual {
		t.Fatalf("orientation = %q, want %q", p.AntennaOrientation, OrientManual)
	}
}

func TestPlanReceivers_GridOrder(t *testing.T) {
	p := testPlan()
	p.RX = nil
	p.Area = &Area{LL: Point{Lat: -1, Lng: 10}, UR: Point{Lat: 1, Lng: 11}, LatInc: 1, LngInc: 0.5}
	require.NoError(t, p.Validate())

	rxs := p.Receivers()
	if len(rxs) != 9 {
		t.Fatalf("len = %d, want 9", len(rxs))
	}
	assert.InDelta(t, -1*core.D2R, rxs[0].Lat, 1e-12)
	assert.InDelta(t, 10*core.D2R, rxs[0].Lng, 1e-12)
	assert.InDelta(t, 10.5*core.D2R, rxs[1].Lng, 1e-12)
	assert.InDelta(t, 1*core.D2R, rxs[8].Lat, 1e-12)
	assert.InDelta(t, 11*core.D2R, rxs[8].Lng, 1e-12)
	if p.Evaluations() != 9 {
		t.Fatalf("Evaluations = %d", p.Evaluations())
	}
}

func TestPlanIndexes(t *testing.T) {
	p := Plan{Months: []int{1, 12}, Hours: []int{1, 24}}
	assert.Equal(t, []int{0, 11}, p.MonthIndexes())
	assert.Equal(t, []int{1, 0}, p.HourIndexes())
}

func TestRunner_EmitsInSweepOrder(t *testing.T) {
	r, src := newTestRunner(t, WithWorkers(4))
	plan := testPlan()
	plan.Months = []int{1, 2}
	plan.Hours = []int{6, 24}
	plan.Freqs = []float64{5, 10}
	plan.RX = nil
	plan.Area = &Area{LL: Point{Lat: 0, Lng: 20}, UR: Point{Lat: 1, Lng: 22}, LatInc: 1, LngInc: 1}

	got := collect(t, r, plan)
	if want := plan.Evaluations(); len(got) != want {
		t.Fatalf("results = %d, want %d", len(got), want)
	}

	// Month, hour, frequency, latitude, longitude, each ascending except
	// hour 24 which is midnight.
	first, last := got[0], got[len(got)-1]
	if first.Path.Month != 0 || first.Path.Hour != 6 || first.Path.Frequency != 5 {
		t.Fatalf("first = month %d hour %d freq %v", first.Path.Month, first.Path.Hour, first.Path.Frequency)
	}
	if last.Path.Month != 1 || last.Path.Hour != 0 || last.Path.Frequency != 10 {
		t.Fatalf("last = month %d hour %d freq %v", last.Path.Month, last.Path.Hour, last.Path.Frequency)
	}
	assert.InDelta(t, 21*core.D2R, got[1].Path.RX.Lng, 1e-12)
	assert.InDelta(t, 1*core.D2R, got[3].Path.RX.Lat, 1e-12)
	for i, res := range got {
		if res.Seq != i {
			t.Fatalf("result %d has Seq %d", i, res.Seq)
		}
		if res.Path.Year != 2024 || res.Path.SSN != 80 {
			t.Fatalf("result %d lost shared inputs", i)
		}
	}
	if n := src.Loads(kb.KindIono); n != 2 {
		t.Fatalf("iono loads = %d, want one per month", n)
	}
	if n := src.Loads(kb.KindDeciles); n != 1 {
		t.Fatalf("decile loads = %d, want 1", n)
	}
}

func TestRunner_DistinctPathsPerEvaluation(t *testing.T) {
	r, _ := newTestRunner(t, WithWorkers(2))
	plan := testPlan()
	plan.Freqs = []float64{5, 7, 9}

	got := collect(t, r, plan)
	require.Len(t, got, 3)
	if got[0].Path == got[1].Path {
		t.Fatal("results share a Path")
	}
	for i, f := range plan.Freqs {
		if got[i].Path.Frequency != f {
			t.Fatalf("result %d frequency %v, want %v", i, got[i].Path.Frequency, f)
		}
		if got[i].Path.Regime() != "short" {
			t.Fatalf("regime = %s", got[i].Path.Regime())
		}
	}
}

type gauge struct{ cur, peak, calls atomic.Int64 }

func (g *gauge) AddInFlight(d int) {
	n := g.cur.Add(int64(d))
	if d > 0 {
		g.calls.Add(1)
	}
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func TestRunner_InFlightGauge(t *testing.T) {
	g := &gauge{}
	r, _ := newTestRunner(t, WithWorkers(2), WithInFlightGauge(g))
	plan := testPlan()
	plan.Freqs = []float64{4, 6, 8, 10, 12}

	collect(t, r, plan)
	if g.cur.Load() != 0 {
		t.Fatalf("in flight after run = %d", g.cur.Load())
	}
	if g.calls.Load() != 5 {
		t.Fatalf("evaluations observed = %d, want 5", g.calls.Load())
	}
	if g.peak.Load() > 2 {
		t.Fatalf("peak in flight = %d, want <= 2", g.peak.Load())
	}
}

func TestRunner_EpochListener(t *testing.T) {
	var epochs []timectrl.Epoch
	emitted := 0
	r, _ := newTestRunner(t, WithEpochListener(func(e timectrl.Epoch) {
		// Each epoch is announced before any of its results.
		if emitted != len(epochs)*2 {
			t.Errorf("epoch %s announced after %d results", e, emitted)
		}
		epochs = append(epochs, e)
	}))
	plan := testPlan()
	plan.Months = []int{3, 4}
	plan.Hours = []int{24}
	plan.Freqs = []float64{5, 10}

	err := r.Run(context.Background(), plan, func(Result) error {
		emitted++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []timectrl.Epoch{
		{Year: 2024, Month: 2, Hour: 0},
		{Year: 2024, Month: 3, Hour: 0},
	}, epochs)
	for _, e := range epochs {
		if g := e.GMST(); g < 0 || g >= 2*math.Pi {
			t.Fatalf("GMST(%s) = %v, want [0, 2pi)", e, g)
		}
	}
}

func TestRunner_ManualOrientationUsesPlanBearing(t *testing.T) {
	r, src := newTestRunner(t)
	ant := model.Isotropic(3)
	src.AddAntenna("yagi.ant", ant)

	plan := testPlan()
	plan.AntennaOrientation = OrientManual
	plan.TXAntFilePath = "yagi.ant"
	plan.TXBearing = 45

	got := collect(t, r, plan)
	require.Len(t, got, 1)
	if got[0].Path.TXAntenna != ant {
		t.Fatal("TX antenna not taken from the store")
	}
}

func TestRunner_Errors(t *testing.T) {
	t.Run("invalid plan", func(t *testing.T) {
		r, _ := newTestRunner(t)
		plan := testPlan()
		plan.Freqs = nil
		err := r.Run(context.Background(), plan, func(Result) error { return nil })
		if !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("invalid path", func(t *testing.T) {
		r, _ := newTestRunner(t)
		plan := testPlan()
		plan.BW = 0
		err := r.Run(context.Background(), plan, func(Result) error { return nil })
		if !errors.Is(err, core.ErrInvalidPath) {
			t.Fatalf("err = %v, want ErrInvalidPath", err)
		}
	})
	t.Run("missing month", func(t *testing.T) {
		r, src := newTestRunner(t)
		src.Missing[5] = true
		err := r.Run(context.Background(), testPlan(), func(Result) error { return nil })
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("err = %v, want fs.ErrNotExist", err)
		}
	})
	t.Run("missing antenna", func(t *testing.T) {
		r, _ := newTestRunner(t)
		plan := testPlan()
		plan.RXAntFilePath = "dipole.ant"
		err := r.Run(context.Background(), plan, func(Result) error { return nil })
		if !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), "receive antenna") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("emit stops the sweep", func(t *testing.T) {
		r, _ := newTestRunner(t)
		plan := testPlan()
		plan.Freqs = []float64{5, 10}
		stop := errors.New("stop")
		calls := 0
		err := r.Run(context.Background(), plan, func(Result) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Fatalf("err = %v after %d calls", err, calls)
		}
	})
	t.Run("cancelled", func(t *testing.T) {
		r, _ := newTestRunner(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := r.Run(ctx, testPlan(), func(Result) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestCSVWriter(t *testing.T) {
	r, _ := newTestRunner(t)
	plan := testPlan()
	plan.Hours = []int{24}
	plan.Freqs = []float64{7, 14}

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	err := r.Run(context.Background(), plan, w.Write)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns(), rows[0])

	row := map[string]string{}
	for i, name := range rows[0] {
		row[name] = rows[2][i]
	}
	assert.Equal(t, "6", row["month"])
	assert.Equal(t, "24", row["hour"])
	assert.Equal(t, "14.000", row["freq"])
	assert.Equal(t, "30.0000", row["rx_lng"])
	assert.Equal(t, "short", row["regime"])
	assert.NotEmpty(t, row["bmuf"])
	assert.NotEmpty(t, row["snr"])
}

func TestFields(t *testing.T) {
	p := &core.Path{
		Month:     2,
		Hour:      0,
		Frequency: 9,
		Distance:  100,
		BMUF:      core.TooBig,
		SNR:       core.TinyDB,
		Dominant:  model.NoMode,
	}

	f := Fields(Result{Path: p})
	assert.Len(t, f, len(Columns()))
	assert.Equal(t, 3.0, f["month"])
	assert.Equal(t, 24.0, f["hour"])
	assert.Nil(t, f["bmuf"])
	assert.Nil(t, f["snr"])
	assert.Equal(t, "none", f["dominant_mode"])
}

func TestDump_RoundTrip(t *testing.T) {
	r, _ := newTestRunner(t)
	plan := testPlan()
	plan.Freqs = []float64{8, 12}

	var buf bytes.Buffer
	d := NewDumpWriter(&buf)
	var want []Result
	err := r.Run(context.Background(), plan, func(res Result) error {
		want = append(want, res)
		return d.Write(res)
	})
	require.NoError(t, err)
	require.Equal(t, 2, d.Count())

	var got []Record
	require.NoError(t, ReadDump(&buf, func(rec Record) error {
		got = append(got, rec)
		return nil
	}))
	require.Len(t, got, 2)
	for i, rec := range got {
		w := want[i].Path
		if rec.Seq != i || rec.Epoch != want[i].Epoch {
			t.Fatalf("record %d header = %d %v", i, rec.Seq, rec.Epoch)
		}
		assert.InDelta(t, want[i].Epoch.JulianDay(), rec.JulianDay, 1e-9)
		assert.Equal(t, w.Frequency, rec.Path.Frequency)
		assert.Equal(t, w.Dominant, rec.Path.Dominant)
		assert.Equal(t, w.N0F2, rec.Path.N0F2)
		assert.InDelta(t, w.BMUF, rec.Path.BMUF, 1e-9)
		assert.InDelta(t, w.SNR, rec.Path.SNR, 1e-9)
	}
}

func TestReadDump_Truncated(t *testing.T) {
	err := ReadDump(bytes.NewReader([]byte{0x85, 0xa3}), func(Record) error { return nil })
	if err == nil {
		t.Fatal("expected an error")
	}
}
