package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"  1.0  2.5 -3", []string{"1.0", "2.5", "-3"}},
		{"0    -99.999-15.670 -9.730", []string{"0", "-99.999", "-15.670", "-9.730"}},
		{"-10.051-10.699", []string{"-10.051", "-10.699"}},
		{"1.5e-03 2E+2", []string{"1.5e-03", "2E+2"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := splitNumbers(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("splitNumbers(%q) = %q, want %q", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitNumbers(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestLineReader_ErrorsCarryLine(t *testing.T) {
	lr := newLineReader(strings.NewReader("1 2\n3 x\n"), "f.txt")
	if _, err := lr.lineFloats(2); err != nil {
		t.Fatalf("first line: %v", err)
	}
	_, err := lr.lineFloats(2)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
	if !strings.Contains(err.Error(), "f.txt:2") {
		t.Fatalf("error %q lacks file and line", err)
	}
}

func TestOpen_Zstd(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte("compressed payload\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt.zst"), buf.Bytes(), 0o644))

	rc, name, err := openData(dir, "data.txt")
	require.NoError(t, err)
	defer rc.Close()
	if !strings.HasSuffix(name, ".zst") {
		t.Fatalf("opened %q, want the compressed copy", name)
	}
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	if string(got) != "compressed payload\n" {
		t.Fatalf("payload = %q", got)
	}
}

func TestOpenData_Missing(t *testing.T) {
	_, _, err := openData(t.TempDir(), "absent.txt")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want not-exist", err)
	}
}

func ionoValue(i int) float32 { return float32(i%997) / 8 }

func TestReadIonosBin(t *testing.T) {
	grid := make([]float32, model.IonoMapSize)
	for i := range grid {
		grid[i] = ionoValue(i)
	}
	var buf bytes.Buffer
	buf.Write(make([]byte, binHeaderLen))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, grid))
	buf.Write(make([]byte, binGapLen))
	for i := range grid {
		grid[i] = ionoValue(i) + 1
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, grid))

	m, err := ReadIonosBin(bytes.NewReader(buf.Bytes()), "ionos04.bin", 3)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	i := model.IonoIndex(13, 200, 60, 1)
	foF2, m3kF2 := m.Lookup(13, 200, 60, 1)
	assert.InDelta(t, float64(ionoValue(i)), foF2, 1e-6)
	assert.InDelta(t, float64(ionoValue(i)+1), m3kF2, 1e-6)

	_, err = ReadIonosBin(bytes.NewReader(buf.Bytes()[:buf.Len()/2]), "short.bin", 3)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("truncated map: got %v, want ErrMalformed", err)
	}
}

func writeIonosTxt(w io.Writer) {
	for g := 0; g < 2; g++ {
		for s := 0; s < model.IonoSSNs; s++ {
			for j := 0; j < model.IonoLngs; j++ {
				for k := 0; k < model.IonoLats; k++ {
					hour := 0
					for _, n := range txtHourGroups {
						for x := 0; x < n; x++ {
							fmt.Fprintf(w, "  %.3f", float64(g*100+hour)+float64(k)/1000)
							hour++
						}
						io.WriteString(w, "\n")
					}
				}
			}
		}
	}
}

func TestReadIonosTxt(t *testing.T) {
	var buf bytes.Buffer
	writeIonosTxt(&buf)

	m, err := ReadIonosTxt(bytes.NewReader(buf.Bytes()), "ionos01.txt", 0)
	require.NoError(t, err)
	foF2, m3kF2 := m.Lookup(17, 5, 42, 1)
	assert.InDelta(t, 17.042, foF2, 1e-4)
	assert.InDelta(t, 117.042, m3kF2, 1e-4)

	_, err = ReadIonosTxt(bytes.NewReader(buf.Bytes()[:1000]), "ionos01.txt", 0)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("truncated text map: got %v, want ErrMalformed", err)
	}
}

func TestLoadIonoMap_UnknownFormat(t *testing.T) {
	if _, err := LoadIonoMap(t.TempDir(), 0, "csv"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if got := IonoFileName(11, FormatBin); got != "ionos12.bin" {
		t.Fatalf("IonoFileName = %q", got)
	}
}

func decileFile() string {
	var b strings.Builder
	b.WriteString("P.1239 decile factors\n\n")
	for n := 0; n < model.DecileCount; n++ {
		for i := 0; i < model.DecileSeasons; i++ {
			for m := 0; m < model.DecileSSNs; m++ {
				fmt.Fprintf(&b, "decile %d\nseason %d\nssn %d\nLat  0 1 2 ...\n", n, i, m)
				for k := model.DecileLats - 1; k >= 0; k-- {
					fmt.Fprintf(&b, "%d", k*5)
					for h := 0; h < model.DecileHours; h++ {
						fmt.Fprintf(&b, " %.5f", decileFactor(n, i, m, k, h))
					}
					b.WriteString("\n")
				}
			}
		}
	}
	return b.String()
}

func decileFactor(n, i, m, k, h int) float64 {
	return float64(n) + float64(i)/10 + float64(m)/100 + float64(k)/1000 + float64(h)/100000
}

func TestReadDeciles(t *testing.T) {
	d, err := ReadDeciles(strings.NewReader(decileFile()), DecileFileName)
	require.NoError(t, err)
	require.NoError(t, d.Validate())

	for _, c := range [][5]int{{0, 0, 0, 0, 0}, {2, 23, 18, 2, 1}, {1, 7, 11, 1, 0}} {
		season, hour, lat, ssn, dec := c[0], c[1], c[2], c[3], c[4]
		want := decileFactor(dec, season, ssn, lat, hour)
		assert.InDelta(t, want, d.Lookup(season, hour, lat, ssn, dec), 1e-9, "entry %v", c)
	}
}

func TestReadDeciles_ShortRow(t *testing.T) {
	lines := strings.Split(decileFile(), "\n")
	row := lines[2+decileBlockHeader]
	lines[2+decileBlockHeader] = row[:strings.LastIndex(row, " ")]
	_, err := ReadDeciles(strings.NewReader(strings.Join(lines, "\n")), DecileFileName)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func writeBlock(b *strings.Builder, label string, n int, value func(int) float64) {
	b.WriteString(label + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(b, " %.6E", value(i))
		if i%5 == 4 || i == n-1 {
			b.WriteString("\n")
		}
	}
}

func coeffFile() string {
	var b strings.Builder
	for i := 0; i < coeffSkipLines; i++ {
		b.WriteString(" 0 0 0 0 0\n")
	}
	writeBlock(&b, "fakp(29,16,6)", noise.FakpSize, func(i int) float64 { return float64(i) })
	writeBlock(&b, "fakabp(2,6)", noise.FakabpLen, func(i int) float64 { return -float64(i) })
	writeBlock(&b, "dud(5,12,5)", noise.DudSize, func(i int) float64 { return float64(i) / 10 })
	writeBlock(&b, "fam(14,12)", noise.FamSize, func(i int) float64 { return float64(i) + 0.5 })
	return b.String()
}

func TestReadCoefficients(t *testing.T) {
	c, err := ReadCoefficients(strings.NewReader(coeffFile()), CoeffFileName(6), 6)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	if c.Month != 6 {
		t.Fatalf("Month = %d", c.Month)
	}
	assert.InDelta(t, 2783.0, c.Fakp[noise.FakpSize-1], 1e-6)
	assert.InDelta(t, -11.0, c.Fakabp[11], 1e-9)
	assert.InDelta(t, 29.9, c.Dud[299], 1e-9)
	assert.InDelta(t, 167.5, c.Fam[167], 1e-9)
	if got := CoeffFileName(0); got != "COEFF01W.txt" {
		t.Fatalf("CoeffFileName = %q", got)
	}
}

func TestReadCoefficients_WrongLabel(t *testing.T) {
	file := strings.Replace(coeffFile(), "dud(5,12,5)", "xyz(5,12,5)", 1)
	_, err := ReadCoefficients(strings.NewReader(file), "COEFF01W.txt", 0)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func writeGains(b *strings.Builder, lead string, gain func(el int) float64) {
	b.WriteString(lead)
	for el := 0; el < model.AntennaElevations; el++ {
		fmt.Fprintf(b, "%7.3f", gain(el))
		if el%10 == 9 || el == model.AntennaElevations-1 {
			b.WriteString("\n")
		}
	}
}

func TestReadAntenna_Type11(t *testing.T) {
	var b strings.Builder
	b.WriteString("SWWhip for REC533  :Sample type 11\n 3     3 parameters\n  2.00  [ 1] Max Gain dBi..:\n  11    [ 2] Antenna Type..\n  -4.8   [ 3] Efficiency\n")
	writeGains(&b, "", func(el int) float64 { return -float64(el) / 10 })

	a, err := ReadAntenna(strings.NewReader(b.String()), "whip.11", 1.0)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	if a.Name != "SWWhip for REC533  :Sample type 11" {
		t.Fatalf("Name = %q", a.Name)
	}
	assert.InDelta(t, 2.0, a.At(0, 0, 0), 1e-9)
	assert.InDelta(t, 2.0-4.5, a.At(0, 271, 45), 1e-9)
	assert.InDelta(t, 2.0-9.0, a.At(0, 359, 90), 1e-9)
}

func type13File() string {
	var b strings.Builder
	b.WriteString("DeMinco Antenna\n 4     4 parameters\n 9.450  [ 1] Max Gain dBi..:\n   13    [ 2] Antenna Type..\n   0.0   [ 3] Efficiency\n15.000  [ 4] Frequency\n")
	for az := 0; az < model.AntennaAzimuths; az++ {
		writeGains(&b, fmt.Sprintf("%3d  ", az), func(el int) float64 { return -float64(az)/10 - float64(el)/1000 })
	}
	return b.String()
}

func TestReadAntenna_Type13Rotation(t *testing.T) {
	a, err := ReadAntenna(strings.NewReader(type13File()), "ant.13", 90.4*core.D2R)
	require.NoError(t, err)
	require.NoError(t, a.Validate())

	assert.InDelta(t, 15.0, a.Freqs[0], 1e-9)
	// File azimuth 0 lands on the bearing.
	assert.InDelta(t, 0.0, a.At(0, 90, 0), 1e-9)
	assert.InDelta(t, -0.1-0.02, a.At(0, 91, 20), 1e-9)
	// File azimuth 270 wraps to 0.
	assert.InDelta(t, -27.0, a.At(0, 0, 0), 1e-9)
	// The max gain is not added to type 13 tables.
	assert.InDelta(t, -0.09, a.At(0, 90, 90), 1e-9)
}

func TestReadAntenna_Type14(t *testing.T) {
	var b strings.Builder
	b.WriteString("3EL Yagi @10M\n  3     3 parameters\n  1.00  [ 1] Max Gain dBi..:\n  14    [ 2] Antenna Type..\n  14.0  [ 3] Frequency\n")
	for f := 1; f <= type14Freqs; f++ {
		writeGains(&b, fmt.Sprintf("%3d -0.57", f), func(el int) float64 { return float64(f) - float64(el)/100 })
	}

	a, err := ReadAntenna(strings.NewReader(b.String()), "yagi.14", 0)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	if len(a.Freqs) != type14Freqs || a.Freqs[29] != 30 {
		t.Fatalf("Freqs = %v", a.Freqs)
	}
	fi := a.FreqIndex(7.2)
	if fi != 6 {
		t.Fatalf("FreqIndex(7.2) = %d, want 6", fi)
	}
	assert.InDelta(t, 1.0+7.0-0.3, a.At(fi, 123, 30), 1e-9)
}

func TestReadAntenna_UnsupportedType(t *testing.T) {
	src := "name\n 3\n 0.0 [1]\n 12 [2]\n"
	_, err := ReadAntenna(strings.NewReader(src), "x.12", 0)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func TestLoadAntenna_Isotropic(t *testing.T) {
	a, err := LoadAntenna(IsotropicName, 0, 3.5)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, a.At(0, 200, 45), 1e-12)
}

func TestLoadAntenna_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ant.13")
	require.NoError(t, os.WriteFile(p, []byte(type13File()), 0o644))
	a, err := LoadAntenna(p, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, a.At(0, 10, 0), 1e-9)
}

func TestBearings(t *testing.T) {
	tx := model.Location{Lat: 0, Lng: 0}
	rx := model.Location{Lat: 0, Lng: 30 * core.D2R}
	txB, rxB := Bearings(tx, rx)
	assert.InDelta(t, math.Pi/2, txB, 1e-9)
	assert.InDelta(t, 3*math.Pi/2, rxB, 1e-9)
	if got := BearingDegrees(-1.5 * core.D2R); got != 359 {
		t.Fatalf("BearingDegrees(-1.5 deg) = %d, want 359", got)
	}
	if got := BearingDegrees(91.7 * core.D2R); got != 91 {
		t.Fatalf("BearingDegrees = %d, want 91", got)
	}
}
