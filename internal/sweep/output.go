package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/signalsfoundry/hfprop/core"
)

type column struct {
	name  string
	prec  int // decimals; negative for integers and text
	value func(*Result) any
}

// db drops power-like values that were never computed.
func db(v float64) any {
	if v <= core.TinyDB {
		return nil
	}
	return v
}

// muf drops MUFs no mode supported.
func muf(p *core.Path, v float64) any {
	if !p.BMUFValid() || v == core.TooBig {
		return nil
	}
	return v
}

var columns = []column{
	{"month", -1, func(r *Result) any { return r.Path.Month + 1 }},
	{"hour", -1, func(r *Result) any { return displayHour(r.Path.Hour) }},
	{"freq", 3, func(r *Result) any { return r.Path.Frequency }},
	{"rx_lat", 4, func(r *Result) any { return r.Path.RX.Lat * core.R2D }},
	{"rx_lng", 4, func(r *Result) any { return r.Path.RX.Lng * core.R2D }},
	{"distance", 1, func(r *Result) any { return r.Path.Distance }},
	{"regime", -1, func(r *Result) any { return r.Path.Regime() }},
	{"bmuf", 2, func(r *Result) any { return muf(r.Path, r.Path.BMUF) }},
	{"muf90", 2, func(r *Result) any { return muf(r.Path, r.Path.MUF90) }},
	{"muf10", 2, func(r *Result) any { return muf(r.Path, r.Path.MUF10) }},
	{"opmuf", 2, func(r *Result) any { return muf(r.Path, r.Path.OPMUF) }},
	{"opmuf90", 2, func(r *Result) any { return muf(r.Path, r.Path.OPMUF90) }},
	{"opmuf10", 2, func(r *Result) any { return muf(r.Path, r.Path.OPMUF10) }},
	{"n0_f2", -1, func(r *Result) any { return r.Path.N0F2.String() }},
	{"n0_e", -1, func(r *Result) any { return r.Path.N0E.String() }},
	{"ep", 2, func(r *Result) any { return db(r.Path.Ep) }},
	{"pr", 2, func(r *Result) any { return db(r.Path.Pr) }},
	{"grw", 2, func(r *Result) any { return db(r.Path.Grw) }},
	{"fam_t", 2, func(r *Result) any { return db(r.Path.Noise.FamT) }},
	{"snr", 2, func(r *Result) any { return db(r.Path.SNR) }},
	{"snrxx", 2, func(r *Result) any { return db(r.Path.SNRXX) }},
	{"sir", 2, func(r *Result) any { return db(r.Path.SIR) }},
	{"bcr", 2, func(r *Result) any { return r.Path.BCR }},
	{"ocr", 2, func(r *Result) any { return r.Path.OCR }},
	{"ocrs", 2, func(r *Result) any { return r.Path.OCRs }},
	{"mir", 2, func(r *Result) any { return db(r.Path.MIR) }},
	{"dominant_mode", -1, func(r *Result) any { return r.Path.Dominant.String() }},
}

// displayHour maps 0..23 UTC back to the 1..24 convention of the plan.
func displayHour(h int) int {
	if h == 0 {
		return 24
	}
	return h
}

// Columns lists the exported result fields in output order.
func Columns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// Fields returns the exported values of r keyed by column name. Unset
// values are nil.
func Fields(r Result) map[string]any {
	out := make(map[string]any, len(columns))
	for _, c := range columns {
		v := c.value(&r)
		if i, ok := v.(int); ok {
			v = float64(i)
		}
		out[c.name] = v
	}
	return out
}

// CSVWriter writes results as comma-separated rows under a single header.
// Unset values are written as empty fields.
type CSVWriter struct {
	w      *csv.Writer
	header bool
	row    []string
}

// NewCSVWriter returns a CSVWriter over w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), row: make([]string, len(columns))}
}

// Write appends one result row, writing the header first if needed.
func (c *CSVWriter) Write(r Result) error {
	if !c.header {
		if err := c.w.Write(Columns()); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
		c.header = true
	}
	for i, col := range columns {
		c.row[i] = formatValue(col.value(&r), col.prec)
	}
	if err := c.w.Write(c.row); err != nil {
		return fmt.Errorf("csv row %d: %w", r.Seq, err)
	}
	return nil
}

// Flush writes buffered rows and reports any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func formatValue(v any, prec int) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', prec, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
