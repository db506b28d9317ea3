package sweep

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/timectrl"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is one evaluation in a dump stream: the full path state,
// including every mode and control point.
type Record struct {
	Seq       int            `msgpack:"seq"`
	Epoch     timectrl.Epoch `msgpack:"epoch"`
	JulianDay float64        `msgpack:"jd"`
	Path      *core.Path     `msgpack:"path"`
}

// DumpWriter appends msgpack records to a stream.
type DumpWriter struct {
	enc *msgpack.Encoder
	n   int
}

// NewDumpWriter returns a DumpWriter over w.
func NewDumpWriter(w io.Writer) *DumpWriter {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return &DumpWriter{enc: enc}
}

// Write encodes r as one record.
func (d *DumpWriter) Write(r Result) error {
	rec := Record{
		Seq:       r.Seq,
		Epoch:     r.Epoch,
		JulianDay: r.Epoch.JulianDay(),
		Path:      r.Path,
	}
	if err := d.enc.Encode(&rec); err != nil {
		return fmt.Errorf("dump record %d: %w", r.Seq, err)
	}
	d.n++
	return nil
}

// Count is the number of records written.
func (d *DumpWriter) Count() int { return d.n }

// ReadDump decodes records from r until end of stream, calling fn for
// each. Decoded paths carry no reference data.
func ReadDump(r io.Reader, fn func(Record) error) error {
	br := bufio.NewReader(r)
	dec := msgpack.NewDecoder(br)
	for n := 0; ; n++ {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("dump record %d: %w", n, err)
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("dump record %d: %w", n, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
