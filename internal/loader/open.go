// Package loader reads the ITU reference data files used by a prediction:
// the monthly ionospheric maps, the P.1239 foF2 decile factors, the P.372
// atmospheric noise coefficients and VOACAP style antenna patterns.
//
// Every reader accepts an io.Reader so tests can feed synthetic data. The
// Load* helpers resolve file names under a data directory and fall back to a
// zstd compressed copy (name + ".zst") when the plain file is absent.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed reference data")

const zstdExt = ".zst"

// Open opens name for reading. Files ending in .zst are decompressed on
// the fly.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, zstdExt) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &zstdFile{Decoder: dec, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// openData opens dir/name, or dir/name.zst when only the compressed copy
// exists. It returns the path actually opened.
func openData(dir, name string) (io.ReadCloser, string, error) {
	p := filepath.Join(dir, name)
	rc, err := Open(p)
	if err == nil {
		return rc, p, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, p, err
	}
	rc, zerr := Open(p + zstdExt)
	if zerr != nil {
		// Report the plain name; that is what callers configure.
		return nil, p, err
	}
	return rc, p + zstdExt, nil
}

// lineReader tracks line numbers for error context.
type lineReader struct {
	sc   *bufio.Scanner
	name string
	n    int
}

func newLineReader(r io.Reader, name string) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &lineReader{sc: sc, name: name}
}

func (l *lineReader) errorf(format string, args ...any) error {
	return fmt.Errorf("%s:%d: %w: %s", l.name, l.n, ErrMalformed, fmt.Sprintf(format, args...))
}

func (l *lineReader) next() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", fmt.Errorf("%s:%d: %w", l.name, l.n, err)
		}
		return "", l.errorf("unexpected end of file")
	}
	l.n++
	return strings.TrimRight(l.sc.Text(), "\r"), nil
}

func (l *lineReader) skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := l.next(); err != nil {
			return err
		}
	}
	return nil
}

// lineFloats parses exactly want numbers from the next line.
func (l *lineReader) lineFloats(want int) ([]float64, error) {
	line, err := l.next()
	if err != nil {
		return nil, err
	}
	vals, err := parseFloats(line)
	if err != nil {
		return nil, l.errorf("%v", err)
	}
	if len(vals) != want {
		return nil, l.errorf("got %d values, want %d", len(vals), want)
	}
	return vals, nil
}

// floats reads lines until n numbers have been collected. A line that
// would overshoot n is an error.
func (l *lineReader) floats(n int) ([]float64, error) {
	out := make([]float64, 0, n)
	for len(out) < n {
		line, err := l.next()
		if err != nil {
			return nil, err
		}
		vals, err := parseFloats(line)
		if err != nil {
			return nil, l.errorf("%v", err)
		}
		if len(out)+len(vals) > n {
			return nil, l.errorf("block overruns %d values", n)
		}
		out = append(out, vals...)
	}
	return out, nil
}

// parseFloats parses the numbers on a line. Fixed-width columns may run
// together ("-99.999-15.670"), so a sign that follows a digit starts a new
// number unless it belongs to an exponent.
func parseFloats(line string) ([]float64, error) {
	toks := splitNumbers(line)
	out := make([]float64, 0, len(toks))
	for _, tok := range toks {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", tok)
		}
		out = append(out, v)
	}
	return out, nil
}

func splitNumbers(line string) []string {
	var toks []string
	for _, field := range strings.Fields(line) {
		start := 0
		for i := 1; i < len(field); i++ {
			c := field[i]
			if c != '-' && c != '+' {
				continue
			}
			prev := field[i-1]
			if prev == 'e' || prev == 'E' {
				continue
			}
			if (prev >= '0' && prev <= '9') || prev == '.' {
				toks = append(toks, field[start:i])
				start = i
			}
		}
		toks = append(toks, field[start:])
	}
	return toks
}
