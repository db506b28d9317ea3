// Command hfprop runs a sweep plan through the P.533 engine and writes the
// results as CSV, optionally with a msgpack dump of every path.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/config"
	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/internal/sweep"
	"github.com/signalsfoundry/hfprop/kb"
)

type options struct {
	PlanPath    string
	OutPath     string
	DumpPath    string
	Workers     int
	CacheMonths int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("hfprop", flag.ExitOnError)
	opts := options{Workers: cfg.Workers, CacheMonths: cfg.CacheMonths}
	fs.StringVar(&opts.PlanPath, "plan", "", "JSON sweep plan (required)")
	fs.StringVar(&opts.OutPath, "out", "-", "CSV output file, - for stdout")
	fs.StringVar(&opts.DumpPath, "dump", "", "optional msgpack dump of every path; a .zst suffix compresses it")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding the ITU reference data")
	fs.StringVar(&cfg.IonFormat, "ion-format", cfg.IonFormat, "ionospheric map format: bin or txt")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "concurrent evaluations, 0 for one per CPU")
	fs.IntVar(&opts.CacheMonths, "cache-months", opts.CacheMonths, "monthly tables kept in memory")
	_ = fs.Parse(os.Args[1:])

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Logging())

	src := kb.DirSource{Dir: cfg.DataDir, IonoFormat: cfg.IonFormat}
	if err := run(ctx, opts, src, os.Stdout, log); err != nil {
		log.Error(ctx, "sweep failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, src kb.Source, stdout io.Writer, log logging.Logger) (err error) {
	if opts.PlanPath == "" {
		return errors.New("-plan is required")
	}
	plan, err := sweep.LoadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	store, err := kb.New(src, opts.CacheMonths)
	if err != nil {
		return err
	}
	engine := core.NewEngine(noise.New(store), core.WithLogger(log))
	runner := sweep.NewRunner(store, engine,
		sweep.WithWorkers(opts.Workers),
		sweep.WithLogger(log),
	)

	out, closeOut, err := create(opts.OutPath, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); err == nil {
			err = cerr
		}
	}()
	csvw := sweep.NewCSVWriter(out)

	var dump *sweep.DumpWriter
	if opts.DumpPath != "" {
		w, closeDump, err := create(opts.DumpPath, stdout)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeDump(); err == nil {
				err = cerr
			}
		}()
		dump = sweep.NewDumpWriter(w)
	}

	err = runner.Run(ctx, plan, func(r sweep.Result) error {
		if err := csvw.Write(r); err != nil {
			return err
		}
		if dump != nil {
			return dump.Write(r)
		}
		return nil
	})
	if ferr := csvw.Flush(); err == nil {
		err = ferr
	}
	return err
}

// create opens path for writing. "-" is stdout, and a .zst suffix wraps
// the file in a zstd encoder.
func create(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, f.Close, nil
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return enc, func() error {
		if err := enc.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
