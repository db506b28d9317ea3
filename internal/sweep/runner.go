package sweep

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/model"
	"github.com/signalsfoundry/hfprop/timectrl"
	"golang.org/x/sync/errgroup"
)

// Store supplies reference data. *kb.KnowledgeBase satisfies it.
type Store interface {
	IonoMap(ctx context.Context, month int) (*model.IonoMap, error)
	Deciles(ctx context.Context) (*model.DecileTable, error)
	Antenna(ctx context.Context, path string, bearing, gos float64) (*model.Antenna, error)
}

// InFlightGauge tracks running evaluations.
type InFlightGauge interface {
	AddInFlight(delta int)
}

// Result is one finished evaluation. Path is owned by the receiver.
type Result struct {
	Seq   int // position in sweep order, from 0
	Epoch timectrl.Epoch
	Path  *core.Path
}

// Runner evaluates plans with a bounded number of concurrent engine runs.
type Runner struct {
	store   Store
	engine  *core.Engine
	workers int
	log     logging.Logger
	gauge   InFlightGauge

	listeners []func(timectrl.Epoch)
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds concurrent evaluations. Zero or less uses one per CPU.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithLogger sets the runner logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithInFlightGauge reports running evaluations to g.
func WithInFlightGauge(g InFlightGauge) Option {
	return func(r *Runner) { r.gauge = g }
}

// WithEpochListener calls fn as each epoch of a sweep begins, before its
// evaluations start.
func WithEpochListener(fn func(timectrl.Epoch)) Option {
	return func(r *Runner) {
		if fn != nil {
			r.listeners = append(r.listeners, fn)
		}
	}
}

// NewRunner returns a Runner over store and engine.
func NewRunner(store Store, engine *core.Engine, opts ...Option) *Runner {
	r := &Runner{
		store:  store,
		engine: engine,
		log:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Workers is the concurrency limit in effect.
func (r *Runner) Workers() int { return r.workers }

// Run evaluates every point of plan and calls emit with the results in
// sweep order: month, hour, frequency, receiver latitude, receiver
// longitude. The first failed evaluation or emit error stops the sweep.
func (r *Runner) Run(ctx context.Context, plan Plan, emit func(Result) error) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	clock, err := timectrl.NewController(plan.Year, plan.MonthIndexes(), plan.HourIndexes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	deciles, err := r.store.Deciles(ctx)
	if err != nil {
		return fmt.Errorf("decile table: %w", err)
	}

	rxs := plan.Receivers()
	base := plan.template()
	total := clock.Len() * len(plan.Freqs) * len(rxs)
	start := time.Now()
	log := r.log.With(logging.String("path", plan.PathName))
	log.Info(ctx, "sweep started",
		logging.Int("evaluations", total),
		logging.Int("workers", r.workers),
	)

	clock.AddListener(func(e timectrl.Epoch) {
		log.Debug(ctx, "epoch started",
			logging.String("epoch", e.String()),
			logging.Float("jd", e.JulianDay()),
			logging.Float("gmst", e.GMST()),
		)
	})
	for _, fn := range r.listeners {
		clock.AddListener(fn)
	}

	seq := 0
	err = clock.Run(ctx, func(ctx context.Context, e timectrl.Epoch) error {
		iono, err := r.store.IonoMap(ctx, e.Month)
		if err != nil {
			return fmt.Errorf("ionospheric map: %w", err)
		}

		paths := make([]*core.Path, len(plan.Freqs)*len(rxs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for fi, freq := range plan.Freqs {
			for ri, rx := range rxs {
				i := fi*len(rxs) + ri
				g.Go(func() error {
					if r.gauge != nil {
						r.gauge.AddInFlight(1)
						defer r.gauge.AddInFlight(-1)
					}
					p := base
					p.Month, p.Hour = e.Month, e.Hour
					p.Frequency = freq
					p.RX = rx
					p.Iono = iono
					p.Deciles = deciles
					if err := r.orient(gctx, &plan, &p); err != nil {
						return err
					}
					if err := r.engine.Predict(gctx, &p); err != nil {
						return fmt.Errorf("%.3f MHz to %.4f,%.4f: %w", freq, rx.Lat*core.R2D, rx.Lng*core.R2D, err)
					}
					paths[i] = &p
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, p := range paths {
			if err := emit(Result{Seq: seq, Epoch: e, Path: p}); err != nil {
				return err
			}
			seq++
		}
		log.Debug(ctx, "epoch complete", logging.String("epoch", e.String()), logging.Int("done", seq))
		return nil
	})
	if err != nil {
		log.Warn(ctx, "sweep failed", logging.Int("done", seq), logging.Error(err))
		return err
	}

	log.Info(ctx, "sweep complete",
		logging.Int("evaluations", seq),
		logging.Any("elapsed", time.Since(start)),
	)
	return nil
}

// orient loads both antenna patterns for p. Under TX2RX each antenna is
// rotated toward the other terminal of this receiver point.
func (r *Runner) orient(ctx context.Context, plan *Plan, p *core.Path) error {
	txB, rxB := plan.TXBearing*core.D2R, plan.RXBearing*core.D2R
	if plan.AntennaOrientation == OrientTX2RX {
		txB, rxB = loader.Bearings(p.TX, p.RX)
	}

	var err error
	p.TXAntenna, err = r.store.Antenna(ctx, plan.TXAntFilePath, txB, plan.TXGOS)
	if err != nil {
		return fmt.Errorf("transmit antenna: %w", err)
	}
	p.RXAntenna, err = r.store.Antenna(ctx, plan.RXAntFilePath, rxB, plan.RXGOS)
	if err != nil {
		return fmt.Errorf("receive antenna: %w", err)
	}
	return nil
}
