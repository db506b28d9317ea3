package core

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/hfprop/core"

// NoiseProvider computes the P.372 noise parameters at the receiver. The
// returned ManMade echoes the requested category or level.
type NoiseProvider interface {
	Noise(month, hour int, rx model.Location, freq float64, mm model.ManMade) (model.NoiseParams, error)
}

// Observer receives stage and prediction timings. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveStage(stage string, d time.Duration)
	ObservePrediction(regime string, d time.Duration, err error)
}

// Stage is one step of the prediction pipeline. Each stage reads results
// written by the stages before it.
type Stage struct {
	Name string
	Run  func(*Path)
}

// Stages returns the propagation stages in execution order. Noise and
// circuit reliability follow them in Predict.
func Stages() []Stage {
	return []Stage{
		{"mufBasic", BasicMUF},
		{"mufVariability", MUFVariability},
		{"mufOperational", OperationalMUF},
		{"eLayerScreening", ScreeningFrequency},
		{"fieldStrengthShort", ShortPathFieldStrength},
		{"fieldStrengthLong", LongPathFieldStrength},
		{"fieldStrengthBetween", InterpolateFieldStrength},
		{"receiverPower", ReceiverPower},
	}
}

// Engine runs predictions against a shared NoiseProvider. An Engine holds
// no per-path state and may be used from many goroutines, each with its own
// Path.
type Engine struct {
	noise    NoiseProvider
	log      logging.Logger
	observer Observer
	stages   []Stage
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithObserver sets the timing observer.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// NewEngine constructs an Engine. A nil noise provider makes every
// prediction fail with CodeNoFamData.
func NewEngine(noise NoiseProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		noise:  noise,
		log:    logging.Noop(),
		stages: Stages(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict validates p, resets its results and runs the full pipeline. On
// return p holds every result the path regime produces. A no-circuit
// outcome is not an error.
func (e *Engine) Predict(ctx context.Context, p *Path) (err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "P533",
		trace.WithAttributes(
			attribute.String("path.name", p.Name),
			attribute.Int("path.month", p.Month),
			attribute.Int("path.hour", p.Hour),
			attribute.Float64("path.frequency_mhz", p.Frequency),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if e.observer != nil {
			e.observer.ObservePrediction(p.Regime(), time.Since(start), err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		e.log.Debug(ctx, "path rejected", logging.String("path", p.Name), logging.String("error", err.Error()))
		return err
	}
	if e.noise == nil {
		return invalid(CodeNoFamData, "noise", "no noise provider")
	}

	p.Initialize()
	span.SetAttributes(
		attribute.Float64("path.distance_km", p.Distance),
		attribute.String("path.regime", p.Regime()),
	)

	for _, st := range e.stages {
		e.runStage(ctx, st.Name, func() { st.Run(p) })
	}

	var noiseErr error
	e.runStage(ctx, "noise", func() {
		var np model.NoiseParams
		np, noiseErr = e.noise.Noise(p.Month, p.Hour, p.RX, p.Frequency, p.Noise.ManMade)
		if noiseErr == nil {
			p.Noise = np
		}
	})
	if noiseErr != nil {
		return fmt.Errorf("noise: %w", noiseErr)
	}

	e.runStage(ctx, "circuitReliability", func() { CircuitReliability(p) })

	e.log.Debug(ctx, "prediction complete",
		logging.String("path", p.Name),
		logging.String("regime", p.Regime()),
		logging.Any("bmuf", p.BMUF),
		logging.Any("ep", p.Ep),
		logging.Any("bcr", p.BCR),
	)
	return nil
}

func (e *Engine) runStage(ctx context.Context, name string, fn func()) {
	_, span := otel.Tracer(tracerName).Start(ctx, "P533/"+name)
	start := time.Now()
	fn()
	if e.observer != nil {
		e.observer.ObserveStage(name, time.Since(start))
	}
	span.End()
}
