package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/hfprop/core"
)

// PredictionCollector exposes engine and reference-data metrics. It
// satisfies core.Observer.
type PredictionCollector struct {
	gatherer prometheus.Gatherer

	Predictions        *prometheus.CounterVec
	PredictionDuration *prometheus.HistogramVec
	StageDuration      *prometheus.HistogramVec
	CacheEvents        *prometheus.CounterVec
	SweepInFlight      prometheus.Gauge
}

var _ core.Observer = (*PredictionCollector)(nil)

// NewPredictionCollector registers prediction metrics against reg.
func NewPredictionCollector(reg prometheus.Registerer) (*PredictionCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	predictions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hfprop_predictions_total",
		Help: "Completed path evaluations, labeled by distance regime and outcome.",
	}, []string{"regime", "outcome"}), "hfprop_predictions_total")
	if err != nil {
		return nil, err
	}

	predDur, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hfprop_prediction_duration_seconds",
		Help:    "Duration of a full path evaluation.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
	}, []string{"regime"}), "hfprop_prediction_duration_seconds")
	if err != nil {
		return nil, err
	}

	stageDur, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hfprop_stage_duration_seconds",
		Help:    "Duration of each prediction stage.",
		Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
	}, []string{"stage"}), "hfprop_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	cache, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hfprop_kb_events_total",
		Help: "Reference data cache activity, labeled by data kind and event.",
	}, []string{"kind", "event"}), "hfprop_kb_events_total")
	if err != nil {
		return nil, err
	}

	inFlight, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hfprop_sweep_evaluations_in_flight",
		Help: "Path evaluations currently running in sweeps.",
	}), "hfprop_sweep_evaluations_in_flight")
	if err != nil {
		return nil, err
	}

	return &PredictionCollector{
		gatherer:           gatherer,
		Predictions:        predictions,
		PredictionDuration: predDur,
		StageDuration:      stageDur,
		CacheEvents:        cache,
		SweepInFlight:      inFlight,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PredictionCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a /metrics handler over the collector's registry.
func (c *PredictionCollector) Handler() http.Handler {
	return handlerFor(c.Gatherer())
}

// ObserveStage records one stage duration.
func (c *PredictionCollector) ObserveStage(stage string, d time.Duration) {
	if c == nil || c.StageDuration == nil {
		return
	}
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObservePrediction records a finished evaluation. Rejected paths count
// under outcome "error".
func (c *PredictionCollector) ObservePrediction(regime string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.Predictions != nil {
		c.Predictions.WithLabelValues(regime, outcome).Inc()
	}
	if c.PredictionDuration != nil && err == nil {
		c.PredictionDuration.WithLabelValues(regime).Observe(d.Seconds())
	}
}

// RecordCacheEvent counts one knowledge-base event.
func (c *PredictionCollector) RecordCacheEvent(kind, event string) {
	if c == nil || c.CacheEvents == nil {
		return
	}
	c.CacheEvents.WithLabelValues(kind, event).Inc()
}

// AddInFlight adjusts the in-flight sweep evaluation gauge.
func (c *PredictionCollector) AddInFlight(delta int) {
	if c == nil || c.SweepInFlight == nil {
		return
	}
	c.SweepInFlight.Add(float64(delta))
}
