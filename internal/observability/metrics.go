// Package observability holds the Prometheus collectors and OpenTelemetry
// setup shared by the hfprop binaries.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ServiceCollector bundles Prometheus metrics for the gRPC prediction
// service and provides helpers to wire them into servers and HTTP handlers.
type ServiceCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec
	StreamedRows *prometheus.CounterVec
}

// NewServiceCollector registers service metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewServiceCollector(reg prometheus.Registerer) (*ServiceCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hfprop_requests_total",
		Help: "Total number of handled prediction RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "hfprop_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hfprop_request_duration_seconds",
		Help:    "Prediction RPC latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"service", "method"}), "hfprop_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	rows, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hfprop_streamed_rows_total",
		Help: "Sweep results sent on server streams.",
	}, []string{"method"}), "hfprop_streamed_rows_total")
	if err != nil {
		return nil, err
	}

	return &ServiceCollector{
		gatherer:     gatherer,
		RPCRequests:  requests,
		RPCDurations: durations,
		StreamedRows: rows,
	}, nil
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *ServiceCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		c.record(fullMethod, start, err)
		return resp, err
	}
}

// StreamServerInterceptor records request counts and durations for
// streaming RPCs. The duration covers the whole stream.
func (c *ServiceCollector) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		c.record(fullMethod, start, err)
		return err
	}
}

func (c *ServiceCollector) record(fullMethod string, start time.Time, err error) {
	if c == nil {
		return
	}
	service, method := SplitMethod(fullMethod)
	code := status.Code(err).String()

	if c.RPCRequests != nil {
		c.RPCRequests.WithLabelValues(service, method, code).Inc()
	}
	if c.RPCDurations != nil {
		c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
	}
}

// IncStreamedRows counts one result sent on a stream for method.
func (c *ServiceCollector) IncStreamedRows(method string) {
	if c == nil || c.StreamedRows == nil {
		return
	}
	c.StreamedRows.WithLabelValues(method).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ServiceCollector) Handler() http.Handler {
	return handlerFor(c.gatherer)
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

func resolveRegistry(reg prometheus.Registerer) (prometheus.Registerer, prometheus.Gatherer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	return reg, gatherer
}

func handlerFor(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds c to reg, returning the already registered collector of the
// same type when one exists under that name.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
