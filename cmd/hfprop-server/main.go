// Command hfprop-server serves the prediction service over gRPC with
// Prometheus metrics and optional OpenTelemetry tracing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/config"
	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/internal/nbi"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/internal/observability"
	"github.com/signalsfoundry/hfprop/internal/sweep"
	"github.com/signalsfoundry/hfprop/kb"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "TCP address the gRPC server listens on")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "HTTP address for Prometheus /metrics, empty to disable")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding the ITU reference data")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent evaluations per sweep, 0 for one per CPU")
	flag.Parse()

	log := logging.New(cfg.Logging())

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Error(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.GRPCAddr), logging.Error(err))
		os.Exit(1)
	}

	src := kb.DirSource{Dir: cfg.DataDir, IonoFormat: cfg.IonFormat}
	if err := run(ctx, cfg, log, lis, src, prometheus.DefaultRegisterer); err != nil {
		log.Error(ctx, "server exited", logging.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logging.Logger, lis net.Listener, src kb.Source, reg prometheus.Registerer) error {
	services, err := observability.NewServiceCollector(reg)
	if err != nil {
		return fmt.Errorf("service metrics: %w", err)
	}
	predictions, err := observability.NewPredictionCollector(reg)
	if err != nil {
		return fmt.Errorf("prediction metrics: %w", err)
	}

	store, err := kb.New(src, cfg.CacheMonths)
	if err != nil {
		return err
	}
	unsubscribe := store.Subscribe(func(ev kb.Event) {
		predictions.RecordCacheEvent(ev.Kind, ev.Type.String())
	})
	defer unsubscribe()

	engine := core.NewEngine(noise.New(store),
		core.WithLogger(log),
		core.WithObserver(predictions),
	)
	runner := sweep.NewRunner(store, engine,
		sweep.WithWorkers(cfg.Workers),
		sweep.WithLogger(log),
		sweep.WithInFlightGauge(predictions),
	)

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			nbi.RequestIDUnaryServerInterceptor(log),
			nbi.TracingUnaryServerInterceptor(),
			services.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			nbi.RequestIDStreamServerInterceptor(log),
			nbi.TracingStreamServerInterceptor(),
			services.StreamServerInterceptor(),
		),
	)
	nbi.RegisterPredictionServiceServer(server, nbi.NewPredictionService(runner, log,
		nbi.WithRowCounter(services),
	))

	metricsSrv := serveMetrics(cfg.MetricsAddr, services.Handler(), log)

	errCh := make(chan error, 1)
	log.Info(ctx, "starting prediction gRPC server",
		logging.String("addr", lis.Addr().String()),
		logging.String("data", cfg.DataDir),
		logging.Int("workers", runner.Workers()),
	)
	go func() { errCh <- server.Serve(lis) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down prediction server")
	server.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func serveMetrics(addr string, handler http.Handler, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Error(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
