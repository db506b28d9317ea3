package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/hfprop/internal/config"
	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/internal/nbi"
	"github.com/signalsfoundry/hfprop/internal/sweep"
	"github.com/signalsfoundry/hfprop/kb/kbtest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestServerStartupSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	cfg := &config.Config{
		DataDir:     "memory",
		CacheMonths: 2,
		Workers:     2,
	}
	log := logging.New(logging.Config{Level: "warn", Format: "text"})
	reg := prometheus.NewRegistry()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, log, lis, kbtest.New(), reg)
	}()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	defer conn.Close()

	plan := sweep.DefaultPlan()
	plan.Year = 2024
	plan.Months = []int{1}
	plan.Hours = []int{12}
	plan.Freqs = []float64{9}
	plan.SSN = 50
	plan.TXPower = 10
	plan.BW = 3000
	plan.SNRr = 10
	plan.SNRXXp = 90
	plan.SIRr = 3
	plan.A = 3
	plan.TW = 0.1
	plan.FW = 10
	plan.TX = sweep.Point{Lat: 35, Lng: 139}
	plan.RX = &sweep.Point{Lat: 1, Lng: 104}
	req, err := nbi.PlanToStruct(plan)
	if err != nil {
		t.Fatalf("PlanToStruct: %v", err)
	}

	resp, err := nbi.NewPredictionClient(conn).Predict(ctx, req, grpc.WaitForReady(true))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.GetFields()["freq"].GetNumberValue() != 9 {
		t.Fatalf("response = %v", resp)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	seen := map[string]bool{}
	for _, mf := range families {
		seen[mf.GetName()] = true
	}
	for _, name := range []string{"hfprop_requests_total", "hfprop_predictions_total", "hfprop_kb_events_total"} {
		if !seen[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}

	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}
