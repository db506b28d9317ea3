package logging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestEnsureRequestID_GeneratesOnce(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("request id %q is not a uuid: %v", id, err)
	}
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id || RequestIDFromContext(ctx2) != id {
		t.Fatalf("second EnsureRequestID replaced %q with %q", id, id2)
	}
}

func TestContextWithRequestID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Fatalf("RequestIDFromContext = %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("empty context gave %q", got)
	}
}

func TestErrorField(t *testing.T) {
	if f := Error(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Fatalf("Error field = %+v", f)
	}
	if f := Error(nil); f.Value != "" {
		t.Fatalf("nil error field = %+v", f)
	}
	if f := Float("bmuf", 12.5); f.Value != 12.5 {
		t.Fatalf("Float field = %+v", f)
	}
}

func TestOutput(t *testing.T) {
	if Output(Config{}) != os.Stdout {
		t.Fatal("default output should be stdout")
	}
	w := Output(Config{File: "/tmp/x.log"})
	lj, ok := w.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("output = %T, want *lumberjack.Logger", w)
	}
	if lj.MaxSize != 100 || lj.Filename != "/tmp/x.log" {
		t.Fatalf("lumberjack config = %+v", lj)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hfprop.log")
	log := New(Config{Level: "debug", Format: "json", File: path})

	ctx, reqLog := WithRequestLogger(context.Background(), log)
	reqLog.Info(ctx, "prediction complete", String("path", "London-Paris"), Float("bmuf", 14.2))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"prediction complete"`, `"path":"London-Paris"`, `"request_id":"` + RequestIDFromContext(ctx) + `"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if LoggerFromContext(context.Background()) != nil {
		t.Fatal("expected nil logger on empty context")
	}
	ctx := ContextWithLogger(context.Background(), nil)
	if LoggerFromContext(ctx) == nil {
		t.Fatal("nil logger should be replaced with Noop")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"debug": "DEBUG", "WARNING": "WARN", "error": "ERROR", "": "INFO", "bogus": "INFO"}
	for in, want := range cases {
		if got := parseLevel(in).Level().String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
