package timectrl

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewControllerOrdersMonthMajor(t *testing.T) {
	c, err := NewController(2024, []int{5, 0}, []int{0, 12})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	want := []Epoch{
		{2024, 5, 0}, {2024, 5, 12},
		{2024, 0, 0}, {2024, 0, 12},
	}
	got := c.Epochs()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("epoch %d = %v, want %v", i, got[i], want[i])
		}
	}
	if c.Now() != want[0] {
		t.Fatalf("Now() before Run = %v, want %v", c.Now(), want[0])
	}
}

func TestNewControllerRejectsBadInput(t *testing.T) {
	cases := []struct {
		name          string
		months, hours []int
	}{
		{"month", []int{12}, []int{0}},
		{"hour", []int{0}, []int{24}},
		{"empty", nil, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewController(2024, tc.months, tc.hours); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestControllerRunNotifiesListeners(t *testing.T) {
	c, err := NewController(2024, []int{2}, []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	var seen []int
	c.AddListener(func(e Epoch) { seen = append(seen, e.Hour) })

	var stepped []int
	err = c.Run(context.Background(), func(_ context.Context, e Epoch) error {
		if c.Now() != e {
			t.Errorf("Now() = %v during step for %v", c.Now(), e)
		}
		stepped = append(stepped, e.Hour)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 3 || len(stepped) != 3 || seen[2] != 3 || stepped[0] != 1 {
		t.Fatalf("listeners %v, steps %v", seen, stepped)
	}
}

func TestControllerRunStopsOnError(t *testing.T) {
	c, _ := NewController(2024, []int{0, 1}, []int{0})
	boom := errors.New("boom")
	calls := 0
	err := c.Run(context.Background(), func(context.Context, Epoch) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestControllerRunHonoursCancel(t *testing.T) {
	c, _ := NewController(2024, []int{0}, []int{0, 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx, func(context.Context, Epoch) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestEpochTimeAndJulianDay(t *testing.T) {
	e := Epoch{Year: 2000, Month: 0, Hour: 12}
	if got, want := e.Time(), time.Date(2000, time.January, 15, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("Time() = %v, want %v", got, want)
	}
	// J2000.0 is 2451545.0 on 1 January 2000 at noon.
	assert.InDelta(t, 2451545.0+14, e.JulianDay(), 1e-6)

	gmst := e.GMST()
	if gmst < 0 || gmst >= 2*math.Pi {
		t.Fatalf("GMST = %v, want [0, 2pi)", gmst)
	}
	if e.String() != "2000-01 1200Z" {
		t.Fatalf("String() = %q", e.String())
	}
}
