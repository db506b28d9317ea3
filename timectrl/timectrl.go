// Package timectrl steps a sweep through its (month, hour) epochs.
package timectrl

import (
	"context"
	"fmt"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// MidMonthDay is the day the solar model assumes for every month.
const MidMonthDay = 15

// Epoch is one month and UTC hour of a sweep.
type Epoch struct {
	Year  int `json:"year" msgpack:"year"`
	Month int `json:"month" msgpack:"month"` // 0..11
	Hour  int `json:"hour" msgpack:"hour"`   // 0..23 UTC
}

// Time returns the epoch as an instant on the mid-month day.
func (e Epoch) Time() time.Time {
	return time.Date(e.Year, time.Month(e.Month+1), MidMonthDay, e.Hour, 0, 0, 0, time.UTC)
}

// JulianDay returns the Julian date of the epoch.
func (e Epoch) JulianDay() float64 {
	return satellite.JDay(e.Year, e.Month+1, MidMonthDay, e.Hour, 0, 0)
}

// GMST returns the Greenwich mean sidereal time of the epoch in radians.
func (e Epoch) GMST() float64 {
	return satellite.ThetaG_JD(e.JulianDay())
}

func (e Epoch) String() string {
	return fmt.Sprintf("%04d-%02d %02d00Z", e.Year, e.Month+1, e.Hour)
}

// Clock is the read side of a Controller, for components that only need
// the current epoch.
type Clock interface {
	Now() Epoch
}

// Controller walks the epochs of a sweep month-major and notifies
// registered listeners as each epoch begins.
type Controller struct {
	mu      sync.RWMutex
	epochs  []Epoch
	current Epoch

	listeners []func(Epoch)
}

var _ Clock = (*Controller)(nil)

// NewController builds the epoch schedule for year. Months are 0..11 and
// hours 0..23; both are visited in the order given.
func NewController(year int, months, hours []int) (*Controller, error) {
	epochs := make([]Epoch, 0, len(months)*len(hours))
	for _, m := range months {
		if m < 0 || m > 11 {
			return nil, fmt.Errorf("timectrl: month %d outside 0..11", m)
		}
		for _, h := range hours {
			if h < 0 || h > 23 {
				return nil, fmt.Errorf("timectrl: hour %d outside 0..23", h)
			}
			epochs = append(epochs, Epoch{Year: year, Month: m, Hour: h})
		}
	}
	if len(epochs) == 0 {
		return nil, fmt.Errorf("timectrl: no epochs")
	}
	return &Controller{epochs: epochs, current: epochs[0]}, nil
}

// Now returns the epoch being processed, or the first one before Run.
func (c *Controller) Now() Epoch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Epochs returns a copy of the schedule.
func (c *Controller) Epochs() []Epoch {
	return append([]Epoch(nil), c.epochs...)
}

// Len is the number of epochs in the schedule.
func (c *Controller) Len() int { return len(c.epochs) }

// AddListener registers a callback invoked as each epoch begins.
func (c *Controller) AddListener(fn func(Epoch)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Run calls step for every epoch in order. It stops at the first error or
// when ctx is cancelled.
func (c *Controller) Run(ctx context.Context, step func(context.Context, Epoch) error) error {
	for _, e := range c.epochs {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.mu.Lock()
		c.current = e
		listeners := append([]func(Epoch)(nil), c.listeners...)
		c.mu.Unlock()

		for _, fn := range listeners {
			fn(e)
		}
		if err := step(ctx, e); err != nil {
			return fmt.Errorf("epoch %s: %w", e, err)
		}
	}
	return nil
}
