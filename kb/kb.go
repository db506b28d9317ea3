// Package kb is the reference-data knowledge base shared by concurrent
// predictions. Monthly ionospheric maps and noise coefficients are held in
// LRU caches; the decile table and antenna patterns are loaded once and
// kept for the life of the process.
package kb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/signalsfoundry/hfprop/kb"

// DefaultCacheMonths keeps a full year of each monthly table.
const DefaultCacheMonths = 12

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventCacheHit EventType = iota
	EventCacheMiss
	EventLoaded
	EventEvicted
)

func (t EventType) String() string {
	switch t {
	case EventCacheHit:
		return "hit"
	case EventCacheMiss:
		return "miss"
	case EventLoaded:
		return "loaded"
	case EventEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Data kinds reported in events.
const (
	KindIono         = "iono"
	KindCoefficients = "coefficients"
	KindDeciles      = "deciles"
	KindAntenna      = "antenna"
)

// Event is emitted to subscribers on cache activity.
type Event struct {
	Type  EventType
	Kind  string
	Month int    // -1 when not monthly
	Key   string // antenna key
}

// Source loads reference data. DirSource reads the ITU files; tests use
// in-memory sources.
type Source interface {
	IonoMap(month int) (*model.IonoMap, error)
	Coefficients(month int) (*noise.Coefficients, error)
	Deciles() (*model.DecileTable, error)
	Antenna(path string, bearing, gos float64) (*model.Antenna, error)
}

// KnowledgeBase is a thread-safe store of reference data in front of a
// Source. Concurrent requests for the same item share one load.
type KnowledgeBase struct {
	src Source

	ionos  *lru.Cache[int, *model.IonoMap]
	coeffs *lru.Cache[int, *noise.Coefficients]
	group  singleflight.Group

	mu       sync.RWMutex
	deciles  *model.DecileTable
	antennas map[string]*model.Antenna
	subs     map[int]func(Event)
	nextSub  int
}

var _ noise.Source = (*KnowledgeBase)(nil)

// New constructs a KB over src caching cacheMonths maps and coefficient sets.
func New(src Source, cacheMonths int) (*KnowledgeBase, error) {
	if src == nil {
		return nil, fmt.Errorf("kb: source is nil")
	}
	if cacheMonths <= 0 {
		cacheMonths = DefaultCacheMonths
	}
	kb := &KnowledgeBase{
		src:      src,
		antennas: make(map[string]*model.Antenna),
		subs:     make(map[int]func(Event)),
	}
	var err error
	kb.ionos, err = lru.NewWithEvict(cacheMonths, func(month int, _ *model.IonoMap) {
		kb.emit(Event{Type: EventEvicted, Kind: KindIono, Month: month})
	})
	if err != nil {
		return nil, fmt.Errorf("kb: iono cache: %w", err)
	}
	kb.coeffs, err = lru.NewWithEvict(cacheMonths, func(month int, _ *noise.Coefficients) {
		kb.emit(Event{Type: EventEvicted, Kind: KindCoefficients, Month: month})
	})
	if err != nil {
		return nil, fmt.Errorf("kb: coefficient cache: %w", err)
	}
	return kb, nil
}

// IonoMap returns the month's foF2 and M(3000)F2 grids.
func (kb *KnowledgeBase) IonoMap(ctx context.Context, month int) (*model.IonoMap, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	if m, ok := kb.ionos.Get(month); ok {
		kb.emit(Event{Type: EventCacheHit, Kind: KindIono, Month: month})
		return m, nil
	}
	kb.emit(Event{Type: EventCacheMiss, Kind: KindIono, Month: month})

	v, err := kb.load(ctx, KindIono, month, func() (any, error) {
		if m, ok := kb.ionos.Peek(month); ok {
			return m, nil
		}
		m, err := kb.src.IonoMap(month)
		if err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		kb.ionos.Add(month, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.IonoMap), nil
}

// Coefficients returns the month's noise coefficients. It satisfies
// noise.Source.
func (kb *KnowledgeBase) Coefficients(month int) (*noise.Coefficients, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	if c, ok := kb.coeffs.Get(month); ok {
		kb.emit(Event{Type: EventCacheHit, Kind: KindCoefficients, Month: month})
		return c, nil
	}
	kb.emit(Event{Type: EventCacheMiss, Kind: KindCoefficients, Month: month})

	v, err := kb.load(context.Background(), KindCoefficients, month, func() (any, error) {
		if c, ok := kb.coeffs.Peek(month); ok {
			return c, nil
		}
		c, err := kb.src.Coefficients(month)
		if err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		kb.coeffs.Add(month, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*noise.Coefficients), nil
}

// Deciles returns the P.1239 decile table, loading it on first use.
func (kb *KnowledgeBase) Deciles(ctx context.Context) (*model.DecileTable, error) {
	kb.mu.RLock()
	d := kb.deciles
	kb.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	v, err := kb.load(ctx, KindDeciles, -1, func() (any, error) {
		d, err := kb.src.Deciles()
		if err != nil {
			return nil, err
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		kb.mu.Lock()
		kb.deciles = d
		kb.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.DecileTable), nil
}

// AntennaKey identifies an antenna pattern in the registry. Bearings are
// kept to the whole degree the pattern rotation uses.
func AntennaKey(path string, bearingDeg int, gos float64) string {
	return fmt.Sprintf("%s@%d%+g", path, bearingDeg, gos)
}

// Antenna returns the pattern for path pointed along bearing (radians).
// Patterns are shared and must not be modified.
func (kb *KnowledgeBase) Antenna(ctx context.Context, path string, bearing, gos float64) (*model.Antenna, error) {
	key := AntennaKey(path, loader.BearingDegrees(bearing), gos)

	kb.mu.RLock()
	a, ok := kb.antennas[key]
	kb.mu.RUnlock()
	if ok {
		kb.emit(Event{Type: EventCacheHit, Kind: KindAntenna, Month: -1, Key: key})
		return a, nil
	}
	kb.emit(Event{Type: EventCacheMiss, Kind: KindAntenna, Month: -1, Key: key})

	v, err := kb.load(ctx, KindAntenna+":"+key, -1, func() (any, error) {
		a, err := kb.src.Antenna(path, bearing, gos)
		if err != nil {
			return nil, err
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		kb.mu.Lock()
		kb.antennas[key] = a
		kb.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Antenna), nil
}

// Antennas returns a snapshot of the registered antenna keys.
func (kb *KnowledgeBase) Antennas() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]string, 0, len(kb.antennas))
	for k := range kb.antennas {
		res = append(res, k)
	}
	return res
}

// CachedMonths reports how many monthly maps and coefficient sets are held.
func (kb *KnowledgeBase) CachedMonths() (ionos, coeffs int) {
	return kb.ionos.Len(), kb.coeffs.Len()
}

// load runs fn once per key across concurrent callers, inside a span.
func (kb *KnowledgeBase) load(ctx context.Context, kind string, month int, fn func() (any, error)) (any, error) {
	key := fmt.Sprintf("%s/%d", kind, month)
	v, err, _ := kb.group.Do(key, func() (any, error) {
		_, span := otel.Tracer(tracerName).Start(ctx, "kb.load",
			traceAttrs(kind, month)...)
		defer span.End()

		v, err := fn()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		kb.emit(Event{Type: EventLoaded, Kind: baseKind(kind), Month: month})
		return v, nil
	})
	if err != nil {
		if month >= 0 {
			return nil, fmt.Errorf("kb: load %s for month %d: %w", kind, month+1, err)
		}
		return nil, fmt.Errorf("kb: load %s: %w", kind, err)
	}
	return v, nil
}

// Subscribe registers a callback for KB events. It returns an unsubscribe
// function. Callbacks run synchronously on the requesting goroutine and must
// not call back into the KB.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextSub
	kb.nextSub++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

func (kb *KnowledgeBase) emit(ev Event) {
	kb.mu.RLock()
	if len(kb.subs) == 0 {
		kb.mu.RUnlock()
		return
	}
	subs := make([]func(Event), 0, len(kb.subs))
	for _, fn := range kb.subs {
		subs = append(subs, fn)
	}
	kb.mu.RUnlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(ev)
	}
}

func checkMonth(month int) error {
	if month < 0 || month > 11 {
		return fmt.Errorf("kb: month %d out of range", month)
	}
	return nil
}

func baseKind(kind string) string {
	k, _, _ := strings.Cut(kind, ":")
	return k
}

func traceAttrs(kind string, month int) []trace.SpanStartOption {
	return []trace.SpanStartOption{trace.WithAttributes(
		attribute.String("kb.kind", baseKind(kind)),
		attribute.Int("kb.month", month+1),
	)}
}
