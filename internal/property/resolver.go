package property

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	eventbus "github.com/hanpama/hostgraph/internal/eventbus"
	events "github.com/hanpama/hostgraph/internal/events"
)

// Resolver resolves properties on host values and owns the discovery caches.
// Construct one per executor with New and share it between goroutines; its
// caches live until ClearCache.
type Resolver struct {
	positive accessorCache
	negative absenceCache
	registry sync.Map // registration -> AccessorFunc

	visibilityOverride atomic.Bool
	negativeCaching    atomic.Bool

	counters counters
	logger   *zap.Logger
	bus      *eventbus.Bus
}

// Options configures a Resolver.
//
// Defaults:
// - Logger:             zap.NewNop()
// - Bus:                nil (no events)
// - VisibilityOverride: true
// - NegativeCaching:    true
type Options struct {
	Logger             *zap.Logger
	Bus                *eventbus.Bus
	VisibilityOverride bool
	NegativeCaching    bool
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		VisibilityOverride: true,
		NegativeCaching:    true,
	}
}

func WithLogger(l *zap.Logger) Option         { return func(o *Options) { o.Logger = l } }
func WithEventBus(b *eventbus.Bus) Option     { return func(o *Options) { o.Bus = b } }
func WithVisibilityOverride(flag bool) Option { return func(o *Options) { o.VisibilityOverride = flag } }
func WithNegativeCaching(flag bool) Option    { return func(o *Options) { o.NegativeCaching = flag } }

// New creates a Resolver with empty caches.
func New(opts ...Option) *Resolver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	r := &Resolver{logger: o.Logger, bus: o.Bus}
	r.visibilityOverride.Store(o.VisibilityOverride)
	r.negativeCaching.Store(o.NegativeCaching)
	return r
}

// Resolve returns the value of property name on target. typ is the declared
// GraphQL type of the property and may be nil.
//
// The result is (value, true, nil) when an accessor produced a value,
// (nil, false, nil) when target has no such property, and (nil, false, err)
// with a *ResolutionError when an accessor failed.
func (r *Resolver) Resolve(name string, target any, typ DeclaredType) (any, bool, error) {
	return r.ResolveEnv(name, target, typ, nil)
}

// ResolveEnv is Resolve with an execution context for getters declaring a
// *Env parameter.
func (r *Resolver) ResolveEnv(name string, target any, typ DeclaredType, env *Env) (any, bool, error) {
	if v, ok, isContainer := readContainer(target, name); isContainer {
		r.counters.containerReads.Add(1)
		return v, ok, nil
	}
	if target == nil {
		return r.absent()
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return r.absent()
	}

	key := newKey(rv.Type(), name)
	if a, ok := r.positive.load(key); ok {
		r.counters.positiveHits.Add(1)
		return r.invoke(key, a, rv, env)
	}
	if r.negativeCaching.Load() && r.negative.has(key) {
		r.counters.negativeHits.Add(1)
		return r.absent()
	}
	return r.resolveUncached(key, rv, typ, env)
}

// resolveUncached runs discovery for key and caches its outcome.
func (r *Resolver) resolveUncached(key cacheKey, rv reflect.Value, typ DeclaredType, env *Env) (any, bool, error) {
	start := time.Now()
	r.counters.discoveries.Add(1)
	a, strategy := r.discover(rv.Type(), key.name, typ, env != nil)
	r.discovered(env, key, strategy, a != nil, start)

	if a == nil {
		if r.negativeCaching.Load() {
			r.negative.add(key)
		}
		return r.absent()
	}
	return r.invoke(key, r.positive.store(key, a), rv, env)
}

func (r *Resolver) invoke(key cacheKey, a accessor, rv reflect.Value, env *Env) (v any, found bool, err error) {
	// An exposed accessor stored by a discovery that raced a disable.
	if a.exposed() && !r.visibilityOverride.Load() {
		return r.absent()
	}
	defer func() {
		if p := recover(); p != nil {
			v, found, err = nil, false, r.fail(env, key, &PanicError{Value: p})
		}
	}()
	v, found, err = a.invoke(rv, env)
	if err != nil {
		return nil, false, r.fail(env, key, err)
	}
	if !found {
		return r.absent()
	}
	return v, true, nil
}

func (r *Resolver) absent() (any, bool, error) {
	r.counters.absences.Add(1)
	return nil, false, nil
}

func (r *Resolver) fail(env *Env, key cacheKey, cause error) error {
	r.counters.failures.Add(1)
	err := &ResolutionError{Property: key.name, Type: key.typ, Err: cause}
	if ce := r.logger.Check(zapcore.DebugLevel, "property accessor failed"); ce != nil {
		ce.Write(
			zap.String("type", key.typeName()),
			zap.String("property", key.name),
			zap.Error(cause),
		)
	}
	if eventbus.Active[events.PropertyFailed](r.bus) {
		eventbus.Publish(env.context(), r.bus, events.PropertyFailed{
			TypeName: key.typeName(),
			Property: key.name,
			Err:      err,
		})
	}
	return err
}

func (r *Resolver) discovered(env *Env, key cacheKey, strategy string, found bool, start time.Time) {
	d := time.Since(start)
	if ce := r.logger.Check(zapcore.DebugLevel, "property discovered"); ce != nil {
		ce.Write(
			zap.String("type", key.typeName()),
			zap.String("package", key.pkg),
			zap.String("property", key.name),
			zap.String("strategy", strategy),
			zap.Bool("found", found),
			zap.Duration("duration", d),
		)
	}
	if eventbus.Active[events.PropertyDiscovered](r.bus) {
		eventbus.Publish(env.context(), r.bus, events.PropertyDiscovered{
			TypeName: key.typeName(),
			Property: key.name,
			Strategy: strategy,
			Found:    found,
			Start:    start,
			Duration: d,
		})
	}
}

// ClearCache empties the positive and negative caches. Lookups that start
// after it returns run discovery again.
func (r *Resolver) ClearCache() {
	r.positive.clear()
	r.negative.clear()
	r.logger.Debug("property caches cleared")
}

// SetVisibilityOverride enables or disables access to unexported fields and to
// getters outside the public method sets, and returns the previous setting.
// Changing the setting clears both caches, since any discovery outcome may
// differ under the new setting.
func (r *Resolver) SetVisibilityOverride(flag bool) bool {
	prev := r.visibilityOverride.Swap(flag)
	if prev != flag {
		r.ClearCache()
	}
	return prev
}

// SetNegativeCaching enables or disables recording and honoring absences,
// and returns the previous setting.
func (r *Resolver) SetNegativeCaching(flag bool) bool {
	return r.negativeCaching.Swap(flag)
}
