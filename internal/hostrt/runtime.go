package hostrt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/hostgraph/internal/eventbus"
	"github.com/hanpama/hostgraph/internal/property"
	"github.com/hanpama/hostgraph/internal/schema"
)

// Runtime resolves GraphQL fields against in-process host values.
// Invariants and boundaries:
//   - Field values come from the property resolver only; the runtime never
//     inspects sources itself, apart from the __typename meta field and
//     naming the concrete type of interface and union values.
//   - Absence is not an error: a property the source does not have resolves
//     to nil, which completes to a GraphQL null.
//   - Accessor failures are returned per field and never abort a batch.
//   - Concurrency: a Runtime is safe for concurrent use. BatchResolve runs at
//     most Concurrency tasks at a time.
type Runtime struct {
	resolver    *property.Resolver
	schema      *schema.Schema
	logger      *zap.Logger
	bus         *eventbus.Bus
	concurrency int
}

// Options configures a Runtime.
//
// Defaults:
// - Logger:      zap.NewNop()
// - Bus:         nil (no events)
// - Concurrency: 8
type Options struct {
	Logger      *zap.Logger
	Bus         *eventbus.Bus
	Concurrency int
}

// Option mutates Options
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Concurrency: 8}
}

func WithLogger(l *zap.Logger) Option     { return func(o *Options) { o.Logger = l } }
func WithEventBus(b *eventbus.Bus) Option { return func(o *Options) { o.Bus = b } }
func WithConcurrency(n int) Option        { return func(o *Options) { o.Concurrency = n } }

// New creates a Runtime reading host values through resolver. s provides
// declared field types and may be nil, in which case no field is treated as
// boolean and every field name is accepted.
func New(resolver *property.Resolver, s *schema.Schema, opts ...Option) *Runtime {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	return &Runtime{
		resolver:    resolver,
		schema:      s,
		logger:      o.Logger,
		bus:         o.Bus,
		concurrency: o.Concurrency,
	}
}

// Schema returns the schema the runtime was built with.
func (r *Runtime) Schema() *schema.Schema { return r.schema }

// ResolveSync resolves objectType.field on source. If source has no such
// property it returns (nil, nil) to produce a GraphQL null for nullable
// fields.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if field == "__typename" {
		return objectType, nil
	}

	env := &property.Env{
		Context:    ctx,
		ObjectType: objectType,
		Field:      field,
		Source:     source,
		Args:       args,
	}
	var declared property.DeclaredType
	if t := r.schema.FieldType(objectType, field); t != nil {
		declared = t
		env.FieldType = t
	}

	v, found, err := r.resolver.ResolveEnv(field, source, declared, env)
	if err != nil {
		return nil, fmt.Errorf("resolve %s.%s: %w", objectType, field, err)
	}
	if !found {
		return nil, nil
	}
	return v, nil
}
