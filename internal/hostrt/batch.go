package hostrt

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	eventbus "github.com/hanpama/hostgraph/internal/eventbus"
	events "github.com/hanpama/hostgraph/internal/events"
	reqid "github.com/hanpama/hostgraph/internal/reqid"
)

type Task struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value.
	Source any
	// Args are the field arguments, already coerced to Go values.
	Args map[string]any
}

type Result struct {
	// Value is the resolved raw value, or nil on error or absence.
	Value any
	// Error contains a failure specific to this task; other tasks in the
	// same batch are unaffected.
	Error error
}

// BatchResolve resolves independent tasks concurrently.
//
// Requirements met for callers:
//   - len(results) == len(tasks), and results[i] corresponds to tasks[i].
//   - Errors are reported per element; the batch as a whole never fails.
//   - Cancelling ctx fails the tasks that have not started yet.
func (r *Runtime) BatchResolve(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	ctx, id := reqid.NewContext(ctx)
	start := time.Now()
	eventbus.Publish(ctx, r.bus, events.BatchStart{RequestID: id, Tasks: len(tasks)})

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, t := range tasks {
		g.Go(func() error {
			v, err := r.ResolveSync(ctx, t.ObjectType, t.Field, t.Source, t.Args)
			results[i] = Result{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Error != nil {
			failed++
		}
	}
	d := time.Since(start)
	if ce := r.logger.Check(zap.DebugLevel, "batch resolved"); ce != nil {
		ce.Write(
			zap.Uint64("request_id", id),
			zap.Int("tasks", len(tasks)),
			zap.Int("errors", failed),
			zap.Duration("duration", d),
		)
	}
	eventbus.Publish(ctx, r.bus, events.BatchFinish{
		RequestID: id,
		Tasks:     len(tasks),
		Errors:    failed,
		Duration:  d,
	})
	return results
}
