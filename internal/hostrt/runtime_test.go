package hostrt_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/hostgraph/internal/eventbus"
	events "github.com/hanpama/hostgraph/internal/events"
	"github.com/hanpama/hostgraph/internal/hostrt"
	"github.com/hanpama/hostgraph/internal/property"
	"github.com/hanpama/hostgraph/internal/schema"
)

const librarySDL = `
type Book {
  title: String!
  author: Author
  published: Boolean!
  label(suffix: String): String
  rating: Int
  tags: [String!]
}

type Author {
  name: String!
  books: [Book!]
}

type Query {
  book: Book
}
`

var errNoRating = errors.New("rating service down")

type author struct {
	name  string
	books []*book
}

func (a *author) GetName() string { return a.name }

type book struct {
	Title  string
	Author *author
	Tags   []string
}

func (b *book) IsPublished() bool  { return true }
func (b *book) GetPublished() bool { return false }

func (b *book) GetLabel(env *property.Env) string {
	return fmt.Sprintf("%s.%s:%v", env.ObjectType, env.Field, env.Args["suffix"])
}

func (b *book) GetRating() (int, error) { return 0, errNoRating }

func newRuntime(t *testing.T, opts ...hostrt.Option) *hostrt.Runtime {
	t.Helper()
	s, err := schema.BuildFromSDL("library.graphql", librarySDL)
	require.NoError(t, err)
	return hostrt.New(property.New(), s, opts...)
}

func fixture() *book {
	a := &author{name: "Le Guin"}
	b := &book{Title: "The Dispossessed", Author: a, Tags: []string{"sf"}}
	a.books = []*book{b, {Title: "Lavinia", Author: a}}
	return b
}

func TestResolveSync(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()
	b := fixture()

	tests := []struct {
		name  string
		field string
		args  map[string]any
		want  any
	}{
		{"exported field", "title", nil, "The Dispossessed"},
		{"typename", "__typename", nil, "Book"},
		{"boolean prefers Is getter", "published", nil, true},
		{"env getter", "label", map[string]any{"suffix": "x"}, "Book.label:x"},
		{"absent property is null", "isbn", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rt.ResolveSync(ctx, "Book", tt.field, b, tt.args)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("accessor failure", func(t *testing.T) {
		_, err := rt.ResolveSync(ctx, "Book", "rating", b, nil)
		require.ErrorIs(t, err, errNoRating)
		var rerr *property.ResolutionError
		require.ErrorAs(t, err, &rerr)
		require.Equal(t, "rating", rerr.Property)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := rt.ResolveSync(cctx, "Book", "title", b, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBatchResolve(t *testing.T) {
	bus := eventbus.New()
	var mu sync.Mutex
	var starts []events.BatchStart
	var finishes []events.BatchFinish
	eventbus.Subscribe(bus, func(_ context.Context, e events.BatchStart) {
		mu.Lock()
		starts = append(starts, e)
		mu.Unlock()
	})
	eventbus.Subscribe(bus, func(_ context.Context, e events.BatchFinish) {
		mu.Lock()
		finishes = append(finishes, e)
		mu.Unlock()
	})
	rt := newRuntime(t, hostrt.WithEventBus(bus), hostrt.WithConcurrency(4))

	var tasks []hostrt.Task
	for i := 0; i < 40; i++ {
		b := &book{Title: fmt.Sprintf("book-%d", i)}
		field := "title"
		if i%10 == 0 {
			field = "rating"
		}
		tasks = append(tasks, hostrt.Task{ObjectType: "Book", Field: field, Source: b})
	}

	results := rt.BatchResolve(context.Background(), tasks)
	require.Len(t, results, len(tasks))
	for i, res := range results {
		if i%10 == 0 {
			require.ErrorIs(t, res.Error, errNoRating, "task %d", i)
			require.Nil(t, res.Value)
			continue
		}
		require.NoError(t, res.Error, "task %d", i)
		require.Equal(t, fmt.Sprintf("book-%d", i), res.Value)
	}

	require.Len(t, starts, 1)
	require.Len(t, finishes, 1)
	require.Equal(t, starts[0].RequestID, finishes[0].RequestID)
	require.Equal(t, 40, starts[0].Tasks)
	require.Equal(t, 4, finishes[0].Errors)

	require.Empty(t, rt.BatchResolve(context.Background(), nil))
	require.Len(t, starts, 1, "empty batches publish nothing")
}

func TestBatchResolveCancelled(t *testing.T) {
	rt := newRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := rt.BatchResolve(ctx, []hostrt.Task{
		{ObjectType: "Book", Field: "title", Source: fixture()},
		{ObjectType: "Book", Field: "title", Source: fixture()},
	})
	for _, res := range results {
		require.ErrorIs(t, res.Error, context.Canceled)
	}
}
