package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	var got []int
	unsub := Subscribe(b, func(_ context.Context, p ping) { got = append(got, p.N) })
	Subscribe(b, func(_ context.Context, p ping) { got = append(got, p.N*10) })

	require.True(t, Active[ping](b))
	require.False(t, Active[pong](b))

	Publish(context.Background(), b, ping{N: 1})
	Publish(context.Background(), b, pong{})
	require.Equal(t, []int{1, 10}, got)

	unsub()
	Publish(context.Background(), b, ping{N: 2})
	require.Equal(t, []int{1, 10, 20}, got)
}

func TestUnsubscribeLast(t *testing.T) {
	b := New()
	unsub := Subscribe(b, func(context.Context, ping) {})
	unsub()
	require.False(t, Active[ping](b))
	unsub()
}

func TestNilBus(t *testing.T) {
	var b *Bus
	called := false
	unsub := Subscribe(b, func(context.Context, ping) { called = true })
	Publish(context.Background(), b, ping{})
	unsub()
	require.False(t, called)
	require.False(t, Active[ping](b))
}

func TestHandlerSeesContext(t *testing.T) {
	type key struct{}
	b := New()
	var seen any
	Subscribe(b, func(ctx context.Context, _ ping) { seen = ctx.Value(key{}) })
	Publish(context.WithValue(context.Background(), key{}, "v"), b, ping{})
	require.Equal(t, "v", seen)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	total := 0
	Subscribe(b, func(_ context.Context, p ping) {
		mu.Lock()
		total += p.N
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Publish(context.Background(), b, ping{N: 1})
			unsub := Subscribe(b, func(context.Context, pong) {})
			unsub()
		}()
	}
	wg.Wait()
	require.Equal(t, 50, total)
}
