package server_test

import (
	"sync"
	"testing"
	"time"

	"github.com/testn/mongogo/model"
	. "github.com/testn/mongogo/server"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreate_returns_the_same_server_for_equal_targets(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := NewTarget([]model.Addr{"Node-A", "node-b:27017"})
	b := NewTarget([]model.Addr{"node-b", "NODE-A:27017"})

	require.Equal(t, a.Key(), b.Key())
	require.True(t, r.GetOrCreate(a) == r.GetOrCreate(b))
	require.Equal(t, 1, r.Len())
}

func TestRegistry_GetOrCreate_returns_distinct_servers_for_distinct_targets(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := NewTarget([]model.Addr{"node-a"})
	b := NewTarget([]model.Addr{"node-b"})

	require.False(t, r.GetOrCreate(a) == r.GetOrCreate(b))
	require.Equal(t, 2, r.Len())
}

func TestRegistry_GetOrCreate_distinguishes_write_concern(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := NewTarget([]model.Addr{"node-a"}, WithWriteConcern(Acknowledged()))
	b := NewTarget([]model.Addr{"node-a"}, WithWriteConcern(Majority()))

	require.False(t, r.GetOrCreate(a) == r.GetOrCreate(b))
}

func TestRegistry_GetOrCreate_distinguishes_timeout_and_pool_size(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := NewTarget([]model.Addr{"node-a"})
	b := NewTarget([]model.Addr{"node-a"}, WithConnectTimeout(5*time.Second))
	c := NewTarget([]model.Addr{"node-a"}, WithMaxPoolSize(1))

	require.False(t, r.GetOrCreate(a) == r.GetOrCreate(b))
	require.False(t, r.GetOrCreate(a) == r.GetOrCreate(c))
	require.Equal(t, 3, r.Len())
}

func TestRegistry_GetOrCreate_is_safe_for_concurrent_use(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	target := NewTarget([]model.Addr{"node-a"})

	servers := make([]*Server, 8)
	var wg sync.WaitGroup
	for i := range servers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			servers[i] = r.GetOrCreate(target)
		}(i)
	}
	wg.Wait()

	for _, s := range servers[1:] {
		require.True(t, s == servers[0])
	}
	require.Equal(t, 1, r.Len())
}
