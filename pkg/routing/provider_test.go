package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vapour-Exchange/decent-service/pkg/cache"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

func newTestProvider(engine swap.Engine) (*Provider, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	provider := NewProvider(store, map[swap.Network]swap.Engine{swap.NetworkTON: engine}, zerolog.Nop())
	return provider, store
}

func TestPoolGraphFetchesOnMissThenServesCached(t *testing.T) {
	ctx := context.Background()
	engine := newStubEngine()
	provider, _ := newTestProvider(engine)

	graph, err := provider.PoolGraph(ctx, swap.NetworkTON, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, graph.Size())
	assert.Equal(t, 1, engine.fetchCalls)

	_, err = provider.PoolGraph(ctx, swap.NetworkTON, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.fetchCalls, "second read should hit the cache")
}

func TestPoolGraphStaleEntryRefetches(t *testing.T) {
	ctx := context.Background()
	engine := newStubEngine()
	provider, _ := newTestProvider(engine)

	_, err := provider.PoolGraph(ctx, swap.NetworkTON, time.Hour)
	require.NoError(t, err)

	// A zero max age makes any cached entry too old.
	_, err = provider.PoolGraph(ctx, swap.NetworkTON, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.fetchCalls)
}

func TestPoolGraphEngineFailure(t *testing.T) {
	ctx := context.Background()
	engine := newStubEngine()
	engine.fetchErr = errors.New("rpc down")
	provider, _ := newTestProvider(engine)

	_, err := provider.PoolGraph(ctx, swap.NetworkTON, time.Hour)
	assert.ErrorIs(t, err, swap.ErrUpstream)
}

func TestRoutesComputedOnceThenCached(t *testing.T) {
	ctx := context.Background()
	engine := newStubEngine()
	provider, _ := newTestProvider(engine)

	routes, err := provider.Routes(ctx, swap.NetworkTON, "AAA", "BBB", time.Hour)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, 1, engine.computeCalls)
	assert.Equal(t, 1, engine.fetchCalls, "route miss needs the graph")

	_, err = provider.Routes(ctx, swap.NetworkTON, "AAA", "BBB", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.computeCalls, "second read should hit the cache")
}

func TestRoutesDirectionIsDistinct(t *testing.T) {
	ctx := context.Background()
	engine := newStubEngine()
	provider, _ := newTestProvider(engine)

	_, err := provider.Routes(ctx, swap.NetworkTON, "AAA", "BBB", time.Hour)
	require.NoError(t, err)
	_, err = provider.Routes(ctx, swap.NetworkTON, "BBB", "AAA", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.computeCalls)
}

func TestUnknownNetwork(t *testing.T) {
	ctx := context.Background()
	provider, _ := newTestProvider(newStubEngine())

	_, err := provider.Routes(ctx, swap.NetworkEVM, "AAA", "BBB", time.Hour)
	require.Error(t, err)
}

// failingStore always errors; the provider must degrade to engine fetches.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("store down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}
func (failingStore) ExpireBefore(context.Context, time.Time) error {
	return errors.New("store down")
}

func TestCacheOutageFailsOpen(t *testing.T) {
	ctx := context.Background()
	engine := newStubEngine()
	provider := NewProvider(failingStore{}, map[swap.Network]swap.Engine{swap.NetworkTON: engine}, zerolog.Nop())

	routes, err := provider.Routes(ctx, swap.NetworkTON, "AAA", "BBB", time.Hour)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}
