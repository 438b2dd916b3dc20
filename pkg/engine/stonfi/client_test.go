package stonfi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

func newTestEngine(t *testing.T, handler http.HandlerFunc) *Engine {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, zerolog.Nop())
}

func TestFetchPoolGraph(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/pools", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pool_list": []map[string]string{
				{"address": "pool-1", "token0_address": "tokenA", "token1_address": "tokenB"},
				{"address": "pool-2", "token0_address": "tokenB", "token1_address": "tokenC"},
			},
		})
	})

	graph, err := engine.FetchPoolGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, swap.NetworkTON, graph.Network)
	assert.Equal(t, 2, graph.Size())
	assert.False(t, graph.FetchedAt.IsZero())
}

func TestComputeRoutesMatchesBothOrientations(t *testing.T) {
	engine := New("", zerolog.Nop())
	graph := &swap.PoolGraph{
		Network: swap.NetworkTON,
		Pools: map[swap.PoolKind][]swap.Pool{
			swap.PoolKindAMM: {
				{ID: "pool-1", AssetA: "tokenA", AssetB: "tokenB"},
				{ID: "pool-2", AssetA: "tokenB", AssetB: "tokenA"},
				{ID: "pool-3", AssetA: "tokenA", AssetB: "tokenC"},
			},
		},
	}

	routes, err := engine.ComputeRoutes(context.Background(), graph, "tokenA", "tokenB")
	require.NoError(t, err)
	require.Len(t, routes, 2)
	for _, route := range routes {
		assert.Equal(t, "tokenA", route.InputAsset)
		assert.Equal(t, "tokenB", route.OutputAsset)
		assert.Len(t, route.Hops, 1)
	}
}

func TestSimulate(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/swap/simulate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		query := r.URL.Query()
		require.Equal(t, "tokenA", query.Get("offer_address"))
		require.Equal(t, "tokenB", query.Get("ask_address"))
		require.Equal(t, "1000000", query.Get("units"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"ask_units":     "987654",
			"min_ask_units": "982716",
		})
	})

	route := swap.Route{InputAsset: "tokenA", OutputAsset: "tokenB"}
	sim, err := engine.Simulate(context.Background(), route, math.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, int64(987654), sim.AmountOut.Int64())
	assert.Equal(t, int64(982716), sim.MinAmountOut.Int64())
	assert.Equal(t, "stonfi", sim.RouteKind)
}

func TestSimulateServerError(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"pool not found"}`, http.StatusNotFound)
	})

	_, err := engine.Simulate(context.Background(), swap.Route{InputAsset: "a", OutputAsset: "b"}, math.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestBuildTransactionUnsupported(t *testing.T) {
	engine := New("", zerolog.Nop())
	_, err := engine.BuildTransaction(context.Background(), swap.Route{}, math.NewInt(1), math.NewInt(1))
	assert.Error(t, err)
}
