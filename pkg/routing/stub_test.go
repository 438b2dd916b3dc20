package routing

import (
	"context"
	"time"

	"cosmossdk.io/math"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

// stubEngine is a scriptable swap.Engine for provider and selector tests.
type stubEngine struct {
	fetchCalls   int
	computeCalls int

	graph    *swap.PoolGraph
	routes   []swap.Route
	fetchErr error
	simulate func(route swap.Route, amountIn math.Int) (*swap.Simulation, error)
}

func newStubEngine() *stubEngine {
	pool := swap.Pool{ID: "pool-1", Kind: swap.PoolKindAMM, AssetA: "AAA", AssetB: "BBB"}
	return &stubEngine{
		graph: &swap.PoolGraph{
			Network:   swap.NetworkTON,
			Pools:     map[swap.PoolKind][]swap.Pool{swap.PoolKindAMM: {pool}},
			FetchedAt: time.Now().UTC(),
		},
		routes: []swap.Route{{Hops: []swap.Pool{pool}, InputAsset: "AAA", OutputAsset: "BBB"}},
	}
}

func (e *stubEngine) FetchPoolGraph(ctx context.Context) (*swap.PoolGraph, error) {
	e.fetchCalls++
	if e.fetchErr != nil {
		return nil, e.fetchErr
	}
	return e.graph, nil
}

func (e *stubEngine) ComputeRoutes(ctx context.Context, graph *swap.PoolGraph, inputAsset, outputAsset string) ([]swap.Route, error) {
	e.computeCalls++
	return e.routes, nil
}

func (e *stubEngine) Simulate(ctx context.Context, route swap.Route, amountIn math.Int) (*swap.Simulation, error) {
	if e.simulate != nil {
		return e.simulate(route, amountIn)
	}
	return &swap.Simulation{AmountOut: amountIn, MinAmountOut: amountIn, RouteKind: "stub"}, nil
}

func (e *stubEngine) BuildTransaction(ctx context.Context, route swap.Route, amountIn, minAmountOut math.Int) (*swap.TxRequest, error) {
	return &swap.TxRequest{To: "stub", Value: math.ZeroInt()}, nil
}
