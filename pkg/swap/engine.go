package swap

import (
	"context"

	"cosmossdk.io/math"
)

// Simulation is the deterministic outcome of pricing one route for a fixed
// input amount.
type Simulation struct {
	AmountOut    math.Int
	MinAmountOut math.Int
	RouteKind    string
}

// Engine is the per-network routing engine capability. The routing and
// quoting math lives behind this interface; the core treats it as opaque.
// New networks are added by implementing Engine, not by branching core
// logic.
//
// FetchPoolGraph may take tens of seconds on large networks; callers must
// treat it as a long-running, cancellable operation.
type Engine interface {
	FetchPoolGraph(ctx context.Context) (*PoolGraph, error)
	ComputeRoutes(ctx context.Context, graph *PoolGraph, inputAsset, outputAsset string) ([]Route, error)
	Simulate(ctx context.Context, route Route, amountIn math.Int) (*Simulation, error)
	BuildTransaction(ctx context.Context, route Route, amountIn, minAmountOut math.Int) (*TxRequest, error)
}
