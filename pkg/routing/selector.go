package routing

import (
	"context"
	"maps"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

// Slippage tolerance is a per-network policy constant, not user input.
// Values mirror the tolerances the networks were tuned with.
var defaultSlippageBps = map[swap.Network]int{
	swap.NetworkEVM:    100,
	swap.NetworkSolana: 15,
	swap.NetworkTON:    50,
}

// Selector prices candidate routes through the engine's deterministic
// simulation and picks the one with the maximum amount out.
type Selector struct {
	slippageBps map[swap.Network]int
	networkFee  float64
	platformFee float64
	log         zerolog.Logger
}

func NewSelector(networkFee, platformFee float64, log zerolog.Logger) *Selector {
	return &Selector{
		slippageBps: maps.Clone(defaultSlippageBps),
		networkFee:  networkFee,
		platformFee: platformFee,
		log:         log.With().Str("component", "selector").Logger(),
	}
}

// SetSlippageBps overrides the policy tolerance for one network.
func (s *Selector) SetSlippageBps(network swap.Network, bps int) {
	s.slippageBps[network] = bps
}

// SlippageBps returns the policy tolerance for network.
func (s *Selector) SlippageBps(network swap.Network) int {
	if bps, ok := s.slippageBps[network]; ok {
		return bps
	}
	return defaultSlippageBps[swap.NetworkTON]
}

// Best simulates every candidate and returns a quote for the route with the
// highest amount out, along with the route itself. Ties keep the first
// maximal candidate, so selection is stable for a fixed route set. An empty
// candidate set is a normal outcome and yields ErrNoRoute.
func (s *Selector) Best(ctx context.Context, engine swap.Engine, network swap.Network, inputAsset, outputAsset string, routes []swap.Route, amountIn math.Int) (*swap.Quote, *swap.Route, error) {
	if len(routes) == 0 {
		return nil, nil, swap.ErrNoRoute
	}

	var (
		best    *swap.Simulation
		bestIdx int
	)
	for i, route := range routes {
		sim, err := engine.Simulate(ctx, route, amountIn)
		if err != nil {
			return nil, nil, swap.Upstream("simulate route", err)
		}
		if best == nil || sim.AmountOut.GT(best.AmountOut) {
			best = sim
			bestIdx = i
		}
	}
	if best == nil || !best.AmountOut.IsPositive() {
		return nil, nil, swap.ErrNoRoute
	}

	bps := s.SlippageBps(network)
	minOut := applySlippage(best.AmountOut, bps)

	s.log.Debug().
		Str("network", string(network)).
		Int("candidates", len(routes)).
		Str("amountOut", best.AmountOut.String()).
		Str("minAmountOut", minOut.String()).
		Msg("route selected")

	quote := &swap.Quote{
		Network:      network,
		InputAsset:   inputAsset,
		OutputAsset:  outputAsset,
		AmountIn:     amountIn,
		AmountOut:    best.AmountOut,
		MinAmountOut: minOut,
		RouteKind:    best.RouteKind,
		NetworkFee:   s.networkFee,
		PlatformFee:  s.platformFee,
		SlippageBps:  bps,
	}
	return quote, &routes[bestIdx], nil
}

// applySlippage derives the minimum acceptable output:
// amountOut * (10000 - bps) / 10000. For bps in (0, 10000) the result is
// always <= amountOut.
func applySlippage(amountOut math.Int, bps int) math.Int {
	return amountOut.Mul(math.NewInt(int64(10000 - bps))).Quo(math.NewInt(10000))
}
