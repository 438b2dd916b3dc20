// Package routing caches pool graphs and computed routes and selects the
// best quote among candidate routes. The routing math itself lives behind
// the per-network swap.Engine interface.
package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/cache"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const (
	// DefaultRouteMaxAge bounds route reuse for interactive quotes. Route
	// topology is more volatile than pool existence, so it is far shorter
	// than the pool-graph ages.
	DefaultRouteMaxAge = 10 * time.Minute

	// DefaultPoolMaxAge is the graph age tolerated on the swap path before
	// a full refetch.
	DefaultPoolMaxAge = 90 * time.Minute
)

// Provider serves pool graphs and routes, preferring the cache and falling
// back to the network's routing engine on a miss. Cache failures are logged
// and treated as misses; engine failures fail the request.
type Provider struct {
	store      cache.Store
	engines    map[swap.Network]swap.Engine
	poolMaxAge time.Duration
	log        zerolog.Logger
}

func NewProvider(store cache.Store, engines map[swap.Network]swap.Engine, log zerolog.Logger) *Provider {
	return &Provider{
		store:      store,
		engines:    engines,
		poolMaxAge: DefaultPoolMaxAge,
		log:        log.With().Str("component", "routing").Logger(),
	}
}

// SetPoolMaxAge overrides the graph age tolerated when computing routes.
func (p *Provider) SetPoolMaxAge(maxAge time.Duration) {
	p.poolMaxAge = maxAge
}

// Engine returns the routing engine registered for network.
func (p *Provider) Engine(network swap.Network) (swap.Engine, error) {
	engine, ok := p.engines[network]
	if !ok {
		return nil, fmt.Errorf("no routing engine registered for network %s", network)
	}
	return engine, nil
}

func poolsKey(network swap.Network) string {
	return fmt.Sprintf("pools:%s", network)
}

func routesKey(network swap.Network, inputAsset, outputAsset string) string {
	// Direction matters for price impact, so reversed pairs are distinct keys.
	return fmt.Sprintf("routes:%s:%s:%s", network, inputAsset, outputAsset)
}

// PoolGraph returns the cached graph when younger than maxAge, otherwise
// refetches the whole graph from the engine and caches it. The refetch may
// take tens of seconds; ctx cancellation is honored by the engine.
func (p *Provider) PoolGraph(ctx context.Context, network swap.Network, maxAge time.Duration) (*swap.PoolGraph, error) {
	engine, err := p.Engine(network)
	if err != nil {
		return nil, err
	}

	key := poolsKey(network)
	var graph swap.PoolGraph
	if p.readCached(ctx, key, maxAge, &graph) {
		return &graph, nil
	}

	p.log.Info().Str("network", string(network)).Msg("pool graph cache miss, fetching from engine")
	fresh, err := engine.FetchPoolGraph(ctx)
	if err != nil {
		return nil, swap.Upstream("fetch pool graph", err)
	}
	p.writeCached(ctx, key, fresh, 2*p.poolMaxAge)
	p.log.Info().Str("network", string(network)).Int("pools", fresh.Size()).Msg("pool graph refreshed")
	return fresh, nil
}

// Routes returns cached routes for the asset pair when younger than maxAge.
// On a miss it needs a valid pool graph (fetching one if necessary), asks
// the engine to compute routes, and caches the result.
func (p *Provider) Routes(ctx context.Context, network swap.Network, inputAsset, outputAsset string, maxAge time.Duration) ([]swap.Route, error) {
	engine, err := p.Engine(network)
	if err != nil {
		return nil, err
	}

	key := routesKey(network, inputAsset, outputAsset)
	var routes []swap.Route
	if p.readCached(ctx, key, maxAge, &routes) {
		return routes, nil
	}

	graph, err := p.PoolGraph(ctx, network, p.poolMaxAge)
	if err != nil {
		return nil, err
	}

	routes, err = engine.ComputeRoutes(ctx, graph, inputAsset, outputAsset)
	if err != nil {
		return nil, swap.Upstream("compute routes", err)
	}
	p.writeCached(ctx, key, routes, 2*maxAge)
	return routes, nil
}

// readCached reports whether a fresh entry was decoded into v. Store
// failures degrade to a miss; an expired-but-present entry is never served
// beyond maxAge.
func (p *Provider) readCached(ctx context.Context, key string, maxAge time.Duration, v any) bool {
	data, err := p.store.Get(ctx, key)
	if err != nil {
		if err != cache.ErrMiss {
			p.log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return false
	}
	if err := cache.Open(data, maxAge, v); err != nil {
		if err != cache.ErrMiss {
			p.log.Warn().Err(err).Str("key", key).Msg("cache entry unreadable, treating as miss")
		}
		return false
	}
	return true
}

func (p *Provider) writeCached(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := cache.Seal(v)
	if err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := p.store.Set(ctx, key, data, ttl); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
