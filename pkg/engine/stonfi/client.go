// Package stonfi adapts the STON.fi public REST API to the routing-engine
// capability. STON.fi only trades direct pools, so every computed route is a
// single hop.
package stonfi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const (
	// DefaultBaseURL is the public STON.fi API endpoint.
	DefaultBaseURL = "https://api.ston.fi"

	// slippageTolerance is the fraction submitted with every simulation,
	// matching the service's TON slippage policy of 50 bps.
	slippageTolerance = "0.005"

	routeKind = "stonfi"
)

// Engine is a swap.Engine backed by the STON.fi REST API.
type Engine struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ swap.Engine = (*Engine)(nil)

func New(baseURL string, log zerolog.Logger) *Engine {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Engine{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "stonfi").Logger(),
	}
}

type poolListResponse struct {
	PoolList []struct {
		Address       string `json:"address"`
		Token0Address string `json:"token0_address"`
		Token1Address string `json:"token1_address"`
	} `json:"pool_list"`
}

// FetchPoolGraph downloads the full pool list. The response runs to several
// thousand pools; callers cache the graph rather than refetching per quote.
func (e *Engine) FetchPoolGraph(ctx context.Context) (*swap.PoolGraph, error) {
	var decoded poolListResponse
	if err := e.getJSON(ctx, "/v1/pools", nil, &decoded); err != nil {
		return nil, err
	}

	pools := make([]swap.Pool, 0, len(decoded.PoolList))
	for _, p := range decoded.PoolList {
		pools = append(pools, swap.Pool{
			ID:     p.Address,
			Kind:   swap.PoolKindAMM,
			AssetA: p.Token0Address,
			AssetB: p.Token1Address,
		})
	}

	e.log.Info().Int("pools", len(pools)).Msg("pool list fetched")
	return &swap.PoolGraph{
		Network:   swap.NetworkTON,
		Pools:     map[swap.PoolKind][]swap.Pool{swap.PoolKindAMM: pools},
		FetchedAt: time.Now().UTC(),
	}, nil
}

// ComputeRoutes returns the direct pools trading the pair, one single-hop
// route per pool. Pool pairs are undirected, so both orientations match.
func (e *Engine) ComputeRoutes(ctx context.Context, graph *swap.PoolGraph, inputAsset, outputAsset string) ([]swap.Route, error) {
	var routes []swap.Route
	for _, pools := range graph.Pools {
		for _, pool := range pools {
			forward := pool.AssetA == inputAsset && pool.AssetB == outputAsset
			reverse := pool.AssetB == inputAsset && pool.AssetA == outputAsset
			if !forward && !reverse {
				continue
			}
			routes = append(routes, swap.Route{
				Hops:        []swap.Pool{pool},
				InputAsset:  inputAsset,
				OutputAsset: outputAsset,
			})
		}
	}
	return routes, nil
}

type simulateResponse struct {
	AskUnits    string `json:"ask_units"`
	MinAskUnits string `json:"min_ask_units"`
}

// Simulate prices the route through the swap simulator. The simulator works
// on the asset pair, not a chosen pool, so all routes for a pair price
// identically; route selection still works because other engines
// differentiate.
func (e *Engine) Simulate(ctx context.Context, route swap.Route, amountIn math.Int) (*swap.Simulation, error) {
	params := url.Values{}
	params.Set("offer_address", route.InputAsset)
	params.Set("ask_address", route.OutputAsset)
	params.Set("units", amountIn.String())
	params.Set("slippage_tolerance", slippageTolerance)

	var decoded simulateResponse
	if err := e.postJSON(ctx, "/v1/swap/simulate", params, &decoded); err != nil {
		return nil, err
	}

	askUnits, ok := math.NewIntFromString(decoded.AskUnits)
	if !ok {
		return nil, fmt.Errorf("unparseable ask_units %q", decoded.AskUnits)
	}
	minAskUnits, ok := math.NewIntFromString(decoded.MinAskUnits)
	if !ok {
		return nil, fmt.Errorf("unparseable min_ask_units %q", decoded.MinAskUnits)
	}

	return &swap.Simulation{
		AmountOut:    askUnits,
		MinAmountOut: minAskUnits,
		RouteKind:    routeKind,
	}, nil
}

// BuildTransaction is not served by the REST API; TON execution goes through
// the sweep flow instead.
func (e *Engine) BuildTransaction(ctx context.Context, route swap.Route, amountIn, minAmountOut math.Int) (*swap.TxRequest, error) {
	return nil, fmt.Errorf("stonfi engine does not build transactions; use the sweep flow")
}

func (e *Engine) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	return e.doJSON(ctx, http.MethodGet, path, params, v)
}

func (e *Engine) postJSON(ctx context.Context, path string, params url.Values, v any) error {
	return e.doJSON(ctx, http.MethodPost, path, params, v)
}

func (e *Engine) doJSON(ctx context.Context, method, path string, params url.Values, v any) error {
	endpoint := e.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
