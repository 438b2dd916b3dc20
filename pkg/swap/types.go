package swap

import (
	"time"

	"cosmossdk.io/math"
)

// Network identifies one of the supported chains.
type Network string

const (
	NetworkEVM    Network = "evm"
	NetworkSolana Network = "solana"
	NetworkTON    Network = "ton"
)

// PoolKind classifies a liquidity pool by its pricing model.
type PoolKind string

const (
	PoolKindAMM             PoolKind = "amm"
	PoolKindStableAMM       PoolKind = "stable"
	PoolKindConcentrated    PoolKind = "clmm"
	PoolKindConstantProduct PoolKind = "cpmm"
)

// Pool is an on-chain liquidity venue trading a fixed pair of assets.
// Pools are immutable once fetched; a stale graph is refetched wholesale.
type Pool struct {
	ID     string   `json:"id"`
	Kind   PoolKind `json:"kind"`
	AssetA string   `json:"assetA"`
	AssetB string   `json:"assetB"`
}

// PoolGraph is the full pool set of one network, partitioned by kind.
// It is replaced atomically on refresh, never patched.
type PoolGraph struct {
	Network   Network             `json:"network"`
	Pools     map[PoolKind][]Pool `json:"pools"`
	FetchedAt time.Time           `json:"fetchedAt"`
}

// Size returns the total pool count across all kinds.
func (g *PoolGraph) Size() int {
	n := 0
	for _, pools := range g.Pools {
		n += len(pools)
	}
	return n
}

// Route is an ordered sequence of pools connecting an input asset to an
// output asset.
type Route struct {
	Hops        []Pool `json:"hops"`
	InputAsset  string `json:"inputAsset"`
	OutputAsset string `json:"outputAsset"`
}

// Quote is the priced outcome of route selection for one request. Quotes are
// derived on demand and never persisted.
type Quote struct {
	Network      Network  `json:"network"`
	InputAsset   string   `json:"inputAsset"`
	OutputAsset  string   `json:"outputAsset"`
	AmountIn     math.Int `json:"amountIn"`
	AmountOut    math.Int `json:"amountOut"`
	MinAmountOut math.Int `json:"minAmountOut"`
	RouteKind    string   `json:"routeKind"`
	NetworkFee   float64  `json:"networkFee"`
	PlatformFee  float64  `json:"platformFee"`
	SlippageBps  int      `json:"slippageBps"`
}

// TxRequest is a chain-agnostic transaction payload produced by a routing
// engine for a chosen route.
type TxRequest struct {
	To    string   `json:"to"`
	Data  []byte   `json:"data"`
	Value math.Int `json:"value"`
}

// SettlementResult reports the terminal outcome of a submitted swap. Amount
// is derived from transaction logs or balance deltas and defaults to zero
// when no matching transfer is found.
type SettlementResult struct {
	Success bool     `json:"success"`
	Amount  math.Int `json:"amount"`
	TxRef   string   `json:"txRef"`
}

// UnsignedTransaction is returned by the sweep flow for external signing.
// The service never signs on behalf of the end user's wallet.
type UnsignedTransaction struct {
	To            string   `json:"to"`
	Value         math.Int `json:"value"`
	Body          []byte   `json:"body"`
	CorrelationID string   `json:"correlationId"`
}

// CorrelationRecord ties an expected inbound transfer to the opaque token
// embedded in its message field.
type CorrelationRecord struct {
	Wallet        string `json:"wallet"`
	CorrelationID string `json:"correlationId"`
}

// SweepResult is the reconciliation outcome for one correlation record.
type SweepResult struct {
	CorrelationID string `json:"correlationId"`
	Success       bool   `json:"success"`
}
