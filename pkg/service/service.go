// Package service wires the swap pipeline behind a single facade: quoting,
// execution, approvals, and the sweep flow.
package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/evm"
	"github.com/Vapour-Exchange/decent-service/pkg/routing"
	"github.com/Vapour-Exchange/decent-service/pkg/solana"
	"github.com/Vapour-Exchange/decent-service/pkg/sweep"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
	"github.com/Vapour-Exchange/decent-service/pkg/ton"
)

// maxUint256 is the unlimited ERC-20 allowance.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Service exposes the swap pipeline's operations. Construct it once with
// Options and share it; all methods are safe for concurrent use.
type Service struct {
	provider *routing.Provider
	selector *routing.Selector

	evmSubmitter *evm.Submitter
	evmVerifier  *evm.Verifier
	evmSigner    *evm.Signer

	solSender   *solana.Sender
	solVerifier *solana.Verifier

	sweeper    *ton.Sweeper
	reconciler *ton.Reconciler
	ledger     *sweep.Ledger

	closers []func()
	log     zerolog.Logger
}

// Options carries the collaborators the service operates over. Provider and
// Selector are required; per-network execution components may be nil, in
// which case the matching operations report the network as unconfigured.
type Options struct {
	Provider *routing.Provider
	Selector *routing.Selector

	EVMSubmitter *evm.Submitter
	EVMVerifier  *evm.Verifier
	EVMSigner    *evm.Signer

	SolanaSender   *solana.Sender
	SolanaVerifier *solana.Verifier

	Sweeper    *ton.Sweeper
	Reconciler *ton.Reconciler
	Ledger     *sweep.Ledger

	// Closers run on Close, newest first.
	Closers []func()

	Log zerolog.Logger
}

func New(opts Options) (*Service, error) {
	if opts.Provider == nil || opts.Selector == nil {
		return nil, fmt.Errorf("provider and selector are required")
	}
	return &Service{
		provider:     opts.Provider,
		selector:     opts.Selector,
		evmSubmitter: opts.EVMSubmitter,
		evmVerifier:  opts.EVMVerifier,
		evmSigner:    opts.EVMSigner,
		solSender:    opts.SolanaSender,
		solVerifier:  opts.SolanaVerifier,
		sweeper:      opts.Sweeper,
		reconciler:   opts.Reconciler,
		ledger:       opts.Ledger,
		closers:      opts.Closers,
		log:          opts.Log.With().Str("component", "service").Logger(),
	}, nil
}

// Close tears down the service's collaborators, newest first.
func (s *Service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// GetQuote prices a swap of amountIn from inputAsset to outputAsset on
// network, preferring cached routes and selecting the best simulated
// outcome. The returned route is the one the quote priced and must be
// passed back to ExecuteSwap unchanged.
func (s *Service) GetQuote(ctx context.Context, network swap.Network, inputAsset, outputAsset string, amountIn math.Int) (*swap.Quote, *swap.Route, error) {
	engine, err := s.provider.Engine(network)
	if err != nil {
		return nil, nil, err
	}
	routes, err := s.provider.Routes(ctx, network, inputAsset, outputAsset, routing.DefaultRouteMaxAge)
	if err != nil {
		return nil, nil, err
	}
	return s.selector.Best(ctx, engine, network, inputAsset, outputAsset, routes, amountIn)
}

// PoolGraph returns the network's pool graph, no older than maxAge.
func (s *Service) PoolGraph(ctx context.Context, network swap.Network, maxAge time.Duration) (*swap.PoolGraph, error) {
	return s.provider.PoolGraph(ctx, network, maxAge)
}

// ExecuteSwap quotes the swap and settles it in one call.
func (s *Service) ExecuteSwap(ctx context.Context, network swap.Network, inputAsset, outputAsset string, amountIn math.Int) (*swap.SettlementResult, error) {
	quote, route, err := s.GetQuote(ctx, network, inputAsset, outputAsset, amountIn)
	if err != nil {
		return nil, err
	}
	return s.ExecuteQuoted(ctx, quote, route)
}

// ExecuteQuoted submits a previously obtained quote and waits for
// settlement. The quote's minimum amount out is enforced on chain by the
// engine-built payload.
func (s *Service) ExecuteQuoted(ctx context.Context, quote *swap.Quote, route *swap.Route) (*swap.SettlementResult, error) {
	engine, err := s.provider.Engine(quote.Network)
	if err != nil {
		return nil, err
	}
	req, err := engine.BuildTransaction(ctx, *route, quote.AmountIn, quote.MinAmountOut)
	if err != nil {
		return nil, swap.Upstream("build transaction", err)
	}

	switch quote.Network {
	case swap.NetworkEVM:
		return s.executeEVM(ctx, quote, req)
	case swap.NetworkSolana:
		return s.executeSolana(ctx, quote, req)
	case swap.NetworkTON:
		return nil, fmt.Errorf("ton swaps settle through the sweep flow, not direct execution")
	default:
		return nil, fmt.Errorf("unsupported network %s", quote.Network)
	}
}

// executeEVM runs the approve-then-swap sequence. The approval must be
// included with success status before the swap is submitted; the router
// reads the allowance at execution time.
func (s *Service) executeEVM(ctx context.Context, quote *swap.Quote, req *swap.TxRequest) (*swap.SettlementResult, error) {
	if s.evmSubmitter == nil || s.evmVerifier == nil || s.evmSigner == nil {
		return nil, fmt.Errorf("evm execution is not configured")
	}

	token := common.HexToAddress(quote.InputAsset)
	router := common.HexToAddress(req.To)

	approveHash, err := s.evmSubmitter.Approve(ctx, token, router, quote.AmountIn.BigInt())
	if err != nil {
		return nil, err
	}
	receipt, err := s.evmVerifier.AwaitReceipt(ctx, approveHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrApprovalFailed, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", swap.ErrApprovalFailed, approveHash.Hex())
	}

	swapHash, err := s.evmSubmitter.Swap(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrSwapFailed, err)
	}
	return s.evmVerifier.Confirm(ctx, swapHash, s.evmSigner.Address(), router)
}

func (s *Service) executeSolana(ctx context.Context, quote *swap.Quote, req *swap.TxRequest) (*swap.SettlementResult, error) {
	if s.solSender == nil || s.solVerifier == nil {
		return nil, fmt.Errorf("solana execution is not configured")
	}

	outputMint, err := solanago.PublicKeyFromBase58(quote.OutputAsset)
	if err != nil {
		return nil, fmt.Errorf("invalid output mint: %w", err)
	}

	sig, err := s.solSender.SendPayload(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrSwapFailed, err)
	}
	return s.solVerifier.Confirm(ctx, sig, s.solSender.Wallet(), outputMint)
}

// ApproveMax grants the spender an unlimited allowance on the token and
// waits for inclusion.
func (s *Service) ApproveMax(ctx context.Context, token, spender string) (string, error) {
	if s.evmSubmitter == nil || s.evmVerifier == nil {
		return "", fmt.Errorf("evm execution is not configured")
	}

	hash, err := s.evmSubmitter.Approve(ctx, common.HexToAddress(token), common.HexToAddress(spender), maxUint256)
	if err != nil {
		return "", err
	}
	receipt, err := s.evmVerifier.AwaitReceipt(ctx, hash)
	if err != nil {
		return "", fmt.Errorf("%w: %v", swap.ErrApprovalFailed, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: %s", swap.ErrApprovalFailed, hash.Hex())
	}
	return hash.Hex(), nil
}

// RequestSweep pre-funds gas, tracks the sweep in the ledger, and returns
// the unsigned transfer for external signing.
func (s *Service) RequestSweep(ctx context.Context, params ton.SweepParams) (*swap.UnsignedTransaction, error) {
	if s.sweeper == nil {
		return nil, fmt.Errorf("ton sweeps are not configured")
	}

	unsigned, err := s.sweeper.RequestSweep(ctx, params)
	if err != nil {
		return nil, err
	}
	if s.ledger != nil {
		// The transfer is expected to arrive at the treasury, so that is the
		// address reconciliation will scan.
		if err := s.ledger.Track(s.sweeper.Treasury(), params.JettonMaster, unsigned.CorrelationID); err != nil {
			s.log.Warn().Err(err).Str("correlationId", unsigned.CorrelationID).Msg("failed to track sweep")
		}
	}
	return unsigned, nil
}

// JettonBalances lists the jetton positions held by a wallet.
func (s *Service) JettonBalances(ctx context.Context, wallet string) ([]ton.JettonBalance, error) {
	if s.sweeper == nil {
		return nil, fmt.Errorf("ton sweeps are not configured")
	}
	return s.sweeper.JettonBalances(ctx, wallet)
}

// ReconcileSweeps resolves the supplied records against the treasury's
// recent transfers. With no records supplied it reconciles everything the
// ledger still holds as pending, marking matches confirmed.
func (s *Service) ReconcileSweeps(ctx context.Context, records []swap.CorrelationRecord) ([]swap.SweepResult, error) {
	if s.reconciler == nil {
		return nil, fmt.Errorf("ton sweeps are not configured")
	}

	fromLedger := len(records) == 0
	if fromLedger {
		if s.ledger == nil {
			return nil, fmt.Errorf("no records supplied and no ledger configured")
		}
		records = s.ledger.Pending()
	}

	results, err := s.reconciler.Reconcile(ctx, records)
	if err != nil {
		return nil, err
	}

	if fromLedger {
		for _, result := range results {
			if !result.Success {
				continue
			}
			if err := s.ledger.MarkResolved(result.CorrelationID, sweep.StatusConfirmed); err != nil {
				s.log.Warn().Err(err).Str("correlationId", result.CorrelationID).Msg("failed to resolve sweep")
			}
		}
	}
	return results, nil
}
