package solana

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const (
	// DefaultPollInterval and DefaultMaxAttempts bound the settlement
	// poll at roughly five minutes.
	DefaultPollInterval = 10 * time.Second
	DefaultMaxAttempts  = 30
)

// Verifier polls for a transaction's terminal state and derives the
// realized output amount from the recorded token balance deltas.
type Verifier struct {
	client      ChainClient
	interval    time.Duration
	maxAttempts int
	log         zerolog.Logger
}

func NewVerifier(client ChainClient, log zerolog.Logger) *Verifier {
	return &Verifier{
		client:      client,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		log:         log.With().Str("component", "solana-verifier").Logger(),
	}
}

// SetPolling overrides the retry interval and attempt bound.
func (v *Verifier) SetPolling(interval time.Duration, maxAttempts int) {
	v.interval = interval
	v.maxAttempts = maxAttempts
}

// AwaitTransaction polls for the finalized transaction on a fixed interval
// up to the attempt bound, then reports ErrTxNotFound. The first attempt
// runs immediately.
func (v *Verifier) AwaitTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	maxVersion := uint64(0)
	opts := &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	}
	for attempt := 0; attempt < v.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(v.interval):
			}
		}
		tx, err := v.client.GetTransaction(ctx, sig, opts)
		if err == nil && tx != nil {
			return tx, nil
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", swap.ErrTxNotFound, sig.String(), v.maxAttempts)
}

// Confirm waits for the swap to finalize and reports the realized amount of
// outputMint received by wallet, computed as the post-balance minus the
// pre-balance recorded in the transaction metadata.
func (v *Verifier) Confirm(ctx context.Context, sigStr string, wallet solana.PublicKey, outputMint solana.PublicKey) (*swap.SettlementResult, error) {
	sig, err := solana.SignatureFromBase58(sigStr)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	tx, err := v.AwaitTransaction(ctx, sig)
	if err != nil {
		return nil, err
	}

	result := &swap.SettlementResult{TxRef: sigStr, Amount: math.ZeroInt()}
	if tx.Meta == nil || tx.Meta.Err != nil {
		return result, fmt.Errorf("%w: %s", swap.ErrSwapFailed, sigStr)
	}

	result.Success = true
	result.Amount = v.balanceDelta(tx.Meta, wallet, outputMint)
	return result, nil
}

// balanceDelta sums the wallet's recorded balances for the mint before and
// after execution and returns the difference. A wallet can hold the mint in
// more than one token account, so balances are aggregated per side.
func (v *Verifier) balanceDelta(meta *rpc.TransactionMeta, wallet, mint solana.PublicKey) math.Int {
	pre := v.sumBalances(meta.PreTokenBalances, wallet, mint)
	post := v.sumBalances(meta.PostTokenBalances, wallet, mint)
	delta := post.Sub(pre)
	if delta.IsNegative() {
		v.log.Warn().
			Str("mint", mint.String()).
			Str("delta", delta.String()).
			Msg("negative output balance delta, reporting zero amount")
		return math.ZeroInt()
	}
	return delta
}

func (v *Verifier) sumBalances(balances []rpc.TokenBalance, wallet, mint solana.PublicKey) math.Int {
	total := math.ZeroInt()
	for _, b := range balances {
		if !b.Mint.Equals(mint) {
			continue
		}
		if b.Owner == nil || !b.Owner.Equals(wallet) {
			continue
		}
		if b.UiTokenAmount == nil {
			continue
		}
		amount, ok := math.NewIntFromString(b.UiTokenAmount.Amount)
		if !ok {
			v.log.Warn().Str("amount", b.UiTokenAmount.Amount).Msg("unparseable token balance, skipping")
			continue
		}
		total = total.Add(amount)
	}
	return total
}
