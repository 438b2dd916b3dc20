package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

// transferTopic is keccak256("Transfer(address,address,uint256)").
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

const (
	// DefaultPollInterval and DefaultMaxAttempts bound the settlement
	// poll at roughly five minutes.
	DefaultPollInterval = 10 * time.Second
	DefaultMaxAttempts  = 30
)

// Verifier polls for a transaction's terminal state and derives the
// realized output amount from its transfer logs.
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
		log:         log.With().Str("component", "evm-verifier").Logger(),
	}
}

// SetPolling overrides the retry interval and attempt bound.
func (v *Verifier) SetPolling(interval time.Duration, maxAttempts int) {
	v.interval = interval
	v.maxAttempts = maxAttempts
}

// AwaitReceipt polls for the receipt on a fixed interval up to the attempt
// bound, then reports ErrTxNotFound. The first attempt runs immediately.
func (v *Verifier) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	for attempt := 0; attempt < v.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(v.interval):
			}
		}
		receipt, err := v.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", swap.ErrTxNotFound, txHash.Hex(), v.maxAttempts)
}

// Confirm waits for the swap to reach a terminal state and reports the
// realized amount received by wallet. router is the contract the swap was
// sent to; transfers it emitted as sender are internal hops and ignored.
func (v *Verifier) Confirm(ctx context.Context, txHash common.Hash, wallet, router common.Address) (*swap.SettlementResult, error) {
	receipt, err := v.AwaitReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}

	result := &swap.SettlementResult{TxRef: txHash.Hex(), Amount: math.ZeroInt()}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, fmt.Errorf("%w: %s", swap.ErrSwapFailed, txHash.Hex())
	}

	result.Success = true
	result.Amount = math.NewIntFromBigInt(v.transferredAmount(receipt, wallet, router))
	return result, nil
}

// transferredAmount scans the receipt for the first Transfer event whose
// recipient is the wallet and whose sender is not the router itself. This
// is a heuristic over emitted logs, not a proof: with several qualifying
// transfers in one transaction the first match wins, and with none the
// amount is zero.
func (v *Verifier) transferredAmount(receipt *types.Receipt, wallet, router common.Address) *big.Int {
	for _, entry := range receipt.Logs {
		if len(entry.Topics) < 3 || entry.Topics[0] != transferTopic {
			continue
		}
		from := common.BytesToAddress(entry.Topics[1].Bytes())
		to := common.BytesToAddress(entry.Topics[2].Bytes())
		if to == wallet && from != router {
			return new(big.Int).SetBytes(entry.Data)
		}
	}
	v.log.Warn().Str("tx", receipt.TxHash.Hex()).Msg("no matching transfer log found, reporting zero amount")
	return big.NewInt(0)
}
