package solana

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

var (
	testWallet = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testMint   = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	otherOwner = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
)

type stubSolChain struct {
	tx      *rpc.GetTransactionResult
	txErr   error
	txCalls int
}

func (c *stubSolChain) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{}}, nil
}

func (c *stubSolChain) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (c *stubSolChain) GetTransaction(ctx context.Context, signature solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	c.txCalls++
	if c.txErr != nil {
		return nil, c.txErr
	}
	return c.tx, nil
}

func tokenBalance(owner, mint solana.PublicKey, amount string) rpc.TokenBalance {
	return rpc.TokenBalance{
		Mint:          mint,
		Owner:         &owner,
		UiTokenAmount: &rpc.UiTokenAmount{Amount: amount},
	}
}

func newTestVerifier(chain *stubSolChain) *Verifier {
	v := NewVerifier(chain, zerolog.Nop())
	v.SetPolling(time.Millisecond, 3)
	return v
}

func testSignature() string {
	var sig solana.Signature
	sig[0] = 1
	return sig.String()
}

func TestConfirmDerivesBalanceDelta(t *testing.T) {
	chain := &stubSolChain{
		tx: &rpc.GetTransactionResult{
			Meta: &rpc.TransactionMeta{
				PreTokenBalances: []rpc.TokenBalance{
					tokenBalance(testWallet, testMint, "1000"),
					tokenBalance(otherOwner, testMint, "5000"),
				},
				PostTokenBalances: []rpc.TokenBalance{
					tokenBalance(testWallet, testMint, "1750"),
					tokenBalance(otherOwner, testMint, "4250"),
				},
			},
		},
	}
	verifier := newTestVerifier(chain)

	result, err := verifier.Confirm(context.Background(), testSignature(), testWallet, testMint)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(750), result.Amount.Int64())
}

func TestConfirmIgnoresOtherMints(t *testing.T) {
	chain := &stubSolChain{
		tx: &rpc.GetTransactionResult{
			Meta: &rpc.TransactionMeta{
				PreTokenBalances:  []rpc.TokenBalance{tokenBalance(testWallet, otherOwner, "0")},
				PostTokenBalances: []rpc.TokenBalance{tokenBalance(testWallet, otherOwner, "999")},
			},
		},
	}
	verifier := newTestVerifier(chain)

	result, err := verifier.Confirm(context.Background(), testSignature(), testWallet, testMint)
	require.NoError(t, err)
	assert.True(t, result.Amount.IsZero())
}

func TestConfirmMissingPreBalanceCountsFromZero(t *testing.T) {
	// A fresh associated token account has no pre balance entry.
	chain := &stubSolChain{
		tx: &rpc.GetTransactionResult{
			Meta: &rpc.TransactionMeta{
				PostTokenBalances: []rpc.TokenBalance{tokenBalance(testWallet, testMint, "640")},
			},
		},
	}
	verifier := newTestVerifier(chain)

	result, err := verifier.Confirm(context.Background(), testSignature(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, int64(640), result.Amount.Int64())
}

func TestConfirmFailedTransaction(t *testing.T) {
	chain := &stubSolChain{
		tx: &rpc.GetTransactionResult{
			Meta: &rpc.TransactionMeta{Err: map[string]any{"InstructionError": []any{}}},
		},
	}
	verifier := newTestVerifier(chain)

	result, err := verifier.Confirm(context.Background(), testSignature(), testWallet, testMint)
	assert.ErrorIs(t, err, swap.ErrSwapFailed)
	require.NotNil(t, result)
	assert.False(t, result.Success)
}

func TestAwaitTransactionExhaustsAttempts(t *testing.T) {
	chain := &stubSolChain{txErr: errors.New("not found")}
	verifier := newTestVerifier(chain)

	_, err := verifier.Confirm(context.Background(), testSignature(), testWallet, testMint)
	assert.ErrorIs(t, err, swap.ErrTxNotFound)
	assert.Equal(t, 3, chain.txCalls)
}
