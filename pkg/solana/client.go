// Package solana submits and settles swaps on Solana.
package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

// ChainClient is the subset of the RPC client the sender and verifier rely
// on. *rpc.Client satisfies it; tests use a stub.
type ChainClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetTransaction(ctx context.Context, signature solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

var _ ChainClient = (*rpc.Client)(nil)

// Sender signs and submits engine-built transaction payloads with the
// service wallet.
type Sender struct {
	client     ChainClient
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
	log        zerolog.Logger
}

// NewSender parses a Base58-encoded private key and binds it to the client.
func NewSender(client ChainClient, base58Key string, log zerolog.Logger) (*Sender, error) {
	privateKey, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Sender{
		client:     client,
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		log:        log.With().Str("component", "solana-sender").Logger(),
	}, nil
}

// Wallet returns the service wallet address.
func (s *Sender) Wallet() solana.PublicKey {
	return s.publicKey
}

// SendPayload deserializes an engine-built transaction, re-signs it with a
// fresh blockhash, and submits it. The engine serializes the unsigned
// message into req.Data.
func (s *Sender) SendPayload(ctx context.Context, req *swap.TxRequest) (string, error) {
	tx, err := solana.TransactionFromBytes(req.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction payload: %w", err)
	}

	recent, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", swap.Upstream("fetch blockhash", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", swap.Upstream("send transaction", err)
	}

	s.log.Info().Str("signature", sig.String()).Msg("swap submitted")
	return sig.String(), nil
}
