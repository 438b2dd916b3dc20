package ton

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Vapour-Exchange/decent-service/pkg/ratelimit"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const (
	// jettonTransferOp is the TEP-74 jetton transfer opcode.
	jettonTransferOp = 0x0f8a7ea5

	// gasStipendNano (0.06 TON) is pre-funded to the user wallet so it can
	// pay the jetton transfer fees without holding TON of its own.
	gasStipendNano = 60_000_000

	// attachedNano (0.05 TON) rides on the jetton transfer itself and covers
	// the jetton wallet's forwarding costs; the unspent remainder bounces
	// back to the user wallet.
	attachedNano = 50_000_000

	// forwardNano is the minimal amount forwarded to the treasury so the
	// comment payload is delivered.
	forwardNano = 1
)

// Sweeper prepares sweeps of user jetton balances into the treasury. It
// pre-funds the user wallet with gas, then returns an unsigned jetton
// transfer for the user's wallet infrastructure to sign; the service never
// holds user keys.
type Sweeper struct {
	client   Client
	limiter  *ratelimit.WalletLimiter
	treasury string
	log      zerolog.Logger
}

func NewSweeper(client Client, limiter *ratelimit.WalletLimiter, treasury string, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		client:   client,
		limiter:  limiter,
		treasury: treasury,
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// RequestSweep pre-funds the user wallet with the gas stipend (the stipend
// transfer carries the correlation id as its comment) and returns the
// unsigned jetton transfer moving the balance to the treasury. The same
// correlation id rides in the transfer's forward payload, so the treasury
// observes it on arrival and reconciliation can match it.
func (s *Sweeper) RequestSweep(ctx context.Context, params SweepParams) (*swap.UnsignedTransaction, error) {
	correlationID := params.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	if !s.limiter.Allow(params.UserWallet) {
		return nil, fmt.Errorf("sweep rate limit exceeded for wallet %s", params.UserWallet)
	}

	stipendTx, err := s.client.SendInternal(ctx, params.UserWallet, math.NewInt(gasStipendNano), correlationID)
	if err != nil {
		return nil, fmt.Errorf("gas pre-fund failed: %w", err)
	}
	s.log.Info().
		Str("wallet", params.UserWallet).
		Str("correlationId", correlationID).
		Str("tx", stipendTx).
		Msg("gas stipend pre-funded")

	jettonWallet, err := s.client.ResolveJettonWallet(ctx, params.JettonMaster, params.UserWallet)
	if err != nil {
		return nil, err
	}

	body, err := s.transferBody(params.Amount, correlationID, params.UserWallet)
	if err != nil {
		return nil, err
	}

	return &swap.UnsignedTransaction{
		To:            jettonWallet,
		Value:         math.NewInt(attachedNano),
		Body:          body,
		CorrelationID: correlationID,
	}, nil
}

// Treasury returns the destination swept balances arrive at; reconciliation
// watches this address for the correlation comment.
func (s *Sweeper) Treasury() string {
	return s.treasury
}

// JettonBalances lists the jetton positions held by owner, so callers can
// see what a sweep would move before requesting it.
func (s *Sweeper) JettonBalances(ctx context.Context, owner string) ([]JettonBalance, error) {
	return s.client.JettonBalances(ctx, owner)
}

// transferBody builds the jetton transfer payload: amount to the treasury,
// excess gas back to the user wallet, correlation id as the forward comment.
func (s *Sweeper) transferBody(amount math.Int, correlationID, responseTo string) ([]byte, error) {
	treasuryAddr, err := address.ParseAddr(s.treasury)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury address: %w", err)
	}
	responseAddr, err := address.ParseAddr(responseTo)
	if err != nil {
		return nil, fmt.Errorf("invalid response address: %w", err)
	}
	forward, err := wallet.CreateCommentCell(correlationID)
	if err != nil {
		return nil, fmt.Errorf("failed to build forward comment: %w", err)
	}

	body := cell.BeginCell().
		MustStoreUInt(jettonTransferOp, 32).
		MustStoreUInt(uint64(time.Now().UnixNano()), 64).
		MustStoreBigCoins(amount.BigInt()).
		MustStoreAddr(treasuryAddr).
		MustStoreAddr(responseAddr).
		MustStoreBoolBit(false). // no custom payload
		MustStoreBigCoins(big.NewInt(forwardNano)).
		MustStoreBoolBit(true). // forward payload in ref
		MustStoreRef(forward).
		EndCell()
	return body.ToBOC(), nil
}
