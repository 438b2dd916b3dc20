package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const erc20ApproveABI = `[{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

const (
	// approveGasLimit is a conservative fixed limit; allowance calls are
	// cheap and estimating them is not worth a round trip.
	approveGasLimit = uint64(100_000)

	// fallbackSwapGasLimit is substituted when dynamic estimation fails.
	// Estimation failure is common around simulation quirks and must not
	// block submission.
	fallbackSwapGasLimit = uint64(2_000_000)

	// Fee components carry a 20% markup over the sampled gas price.
	feeMarkupNum = 120
	feeMarkupDen = 100
)

// Submitter builds, prices, and sends transactions with the service wallet.
// It performs no retries; a rejected submission is a terminal error for the
// caller to handle.
type Submitter struct {
	client ChainClient
	signer *Signer
	log    zerolog.Logger
}

func NewSubmitter(client ChainClient, signer *Signer, log zerolog.Logger) *Submitter {
	return &Submitter{
		client: client,
		signer: signer,
		log:    log.With().Str("component", "evm-submitter").Logger(),
	}
}

// Approve submits an allowance for spender on the given token with a fixed
// gas limit. Inclusion is not awaited here; the caller must confirm the
// receipt before submitting the dependent swap.
func (s *Submitter) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ApproveABI))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to parse approve ABI: %w", err)
	}
	data, err := parsed.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve call: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.signer.Address())
	if err != nil {
		return common.Hash{}, swap.Upstream("fetch nonce", err)
	}
	gasFeeCap, gasTipCap, err := s.feeCaps(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.signer.ChainID(),
		Nonce:     nonce,
		To:        &token,
		Gas:       approveGasLimit,
		GasFeeCap: gasFeeCap,
		GasTipCap: gasTipCap,
		Data:      data,
	})
	signed, err := s.signer.SignTx(tx)
	if err != nil {
		return common.Hash{}, err
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, swap.Upstream("send approval", err)
	}

	s.log.Info().
		Str("token", token.Hex()).
		Str("spender", spender.Hex()).
		Str("tx", signed.Hash().Hex()).
		Msg("approval submitted")
	return signed.Hash(), nil
}

// Swap submits the engine-built swap payload. The gas limit comes from
// dynamic estimation with a fixed fallback; fee caps carry the markup over
// the sampled gas price.
func (s *Submitter) Swap(ctx context.Context, req *swap.TxRequest) (common.Hash, error) {
	to := common.HexToAddress(req.To)
	value := req.Value.BigInt()

	nonce, err := s.client.PendingNonceAt(ctx, s.signer.Address())
	if err != nil {
		return common.Hash{}, swap.Upstream("fetch nonce", err)
	}
	gasFeeCap, gasTipCap, err := s.feeCaps(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	gasLimit, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.signer.Address(),
		To:    &to,
		Value: value,
		Data:  req.Data,
	})
	if err != nil {
		s.log.Warn().Err(err).Uint64("fallback", fallbackSwapGasLimit).Msg("gas estimation failed, using fallback limit")
		gasLimit = fallbackSwapGasLimit
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.signer.ChainID(),
		Nonce:     nonce,
		To:        &to,
		Value:     value,
		Gas:       gasLimit,
		GasFeeCap: gasFeeCap,
		GasTipCap: gasTipCap,
		Data:      req.Data,
	})
	signed, err := s.signer.SignTx(tx)
	if err != nil {
		return common.Hash{}, err
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, swap.Upstream("send swap", err)
	}

	s.log.Info().
		Str("to", to.Hex()).
		Uint64("gasLimit", gasLimit).
		Str("tx", signed.Hash().Hex()).
		Msg("swap submitted")
	return signed.Hash(), nil
}

// feeCaps samples the network gas price and marks up both the base and
// priority components.
func (s *Submitter) feeCaps(ctx context.Context) (*big.Int, *big.Int, error) {
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, swap.Upstream("fetch gas price", err)
	}
	marked := new(big.Int).Div(new(big.Int).Mul(gasPrice, big.NewInt(feeMarkupNum)), big.NewInt(feeMarkupDen))
	return marked, new(big.Int).Set(marked), nil
}
