// Package cmd is the CLI surface over the swap service.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Vapour-Exchange/decent-service/config"
	"github.com/Vapour-Exchange/decent-service/pkg/cache"
	"github.com/Vapour-Exchange/decent-service/pkg/engine/stonfi"
	"github.com/Vapour-Exchange/decent-service/pkg/evm"
	"github.com/Vapour-Exchange/decent-service/pkg/ratelimit"
	"github.com/Vapour-Exchange/decent-service/pkg/routing"
	"github.com/Vapour-Exchange/decent-service/pkg/service"
	"github.com/Vapour-Exchange/decent-service/pkg/solana"
	"github.com/Vapour-Exchange/decent-service/pkg/sweep"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
	"github.com/Vapour-Exchange/decent-service/pkg/ton"
)

// sweepRateInterval bounds how often one wallet may be swept.
const sweepRateInterval = time.Minute

var rootCmd = &cobra.Command{
	Use:   "decent",
	Short: "A CLI for multi-network swap quoting, execution, and settlement",
	Long: `decent quotes and executes token swaps across EVM chains, Solana, and TON,
with cached pool data, settlement verification, and a pre-funded gas sweep
flow for TON jettons.

Examples:
  decent quote 100000000 <input-asset> to <output-asset> --network ton
  decent swap 100000000 <input-asset> to <output-asset> --network evm
  decent approve <token> <spender>
  decent sweep <user-wallet> <jetton-master> <amount>
  decent reconcile`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("network", "n", "ton", "Target network (evm, solana, ton)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	color.Red("\nError: %v\n", err)
}

func printSuccess(message string) {
	color.Green("\n%s\n", message)
}

func newLogger(cfg *config.Config, verbose bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// newService wires the full service from configuration. Networks without
// credentials come up without their execution path; quoting still works for
// every network with a registered engine.
func newService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*service.Service, error) {
	opts := service.Options{Log: log}

	var store cache.Store
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		store = cache.NewRedisStore(client)
		opts.Closers = append(opts.Closers, func() { _ = client.Close() })
	} else {
		store = cache.NewMemoryStore()
	}

	engines := map[swap.Network]swap.Engine{
		swap.NetworkTON: stonfi.New(cfg.StonfiURL, log),
	}
	opts.Provider = routing.NewProvider(store, engines, log)
	opts.Selector = routing.NewSelector(cfg.NetworkFee, cfg.PlatformFee, log)

	if cfg.EVM.RPCUrl != "" {
		client, err := ethclient.DialContext(ctx, cfg.EVM.RPCUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to EVM RPC: %w", err)
		}
		signer, err := evm.NewSigner(cfg.EVM.PrivateKey, cfg.EVM.ChainID)
		if err != nil {
			return nil, err
		}
		opts.EVMSubmitter = evm.NewSubmitter(client, signer, log)
		opts.EVMVerifier = evm.NewVerifier(client, log)
		opts.EVMSigner = signer
		opts.Closers = append(opts.Closers, client.Close)
	}

	if cfg.Solana.RPCUrl != "" {
		client := rpc.New(cfg.Solana.RPCUrl)
		sender, err := solana.NewSender(client, cfg.Solana.PrivateKey, log)
		if err != nil {
			return nil, err
		}
		opts.SolanaSender = sender
		opts.SolanaVerifier = solana.NewVerifier(client, log)
	}

	if cfg.TON.Treasury != "" {
		client, err := ton.NewLiteClient(ctx, cfg.TON.ConfigURL, cfg.TON.SeedWords(), log)
		if err != nil {
			return nil, err
		}
		limiter := ratelimit.NewWalletLimiter(sweepRateInterval, 1)
		opts.Sweeper = ton.NewSweeper(client, limiter, cfg.TON.Treasury, log)
		opts.Reconciler = ton.NewReconciler(client, log)

		ledger, err := sweep.NewLedger(cfg.LedgerPath)
		if err != nil {
			return nil, err
		}
		opts.Ledger = ledger
	}

	return service.New(opts)
}

func parseNetwork(cmd *cobra.Command) (swap.Network, error) {
	name, _ := cmd.Flags().GetString("network")
	switch swap.Network(name) {
	case swap.NetworkEVM, swap.NetworkSolana, swap.NetworkTON:
		return swap.Network(name), nil
	default:
		return "", fmt.Errorf("unknown network %q (expected evm, solana, or ton)", name)
	}
}
