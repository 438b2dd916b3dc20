package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cosmossdk.io/math"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Vapour-Exchange/decent-service/config"
	"github.com/Vapour-Exchange/decent-service/pkg/ton"
)

var sweepCorrelationID string

var sweepCmd = &cobra.Command{
	Use:   "sweep <user-wallet> <jetton-master> <amount>",
	Short: "Prepare a jetton sweep into the treasury",
	Long: `Pre-fund the user wallet with gas and produce the unsigned jetton
transfer moving the amount (smallest unit) into the treasury. The transfer
is printed for external signing; track its arrival with 'decent reconcile'.`,
	Args: cobra.ExactArgs(3),
	Run:  runSweep,
}

var sweepBalancesCmd = &cobra.Command{
	Use:   "balances <wallet>",
	Short: "List the jetton balances a sweep could move",
	Args:  cobra.ExactArgs(1),
	Run:   runSweepBalances,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(sweepBalancesCmd)

	sweepCmd.Flags().StringVar(&sweepCorrelationID, "correlation-id", "", "Correlation id to embed (generated when omitted)")
}

func runSweep(cmd *cobra.Command, args []string) {
	userWallet, jettonMaster := args[0], args[1]
	amount, ok := math.NewIntFromString(args[2])
	if !ok || !amount.IsPositive() {
		printError(fmt.Errorf("invalid amount %q", args[2]))
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	log := newLogger(cfg, verbose)

	ctx := context.Background()
	svc, err := newService(ctx, cfg, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer svc.Close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Preparing sweep..."
		s.Start()
	}

	unsigned, err := svc.RequestSweep(ctx, ton.SweepParams{
		UserWallet:    userWallet,
		JettonMaster:  jettonMaster,
		Amount:        amount,
		CorrelationID: sweepCorrelationID,
	})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(unsigned, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	printSuccess("Sweep prepared. Sign and submit the transfer below.")
	fmt.Printf("  Correlation ID:  %s\n", color.CyanString(unsigned.CorrelationID))
	fmt.Printf("  To:              %s\n", unsigned.To)
	fmt.Printf("  Attached (nano): %s\n", unsigned.Value.String())
	fmt.Printf("  Body (base64):   %s\n", base64.StdEncoding.EncodeToString(unsigned.Body))
}

func runSweepBalances(cmd *cobra.Command, args []string) {
	wallet := args[0]

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	log := newLogger(cfg, verbose)

	ctx := context.Background()
	svc, err := newService(ctx, cfg, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer svc.Close()

	balances, err := svc.JettonBalances(ctx, wallet)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(balances, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(balances) == 0 {
		fmt.Println("\nNo jetton balances found.")
		return
	}
	fmt.Println()
	for _, b := range balances {
		fmt.Printf("  %-12s %s  (%s)\n", b.Symbol, b.Balance, b.JettonMaster)
	}
	fmt.Println()
}
