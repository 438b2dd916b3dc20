package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Vapour-Exchange/decent-service/config"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [wallet:correlation-id ...]",
	Short: "Match expected sweeps against treasury transfers",
	Long: `Check which expected sweeps have landed in the treasury. With no
arguments, every pending sweep tracked by the ledger is checked and matches
are marked confirmed. Pairs can also be supplied explicitly as
wallet:correlation-id.`,
	Run: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) {
	records := make([]swap.CorrelationRecord, 0, len(args))
	for _, arg := range args {
		wallet, correlationID, found := strings.Cut(arg, ":")
		if !found || wallet == "" || correlationID == "" {
			printError(fmt.Errorf("invalid pair %q (expected wallet:correlation-id)", arg))
			os.Exit(1)
		}
		records = append(records, swap.CorrelationRecord{Wallet: wallet, CorrelationID: correlationID})
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
		s.Suffix = " Scanning for transfers..."
		s.Start()
	}

	results, err := svc.ReconcileSweeps(ctx, records)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(results) == 0 {
		fmt.Println("\nNothing to reconcile.")
		return
	}
	fmt.Println()
	for _, result := range results {
		if result.Success {
			fmt.Printf("  %s %s\n", color.GreenString("confirmed"), result.CorrelationID)
		} else {
			fmt.Printf("  %s   %s\n", color.YellowString("pending"), result.CorrelationID)
		}
	}
	fmt.Println()
}
