package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Vapour-Exchange/decent-service/config"
)

var approveCmd = &cobra.Command{
	Use:   "approve <token> <spender>",
	Short: "Grant a spender an unlimited ERC-20 allowance",
	Long: `Grant the spender an unlimited allowance on the token from the service
wallet and wait for inclusion. Useful for pre-approving a router so swaps
skip the per-swap approval.`,
	Args: cobra.ExactArgs(2),
	Run:  runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)
}

func runApprove(cmd *cobra.Command, args []string) {
	token, spender := args[0], args[1]

	verbose, _ := cmd.Flags().GetBool("verbose")

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
	s.Suffix = " Submitting approval..."
	s.Start()

	hash, err := svc.ApproveMax(ctx, token, spender)
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	printSuccess("Approval confirmed!")
	fmt.Printf("  Transaction: %s\n", color.CyanString(hash))
}
