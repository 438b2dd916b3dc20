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
	"github.com/Vapour-Exchange/decent-service/pkg/parser"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <input-asset> to <output-asset>",
	Short: "Price a swap without executing it",
	Long: `Price a swap across the cached routes of the selected network. The amount
is given in the input asset's smallest unit.

Examples:
  decent quote 100000000 <input-asset> to <output-asset> --network ton
  decent quote 5000000 <input-asset> to <output-asset> --network evm --json`,
	Args: cobra.MinimumNArgs(4),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	network, err := parseNetwork(cmd)
	if err != nil {
		printError(err)
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
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, _, err := svc.GetQuote(ctx, network, req.InputAsset, req.OutputAsset, req.AmountIn)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(quote, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	displayQuote(quote)
}

func displayQuote(quote *swap.Quote) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Network:           %s\n", quote.Network)
	fmt.Printf("  From:              %s %s\n", quote.AmountIn.String(), color.YellowString(quote.InputAsset))
	fmt.Printf("  To:                ~%s %s\n", quote.AmountOut.String(), color.YellowString(quote.OutputAsset))
	fmt.Printf("  Minimum Out:       %s\n", quote.MinAmountOut.String())
	fmt.Printf("  Route:             %s\n", quote.RouteKind)
	fmt.Printf("  Slippage:          %d bps\n", quote.SlippageBps)
	fmt.Printf("  Network Fee:       %.2f%%\n", quote.NetworkFee*100)
	fmt.Printf("  Platform Fee:      %.2f%%\n", quote.PlatformFee*100)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
