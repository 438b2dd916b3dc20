package cmd

import (
	"bufio"
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
)

var noConfirm bool

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <input-asset> to <output-asset>",
	Short: "Quote and execute a token swap",
	Long: `Quote a swap, confirm it, then submit it and wait for settlement. The
amount is given in the input asset's smallest unit. Execution requires the
selected network's credentials to be configured.

Examples:
  decent swap 5000000 <input-asset> to <output-asset> --network evm
  decent swap 100000000 <input-asset> to <output-asset> --network solana --yes`,
	Args: cobra.MinimumNArgs(4),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
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
	quote, route, err := svc.GetQuote(ctx, network, req.InputAsset, req.OutputAsset, req.AmountIn)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		displayQuote(quote)
		if !noConfirm && !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
		s.Suffix = " Executing swap..."
		s.Start()
	}

	result, err := svc.ExecuteQuoted(ctx, quote, route)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	printSuccess("Swap settled!")
	fmt.Printf("  Transaction: %s\n", color.CyanString(result.TxRef))
	fmt.Printf("  Received:    %s %s\n", result.Amount.String(), color.YellowString(quote.OutputAsset))
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
