package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/Vapour-Exchange/decent-service/config"
	"github.com/Vapour-Exchange/decent-service/pkg/routing"
)

var poolsMaxAge time.Duration

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "Show the network's pool graph",
	Long: `Show the selected network's pool graph, served from cache when fresh
enough. Use --max-age 0 to force a refetch from the routing engine.`,
	Run: runPools,
}

func init() {
	rootCmd.AddCommand(poolsCmd)

	poolsCmd.Flags().DurationVar(&poolsMaxAge, "max-age", routing.DefaultPoolMaxAge, "Oldest acceptable cached graph")
}

func runPools(cmd *cobra.Command, args []string) {
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
		s.Suffix = " Loading pool graph..."
		s.Start()
	}

	graph, err := svc.PoolGraph(ctx, network, poolsMaxAge)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(graph, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\nPool graph for %s (fetched %s):\n\n", graph.Network, graph.FetchedAt.Format(time.RFC3339))
	for kind, pools := range graph.Pools {
		fmt.Printf("  %-8s %d pools\n", kind, len(pools))
	}
	fmt.Printf("\n  Total:   %d pools\n\n", graph.Size())
}
