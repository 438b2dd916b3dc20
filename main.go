package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Vapour-Exchange/decent-service/cmd"
)

func main() {
	// .env is a development convenience; production sets the environment.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
