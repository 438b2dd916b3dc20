// Package parser turns the CLI's "<amount> <asset> to <asset>" syntax into
// a quote request.
package parser

import (
	"fmt"
	"regexp"

	"cosmossdk.io/math"
)

// QuoteRequest is a parsed swap phrase. Amounts are in the input asset's
// smallest unit; asset identifiers keep their case because mints and
// contract addresses are case-sensitive.
type QuoteRequest struct {
	AmountIn    math.Int
	InputAsset  string
	OutputAsset string
}

// Pattern: <amount> <input-asset> to <output-asset>. The "swap" prefix is
// tolerated so "swap 100 X to Y" and "100 X to Y" both parse.
var swapPattern = regexp.MustCompile(`^(?i:swap\s+)?(\d+)\s+(\S+)\s+(?i:to)\s+(\S+)$`)

// ParseSwapCommand parses phrases like "100000000 <input> to <output>".
func ParseSwapCommand(command string) (*QuoteRequest, error) {
	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: '<amount> <asset> to <asset>' with the amount in the input asset's smallest unit")
	}

	amount, ok := math.NewIntFromString(matches[1])
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", matches[1])
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	return &QuoteRequest{
		AmountIn:    amount,
		InputAsset:  matches[2],
		OutputAsset: matches[3],
	}, nil
}
