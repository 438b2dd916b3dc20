// Package ton implements the pre-funded gas sweep flow and its
// correlation-id reconciliation on TON.
package ton

import "cosmossdk.io/math"

// Transaction is an inbound transfer observed on an account, reduced to the
// fields reconciliation needs.
type Transaction struct {
	Hash       string
	From       string
	AmountNano math.Int
	Comment    string
}

// SweepParams describes one sweep request: move Amount of the jetton issued
// by JettonMaster from UserWallet to the treasury.
type SweepParams struct {
	UserWallet    string
	JettonMaster  string
	Amount        math.Int
	CorrelationID string
}

// JettonBalance is one jetton position held by a wallet.
type JettonBalance struct {
	JettonMaster string `json:"jettonMaster"`
	Symbol       string `json:"symbol"`
	Balance      string `json:"balance"`
}
