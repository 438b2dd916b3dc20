package ton

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
)

// stubClient is a scriptable Client for sweeper and reconciler tests.
type stubClient struct {
	jettonWallet string
	resolveErr   error

	sentTo       []string
	sentAmounts  []math.Int
	sentComments []string
	sendErr      error

	transactions []Transaction
	listErr      error
	listCalls    int

	balances []JettonBalance
}

func (c *stubClient) ResolveJettonWallet(ctx context.Context, master, owner string) (string, error) {
	if c.resolveErr != nil {
		return "", c.resolveErr
	}
	return c.jettonWallet, nil
}

func (c *stubClient) SendInternal(ctx context.Context, to string, amountNano math.Int, comment string) (string, error) {
	if c.sendErr != nil {
		return "", c.sendErr
	}
	c.sentTo = append(c.sentTo, to)
	c.sentAmounts = append(c.sentAmounts, amountNano)
	c.sentComments = append(c.sentComments, comment)
	return fmt.Sprintf("tx-%d", len(c.sentTo)), nil
}

func (c *stubClient) RecentTransactions(ctx context.Context, account string, limit int) ([]Transaction, error) {
	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	if limit < len(c.transactions) {
		return c.transactions[:limit], nil
	}
	return c.transactions, nil
}

func (c *stubClient) JettonBalances(ctx context.Context, owner string) ([]JettonBalance, error) {
	return c.balances, nil
}
