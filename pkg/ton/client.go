package ton

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/jetton"
	"github.com/xssnick/tonutils-go/ton/wallet"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

// Client is the chain capability the sweeper and reconciler rely on. The
// lite-server backed implementation satisfies it; tests use a stub.
type Client interface {
	// ResolveJettonWallet returns the jetton wallet address holding owner's
	// balance of the jetton issued by master.
	ResolveJettonWallet(ctx context.Context, master, owner string) (string, error)
	// SendInternal transfers amountNano nanotons from the service gas wallet
	// to the destination, carrying comment in the message body.
	SendInternal(ctx context.Context, to string, amountNano math.Int, comment string) (string, error)
	// RecentTransactions lists the newest inbound transfers on account,
	// newest first, up to limit.
	RecentTransactions(ctx context.Context, account string, limit int) ([]Transaction, error)
	// JettonBalances lists the jetton positions held by owner.
	JettonBalances(ctx context.Context, owner string) ([]JettonBalance, error)
}

const (
	// DefaultConfigURL is the public mainnet lite-server config.
	DefaultConfigURL = "https://ton.org/global.config.json"

	// defaultIndexerURL serves aggregated jetton balances, which lite
	// servers cannot answer in one call.
	defaultIndexerURL = "https://tonapi.io"
)

// LiteClient talks to the chain through a lite-server pool and to the
// indexer for balance aggregation.
type LiteClient struct {
	api        ton.APIClientWrapped
	gasWallet  *wallet.Wallet
	indexerURL string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewLiteClient connects to the lite-server network at configURL and derives
// the service gas wallet from its seed phrase.
func NewLiteClient(ctx context.Context, configURL string, seedWords []string, log zerolog.Logger) (*LiteClient, error) {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("failed to connect to lite servers: %w", err)
	}
	api := ton.NewAPIClient(pool).WithRetry()

	gasWallet, err := wallet.FromSeed(api, seedWords, wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("failed to derive gas wallet: %w", err)
	}

	return &LiteClient{
		api:        api,
		gasWallet:  gasWallet,
		indexerURL: defaultIndexerURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "ton-client").Logger(),
	}, nil
}

// GasWallet returns the service gas wallet address.
func (c *LiteClient) GasWallet() string {
	return c.gasWallet.WalletAddress().String()
}

func (c *LiteClient) ResolveJettonWallet(ctx context.Context, master, owner string) (string, error) {
	masterAddr, err := address.ParseAddr(master)
	if err != nil {
		return "", fmt.Errorf("invalid jetton master address: %w", err)
	}
	ownerAddr, err := address.ParseAddr(owner)
	if err != nil {
		return "", fmt.Errorf("invalid owner address: %w", err)
	}

	masterClient := jetton.NewJettonMasterClient(c.api, masterAddr)
	jettonWallet, err := masterClient.GetJettonWallet(ctx, ownerAddr)
	if err != nil {
		return "", swap.Upstream("resolve jetton wallet", err)
	}
	return jettonWallet.Address().String(), nil
}

func (c *LiteClient) SendInternal(ctx context.Context, to string, amountNano math.Int, comment string) (string, error) {
	dest, err := address.ParseAddr(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination address: %w", err)
	}
	body, err := wallet.CreateCommentCell(comment)
	if err != nil {
		return "", fmt.Errorf("failed to build comment cell: %w", err)
	}

	msg := wallet.SimpleMessage(dest, tlb.FromNanoTON(amountNano.BigInt()), body)
	tx, _, err := c.gasWallet.SendWaitTransaction(ctx, msg)
	if err != nil {
		return "", swap.Upstream("send internal transfer", err)
	}

	hash := hex.EncodeToString(tx.Hash)
	c.log.Info().
		Str("to", to).
		Str("amountNano", amountNano.String()).
		Str("tx", hash).
		Msg("internal transfer sent")
	return hash, nil
}

func (c *LiteClient) RecentTransactions(ctx context.Context, account string, limit int) ([]Transaction, error) {
	addr, err := address.ParseAddr(account)
	if err != nil {
		return nil, fmt.Errorf("invalid account address: %w", err)
	}

	block, err := c.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, swap.Upstream("fetch masterchain info", err)
	}
	acc, err := c.api.GetAccount(ctx, block, addr)
	if err != nil {
		return nil, swap.Upstream("fetch account", err)
	}
	if !acc.IsActive {
		return nil, nil
	}

	list, err := c.api.ListTransactions(ctx, addr, uint32(limit), acc.LastTxLT, acc.LastTxHash)
	if err != nil {
		return nil, swap.Upstream("list transactions", err)
	}

	// ListTransactions returns oldest first; reconciliation wants newest first.
	out := make([]Transaction, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		tx := list[i]
		if tx.IO.In == nil || tx.IO.In.MsgType != tlb.MsgTypeInternal {
			continue
		}
		in := tx.IO.In.AsInternal()
		out = append(out, Transaction{
			Hash:       hex.EncodeToString(tx.Hash),
			From:       in.SrcAddr.String(),
			AmountNano: math.NewIntFromBigInt(in.Amount.Nano()),
			Comment:    in.Comment(),
		})
	}
	return out, nil
}

// jettonBalancesResponse mirrors the indexer's account jettons payload.
type jettonBalancesResponse struct {
	Balances []struct {
		Balance string `json:"balance"`
		Jetton  struct {
			Address string `json:"address"`
			Symbol  string `json:"symbol"`
		} `json:"jetton"`
	} `json:"balances"`
}

func (c *LiteClient) JettonBalances(ctx context.Context, owner string) ([]JettonBalance, error) {
	url := fmt.Sprintf("%s/v2/accounts/%s/jettons", c.indexerURL, owner)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build balances request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, swap.Upstream("fetch jetton balances", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, swap.Upstream("fetch jetton balances",
			fmt.Errorf("indexer returned status %d: %s", resp.StatusCode, string(body)))
	}

	var decoded jettonBalancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode balances response: %w", err)
	}

	balances := make([]JettonBalance, 0, len(decoded.Balances))
	for _, b := range decoded.Balances {
		balances = append(balances, JettonBalance{
			JettonMaster: b.Jetton.Address,
			Symbol:       b.Jetton.Symbol,
			Balance:      b.Balance,
		})
	}
	return balances, nil
}
