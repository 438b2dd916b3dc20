package ton

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Vapour-Exchange/decent-service/pkg/ratelimit"
)

func testAddr(fill byte) string {
	data := make([]byte, 32)
	for i := range data {
		data[i] = fill
	}
	return address.NewAddress(0, 0, data).String()
}

func TestRequestSweepPrefundsGasWithCorrelationComment(t *testing.T) {
	client := &stubClient{jettonWallet: testAddr(3)}
	sweeper := NewSweeper(client, ratelimit.NewWalletLimiter(time.Hour, 1), testAddr(1), zerolog.Nop())

	userWallet := testAddr(2)
	unsigned, err := sweeper.RequestSweep(context.Background(), SweepParams{
		UserWallet:    userWallet,
		JettonMaster:  testAddr(4),
		Amount:        math.NewInt(1_000_000),
		CorrelationID: "sweep-42",
	})
	require.NoError(t, err)

	require.Len(t, client.sentTo, 1)
	assert.Equal(t, userWallet, client.sentTo[0])
	assert.Equal(t, int64(60_000_000), client.sentAmounts[0].Int64())
	assert.Equal(t, "sweep-42", client.sentComments[0])

	assert.Equal(t, client.jettonWallet, unsigned.To)
	assert.Equal(t, int64(50_000_000), unsigned.Value.Int64())
	assert.Equal(t, "sweep-42", unsigned.CorrelationID)
	assert.NotEmpty(t, unsigned.Body)
}

func TestRequestSweepGeneratesCorrelationID(t *testing.T) {
	client := &stubClient{jettonWallet: testAddr(3)}
	sweeper := NewSweeper(client, ratelimit.NewWalletLimiter(time.Hour, 1), testAddr(1), zerolog.Nop())

	unsigned, err := sweeper.RequestSweep(context.Background(), SweepParams{
		UserWallet:   testAddr(2),
		JettonMaster: testAddr(4),
		Amount:       math.NewInt(1),
	})
	require.NoError(t, err)

	_, err = uuid.Parse(unsigned.CorrelationID)
	assert.NoError(t, err, "generated correlation id should be a uuid")
	assert.Equal(t, unsigned.CorrelationID, client.sentComments[0], "stipend must carry the same id")
}

func TestRequestSweepBodyIsJettonTransfer(t *testing.T) {
	client := &stubClient{jettonWallet: testAddr(3)}
	sweeper := NewSweeper(client, ratelimit.NewWalletLimiter(time.Hour, 1), testAddr(1), zerolog.Nop())

	unsigned, err := sweeper.RequestSweep(context.Background(), SweepParams{
		UserWallet:    testAddr(2),
		JettonMaster:  testAddr(4),
		Amount:        math.NewInt(777),
		CorrelationID: "sweep-7",
	})
	require.NoError(t, err)

	body, err := cell.FromBOC(unsigned.Body)
	require.NoError(t, err)
	parser := body.BeginParse()

	op, err := parser.LoadUInt(32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0f8a7ea5), op)

	_, err = parser.LoadUInt(64) // query id
	require.NoError(t, err)
	amount, err := parser.LoadBigCoins()
	require.NoError(t, err)
	assert.Equal(t, int64(777), amount.Int64())
}

func TestRequestSweepRateLimited(t *testing.T) {
	client := &stubClient{jettonWallet: testAddr(3)}
	sweeper := NewSweeper(client, ratelimit.NewWalletLimiter(time.Hour, 1), testAddr(1), zerolog.Nop())

	params := SweepParams{
		UserWallet:   testAddr(2),
		JettonMaster: testAddr(4),
		Amount:       math.NewInt(1),
	}

	_, err := sweeper.RequestSweep(context.Background(), params)
	require.NoError(t, err)

	_, err = sweeper.RequestSweep(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Len(t, client.sentTo, 1, "no second stipend may be sent")

	// A different wallet is limited independently.
	params.UserWallet = testAddr(9)
	_, err = sweeper.RequestSweep(context.Background(), params)
	assert.NoError(t, err)
}

func TestRequestSweepPrefundFailure(t *testing.T) {
	client := &stubClient{jettonWallet: testAddr(3), sendErr: errors.New("wallet down")}
	sweeper := NewSweeper(client, ratelimit.NewWalletLimiter(time.Hour, 1), testAddr(1), zerolog.Nop())

	_, err := sweeper.RequestSweep(context.Background(), SweepParams{
		UserWallet:   testAddr(2),
		JettonMaster: testAddr(4),
		Amount:       math.NewInt(1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gas pre-fund failed")
}
