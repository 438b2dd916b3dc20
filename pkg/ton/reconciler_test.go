package ton

import (
	"context"
	"errors"
	"testing"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

func treasuryTransfer(comment string) Transaction {
	return Transaction{
		Hash:       "hash-" + comment,
		From:       testAddr(2),
		AmountNano: math.NewInt(1_000_000),
		Comment:    comment,
	}
}

func TestReconcileMatchesByComment(t *testing.T) {
	client := &stubClient{transactions: []Transaction{
		treasuryTransfer("sweep-1"),
		treasuryTransfer("sweep-3"),
		{Hash: "plain", From: testAddr(2), AmountNano: math.NewInt(5)},
	}}
	reconciler := NewReconciler(client, zerolog.Nop())

	treasury := testAddr(1)
	results, err := reconciler.Reconcile(context.Background(), []swap.CorrelationRecord{
		{Wallet: treasury, CorrelationID: "sweep-1"},
		{Wallet: treasury, CorrelationID: "sweep-2"},
		{Wallet: treasury, CorrelationID: "sweep-3"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
}

func TestReconcileScansEachAddressOnce(t *testing.T) {
	client := &stubClient{transactions: []Transaction{treasuryTransfer("sweep-1")}}
	reconciler := NewReconciler(client, zerolog.Nop())

	treasury := testAddr(1)
	_, err := reconciler.Reconcile(context.Background(), []swap.CorrelationRecord{
		{Wallet: treasury, CorrelationID: "sweep-1"},
		{Wallet: treasury, CorrelationID: "sweep-2"},
		{Wallet: treasury, CorrelationID: "sweep-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.listCalls)
}

func TestReconcileIsIdempotent(t *testing.T) {
	client := &stubClient{transactions: []Transaction{treasuryTransfer("sweep-1")}}
	reconciler := NewReconciler(client, zerolog.Nop())

	records := []swap.CorrelationRecord{{Wallet: testAddr(1), CorrelationID: "sweep-1"}}
	first, err := reconciler.Reconcile(context.Background(), records)
	require.NoError(t, err)
	second, err := reconciler.Reconcile(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconcileEmptyRecordsSkipsScan(t *testing.T) {
	client := &stubClient{}
	reconciler := NewReconciler(client, zerolog.Nop())

	results, err := reconciler.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, client.listCalls)
}

func TestReconcileScanFailure(t *testing.T) {
	client := &stubClient{listErr: errors.New("lite server down")}
	reconciler := NewReconciler(client, zerolog.Nop())

	_, err := reconciler.Reconcile(context.Background(), []swap.CorrelationRecord{
		{Wallet: testAddr(1), CorrelationID: "sweep-1"},
	})
	require.Error(t, err)
}

func TestCheckPendingSweep(t *testing.T) {
	client := &stubClient{transactions: []Transaction{treasuryTransfer("sweep-1")}}
	reconciler := NewReconciler(client, zerolog.Nop())

	err := reconciler.Check(context.Background(), swap.CorrelationRecord{Wallet: testAddr(1), CorrelationID: "sweep-1"})
	assert.NoError(t, err)

	err = reconciler.Check(context.Background(), swap.CorrelationRecord{Wallet: testAddr(1), CorrelationID: "sweep-9"})
	assert.ErrorIs(t, err, swap.ErrReconciliationPending)
}

func TestScanDepthIsRespected(t *testing.T) {
	client := &stubClient{transactions: []Transaction{
		treasuryTransfer("sweep-1"),
		treasuryTransfer("sweep-2"),
	}}
	reconciler := NewReconciler(client, zerolog.Nop())
	reconciler.SetScanDepth(1)

	results, err := reconciler.Reconcile(context.Background(), []swap.CorrelationRecord{
		{Wallet: testAddr(1), CorrelationID: "sweep-2"},
	})
	require.NoError(t, err)
	assert.False(t, results[0].Success, "older transfer is outside the scan window")
}
