package ton

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

// DefaultScanDepth is how many recent transactions one reconciliation pass
// inspects per address.
const DefaultScanDepth = 20

// Reconciler matches expected inbound transfers against each record's
// destination address. It is read-only: running it any number of times
// changes nothing on chain; all lifecycle state lives with the caller.
type Reconciler struct {
	client    Client
	scanDepth int
	log       zerolog.Logger
}

func NewReconciler(client Client, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		client:    client,
		scanDepth: DefaultScanDepth,
		log:       log.With().Str("component", "reconciler").Logger(),
	}
}

// SetScanDepth overrides the number of transactions inspected per address.
func (r *Reconciler) SetScanDepth(depth int) {
	r.scanDepth = depth
}

// Reconcile reports, for each record, whether a transfer carrying its
// correlation id as comment has arrived at the record's wallet. A transfer
// outside the scan window stays unmatched; callers retry on the next pass.
// Results keep the input order; each address is scanned at most once.
func (r *Reconciler) Reconcile(ctx context.Context, records []swap.CorrelationRecord) ([]swap.SweepResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	scanned := make(map[string]map[string]bool)
	results := make([]swap.SweepResult, 0, len(records))
	for _, record := range records {
		seen, ok := scanned[record.Wallet]
		if !ok {
			var err error
			seen, err = r.observedComments(ctx, record.Wallet)
			if err != nil {
				return nil, err
			}
			scanned[record.Wallet] = seen
		}
		results = append(results, swap.SweepResult{
			CorrelationID: record.CorrelationID,
			Success:       seen[record.CorrelationID],
		})
	}
	return results, nil
}

// Check resolves a single record, reporting ErrReconciliationPending when no
// matching transfer has been observed yet.
func (r *Reconciler) Check(ctx context.Context, record swap.CorrelationRecord) error {
	seen, err := r.observedComments(ctx, record.Wallet)
	if err != nil {
		return err
	}
	if !seen[record.CorrelationID] {
		return fmt.Errorf("%w: %s", swap.ErrReconciliationPending, record.CorrelationID)
	}
	return nil
}

func (r *Reconciler) observedComments(ctx context.Context, account string) (map[string]bool, error) {
	txs, err := r.client.RecentTransactions(ctx, account, r.scanDepth)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.Comment == "" {
			continue
		}
		seen[tx.Comment] = true
	}
	r.log.Debug().Str("account", account).Int("scanned", len(txs)).Int("commented", len(seen)).Msg("account scan complete")
	return seen, nil
}
