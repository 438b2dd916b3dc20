package swap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoute means no liquidity path exists between the requested
	// assets. Expected outcome, not a system fault.
	ErrNoRoute = errors.New("no route found")

	// ErrUpstream marks a failed routing-engine or chain-client call.
	// Retryable by the caller; never auto-retried here outside the
	// bounded settlement poll.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrApprovalFailed means the allowance transaction was included with
	// a failure status. Terminal; the dependent swap is never submitted.
	ErrApprovalFailed = errors.New("approval transaction failed")

	// ErrSwapFailed means the swap transaction was included with a
	// failure status. Terminal; resubmission is the caller's call.
	ErrSwapFailed = errors.New("swap transaction failed")

	// ErrTxNotFound means the settlement poll exhausted its attempts.
	// Ambiguous outcome: the caller may re-poll later.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrReconciliationPending means no matching inbound transfer has
	// been observed yet. Normal intermediate state.
	ErrReconciliationPending = errors.New("reconciliation pending")
)

// Upstream wraps err so it matches ErrUpstream via errors.Is while keeping
// the failing operation and the original error in the chain.
func Upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}
