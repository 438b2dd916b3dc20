// Package ratelimit throttles per-wallet operations.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WalletLimiter enforces an independent token-bucket limit per wallet.
// Limiters for wallets never seen again are retained; the sweep flow
// touches a bounded set of treasury-adjacent wallets, so the map stays
// small.
type WalletLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewWalletLimiter allows one operation per interval with the given burst
// per wallet.
func NewWalletLimiter(interval time.Duration, burst int) *WalletLimiter {
	return &WalletLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(interval),
		burst:    burst,
	}
}

// Allow reports whether the wallet may proceed now.
func (l *WalletLimiter) Allow(wallet string) bool {
	return l.limiterFor(wallet).Allow()
}

func (l *WalletLimiter) limiterFor(wallet string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[wallet]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[wallet] = limiter
	}
	return limiter
}
