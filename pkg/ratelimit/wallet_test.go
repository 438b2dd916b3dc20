package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowPerWallet(t *testing.T) {
	limiter := NewWalletLimiter(time.Hour, 1)

	assert.True(t, limiter.Allow("wallet-a"))
	assert.False(t, limiter.Allow("wallet-a"))

	// Other wallets have their own bucket.
	assert.True(t, limiter.Allow("wallet-b"))
}

func TestBurst(t *testing.T) {
	limiter := NewWalletLimiter(time.Hour, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("wallet-a"), "call %d", i)
	}
	assert.False(t, limiter.Allow("wallet-a"))
}

func TestRefill(t *testing.T) {
	limiter := NewWalletLimiter(5*time.Millisecond, 1)

	assert.True(t, limiter.Allow("wallet-a"))
	assert.False(t, limiter.Allow("wallet-a"))

	time.Sleep(10 * time.Millisecond)
	assert.True(t, limiter.Allow("wallet-a"))
}
