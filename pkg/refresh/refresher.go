// Package refresh keeps cached pool graphs warm with a background loop so
// interactive quotes rarely pay the full refetch cost.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vapour-Exchange/decent-service/pkg/routing"
	"github.com/Vapour-Exchange/decent-service/pkg/swap"
)

const (
	// DefaultInterval is how often the loop wakes up.
	DefaultInterval = 15 * time.Minute

	// DefaultMaxAge is the graph age tolerated by the background path. It
	// sits below the swap-path tolerance so the loop refreshes graphs
	// before any request has to.
	DefaultMaxAge = 30 * time.Minute
)

// Refresher periodically re-warms the pool graph cache for a set of
// networks through the route provider.
type Refresher struct {
	provider *routing.Provider
	networks []swap.Network
	interval time.Duration
	maxAge   time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}

	log zerolog.Logger
}

func NewRefresher(provider *routing.Provider, networks []swap.Network, log zerolog.Logger) *Refresher {
	return &Refresher{
		provider: provider,
		networks: networks,
		interval: DefaultInterval,
		maxAge:   DefaultMaxAge,
		log:      log.With().Str("component", "refresh").Logger(),
	}
}

// SetSchedule overrides the wake interval and tolerated graph age.
func (r *Refresher) SetSchedule(interval, maxAge time.Duration) {
	r.interval = interval
	r.maxAge = maxAge
}

// Start launches the refresh loop. The first pass runs immediately.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("refresher is already running")
	}
	r.running = true
	r.stopChan = make(chan struct{})
	r.done = make(chan struct{})

	go r.loop(ctx)
	return nil
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopChan)
	done := r.done
	r.mu.Unlock()

	<-done
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	r.refreshAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

// refreshAll re-warms each network's graph independently; one network's
// engine being down must not starve the others.
func (r *Refresher) refreshAll(ctx context.Context) {
	for _, network := range r.networks {
		graph, err := r.provider.PoolGraph(ctx, network, r.maxAge)
		if err != nil {
			r.log.Warn().Err(err).Str("network", string(network)).Msg("pool graph refresh failed")
			continue
		}
		r.log.Debug().
			Str("network", string(network)).
			Int("pools", graph.Size()).
			Time("fetchedAt", graph.FetchedAt).
			Msg("pool graph warm")
	}
}
