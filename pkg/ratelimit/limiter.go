// Package ratelimit bounds the number of simultaneous outstanding requests
// against the data source.
//
// The limiter is the loader's only backpressure mechanism: a fixed ceiling on
// in-flight batch requests, not an adaptive scheme. The source API exposes no
// rate-limit headers, so there is nothing to track beyond our own concurrency.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var inflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "rowview_inflight_requests",
	Help: "Number of currently outstanding data-source batch requests",
})

// Limiter caps concurrent in-flight requests at a fixed ceiling.
type Limiter struct {
	slots  chan struct{}
	logger zerolog.Logger
}

// NewLimiter creates a limiter with the given ceiling.
func NewLimiter(limit int, logger zerolog.Logger) (*Limiter, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be >= 1 (got %d)", limit)
	}
	return &Limiter{
		slots:  make(chan struct{}, limit),
		logger: logger,
	}, nil
}

// Limit returns the configured ceiling.
func (l *Limiter) Limit() int {
	return cap(l.slots)
}

// InFlight returns the number of currently held slots.
func (l *Limiter) InFlight() int {
	return len(l.slots)
}

// Acquire blocks until a slot is free or the context is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		inflightRequests.Inc()
		return nil
	case <-ctx.Done():
		l.logger.Debug().Msg("Acquire cancelled before slot became free")
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() {
	select {
	case <-l.slots:
		inflightRequests.Dec()
	default:
		panic("ratelimit: Release without matching Acquire")
	}
}
