package booking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/backend"
	"github.com/vishalsinha2004/Indora-Customer/internal/observability"
)

const fetchTimeout = 10 * time.Second

// Synchronizer polls the ride resource at a fixed cadence while a trip
// is active and hands each payload to the apply callback. Exactly one
// loop runs at a time; arming replaces, disarming stops.
//
// Fetches run on their own context so that Disarm discards an in-flight
// response instead of aborting the request: the generation check below
// is the real gate.
type Synchronizer struct {
	fetch    func(ctx context.Context, id string) (backend.RidePayload, error)
	apply    func(id string, p backend.RidePayload)
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewSynchronizer(
	fetch func(ctx context.Context, id string) (backend.RidePayload, error),
	apply func(id string, p backend.RidePayload),
	interval time.Duration,
	logger *slog.Logger,
) *Synchronizer {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Synchronizer{fetch: fetch, apply: apply, interval: interval, logger: logger}
}

// Arm starts polling rideID, replacing any previous loop.
func (s *Synchronizer) Arm(rideID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, s.gen, rideID)
}

// Disarm stops the current loop, if any. Idempotent.
func (s *Synchronizer) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// Armed reports whether a poll loop is live.
func (s *Synchronizer) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Synchronizer) run(ctx context.Context, gen uint64, rideID string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, gen, rideID)
		}
	}
}

// tick fetches once. Failures are logged and swallowed with no backoff;
// the next tick simply tries again.
func (s *Synchronizer) tick(ctx context.Context, gen uint64, rideID string) {
	// The ticker case can win the select race against cancellation; no
	// fetch may go out once Disarm has returned.
	s.mu.Lock()
	cancelled := ctx.Err() != nil || gen != s.gen
	s.mu.Unlock()
	if cancelled {
		return
	}

	observability.PollTicksTotal.Inc()

	fctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	p, err := s.fetch(fctx, rideID)
	if err != nil {
		observability.PollErrorsTotal.Inc()
		s.logger.Warn("ride poll failed", "order_id", rideID, "error", err)
		return
	}

	s.mu.Lock()
	stale := ctx.Err() != nil || gen != s.gen
	s.mu.Unlock()
	if stale {
		observability.StalePollsTotal.Inc()
		return
	}
	s.apply(rideID, p)
}
