package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/backend"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSynchronizerPollsAtCadence(t *testing.T) {
	var mu sync.Mutex
	var fetched, applied int
	fetch := func(ctx context.Context, id string) (backend.RidePayload, error) {
		mu.Lock()
		defer mu.Unlock()
		fetched++
		return backend.RidePayload{Status: "requested"}, nil
	}
	apply := func(id string, p backend.RidePayload) {
		mu.Lock()
		defer mu.Unlock()
		applied++
		if id != "ride-1" {
			t.Errorf("apply got ride %q", id)
		}
	}

	s := NewSynchronizer(fetch, apply, 10*time.Millisecond, testLogger())
	s.Arm("ride-1")
	defer s.Disarm()

	waitFor(t, "repeated polls", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return applied >= 3
	})
	mu.Lock()
	defer mu.Unlock()
	if fetched < applied {
		t.Fatalf("fetched %d < applied %d", fetched, applied)
	}
}

func TestSynchronizerSwallowsFetchErrors(t *testing.T) {
	var mu sync.Mutex
	var fetched, applied int
	fetch := func(ctx context.Context, id string) (backend.RidePayload, error) {
		mu.Lock()
		defer mu.Unlock()
		fetched++
		return backend.RidePayload{}, errors.New("backend flake")
	}
	apply := func(id string, p backend.RidePayload) {
		mu.Lock()
		defer mu.Unlock()
		applied++
	}

	s := NewSynchronizer(fetch, apply, 10*time.Millisecond, testLogger())
	s.Arm("ride-1")
	defer s.Disarm()

	// Errors do not stop the loop and nothing reaches apply.
	waitFor(t, "polling through failures", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fetched >= 3
	})
	mu.Lock()
	defer mu.Unlock()
	if applied != 0 {
		t.Fatalf("applied = %d on failing fetches", applied)
	}
}

func TestSynchronizerDisarmStopsPolling(t *testing.T) {
	var mu sync.Mutex
	var fetched int
	fetch := func(ctx context.Context, id string) (backend.RidePayload, error) {
		mu.Lock()
		defer mu.Unlock()
		fetched++
		return backend.RidePayload{Status: "requested"}, nil
	}

	s := NewSynchronizer(fetch, func(string, backend.RidePayload) {}, 10*time.Millisecond, testLogger())
	s.Arm("ride-1")
	waitFor(t, "first poll", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fetched >= 1
	})
	s.Disarm()
	if s.Armed() {
		t.Fatal("still armed after Disarm")
	}

	// Let a tick that had already won the select drain, then the count
	// must be frozen: no new fetch goes out after Disarm.
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	settled := fetched
	mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fetched != settled {
		t.Fatalf("fetched kept growing after Disarm: %d -> %d", settled, fetched)
	}
}

func TestTickAfterDisarmIssuesNoFetch(t *testing.T) {
	var mu sync.Mutex
	var fetched int
	fetch := func(ctx context.Context, id string) (backend.RidePayload, error) {
		mu.Lock()
		defer mu.Unlock()
		fetched++
		return backend.RidePayload{Status: "requested"}, nil
	}

	s := NewSynchronizer(fetch, func(string, backend.RidePayload) {}, time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	// A tick whose select already fired when Disarm landed must bail
	// out before dispatching.
	cancel()
	s.tick(ctx, gen, "ride-1")

	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	s.tick(context.Background(), gen, "ride-1")

	mu.Lock()
	defer mu.Unlock()
	if fetched != 0 {
		t.Fatalf("fetched = %d after cancellation", fetched)
	}
}

func TestSynchronizerDisarmDiscardsInFlightResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fetch := func(ctx context.Context, id string) (backend.RidePayload, error) {
		once.Do(func() { close(started) })
		<-release
		return backend.RidePayload{Status: "completed"}, nil
	}
	var mu sync.Mutex
	var applied int
	apply := func(id string, p backend.RidePayload) {
		mu.Lock()
		defer mu.Unlock()
		applied++
	}

	s := NewSynchronizer(fetch, apply, 10*time.Millisecond, testLogger())
	s.Arm("ride-1")
	<-started
	s.Disarm()
	close(release)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if applied != 0 {
		t.Fatalf("in-flight response applied after Disarm: %d", applied)
	}
}

func TestSynchronizerRearmReplacesLoop(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	fetch := func(ctx context.Context, id string) (backend.RidePayload, error) {
		return backend.RidePayload{Status: "requested"}, nil
	}
	apply := func(id string, p backend.RidePayload) {
		mu.Lock()
		defer mu.Unlock()
		seen[id]++
	}

	s := NewSynchronizer(fetch, apply, 10*time.Millisecond, testLogger())
	s.Arm("ride-1")
	waitFor(t, "first ride polled", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["ride-1"] >= 1
	})
	s.Arm("ride-2")
	defer s.Disarm()

	waitFor(t, "second ride polled", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["ride-2"] >= 2
	})
	mu.Lock()
	first := seen["ride-1"]
	mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if seen["ride-1"] > first+1 {
		t.Fatalf("replaced loop kept applying: %d -> %d", first, seen["ride-1"])
	}
}
