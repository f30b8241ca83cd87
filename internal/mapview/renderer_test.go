package mapview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
	"github.com/vishalsinha2004/Indora-Customer/internal/routing"
)

type capturePub struct {
	mu     sync.Mutex
	events []Event
}

func (c *capturePub) Publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *capturePub) last(t EventType) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Type == t {
			return c.events[i], true
		}
	}
	return Event{}, false
}

func (c *capturePub) waitFor(t *testing.T, et EventType) Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e, ok := c.last(et); ok {
			return e
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s event", et)
	return Event{}
}

type stubRoutes struct {
	path routing.Path
	err  error
}

func (s *stubRoutes) Route(ctx context.Context, from, to models.Coord) (routing.Path, error) {
	return s.path, s.err
}

func loc(lat, lng float64) *models.Location {
	return &models.Location{Coord: models.Coord{Lat: lat, Lng: lng}}
}

func TestRefreshRouteWithMissingEndpointClears(t *testing.T) {
	pub := &capturePub{}
	r := NewRenderer(&stubRoutes{}, pub, slog.Default())
	r.RefreshRoute(loc(1, 2), nil, nil)
	if _, ok := pub.last(EventRouteClear); !ok {
		t.Fatal("expected route_clear")
	}
}

func TestRefreshRoutePreviewsViaOSRM(t *testing.T) {
	pub := &capturePub{}
	r := NewRenderer(&stubRoutes{path: routing.Path{Geometry: []byte(`{"type":"LineString"}`)}}, pub, slog.Default())
	r.RefreshRoute(loc(22.99, 72.60), loc(22.9978, 72.6009), nil)
	pub.waitFor(t, EventRoute)
	pub.waitFor(t, EventRecenter)
}

func TestRefreshRouteFailureRendersNoRoute(t *testing.T) {
	pub := &capturePub{}
	r := NewRenderer(&stubRoutes{err: errors.New("down")}, pub, slog.Default())
	r.RefreshRoute(loc(1, 1), loc(2, 2), nil)
	pub.waitFor(t, EventRouteClear)
}

func TestQuoteGeometryIsAuthoritative(t *testing.T) {
	pub := &capturePub{}
	// routing client errors, but the quote's geometry must be used anyway
	r := NewRenderer(&stubRoutes{err: errors.New("down")}, pub, slog.Default())
	q := &models.Quote{ID: "r1", RouteGeometry: map[string]any{"type": "LineString"}}
	r.RefreshRoute(loc(1, 1), loc(2, 2), q)
	if _, ok := pub.last(EventRoute); !ok {
		t.Fatal("expected route event from quote geometry")
	}
}
