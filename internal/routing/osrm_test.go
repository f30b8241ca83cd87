package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

func TestRouteParsesGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/route/v1/driving/") {
			t.Errorf("path = %s", r.URL.Path)
		}
		// lng,lat ordering in the path segment
		if !strings.Contains(r.URL.Path, "72.600000,22.990000") {
			t.Errorf("expected lng,lat ordering, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"type":"LineString","coordinates":[[72.6,22.99],[72.6009,22.9978]]},"distance":4200,"duration":600}]}`))
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	p, err := c.Route(context.Background(), models.Coord{Lat: 22.99, Lng: 72.60}, models.Coord{Lat: 22.9978, Lng: 72.6009})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if p.DistanceMeters != 4200 || p.DurationSec != 600 {
		t.Fatalf("path = %+v", p)
	}
	if !strings.Contains(string(p.Geometry), "LineString") {
		t.Fatalf("geometry = %s", p.Geometry)
	}
}

func TestRouteNotOkIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	if _, err := c.Route(context.Background(), models.Coord{}, models.Coord{}); err == nil {
		t.Fatal("expected error for NoRoute")
	}
}

type countingClient struct {
	calls int
	path  Path
}

func (c *countingClient) Route(ctx context.Context, from, to models.Coord) (Path, error) {
	c.calls++
	return c.path, nil
}

func TestCachedClientMemoizesPerPair(t *testing.T) {
	inner := &countingClient{path: Path{DistanceMeters: 1}}
	c := NewCachedClient(inner, time.Minute)
	a := models.Coord{Lat: 1, Lng: 2}
	b := models.Coord{Lat: 3, Lng: 4}

	for i := 0; i < 3; i++ {
		if _, err := c.Route(context.Background(), a, b); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d", inner.calls)
	}
	if _, err := c.Route(context.Background(), b, a); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner calls after reversed pair = %d", inner.calls)
	}
}
