package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

func TestReverseShortensDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Error("missing lat/lon")
		}
		w.Write([]byte(`{"display_name":"Maninagar, Ahmedabad, Gujarat, India"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	addr, err := c.Reverse(context.Background(), models.Coord{Lat: 22.99, Lng: 72.60})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if addr != "Maninagar, Ahmedabad" {
		t.Fatalf("addr = %q", addr)
	}
}

func TestSearchUsesFirstCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Maninagar" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`[
			{"lat":"22.9978","lon":"72.6009","display_name":"Maninagar, Ahmedabad, India"},
			{"lat":"0","lon":"0","display_name":"elsewhere"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	cand, err := c.Search(context.Background(), "Maninagar")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if cand.Coord.Lat != 22.9978 || cand.Coord.Lng != 72.6009 {
		t.Fatalf("coord = %+v", cand.Coord)
	}
	if cand.Address != "Maninagar, Ahmedabad" {
		t.Fatalf("address = %q", cand.Address)
	}
}

func TestSearchEmptyIsErrNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Search(context.Background(), "nowhere at all"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("err = %v", err)
	}
}

func TestShortAddressSingleSegment(t *testing.T) {
	if got := ShortAddress("Atlantis"); got != "Atlantis" {
		t.Fatalf("got %q", got)
	}
}
