// Package geocode wraps the Nominatim reverse/forward geocoder.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// ErrNoResults is returned when a forward search matches nothing.
var ErrNoResults = errors.New("address not found")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Reverse resolves coordinates to a short address: the first two
// comma-separated segments of Nominatim's display_name.
func (c *Client) Reverse(ctx context.Context, coord models.Coord) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%.6f", coord.Lat))
	q.Set("lon", fmt.Sprintf("%.6f", coord.Lng))

	var out struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.get(ctx, "/reverse", q, &out); err != nil {
		return "", err
	}
	if out.DisplayName == "" {
		return "", ErrNoResults
	}
	return ShortAddress(out.DisplayName), nil
}

// Candidate is one forward-search hit.
type Candidate struct {
	Coord   models.Coord
	Address string
}

// Search forward-geocodes free text and returns the first candidate,
// which Nominatim orders by relevance.
func (c *Client) Search(ctx context.Context, text string) (Candidate, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", text)

	var out []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := c.get(ctx, "/search", q, &out); err != nil {
		return Candidate{}, err
	}
	if len(out) == 0 {
		return Candidate{}, ErrNoResults
	}
	first := out[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return Candidate{}, fmt.Errorf("bad latitude %q: %w", first.Lat, err)
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return Candidate{}, fmt.Errorf("bad longitude %q: %w", first.Lon, err)
	}
	return Candidate{
		Coord:   models.Coord{Lat: lat, Lng: lng},
		Address: ShortAddress(first.DisplayName),
	}, nil
}

// ShortAddress keeps the first two comma segments of a display name,
// the same truncation the original map layer applied.
func ShortAddress(displayName string) string {
	parts := strings.SplitN(displayName, ",", 3)
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(parts[0])
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	// Nominatim's usage policy wants an identifying agent.
	req.Header.Set("User-Agent", "indora-customer-agent")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
