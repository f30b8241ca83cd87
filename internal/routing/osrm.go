package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// Path is a drivable route between two points, geometry in GeoJSON form
// ready for a map overlay.
type Path struct {
	Geometry       json.RawMessage
	DistanceMeters float64
	DurationSec    float64
}

// Client is the interface the route renderer consumes.
type Client interface {
	Route(ctx context.Context, from, to models.Coord) (Path, error)
}

// OSRMClient performs route lookups against an OSRM HTTP server.
type OSRMClient struct {
	endpoint string
	http     *http.Client
}

func NewOSRMClient(endpoint string) *OSRMClient {
	return &OSRMClient{endpoint: strings.TrimRight(endpoint, "/"), http: &http.Client{Timeout: 5 * time.Second}}
}

// Route queries /route/v1/driving with full GeoJSON overview geometry.
// OSRM wants lng,lat ordering.
func (o *OSRMClient) Route(ctx context.Context, from, to models.Coord) (Path, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		o.endpoint, from.Lng, from.Lat, to.Lng, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Path{}, err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return Path{}, err
	}
	defer resp.Body.Close()

	var out struct {
		Code   string `json:"code"`
		Routes []struct {
			Geometry json.RawMessage `json:"geometry"`
			Distance float64         `json:"distance"`
			Duration float64         `json:"duration"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Path{}, err
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return Path{}, fmt.Errorf("osrm no route: %v", out.Code)
	}
	r := out.Routes[0]
	return Path{Geometry: r.Geometry, DistanceMeters: r.Distance, DurationSec: r.Duration}, nil
}
