package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// ErrDeviceLocation marks the platform location service declining or
// timing out. Callers treat it as recoverable and fall back to a manual
// pickup.
var ErrDeviceLocation = errors.New("device location unavailable")

// DeviceLocator reads the current position from the host's location
// service over HTTP. The agent runs next to the device, so the endpoint
// is local and the timeout short.
type DeviceLocator struct {
	url  string
	http *http.Client
}

func NewDeviceLocator(url string, timeout time.Duration) *DeviceLocator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DeviceLocator{url: url, http: &http.Client{Timeout: timeout}}
}

func (d *DeviceLocator) Current(ctx context.Context) (models.Coord, error) {
	if d.url == "" {
		return models.Coord{}, fmt.Errorf("%w: no endpoint configured", ErrDeviceLocation)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return models.Coord{}, err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return models.Coord{}, fmt.Errorf("%w: %v", ErrDeviceLocation, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Coord{}, fmt.Errorf("%w: status %d", ErrDeviceLocation, resp.StatusCode)
	}
	var body struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Coord{}, fmt.Errorf("%w: %v", ErrDeviceLocation, err)
	}
	return models.Coord{Lat: body.Lat, Lng: body.Lng}, nil
}
