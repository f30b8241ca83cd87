package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/geocode"
	"github.com/vishalsinha2004/Indora-Customer/internal/mapview"
	"github.com/vishalsinha2004/Indora-Customer/internal/models"
	"github.com/vishalsinha2004/Indora-Customer/internal/observability"
)

const reverseTimeout = 10 * time.Second

// CapturePickup records a tapped pickup point. The point lands
// immediately with no address; the short address arrives asynchronously
// and a later tap wins over an earlier resolution.
func (m *Machine) CapturePickup(ctx context.Context, c models.Coord) error {
	m.mu.Lock()
	if m.s.Phase != models.PhasePickupCapture {
		m.mu.Unlock()
		return ErrInvalidPhase
	}
	loc := models.Location{Coord: c}
	m.s.Pickup = &loc
	m.pickupSeq++
	seq := m.pickupSeq
	m.mu.Unlock()

	m.view.Recenter(c)
	m.view.SetMarker(mapview.MarkerPickup, loc)
	go m.resolvePickupAddress(seq, c)
	return nil
}

// UseDeviceLocation captures the pickup from the platform location API.
// Denial or timeout is recoverable; the rider falls back to tapping.
func (m *Machine) UseDeviceLocation(ctx context.Context) error {
	if !m.caps.DeviceLocation {
		return ErrFeatureDisabled
	}
	m.mu.Lock()
	if m.s.Phase != models.PhasePickupCapture {
		m.mu.Unlock()
		return ErrInvalidPhase
	}
	m.mu.Unlock()

	c, err := m.locator.Current(ctx)
	if err != nil {
		m.logger.Warn("device location unavailable", "error", err)
		return fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return m.CapturePickup(ctx, c)
}

// CaptureDropoff records a tapped dropoff point and refreshes the route
// preview between the two ends.
func (m *Machine) CaptureDropoff(ctx context.Context, c models.Coord) error {
	m.mu.Lock()
	if m.s.Phase != models.PhaseDropoffCapture {
		m.mu.Unlock()
		return ErrInvalidPhase
	}
	loc := models.Location{Coord: c}
	m.s.Dropoff = &loc
	m.dropoffSeq++
	seq := m.dropoffSeq
	pickup := m.s.Pickup
	m.mu.Unlock()

	m.view.SetMarker(mapview.MarkerDropoff, loc)
	m.view.RefreshRoute(pickup, &loc, nil)
	go m.resolveDropoffAddress(seq, c)
	return nil
}

// SearchDropoff resolves free text to a dropoff point. The forward
// geocoder returns at most one candidate; no results is a user-visible
// miss, not a fault.
func (m *Machine) SearchDropoff(ctx context.Context, text string) error {
	if !m.caps.ForwardSearch {
		return ErrFeatureDisabled
	}
	m.mu.Lock()
	if m.s.Phase != models.PhaseDropoffCapture {
		m.mu.Unlock()
		return ErrInvalidPhase
	}
	m.mu.Unlock()

	cand, err := m.geocoder.Search(ctx, text)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("dropoff search: %w", err)
	}

	m.mu.Lock()
	if m.s.Phase != models.PhaseDropoffCapture {
		m.mu.Unlock()
		return nil
	}
	addr := cand.Address
	loc := models.Location{Coord: cand.Coord, Address: &addr}
	m.s.Dropoff = &loc
	m.dropoffSeq++
	pickup := m.s.Pickup
	m.mu.Unlock()

	m.view.Recenter(cand.Coord)
	m.view.SetMarker(mapview.MarkerDropoff, loc)
	m.view.RefreshRoute(pickup, &loc, nil)
	return nil
}

func (m *Machine) resolvePickupAddress(seq int, c models.Coord) {
	addr := m.reverse(c)
	m.mu.Lock()
	if seq != m.pickupSeq || m.s.Pickup == nil {
		m.mu.Unlock()
		return
	}
	m.s.Pickup.Address = &addr
	loc := *m.s.Pickup
	m.mu.Unlock()
	m.view.SetMarker(mapview.MarkerPickup, loc)
}

func (m *Machine) resolveDropoffAddress(seq int, c models.Coord) {
	addr := m.reverse(c)
	m.mu.Lock()
	if seq != m.dropoffSeq || m.s.Dropoff == nil {
		m.mu.Unlock()
		return
	}
	m.s.Dropoff.Address = &addr
	loc := *m.s.Dropoff
	m.mu.Unlock()
	m.view.SetMarker(mapview.MarkerDropoff, loc)
}

// reverse never fails upward: an unresolvable point keeps its
// coordinates and gets the placeholder label.
func (m *Machine) reverse(c models.Coord) string {
	ctx, cancel := context.WithTimeout(context.Background(), reverseTimeout)
	defer cancel()
	addr, err := m.geocoder.Reverse(ctx, c)
	if err != nil {
		observability.GeocodeFailuresTotal.Inc()
		m.logger.Warn("reverse geocode failed", "lat", c.Lat, "lng", c.Lng, "error", err)
		return models.UnknownAddress
	}
	return addr
}
