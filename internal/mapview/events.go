// Package mapview turns booking state into render-ready map events. The
// agent never draws; a UI subscribes over websocket and applies events
// the way the original Leaflet layer applied props.
package mapview

import (
	"encoding/json"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

type EventType string

const (
	EventRecenter     EventType = "recenter"
	EventMarker       EventType = "marker"
	EventMarkerClear  EventType = "marker_clear"
	EventRoute        EventType = "route"
	EventRouteClear   EventType = "route_clear"
	EventClearAll     EventType = "clear_all"
	EventCheckout     EventType = "checkout_open"
	EventCheckoutDone EventType = "checkout_close"
	EventSession      EventType = "session"
)

const (
	MarkerPickup  = "pickup"
	MarkerDropoff = "dropoff"
	MarkerDriver  = "driver"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

type RecenterData struct {
	Center models.Coord `json:"center"`
	Zoom   int          `json:"zoom"`
}

type MarkerData struct {
	Kind  string       `json:"kind"`
	Coord models.Coord `json:"coord"`
	Label string       `json:"label,omitempty"`
}

type RouteData struct {
	Geometry json.RawMessage `json:"geometry"`
}

// CheckoutData mirrors the provider-native checkout options object.
type CheckoutData struct {
	Key      string `json:"key"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	OrderID  string `json:"order_id"`
}

// Publisher delivers events to whoever is rendering.
type Publisher interface {
	Publish(e Event)
}
