package mapview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/geo"
	"github.com/vishalsinha2004/Indora-Customer/internal/models"
	"github.com/vishalsinha2004/Indora-Customer/internal/observability"
	"github.com/vishalsinha2004/Indora-Customer/internal/routing"
)

// Renderer is a derived view over the booking session: it owns no state
// transitions, it only projects pickup/dropoff/offer changes into map
// events. Route lookups are asynchronous; a generation counter discards
// results that arrive after the endpoints changed again.
type Renderer struct {
	routes routing.Client
	pub    Publisher
	logger *slog.Logger

	mu  sync.Mutex
	gen int
}

func NewRenderer(routes routing.Client, pub Publisher, logger *slog.Logger) *Renderer {
	return &Renderer{routes: routes, pub: pub, logger: logger}
}

// Recenter moves the viewport, default zoom for a single point.
func (r *Renderer) Recenter(c models.Coord) {
	r.pub.Publish(Event{Type: EventRecenter, Data: RecenterData{Center: c, Zoom: 16}})
}

func (r *Renderer) SetMarker(kind string, loc models.Location) {
	label := ""
	if loc.Address != nil {
		label = *loc.Address
	}
	r.pub.Publish(Event{Type: EventMarker, Data: MarkerData{Kind: kind, Coord: loc.Coord, Label: label}})
}

func (r *Renderer) SetDriver(c models.Coord, name string) {
	r.pub.Publish(Event{Type: EventMarker, Data: MarkerData{Kind: MarkerDriver, Coord: c, Label: name}})
}

// Clear wipes markers and route, back to the empty map.
func (r *Renderer) Clear() {
	r.mu.Lock()
	r.gen++
	r.mu.Unlock()
	r.pub.Publish(Event{Type: EventClearAll})
}

// RefreshRoute recomputes the route overlay for the current endpoints.
// With a quote present its server geometry is authoritative; otherwise
// an OSRM preview is fetched. Any failure renders as no route.
func (r *Renderer) RefreshRoute(pickup, dropoff *models.Location, quote *models.Quote) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	if pickup == nil || dropoff == nil {
		r.pub.Publish(Event{Type: EventRouteClear})
		return
	}

	if quote != nil && quote.RouteGeometry != nil {
		if raw, err := json.Marshal(quote.RouteGeometry); err == nil {
			r.fitViewport(pickup.Coord, dropoff.Coord)
			r.pub.Publish(Event{Type: EventRoute, Data: RouteData{Geometry: raw}})
			return
		}
	}

	go r.preview(gen, pickup.Coord, dropoff.Coord)
}

func (r *Renderer) preview(gen int, from, to models.Coord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path, err := r.routes.Route(ctx, from, to)

	r.mu.Lock()
	stale := gen != r.gen
	r.mu.Unlock()
	if stale {
		return
	}

	if err != nil {
		observability.RouteFailuresTotal.Inc()
		r.logger.Warn("route lookup failed", "error", err)
		r.pub.Publish(Event{Type: EventRouteClear})
		return
	}
	r.fitViewport(from, to)
	r.pub.Publish(Event{Type: EventRoute, Data: RouteData{Geometry: path.Geometry}})
}

func (r *Renderer) fitViewport(a, b models.Coord) {
	span := geo.Haversine(a, b)
	r.pub.Publish(Event{Type: EventRecenter, Data: RecenterData{
		Center: geo.Midpoint(a, b),
		Zoom:   geo.ZoomForSpan(span),
	}})
}
