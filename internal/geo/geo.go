package geo

import (
	"math"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// Haversine distance in meters
func Haversine(a, b models.Coord) float64 {
	const R = 6371000.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}

// Midpoint is the naive average of two coordinates. Good enough for
// centering a city-scale viewport; not antimeridian safe.
func Midpoint(a, b models.Coord) models.Coord {
	return models.Coord{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// ZoomForSpan picks a web-mercator zoom level that keeps a span of the
// given length (meters) in view. Clamped to the usual tile range.
func ZoomForSpan(meters float64) int {
	if meters <= 0 {
		return 16
	}
	// ~40075km of world width at zoom 0, halving per level.
	zoom := int(math.Floor(math.Log2(40075016.0 / (meters * 2))))
	if zoom < 3 {
		zoom = 3
	}
	if zoom > 18 {
		zoom = 18
	}
	return zoom
}
