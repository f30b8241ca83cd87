package models

import "strings"

type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location pairs coordinates with an optionally resolved short address.
// Coordinates are fixed once captured; Address lags behind and stays nil
// until reverse geocoding finishes (or fails over to UnknownAddress).
type Location struct {
	Coord   Coord   `json:"coord"`
	Address *string `json:"address"`
}

// UnknownAddress is substituted when reverse geocoding fails.
const UnknownAddress = "Unknown Location"

// VehicleType is one entry of the configured service catalog.
// Inactive entries are shown but never start a booking.
type VehicleType struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Quote is the server-computed offer for a candidate trip. It is created
// once per booking attempt and never mutated; ID doubles as the ride id
// used for polling and mutation calls afterwards.
type Quote struct {
	ID               string  `json:"id"`
	Price            float64 `json:"price"`
	DistanceKm       float64 `json:"distance_km"`
	RouteGeometry    any     `json:"route_geometry"`
	PaymentReference string  `json:"razorpay_order_id"`
}

// RideStatus is the server-owned order status, normalized to lowercase.
type RideStatus string

const (
	StatusRequested RideStatus = "requested"
	StatusAccepted  RideStatus = "accepted"
	StatusCompleted RideStatus = "completed"
)

// statusRank orders statuses for the highest-ever-seen clamp. Unknown
// statuses rank below requested so they can never move the phase.
var statusRank = map[RideStatus]int{
	StatusRequested: 1,
	StatusAccepted:  2,
	StatusCompleted: 3,
}

// NormalizeStatus lowercases a wire status so "Accepted" and "accepted"
// compare equal.
func NormalizeStatus(s string) RideStatus {
	return RideStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Rank returns the monotonic ordering of a status, 0 for unknown values.
func (s RideStatus) Rank() int { return statusRank[s] }

// DriverSnapshot is filled opportunistically as polling reveals fields.
// Fields are independently nullable; a known value is never erased by a
// later absence.
type DriverSnapshot struct {
	Location *Coord  `json:"location"`
	Name     *string `json:"name"`
}

type Rating struct {
	Stars    int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// Phase is the client-visible state of a booking session.
type Phase string

const (
	PhaseSelection      Phase = "selection"
	PhasePickupCapture  Phase = "pickup_capture"
	PhaseDropoffCapture Phase = "dropoff_capture"
	PhaseQuoteRequested Phase = "quote_requested"
	PhasePaymentPending Phase = "payment_pending"
	PhaseSearching      Phase = "searching"
	PhaseMatched        Phase = "matched"
	PhaseCompleted      Phase = "completed"
	PhaseRated          Phase = "rated"
)

// TripActive reports whether the phase implies a live server-side ride
// that should be polled.
func (p Phase) TripActive() bool {
	return p == PhaseSearching || p == PhaseMatched
}

// BookingSession is the aggregate owned by the state machine. Only Phase
// and OrderID survive a restart; everything else is re-captured.
type BookingSession struct {
	VehicleType *VehicleType   `json:"vehicle_type"`
	Pickup      *Location      `json:"pickup"`
	Dropoff     *Location      `json:"dropoff"`
	Quote       *Quote         `json:"quote"`
	OrderID     string         `json:"order_id"`
	Status      RideStatus     `json:"status"`
	Driver      DriverSnapshot `json:"driver"`
	Rating      *Rating        `json:"rating"`
	Phase       Phase          `json:"phase"`
}
