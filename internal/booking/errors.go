package booking

import "errors"

// Sentinel errors surfaced to the control API. Wrapping preserves the
// sentinel; the gateway maps each onto an HTTP status.
var (
	ErrInvalidPhase        = errors.New("action not valid in current phase")
	ErrUnknownVehicle      = errors.New("unknown vehicle type")
	ErrNoPickup            = errors.New("pickup not captured yet")
	ErrNoDropoff           = errors.New("dropoff not captured yet")
	ErrActiveRide          = errors.New("a ride is already active; start a new booking first")
	ErrQuoteFailed         = errors.New("could not get a quote")
	ErrAddressNotFound     = errors.New("address not found")
	ErrLocationUnavailable = errors.New("device location unavailable")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5 stars")
	ErrAlreadyRated        = errors.New("ride already rated")
	ErrFeatureDisabled     = errors.New("feature disabled")
)
