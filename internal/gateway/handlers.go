package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vishalsinha2004/Indora-Customer/internal/backend"
	"github.com/vishalsinha2004/Indora-Customer/internal/booking"
	"github.com/vishalsinha2004/Indora-Customer/internal/mapview"
	"github.com/vishalsinha2004/Indora-Customer/internal/models"
	"github.com/vishalsinha2004/Indora-Customer/internal/payment"
)

type coordBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.auth.Signup(r.Context(), body.Username, body.Email, body.Password); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.SaveToken(r.Context(), token); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLogout drops the token and the whole booking along with it; a
// logged-out rider has no trip to come back to.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.machine.Reset(r.Context())
	if err := s.store.ClearToken(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"session": s.machine.Snapshot(),
		"catalog": s.machine.Catalog(),
		"polling": s.machine.Armed(),
	})
}

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.machine.SelectVehicle(r.Context(), body.ID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handlePickup(w http.ResponseWriter, r *http.Request) {
	var body coordBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.machine.CapturePickup(r.Context(), models.Coord{Lat: body.Lat, Lng: body.Lng}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handlePickupDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.machine.UseDeviceLocation(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handlePickupConfirm(w http.ResponseWriter, r *http.Request) {
	if err := s.machine.ConfirmPickup(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handleDropoff(w http.ResponseWriter, r *http.Request) {
	var body coordBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.machine.CaptureDropoff(r.Context(), models.Coord{Lat: body.Lat, Lng: body.Lng}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handleDropoffSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.machine.SearchDropoff(r.Context(), body.Query); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if err := s.machine.RequestQuote(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

// handlePaymentCallback is the provider-native success callback relayed
// by the UI. Resolution goes through the handoff; the machine hears the
// outcome on the channel it is already waiting on.
func (s *Server) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	proof := payment.Proof{OrderID: body.OrderID, PaymentID: body.PaymentID, Signature: body.Signature}
	if err := s.handoff.Resolve(proof); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handlePaymentCancel covers the rider closing the checkout dialog.
func (s *Server) handlePaymentCancel(w http.ResponseWriter, r *http.Request) {
	snap := s.machine.Snapshot()
	if snap.Quote == nil {
		s.writeError(w, payment.ErrNoPending)
		return
	}
	if err := s.handoff.Cancel(snap.Quote.PaymentReference); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.machine.SubmitRating(r.Context(), body.Rating, body.Feedback); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.machine.Reset(r.Context())
	s.writeSession(w)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS attaches a viewer. The first frame is the current session so
// a reconnecting UI can redraw without waiting for the next change.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	// The hello precedes registration: until Add the conn has a single
	// writer, so the fan-out can never interleave with this frame.
	if err := conn.WriteJSON(mapview.Event{Type: mapview.EventSession, Data: s.machine.Snapshot()}); err != nil {
		conn.Close()
		return
	}
	remove := s.wsreg.Add(conn)
	go func() {
		defer remove()
		for {
			// the viewer sends nothing meaningful; reads only detect close
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) writeSession(w http.ResponseWriter) {
	s.writeJSON(w, map[string]any{"session": s.machine.Snapshot()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", "error", err)
	}
}

// writeError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is a 502: the agent itself is fine, a collaborator is not.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, booking.ErrInvalidPhase),
		errors.Is(err, booking.ErrActiveRide),
		errors.Is(err, booking.ErrAlreadyRated):
		status = http.StatusConflict
	case errors.Is(err, booking.ErrUnknownVehicle),
		errors.Is(err, booking.ErrAddressNotFound),
		errors.Is(err, payment.ErrNoPending):
		status = http.StatusNotFound
	case errors.Is(err, booking.ErrNoPickup),
		errors.Is(err, booking.ErrNoDropoff),
		errors.Is(err, booking.ErrInvalidRating),
		errors.Is(err, payment.ErrBadSignature),
		errors.Is(err, backend.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrFeatureDisabled):
		status = http.StatusForbidden
	case errors.Is(err, backend.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, booking.ErrQuoteFailed),
		errors.Is(err, booking.ErrLocationUnavailable):
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
