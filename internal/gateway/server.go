// Package gateway is the agent's control surface: a small HTTP API the
// rider UI drives actions through, plus the websocket the map events
// stream out on. It holds no booking state of its own.
package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vishalsinha2004/Indora-Customer/internal/backend"
	"github.com/vishalsinha2004/Indora-Customer/internal/booking"
	"github.com/vishalsinha2004/Indora-Customer/internal/mapview"
	"github.com/vishalsinha2004/Indora-Customer/internal/payment"
	"github.com/vishalsinha2004/Indora-Customer/internal/store"
)

type Deps struct {
	Machine *booking.Machine
	Auth    *backend.Client
	Handoff payment.Handoff
	Store   store.Store
	WSReg   *mapview.WSRegistry
	Logger  *slog.Logger
}

type Server struct {
	machine *booking.Machine
	auth    *backend.Client
	handoff payment.Handoff
	store   store.Store
	wsreg   *mapview.WSRegistry
	logger  *slog.Logger
	router  *mux.Router
}

func NewServer(d Deps) *Server {
	s := &Server{
		machine: d.Machine,
		auth:    d.Auth,
		handoff: d.Handoff,
		store:   d.Store,
		wsreg:   d.WSReg,
		logger:  d.Logger,
		router:  mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/auth/signup", s.handleSignup).Methods("POST")
	s.router.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")
	s.router.HandleFunc("/api/auth/logout", s.handleLogout).Methods("POST")
	s.router.HandleFunc("/api/session", s.handleSession).Methods("GET")

	s.router.HandleFunc("/api/booking/vehicle", s.handleVehicle).Methods("POST")
	s.router.HandleFunc("/api/booking/pickup", s.handlePickup).Methods("POST")
	s.router.HandleFunc("/api/booking/pickup/device", s.handlePickupDevice).Methods("POST")
	s.router.HandleFunc("/api/booking/pickup/confirm", s.handlePickupConfirm).Methods("POST")
	s.router.HandleFunc("/api/booking/dropoff", s.handleDropoff).Methods("POST")
	s.router.HandleFunc("/api/booking/dropoff/search", s.handleDropoffSearch).Methods("POST")
	s.router.HandleFunc("/api/booking/quote", s.handleQuote).Methods("POST")
	s.router.HandleFunc("/api/booking/payment/callback", s.handlePaymentCallback).Methods("POST")
	s.router.HandleFunc("/api/booking/payment/cancel", s.handlePaymentCancel).Methods("POST")
	s.router.HandleFunc("/api/booking/rating", s.handleRating).Methods("POST")
	s.router.HandleFunc("/api/booking/reset", s.handleReset).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWS)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
