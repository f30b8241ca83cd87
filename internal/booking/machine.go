// Package booking owns the rider-visible lifecycle of one trip: the
// phase machine, the capture of pickup/dropoff points and the polling
// synchronizer that folds server-side order state back in. All session
// mutations go through the machine; collaborators only ever see
// snapshots.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/backend"
	"github.com/vishalsinha2004/Indora-Customer/internal/config"
	"github.com/vishalsinha2004/Indora-Customer/internal/geocode"
	"github.com/vishalsinha2004/Indora-Customer/internal/models"
	"github.com/vishalsinha2004/Indora-Customer/internal/observability"
	"github.com/vishalsinha2004/Indora-Customer/internal/payment"
	"github.com/vishalsinha2004/Indora-Customer/internal/store"
)

// Backend is the slice of the ride API the machine drives.
type Backend interface {
	CreateRide(ctx context.Context, req backend.QuoteRequest) (models.Quote, error)
	GetRide(ctx context.Context, id string) (backend.RidePayload, error)
	VerifyPayment(ctx context.Context, id string, proof backend.PaymentProof) error
	RateDriver(ctx context.Context, id string, r models.Rating) error
}

// Geocoder resolves coordinates to short addresses and free text to
// coordinates.
type Geocoder interface {
	Reverse(ctx context.Context, c models.Coord) (string, error)
	Search(ctx context.Context, text string) (geocode.Candidate, error)
}

// Locator is the platform location API, queried once per capture.
type Locator interface {
	Current(ctx context.Context) (models.Coord, error)
}

// View is the derived map projection; it owns no transitions.
type View interface {
	Recenter(c models.Coord)
	SetMarker(kind string, loc models.Location)
	SetDriver(c models.Coord, name string)
	Clear()
	RefreshRoute(pickup, dropoff *models.Location, quote *models.Quote)
}

type Deps struct {
	Backend      Backend
	Geocoder     Geocoder
	Locator      Locator
	Handoff      payment.Handoff
	View         View
	Store        store.Store
	Logger       *slog.Logger
	Catalog      []models.VehicleType
	Capabilities config.Capabilities
	PollInterval time.Duration
}

type Machine struct {
	backend  Backend
	geocoder Geocoder
	locator  Locator
	handoff  payment.Handoff
	view     View
	store    store.Store
	logger   *slog.Logger
	catalog  []models.VehicleType
	caps     config.Capabilities

	sync *Synchronizer

	mu         sync.Mutex
	s          models.BookingSession
	pickupSeq  int
	dropoffSeq int
}

func NewMachine(d Deps) *Machine {
	m := &Machine{
		backend:  d.Backend,
		geocoder: d.Geocoder,
		locator:  d.Locator,
		handoff:  d.Handoff,
		view:     d.View,
		store:    d.Store,
		logger:   d.Logger,
		catalog:  d.Catalog,
		caps:     d.Capabilities,
		s:        models.BookingSession{Phase: models.PhaseSelection},
	}
	m.sync = NewSynchronizer(d.Backend.GetRide, m.applyPoll, d.PollInterval, d.Logger)
	return m
}

// Restore resumes a persisted trip: phase and order id come back, the
// captured points do not — that asymmetry is deliberate.
func (m *Machine) Restore(ctx context.Context) error {
	rec, ok, err := m.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if !ok {
		return nil
	}
	if !rec.Phase.TripActive() || rec.OrderID == "" {
		// A finished or pre-payment record has nothing to resume.
		return m.store.ClearSession(ctx)
	}

	m.mu.Lock()
	m.s.Phase = rec.Phase
	m.s.OrderID = rec.OrderID
	m.s.Status = models.StatusRequested
	if rec.Phase == models.PhaseMatched {
		m.s.Status = models.StatusAccepted
	}
	m.sync.Arm(rec.OrderID)
	m.mu.Unlock()

	m.logger.Info("resumed active trip", "order_id", rec.OrderID, "phase", string(rec.Phase))
	return nil
}

// Snapshot returns a copy of the session for read-only consumers.
func (m *Machine) Snapshot() models.BookingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

// Catalog returns the configured service catalog, inactive entries
// included (they are display-only).
func (m *Machine) Catalog() []models.VehicleType { return m.catalog }

// SelectVehicle starts a booking for an active catalog entry. Picking
// an inactive entry is a no-op, not an error.
func (m *Machine) SelectVehicle(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Phase != models.PhaseSelection {
		return ErrInvalidPhase
	}
	var vt *models.VehicleType
	for i := range m.catalog {
		if m.catalog[i].ID == id {
			vt = &m.catalog[i]
			break
		}
	}
	if vt == nil {
		return ErrUnknownVehicle
	}
	if !vt.Active {
		return nil
	}
	m.s.VehicleType = vt
	m.setPhase(ctx, models.PhasePickupCapture)
	return nil
}

// ConfirmPickup advances once the rider accepts the captured pickup.
// Capture alone never advances, so the rider can re-pick.
func (m *Machine) ConfirmPickup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Phase != models.PhasePickupCapture {
		return ErrInvalidPhase
	}
	if m.s.Pickup == nil {
		return ErrNoPickup
	}
	m.setPhase(ctx, models.PhaseDropoffCapture)
	return nil
}

// RequestQuote asks the pricing collaborator for an offer. On success
// the machine holds the immutable quote and waits for payment; on
// failure it stays in dropoff capture with no quote and does not retry.
func (m *Machine) RequestQuote(ctx context.Context) error {
	m.mu.Lock()
	if m.s.Phase != models.PhaseDropoffCapture {
		m.mu.Unlock()
		return ErrInvalidPhase
	}
	if m.s.Dropoff == nil {
		m.mu.Unlock()
		return ErrNoDropoff
	}
	if m.s.OrderID != "" {
		// One active order at a time; the old one must be reset first.
		m.mu.Unlock()
		return ErrActiveRide
	}
	req := backend.QuoteRequest{
		PickupLat:      m.s.Pickup.Coord.Lat,
		PickupLng:      m.s.Pickup.Coord.Lng,
		DropoffLat:     m.s.Dropoff.Coord.Lat,
		DropoffLng:     m.s.Dropoff.Coord.Lng,
		PickupAddress:  addressOf(m.s.Pickup),
		DropoffAddress: addressOf(m.s.Dropoff),
		VehicleType:    m.s.VehicleType.ID,
	}
	m.setPhase(ctx, models.PhaseQuoteRequested)
	m.mu.Unlock()

	observability.QuotesRequestedTotal.Inc()
	q, err := m.backend.CreateRide(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Phase != models.PhaseQuoteRequested {
		// The rider reset while the request was in flight.
		return nil
	}
	if err != nil {
		m.s.Quote = nil
		m.setPhase(ctx, models.PhaseDropoffCapture)
		m.logger.Warn("quote request failed", "error", err)
		return fmt.Errorf("%w: %v", ErrQuoteFailed, err)
	}

	m.s.Quote = &q
	m.setPhase(ctx, models.PhasePaymentPending)
	m.view.RefreshRoute(m.s.Pickup, m.s.Dropoff, m.s.Quote)

	ch := m.handoff.Begin(q)
	go m.awaitPayment(q, ch)
	return nil
}

// awaitPayment blocks on the checkout resolution (the handoff always
// resolves, by callback, cancel or timeout) and couples verification
// with the searching transition: no verified payment, no tracked ride.
func (m *Machine) awaitPayment(q models.Quote, ch <-chan payment.Result) {
	res := <-ch
	if res.Err != nil {
		m.paymentFailed(q, res.Err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := m.backend.VerifyPayment(ctx, q.ID, backend.PaymentProof{
		OrderID:   res.Proof.OrderID,
		PaymentID: res.Proof.PaymentID,
		Signature: res.Proof.Signature,
	})
	if err != nil {
		m.paymentFailed(q, fmt.Errorf("verification failed: %w", err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Phase != models.PhasePaymentPending || m.s.Quote == nil || m.s.Quote.ID != q.ID {
		return
	}
	observability.PaymentsAuthorizedTotal.Inc()
	m.s.OrderID = q.ID
	m.s.Status = models.StatusRequested
	m.setPhase(context.Background(), models.PhaseSearching)
	m.sync.Arm(q.ID)
	m.logger.Info("payment verified, tracking ride", "order_id", q.ID)
}

func (m *Machine) paymentFailed(q models.Quote, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Phase != models.PhasePaymentPending || m.s.Quote == nil || m.s.Quote.ID != q.ID {
		return
	}
	observability.PaymentsFailedTotal.Inc()
	m.logger.Warn("payment not authorized", "order_id", q.ID, "error", cause)
	m.s.Quote = nil
	m.setPhase(context.Background(), models.PhaseDropoffCapture)
	m.view.RefreshRoute(m.s.Pickup, m.s.Dropoff, nil)
}

// SubmitRating rates a completed ride, at most once per order. A repeat
// attempt is rejected locally without touching the network.
func (m *Machine) SubmitRating(ctx context.Context, stars int, feedback string) error {
	if !m.caps.Rating {
		return ErrFeatureDisabled
	}
	m.mu.Lock()
	if m.s.Phase == models.PhaseRated || m.s.Rating != nil {
		m.mu.Unlock()
		return ErrAlreadyRated
	}
	if m.s.Phase != models.PhaseCompleted {
		m.mu.Unlock()
		return ErrInvalidPhase
	}
	if stars < 1 || stars > 5 {
		m.mu.Unlock()
		return ErrInvalidRating
	}
	orderID := m.s.OrderID
	m.mu.Unlock()

	rating := models.Rating{Stars: stars, Feedback: feedback}
	if err := m.backend.RateDriver(ctx, orderID, rating); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.OrderID != orderID || m.s.Phase != models.PhaseCompleted {
		return nil
	}
	m.s.Rating = &rating
	m.setPhase(ctx, models.PhaseRated)
	return nil
}

// Reset is the universal back/new-booking edge: disarm polling, drop
// everything captured, clear the durable record, wipe the map.
func (m *Machine) Reset(ctx context.Context) {
	m.mu.Lock()
	m.sync.Disarm()
	if m.s.Phase == models.PhasePaymentPending && m.s.Quote != nil {
		// Resolve any open checkout so its waiter does not linger.
		ref := m.s.Quote.PaymentReference
		go func() { _ = m.handoff.Cancel(ref) }()
	}
	m.pickupSeq++
	m.dropoffSeq++
	m.s = models.BookingSession{Phase: models.PhaseSelection}
	if err := m.store.ClearSession(ctx); err != nil {
		m.logger.Warn("clear persisted session failed", "error", err)
	}
	m.mu.Unlock()

	m.view.Clear()
}

// applyPoll folds one poll payload into the session. Guards, in order:
// the synchronizer generation (checked by the caller), the ride id and
// the trip still being active; then the lowercase normalization and the
// highest-ever-seen status clamp.
func (m *Machine) applyPoll(rideID string, p backend.RidePayload) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rideID != m.s.OrderID || !m.s.Phase.TripActive() {
		observability.StalePollsTotal.Inc()
		return
	}

	status := models.NormalizeStatus(p.Status)
	if status.Rank() > m.s.Status.Rank() {
		m.s.Status = status
		switch status {
		case models.StatusAccepted:
			if m.s.Phase == models.PhaseSearching {
				m.setPhase(context.Background(), models.PhaseMatched)
			}
		case models.StatusCompleted:
			m.setPhase(context.Background(), models.PhaseCompleted)
			m.sync.Disarm()
		}
	}

	// Monotonic driver merge: a value seen once is never nulled out by
	// a later payload that omits it.
	if m.s.Status == models.StatusAccepted {
		if p.DriverLat != nil && p.DriverLng != nil {
			c := models.Coord{Lat: *p.DriverLat, Lng: *p.DriverLng}
			m.s.Driver.Location = &c
			m.view.SetDriver(c, derefString(p.DriverName))
		}
		if p.DriverName != nil {
			m.s.Driver.Name = p.DriverName
		}
	}

	if m.s.Phase == models.PhaseCompleted && p.Rating != nil && m.s.Rating == nil {
		// The server already holds a rating for this ride; the session
		// is pre-rated and local submission stays disabled.
		m.s.Rating = &models.Rating{Stars: *p.Rating, Feedback: derefString(p.Feedback)}
		m.setPhase(context.Background(), models.PhaseRated)
	}
}

// Armed reports whether the synchronizer currently polls a ride.
func (m *Machine) Armed() bool { return m.sync.Armed() }

// setPhase mutates the phase and externalizes {phase, order id}; callers
// hold m.mu. Persistence failure is logged, never fatal to the flow.
func (m *Machine) setPhase(ctx context.Context, to models.Phase) {
	if !CanTransition(m.s.Phase, to) {
		// Transition table violations are programming errors; log loudly.
		m.logger.Error("illegal phase transition", "from", string(m.s.Phase), "to", string(to))
		return
	}
	m.s.Phase = to
	rec := store.SessionRecord{Phase: to, OrderID: m.s.OrderID}
	if err := m.store.SaveSession(ctx, rec); err != nil {
		m.logger.Warn("persist session failed", "error", err)
	}
}

func addressOf(l *models.Location) string {
	if l == nil || l.Address == nil {
		return ""
	}
	return *l.Address
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
