// Package payment bridges an accepted quote to the Razorpay checkout.
// The agent does not talk to Razorpay's servers itself: it hands the
// checkout descriptor to the UI, waits for the signed proof (or a
// cancel, or the bounded wait expiring), and verifies the signature
// locally before the proof is forwarded to the backend.
package payment

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/razorpay/razorpay-go/utils"

	"github.com/vishalsinha2004/Indora-Customer/internal/mapview"
	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

var (
	ErrCancelled    = errors.New("payment cancelled")
	ErrTimeout      = errors.New("payment authorization timed out")
	ErrBadSignature = errors.New("payment signature mismatch")
	ErrNoPending    = errors.New("no pending checkout")
)

// Proof is a successful authorization as delivered by the checkout.
type Proof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Result resolves a pending authorization exactly once.
type Result struct {
	Proof Proof
	Err   error
}

// Handoff is the async authorization contract the state machine drives.
type Handoff interface {
	// Begin opens the checkout for a quote and returns the channel the
	// single Result will arrive on.
	Begin(q models.Quote) <-chan Result
	// Resolve delivers the provider callback for a pending checkout.
	Resolve(p Proof) error
	// Cancel abandons the pending checkout for the given order id.
	Cancel(orderID string) error
}

type pendingCheckout struct {
	ch    chan Result
	timer *time.Timer
}

// RazorpayCheckout implements Handoff against the Razorpay browser
// checkout. The user closing the dialog produces no provider callback,
// so every Begin also arms a timeout that resolves as a failure.
type RazorpayCheckout struct {
	keyID    string
	secret   string
	currency string
	timeout  time.Duration
	pub      mapview.Publisher
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingCheckout
}

func NewRazorpayCheckout(keyID, secret, currency string, timeout time.Duration, pub mapview.Publisher, logger *slog.Logger) *RazorpayCheckout {
	return &RazorpayCheckout{
		keyID:    keyID,
		secret:   secret,
		currency: currency,
		timeout:  timeout,
		pub:      pub,
		logger:   logger,
		pending:  make(map[string]*pendingCheckout),
	}
}

func (r *RazorpayCheckout) Begin(q models.Quote) <-chan Result {
	ch := make(chan Result, 1)
	ref := q.PaymentReference

	r.mu.Lock()
	if old, ok := r.pending[ref]; ok {
		// A re-opened checkout supersedes the previous wait.
		old.timer.Stop()
		old.ch <- Result{Err: ErrCancelled}
		delete(r.pending, ref)
	}
	p := &pendingCheckout{ch: ch}
	p.timer = time.AfterFunc(r.timeout, func() { r.resolve(ref, Result{Err: ErrTimeout}) })
	r.pending[ref] = p
	r.mu.Unlock()

	r.pub.Publish(mapview.Event{Type: mapview.EventCheckout, Data: mapview.CheckoutData{
		Key:      r.keyID,
		Amount:   MinorUnits(q.Price),
		Currency: r.currency,
		OrderID:  ref,
	}})
	return ch
}

func (r *RazorpayCheckout) Resolve(p Proof) error {
	params := map[string]interface{}{
		"razorpay_order_id":   p.OrderID,
		"razorpay_payment_id": p.PaymentID,
	}
	if !utils.VerifyPaymentSignature(params, p.Signature, r.secret) {
		r.logger.Warn("checkout signature mismatch", "order_id", p.OrderID)
		r.resolve(p.OrderID, Result{Err: ErrBadSignature})
		return ErrBadSignature
	}
	if !r.resolve(p.OrderID, Result{Proof: p}) {
		return ErrNoPending
	}
	return nil
}

func (r *RazorpayCheckout) Cancel(orderID string) error {
	if !r.resolve(orderID, Result{Err: ErrCancelled}) {
		return ErrNoPending
	}
	return nil
}

// resolve completes a pending checkout at most once.
func (r *RazorpayCheckout) resolve(orderID string, res Result) bool {
	r.mu.Lock()
	p, ok := r.pending[orderID]
	if ok {
		delete(r.pending, orderID)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	p.timer.Stop()
	p.ch <- res
	r.pub.Publish(mapview.Event{Type: mapview.EventCheckoutDone})
	return true
}

// MinorUnits converts a decimal price to the provider's integer minor
// units (paise for INR).
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
