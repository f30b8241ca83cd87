package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/mapview"
	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

type nopPub struct {
	mu     sync.Mutex
	events []mapview.Event
}

func (n *nopPub) Publish(e mapview.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

const testSecret = "test_secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newCheckout(pub *nopPub, timeout time.Duration) *RazorpayCheckout {
	return NewRazorpayCheckout("rzp_test_key", testSecret, "INR", timeout, pub, slog.Default())
}

func TestBeginEmitsCheckoutDescriptor(t *testing.T) {
	pub := &nopPub{}
	c := newCheckout(pub, time.Minute)
	c.Begin(models.Quote{ID: "r1", Price: 120.5, PaymentReference: "order_abc"})

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 1 || pub.events[0].Type != mapview.EventCheckout {
		t.Fatalf("events = %+v", pub.events)
	}
	data := pub.events[0].Data.(mapview.CheckoutData)
	if data.Amount != 12050 || data.Currency != "INR" || data.OrderID != "order_abc" {
		t.Fatalf("data = %+v", data)
	}
}

func TestResolveWithValidSignature(t *testing.T) {
	pub := &nopPub{}
	c := newCheckout(pub, time.Minute)
	ch := c.Begin(models.Quote{ID: "r1", Price: 10, PaymentReference: "order_ok"})

	proof := Proof{OrderID: "order_ok", PaymentID: "pay_1", Signature: sign("order_ok", "pay_1")}
	if err := c.Resolve(proof); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	res := <-ch
	if res.Err != nil || res.Proof != proof {
		t.Fatalf("result = %+v", res)
	}
}

func TestResolveWithBadSignatureFailsAuthorization(t *testing.T) {
	pub := &nopPub{}
	c := newCheckout(pub, time.Minute)
	ch := c.Begin(models.Quote{ID: "r1", Price: 10, PaymentReference: "order_bad"})

	err := c.Resolve(Proof{OrderID: "order_bad", PaymentID: "pay_1", Signature: "forged"})
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v", err)
	}
	res := <-ch
	if !errors.Is(res.Err, ErrBadSignature) {
		t.Fatalf("result = %+v", res)
	}
}

func TestCancelResolvesPending(t *testing.T) {
	pub := &nopPub{}
	c := newCheckout(pub, time.Minute)
	ch := c.Begin(models.Quote{ID: "r1", Price: 10, PaymentReference: "order_c"})

	if err := c.Cancel("order_c"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res := <-ch; !errors.Is(res.Err, ErrCancelled) {
		t.Fatalf("result = %+v", res)
	}
	// Second cancel has nothing to act on.
	if err := c.Cancel("order_c"); !errors.Is(err, ErrNoPending) {
		t.Fatalf("second cancel err = %v", err)
	}
}

func TestAbandonedCheckoutTimesOut(t *testing.T) {
	pub := &nopPub{}
	c := newCheckout(pub, 20*time.Millisecond)
	ch := c.Begin(models.Quote{ID: "r1", Price: 10, PaymentReference: "order_t"})

	select {
	case res := <-ch:
		if !errors.Is(res.Err, ErrTimeout) {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout never fired")
	}
}
