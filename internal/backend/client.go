// Package backend is the REST client for the Indora ride API. Every
// request carries the bearer token when one is present; any 401 evicts
// the stored token (re-login is left to the user, never automatic).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrBadRequest   = errors.New("backend rejected request")
)

// TokenSource supplies and evicts the persisted access token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Evict(ctx context.Context) error
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
	}
}

// QuoteRequest mirrors the POST rides/ body.
type QuoteRequest struct {
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DropoffLat     float64 `json:"dropoff_lat"`
	DropoffLng     float64 `json:"dropoff_lng"`
	PickupAddress  string  `json:"pickup_address"`
	DropoffAddress string  `json:"dropoff_address"`
	VehicleType    string  `json:"vehicle_type"`
}

// RidePayload mirrors GET rides/{id}/. Optional fields stay nil when the
// server has nothing to reveal yet.
type RidePayload struct {
	Status     string   `json:"status"`
	DriverLat  *float64 `json:"driver_lat"`
	DriverLng  *float64 `json:"driver_lng"`
	DriverName *string  `json:"driver_name"`
	Rating     *int     `json:"rating"`
	Feedback   *string  `json:"feedback"`
}

// PaymentProof carries the three Razorpay fields the verify endpoint expects.
type PaymentProof struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.post(ctx, "auth/signup/", body, nil)
}

// Login returns the access token on success; persisting it is the
// caller's job.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Access string `json:"access"`
	}
	if err := c.post(ctx, "auth/login/", body, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", fmt.Errorf("%w: empty access token", ErrBadRequest)
	}
	return resp.Access, nil
}

func (c *Client) CreateRide(ctx context.Context, req QuoteRequest) (models.Quote, error) {
	var q models.Quote
	if err := c.post(ctx, "rides/", req, &q); err != nil {
		return models.Quote{}, err
	}
	if q.ID == "" {
		return models.Quote{}, fmt.Errorf("%w: quote missing id", ErrBadRequest)
	}
	return q, nil
}

func (c *Client) GetRide(ctx context.Context, id string) (RidePayload, error) {
	var p RidePayload
	err := c.do(ctx, http.MethodGet, "rides/"+id+"/", nil, &p)
	return p, err
}

func (c *Client) VerifyPayment(ctx context.Context, id string, proof PaymentProof) error {
	return c.post(ctx, "rides/"+id+"/verify_payment/", proof, nil)
}

func (c *Client) RateDriver(ctx context.Context, id string, r models.Rating) error {
	return c.post(ctx, "rides/"+id+"/rate_driver/", r, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, err := c.tokens.Token(ctx); err == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil {
			_ = c.tokens.Evict(ctx)
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s -> %d: %s", ErrBadRequest, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
