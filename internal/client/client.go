// Package client is an HTTP client for the ticketflow API.
package client

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

	"github.com/rs/zerolog/log"
)

const (
	defaultConfirmAttempts = 3
	defaultBaseDelay       = 500 * time.Millisecond
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ticketflow: %d %s: %s", e.Status, e.Reason, e.Message)
}

func (e *APIError) retryable() bool {
	return e.Status >= http.StatusInternalServerError
}

type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	EventName       string `json:"eventName"`
}

type Purchase struct {
	Success      bool   `json:"success"`
	TicketID     string `json:"ticketId"`
	TicketNumber string `json:"ticketNumber"`
	QRCodeData   string `json:"qrCodeData"`
	Message      string `json:"message"`
}

type ScanInput struct {
	EventID      string `json:"eventId,omitempty"`
	TicketID     string `json:"ticketId,omitempty"`
	TicketNumber string `json:"ticketNumber,omitempty"`
	QRCodeData   string `json:"qrCodeData,omitempty"`
}

type ScanResult struct {
	Result       string     `json:"result"`
	TicketID     string     `json:"ticketId"`
	TicketNumber string     `json:"ticketNumber"`
	EventID      string     `json:"eventId"`
	EventName    string     `json:"eventName"`
	ScannedBy    string     `json:"scannedBy"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
}

type Client struct {
	baseURL   string
	token     string
	hc        *http.Client
	attempts  int
	baseDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithConfirmRetry sets how often ConfirmPurchase is attempted and the delay
// before the first retry. The delay doubles after every failed attempt.
func WithConfirmRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.baseDelay = baseDelay
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		hc:        &http.Client{Timeout: 10 * time.Second},
		attempts:  defaultConfirmAttempts,
		baseDelay: defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreatePaymentIntent is attempted once. A retry could open a second intent.
func (c *Client) CreatePaymentIntent(ctx context.Context, eventID string) (*PaymentIntent, error) {
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/payments/intents", map[string]string{"eventId": eventID}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ConfirmPurchase retries transport failures and 5xx responses with
// exponential backoff. Confirmation is idempotent on the server.
func (c *Client) ConfirmPurchase(ctx context.Context, paymentIntentID string) (*Purchase, error) {
	body := map[string]string{"paymentIntentId": paymentIntentID}
	backOff := c.baseDelay

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		var out Purchase
		err = c.do(ctx, http.MethodPost, "/api/purchases/confirm", body, &out)
		if err == nil {
			return &out, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return nil, err
		}
		if attempt == c.attempts {
			break
		}

		log.Warn().Err(err).Int("attempt", attempt).Str("payment_intent_id", paymentIntentID).Msg("confirm failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backOff):
			backOff *= 2
		}
	}

	return nil, fmt.Errorf("confirm purchase after %d attempts: %w", c.attempts, err)
}

func (c *Client) ScanTicket(ctx context.Context, in ScanInput) (*ScanResult, error) {
	var out ScanResult
	if err := c.do(ctx, http.MethodPost, "/api/scans", in, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: json.Marshal: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Reason == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: json.Decode: %w", err)
	}

	return nil
}
