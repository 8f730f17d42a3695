package events

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// SignatureHeader holds "sha256=" and the hex HMAC of the body when the
	// sink has a secret.
	SignatureHeader = "X-Crud-Signature"
	EventHeader     = "X-Crud-Event"
	DeliveryHeader  = "X-Crud-Delivery"
)

// WebhookSink posts each event as JSON to one endpoint.
type WebhookSink struct {
	endpoint string
	secret   []byte
	http     *resty.Client
}

// NewWebhookSink returns nil when c has no endpoint. The timeout defaults to
// five seconds.
func NewWebhookSink(c WebhookConfig) *WebhookSink {
	if c.Endpoint == "" {
		return nil
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "crudkit-events")
	return &WebhookSink{endpoint: c.Endpoint, secret: []byte(c.Secret), http: rc}
}

// Sign returns the SignatureHeader value for body.
func Sign(secret, body []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether sig is the signature of body under secret.
func Verify(secret, body []byte, sig string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(sig))
}

func (s *WebhookSink) Emit(ctx context.Context, e Event) error {
	body, err := Encode(e)
	if err != nil {
		return err
	}
	req := s.http.R().
		SetContext(ctx).
		SetBody(body).
		SetHeader(EventHeader, e.Name).
		SetHeader(DeliveryHeader, e.ID)
	if len(s.secret) > 0 {
		req.SetHeader(SignatureHeader, Sign(s.secret, body))
	}
	resp, err := req.Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("events: webhook %s: %w", e.Name, err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("events: webhook %s: %s", e.Name, resp.Status())
	}
	return nil
}
