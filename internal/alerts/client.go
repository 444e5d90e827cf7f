// Package alerts sends best-effort SMS job alerts to artisans through a
// webhook relay. Failures are reported to the caller but must never fail
// the booking that triggered them.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// JobAlert is the out-of-band heads-up sent to an artisan's phone when a
// new job is booked.
type JobAlert struct {
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type"`
	Location    string `json:"location,omitempty"`
}

type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient returns nil when no webhook is configured; callers treat a nil
// client as alerts disabled.
func NewClient(webhookURL string) *Client {
	if webhookURL == "" {
		return nil
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendJobAlert posts the alert to the relay. Returns whether it was sent.
func (c *Client) SendJobAlert(ctx context.Context, alert JobAlert) (bool, error) {
	body, err := json.Marshal(alert)
	if err != nil {
		return false, fmt.Errorf("alerts: marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("alerts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("alerts: send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("alerts: relay returned status %d", resp.StatusCode)
	}

	return true, nil
}
