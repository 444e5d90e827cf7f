// Package paystack implements the payment processor client. Amounts cross
// the wire in minor currency units (pesewas/kobo).
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var ErrUpstream = errors.New("payment processor request failed")

// InitResult is the redirect handle returned by transaction initialization.
type InitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the processor's view of a transaction.
type VerifyResult struct {
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ToMinorUnits converts a major-unit amount to integer minor units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type initRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    InitResult `json:"data"`
}

// InitializeTransaction requests a payment authorization handle. The amount
// is given in major units and converted here.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amount float64, currency, callbackURL string, metadata map[string]string) (*InitResult, error) {
	payload := initRequest{
		Email:       email,
		Amount:      ToMinorUnits(amount),
		Currency:    currency,
		CallbackURL: callbackURL,
		Metadata:    metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("paystack: marshal initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("paystack: build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: initialize returned status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed initResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode initialize response: %v", ErrUpstream, err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, parsed.Message)
	}

	return &parsed.Data, nil
}

type verifyResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    VerifyResult `json:"data"`
}

// VerifyTransaction queries the processor for the transaction state.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("paystack: build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify returned status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode verify response: %v", ErrUpstream, err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, parsed.Message)
	}

	return &parsed.Data, nil
}
