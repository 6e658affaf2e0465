// Package twilio is a minimal client for the Twilio Verify v2 REST API,
// covering only challenge creation and verification checks.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://verify.twilio.com"

// Client talks to a single Twilio Verify service.
type Client struct {
	accountSID string
	authToken  string
	serviceSID string
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client for the given account credentials and Verify
// service SID. All three are required.
func New(accountSID, authToken, serviceSID string, opts ...Option) (*Client, error) {
	if accountSID == "" || authToken == "" || serviceSID == "" {
		return nil, fmt.Errorf("twilio: account SID, auth token and verify service SID are required")
	}
	cli := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		serviceSID: serviceSID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the Verify API.
type APIError struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twilio request failed with status %d", e.Status)
	}
	return fmt.Sprintf("twilio request failed (%d): %s", e.Status, e.Message)
}

type verification struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// StartVerification creates an SMS challenge for the phone number and
// returns the verification SID.
func (c *Client) StartVerification(ctx context.Context, phone string) (string, error) {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("Channel", "sms")

	var v verification
	path := "/v2/Services/" + c.serviceSID + "/Verifications"
	if err := c.do(ctx, path, form, &v); err != nil {
		return "", err
	}
	return v.SID, nil
}

// CheckVerification submits a code against the latest challenge for the
// phone number and returns the resulting status, e.g. "approved".
func (c *Client) CheckVerification(ctx context.Context, phone, code string) (string, error) {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("Code", code)

	var v verification
	path := "/v2/Services/" + c.serviceSID + "/VerificationCheck"
	if err := c.do(ctx, path, form, &v); err != nil {
		return "", err
	}
	return v.Status, nil
}

func (c *Client) do(ctx context.Context, path string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
