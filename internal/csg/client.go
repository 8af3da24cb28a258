package csg

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
)

// Backend status codes.
const (
	staSuccess     = "00"
	staNotLoggedIn = "04"
	staBadAuth     = "05"
)

// Login types recorded on a config entry when the session was created.
const (
	LoginTypePhoneCode = "phone_code"
	LoginTypePassword  = "password"
)

// defaultRequestTimeout bounds a single CSG API round trip.
const defaultRequestTimeout = 30 * time.Second

// Credentials holds the stored session material for a config entry.
type Credentials struct {
	AuthToken string
}

// Client is the remote utility-account session.
//
// VerifyLogin and Logout are network-bound and block until the backend
// responds; callers on a scheduler goroutine must dispatch them to a
// worker (see the worker package).
type Client interface {
	// VerifyLogin reports whether the stored session token is still valid.
	VerifyLogin(ctx context.Context) (bool, error)

	// Logout terminates the remote session using the login type recorded
	// when the session was established.
	Logout(ctx context.Context, loginType string) error
}

// Fetcher retrieves usage figures for the sensor coordinator.
type Fetcher interface {
	// MonthUsage returns the current month's consumption and cost for an
	// electricity account.
	MonthUsage(ctx context.Context, accountNumber string) (kwh float64, cost float64, err error)
}

// Loader constructs a Client from stored credentials.
// The integration holds a Loader so tests can substitute fake clients.
type Loader func(creds Credentials) Client

// Config contains HTTPClient settings.
type Config struct {
	// BaseURL is the root of the CSG API.
	BaseURL string

	// Timeout is the per-request timeout. Zero means the default.
	Timeout time.Duration
}

// HTTPClient implements Client and Fetcher against the CSG HTTP API.
//
// Thread Safety: All methods are safe for concurrent use.
type HTTPClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewLoader returns a Loader producing HTTPClients for the given config.
func NewLoader(cfg Config) Loader {
	return func(creds Credentials) Client {
		return NewHTTPClient(cfg, creds)
	}
}

// NewHTTPClient creates a client bound to one session token.
func NewHTTPClient(cfg Config, creds Credentials) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: creds.AuthToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// response is the CSG API envelope.
type response struct {
	Sta     string          `json:"sta"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// VerifyLogin reports whether the stored session token is still valid.
// A rejected token is not an error; it returns (false, nil).
func (c *HTTPClient) VerifyLogin(ctx context.Context) (bool, error) {
	_, err := c.post(ctx, "/center/user/getUserInfo", nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrInvalidCredentials) {
		return false, nil
	}
	return false, err
}

// Logout terminates the remote session.
func (c *HTTPClient) Logout(ctx context.Context, loginType string) error {
	_, err := c.post(ctx, "/center/user/logout", map[string]any{
		"logonChan": loginType,
	})
	return err
}

// MonthUsage returns the current month's consumption and cost for an account.
func (c *HTTPClient) MonthUsage(ctx context.Context, accountNumber string) (float64, float64, error) {
	data, err := c.post(ctx, "/charge/queryMonthPower", map[string]any{
		"eleCustNumber": accountNumber,
	})
	if err != nil {
		return 0, 0, err
	}

	var usage struct {
		TotalPower float64 `json:"totalPower"`
		TotalCost  float64 `json:"totalElectricity"`
	}
	if err := json.Unmarshal(data, &usage); err != nil {
		return 0, 0, fmt.Errorf("decoding month usage: %w", err)
	}
	return usage.TotalPower, usage.TotalCost, nil
}

// post sends an authenticated JSON request and unwraps the envelope.
func (c *HTTPClient) post(ctx context.Context, path string, payload map[string]any) (json.RawMessage, error) {
	body := []byte("{}")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	const maxResponseSize = 4 << 20 // 4 MB
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("csg: unexpected HTTP status %d", resp.StatusCode)
	}

	var envelope response
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch envelope.Sta {
	case staSuccess:
		return envelope.Data, nil
	case staNotLoggedIn:
		return nil, fmt.Errorf("%w: %s", ErrNotLoggedIn, envelope.Message)
	case staBadAuth:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, envelope.Message)
	default:
		return nil, &APIError{Sta: envelope.Sta, Message: envelope.Message}
	}
}
