// Package api implements the HTTP client for the remote billing backend.
// Every call is bearer-token authenticated and tagged with an X-Request-ID.
// Only idempotent GETs are retried on transient network failures; create
// and update calls run exactly once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"freelancebot/internal/logger"
	"freelancebot/internal/telegram/netutil"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRetryAttempts = 2
	defaultRetryBackoff  = time.Second
)

// Client talks to the billing backend. Tokens are per call since each
// Telegram user holds their own credential.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &retryTransport{
				base:       transport,
				maxRetries: defaultRetryAttempts,
				backoff:    defaultRetryBackoff,
			},
		},
	}
}

// retryTransport retries transient network failures for GET requests only.
// Mutating calls must stay single-shot: the conversational flows promise at
// most one create/update per completed flow.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Method != http.MethodGet {
		return base.RoundTrip(req)
	}

	attempts := t.maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := base.RoundTrip(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}
		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// do performs a single API call: marshals in (when non-nil) as JSON,
// decodes a 2xx body into out (when non-nil), and maps non-2xx to *Error.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error(ctx, "api", "api.request.failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.Debug(ctx, "api", "api.request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateClient registers a new billing client.
func (c *Client) CreateClient(ctx context.Context, token string, in ClientInput) (*ClientRecord, error) {
	var res ClientRecord
	if err := c.do(ctx, http.MethodPost, "/clients", token, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListClients returns the user's billing clients.
func (c *Client) ListClients(ctx context.Context, token string) ([]ClientRecord, error) {
	var res []ClientRecord
	if err := c.do(ctx, http.MethodGet, "/clients", token, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateContract creates a contract for a client.
func (c *Client) CreateContract(ctx context.Context, token string, in ContractInput) (*Contract, error) {
	var res Contract
	if err := c.do(ctx, http.MethodPost, "/contracts", token, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateInvoice issues a new invoice.
func (c *Client) CreateInvoice(ctx context.Context, token string, in InvoiceInput) (*Invoice, error) {
	var res Invoice
	if err := c.do(ctx, http.MethodPost, "/invoices", token, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListInvoices returns the user's invoices.
func (c *Client) ListInvoices(ctx context.Context, token string) ([]Invoice, error) {
	var res []Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices", token, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateExpense records a business expense.
func (c *Client) CreateExpense(ctx context.Context, token string, in ExpenseInput) (*Expense, error) {
	var res Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", token, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateGig adds a gig/task entry.
func (c *Client) CreateGig(ctx context.Context, token string, in GigInput) (*Gig, error) {
	var res Gig
	if err := c.do(ctx, http.MethodPost, "/gigs", token, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetHunterProfile fetches the freelancer's hunter profile, if any.
func (c *Client) GetHunterProfile(ctx context.Context, token string) (*HunterProfile, error) {
	var res HunterProfile
	if err := c.do(ctx, http.MethodGet, "/hunter/profile", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateHunterProfile creates or replaces the hunter profile.
func (c *Client) UpdateHunterProfile(ctx context.Context, token string, in HunterProfileInput) (*HunterProfile, error) {
	var res HunterProfile
	if err := c.do(ctx, http.MethodPut, "/hunter/profile", token, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListJobs returns matched job offers for the hunter profile.
func (c *Client) ListJobs(ctx context.Context, token string) ([]Job, error) {
	var res []Job
	if err := c.do(ctx, http.MethodGet, "/hunter/jobs", token, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyToJob submits an application to a matched job.
func (c *Client) ApplyToJob(ctx context.Context, token string, jobID int64) (*Job, error) {
	var res Job
	path := fmt.Sprintf("/hunter/jobs/%d/apply", jobID)
	if err := c.do(ctx, http.MethodPost, path, token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
