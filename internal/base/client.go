// Package base provides the HTTP client that performs the Azure DevOps
// connection handshake.
package base

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/infra"
)

const (
	// DefaultTimeout for the handshake request
	DefaultTimeout = 30 * time.Second

	// MaxConcurrentRequests limits parallel handshakes
	MaxConcurrentRequests = 5

	// ConnectionDataPath is probed to verify the organization URL and token
	ConnectionDataPath = "/_apis/connectionData"

	maxErrorBody = 200
)

// Identity is the user the token authenticated as.
type Identity struct {
	ID                  string `json:"id"`
	Descriptor          string `json:"descriptor,omitempty"`
	ProviderDisplayName string `json:"providerDisplayName,omitempty"`
}

// ConnectionData is the subset of the connectionData response the server uses.
type ConnectionData struct {
	AuthenticatedUser Identity `json:"authenticatedUser"`
	InstanceID        string   `json:"instanceId"`
	DeploymentID      string   `json:"deploymentId,omitempty"`
}

// HandshakeError describes a probe that reached the server but was rejected.
type HandshakeError struct {
	StatusCode int
	Body       string
}

func (e *HandshakeError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("handshake rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("handshake rejected with status %d: %s", e.StatusCode, e.Body)
}

// Client probes Azure DevOps organizations. It makes exactly one attempt per
// Probe call; callers decide whether to try again.
type Client struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	CircuitBreaker *infra.CircuitBreaker
	Semaphore      chan struct{}
	UserAgent      string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithTimeout replaces the HTTP client with one using timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.HTTPClient = newHTTPClient(d)
	}
}

// WithCircuitBreaker sets a custom circuit breaker
func WithCircuitBreaker(cb *infra.CircuitBreaker) ClientOption {
	return func(client *Client) {
		client.CircuitBreaker = cb
	}
}

// WithUserAgent sets the User-Agent header sent with every probe
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		client.UserAgent = ua
	}
}

// NewClient creates a new handshake client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient:     newHTTPClient(DefaultTimeout),
		Logger:         slog.Default(),
		CircuitBreaker: infra.NewCircuitBreaker(infra.DefaultBreakerConfig()),
		Semaphore:      make(chan struct{}, MaxConcurrentRequests),
		UserAgent:      "azure-devops-mcp-server/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CircuitBreakerStats returns the current circuit breaker state
func (c *Client) CircuitBreakerStats() infra.CircuitBreakerStats {
	return c.CircuitBreaker.Stats()
}

// AcquireSlot blocks until a request slot is available or context is canceled
func (c *Client) AcquireSlot(ctx context.Context) error {
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for handshake slot: %w", ctx.Err())
	}
}

// ReleaseSlot releases a request slot
func (c *Client) ReleaseSlot() {
	<-c.Semaphore
}

// Probe issues GET {orgURL}/_apis/connectionData with the given Authorization
// header value. Any non-200 status, undecodable body or transport error is a
// failed handshake. Failures are counted by the circuit breaker; once it opens,
// Probe returns *infra.ErrCircuitOpen without contacting the server. A handshake
// cut short by its caller's context is not counted as a failure.
func (c *Client) Probe(ctx context.Context, orgURL, authorization string) (*ConnectionData, error) {
	if err := c.AcquireSlot(ctx); err != nil {
		return nil, err
	}
	defer c.ReleaseSlot()

	if err := c.CircuitBreaker.Allow(); err != nil {
		return nil, err
	}
	// settled is set once the org's answer (or transport failure) is recorded.
	settled := false
	defer func() {
		if !settled {
			c.CircuitBreaker.Abort()
		}
	}()
	fail := func() {
		settled = true
		c.CircuitBreaker.RecordFailure()
	}

	endpoint := strings.TrimRight(orgURL, "/") + ConnectionDataPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authorization)
	// Without this header an invalid token yields a 302 to the sign-in page
	req.Header.Set("X-TFS-FedAuthRedirect", "Suppress")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// A canceled caller says nothing about the org.
		if ctx.Err() == nil {
			fail()
		}
		c.Logger.Warn("Handshake request failed", "org", orgURL, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readAndClose(resp)
	if err != nil {
		if ctx.Err() == nil {
			fail()
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		fail()
		return nil, &HandshakeError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), maxErrorBody)}
	}

	data := &ConnectionData{}
	if err := json.Unmarshal(body, data); err != nil {
		fail()
		return nil, fmt.Errorf("failed to decode connection data: %w", err)
	}

	settled = true
	c.CircuitBreaker.RecordSuccess()
	c.Logger.Debug("Handshake succeeded",
		"org", orgURL,
		"user", data.AuthenticatedUser.ProviderDisplayName,
		"duration_ms", time.Since(start).Milliseconds())

	return data, nil
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		// The handshake must see redirects (sign-in pages) as failures
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
