// Package proxy forwards signals to the runtime API of deployed pipelines.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/operator"
)

// DefaultURLTemplate addresses the in-cluster service of a deployment.
const DefaultURLTemplate = "http://@{name}.@{namespace}.svc.cluster.local:8080/api/signals"

const (
	placeholderName      = "@{name}"
	placeholderNamespace = "@{namespace}"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config configures the signal proxy.
type Config struct {
	// URLTemplate with @{name} and @{namespace} placeholders.
	URLTemplate string

	// Namespace substituted when the resource has none.
	Namespace string

	// Timeout for a single delivery (default: 10s).
	Timeout time.Duration

	// RateLimit signals per second across all pipelines (default: 10).
	RateLimit float64

	// RateBurst maximum burst size (default: 5).
	RateBurst int

	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper
}

// =============================================================================
// PROXY
// =============================================================================

// Proxy implements operator.SignalProxy over HTTP. Each signal is delivered
// at most once; failures are reported, never retried.
type Proxy struct {
	config      Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// New creates a Proxy, filling unset config with defaults.
func New(config Config) *Proxy {
	if config.URLTemplate == "" {
		config.URLTemplate = DefaultURLTemplate
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 5
	}

	return &Proxy{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	}
}

// URL returns the signal endpoint of server.
func (p *Proxy) URL(server *operator.DebeziumServer) string {
	namespace := server.Namespace
	if namespace == "" {
		namespace = p.config.Namespace
	}
	return strings.NewReplacer(
		placeholderName, server.Name,
		placeholderNamespace, namespace,
	).Replace(p.config.URLTemplate)
}

// Send posts signal to the deployment and returns once it is accepted.
func (p *Proxy) Send(ctx context.Context, server *operator.DebeziumServer, signal core.Signal) error {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL(server), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// HTTPError is a non-2xx answer from the pipeline runtime API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus exposes the upstream status code.
func (e *HTTPError) HTTPStatus() int { return e.StatusCode }

var _ operator.SignalProxy = (*Proxy)(nil)
