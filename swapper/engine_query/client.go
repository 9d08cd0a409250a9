package enginequery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "engine").Logger()
}

// Client speaks to a remote trade-compute service over HTTP JSON with
// failover support. It maintains a primary endpoint and can automatically
// switch to backup endpoints when the primary is unavailable.
type Client struct {
	httpClient     *http.Client
	primaryURL     string
	backupURLs     []string
	currentURL     string
	mu             sync.RWMutex
	healthChecker  *healthChecker
	failoverConfig FailoverConfig
}

// FailoverConfig controls failover behavior.
type FailoverConfig struct {
	// MaxRetries is the number of times to retry a failed request on the current endpoint
	MaxRetries int
	// RetryDelay is the initial delay between retries (doubles with each retry)
	RetryDelay time.Duration
	// HealthCheckInterval is how often to check if the primary endpoint is back up
	HealthCheckInterval time.Duration
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// DefaultFailoverConfig returns sensible defaults for failover behavior.
func DefaultFailoverConfig() FailoverConfig {
	return FailoverConfig{
		MaxRetries:          2,
		RetryDelay:          500 * time.Millisecond,
		HealthCheckInterval: 30 * time.Second,
		Timeout:             10 * time.Second,
	}
}

// healthChecker periodically checks if the primary endpoint is healthy.
type healthChecker struct {
	client    *Client
	stopCh    chan struct{}
	stoppedCh chan struct{}
	isRunning bool
	mu        sync.Mutex
}

// NewClient creates a Client with a single endpoint.
func NewClient(apiURL string) (*Client, error) {
	return NewClientWithFailover(apiURL, nil, DefaultFailoverConfig())
}

// NewClientWithFailover creates a Client with failover support.
func NewClientWithFailover(primaryURL string, backupURLs []string, config FailoverConfig) (*Client, error) {
	if _, err := url.Parse(primaryURL); err != nil {
		return nil, fmt.Errorf("parse primary engine URL %q: %w", primaryURL, err)
	}

	validBackups := make([]string, 0, len(backupURLs))
	for _, u := range backupURLs {
		if _, err := url.Parse(u); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("Invalid backup URL, skipping")
			continue
		}
		validBackups = append(validBackups, u)
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		primaryURL:     primaryURL,
		backupURLs:     validBackups,
		currentURL:     primaryURL,
		failoverConfig: config,
	}

	if len(validBackups) > 0 {
		client.startHealthChecker()
	}

	log.Info().
		Str("primary", primaryURL).
		Int("backups", len(validBackups)).
		Msg("Engine client initialized")
	return client, nil
}

func (c *Client) startHealthChecker() {
	c.healthChecker = &healthChecker{
		client:    c,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	c.healthChecker.start()
}

func (h *healthChecker) start() {
	h.mu.Lock()
	if h.isRunning {
		h.mu.Unlock()
		return
	}
	h.isRunning = true
	h.mu.Unlock()

	go func() {
		defer close(h.stoppedCh)
		ticker := time.NewTicker(h.client.failoverConfig.HealthCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				h.checkAndRestore()
			}
		}
	}()
}

func (h *healthChecker) stop() {
	h.mu.Lock()
	if !h.isRunning {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stopCh)
	<-h.stoppedCh
}

// checkAndRestore checks if the primary endpoint is healthy and restores it if so.
func (h *healthChecker) checkAndRestore() {
	h.client.mu.RLock()
	currentURL := h.client.currentURL
	primaryURL := h.client.primaryURL
	h.client.mu.RUnlock()

	if currentURL == primaryURL {
		return
	}

	if h.client.isEndpointHealthy(primaryURL) {
		h.client.mu.Lock()
		h.client.currentURL = primaryURL
		h.client.mu.Unlock()
		log.Info().Str("url", primaryURL).Msg("Restored primary endpoint")
	}
}

// isEndpointHealthy checks if an endpoint is responding.
func (c *Client) isEndpointHealthy(endpoint string) bool {
	healthURL := fmt.Sprintf("%s/health", endpoint)
	resp, err := c.httpClient.Get(healthURL)
	if err != nil {
		log.Debug().Err(err).Str("url", healthURL).Msg("Health check failed")
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	log.Debug().Str("url", healthURL).Int("status", resp.StatusCode).Msg("Health check response")
	return resp.StatusCode == http.StatusOK
}

func (c *Client) getCurrentURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentURL
}

// failover switches to the next available backup endpoint.
func (c *Client) failover() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	allURLs := append([]string{c.primaryURL}, c.backupURLs...)
	currentIdx := -1
	for i, u := range allURLs {
		if u == c.currentURL {
			currentIdx = i
			break
		}
	}

	for i := 1; i <= len(allURLs); i++ {
		nextIdx := (currentIdx + i) % len(allURLs)
		nextURL := allURLs[nextIdx]

		if nextURL == c.currentURL {
			continue
		}

		if c.isEndpointHealthy(nextURL) {
			c.currentURL = nextURL
			log.Info().Str("url", nextURL).Msg("Failover to endpoint")
			return true
		}
	}

	log.Warn().Str("url", c.currentURL).Msg("All endpoints unhealthy, staying on current")
	return false
}

// Close stops the health checker and cleans up resources.
func (c *Client) Close() {
	if c.healthChecker != nil {
		c.healthChecker.stop()
	}
}

// envelope is the remote engine's response wrapper. Data carries the payload
// on success; Errors carries engine-side failures.
type envelope struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []engineError   `json:"errors,omitempty"`
}

type engineError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// post sends one request with retry and failover, decodes the envelope and
// unmarshals Data into out. A response with neither data nor errors is an
// unknown engine error.
func (c *Client) post(ctx context.Context, path string, request, out any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	raw, err := c.doRequestWithFailover(ctx, path, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode engine response: %w", err)
	}
	if len(env.Errors) > 0 {
		messages := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			if e.Code != 0 {
				messages[i] = fmt.Sprintf("%d: %s", e.Code, e.Message)
			} else {
				messages[i] = e.Message
			}
		}
		return fmt.Errorf("engine error: %s", strings.Join(messages, "; "))
	}
	if env.Data == nil {
		return errors.New("unknown engine error")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode engine payload: %w", err)
	}
	return nil
}

// doRequestWithFailover performs an HTTP POST request with retry and failover logic.
func (c *Client) doRequestWithFailover(ctx context.Context, path string, body []byte) ([]byte, error) {
	var lastErr error
	retryDelay := c.failoverConfig.RetryDelay

	for attempt := 0; attempt <= c.failoverConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}

		raw, err := c.postOnce(ctx, c.getCurrentURL()+path, body)
		if err != nil {
			lastErr = err
			continue
		}
		return raw, nil
	}

	if len(c.backupURLs) > 0 && c.failover() {
		raw, err := c.postOnce(ctx, c.getCurrentURL()+path, body)
		if err != nil {
			return nil, fmt.Errorf("failover request failed: %w (original: %w)", err, lastErr)
		}
		return raw, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.failoverConfig.MaxRetries+1, lastErr)
}

func (c *Client) postOnce(ctx context.Context, fullURL string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
