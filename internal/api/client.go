// Package api provides the HTTP client for the chat API.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

// DefaultTimeout bounds a whole request, including the streamed body
const DefaultTimeout = 300 * time.Second

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// ChatClient talks to the chat API over HTTP
type ChatClient struct {
	httpClient tls_client.HttpClient
	baseURL    string
	timeout    time.Duration
	sessionID  string
	logger     zerolog.Logger
	mu         sync.RWMutex
}

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ChatClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = httpClient
	}
}

// WithSessionID sets the session id sent with every request
func WithSessionID(id string) ClientOption {
	return func(c *ChatClient) {
		c.sessionID = id
	}
}

// WithLogger sets the logger used for stream diagnostics
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *ChatClient) {
		c.logger = logger
	}
}

// NewClient creates a new ChatClient
func NewClient(opts ...ClientOption) (*ChatClient, error) {
	client := &ChatClient{
		baseURL: models.DefaultServerURL,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the API base URL
func (c *ChatClient) BaseURL() string {
	return c.baseURL
}

// SessionID returns the session id sent with requests
func (c *ChatClient) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// SetSessionID changes the session id, e.g. after the conversation is cleared
func (c *ChatClient) SetSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// GetHTTPClient returns the underlying HTTP client
func (c *ChatClient) GetHTTPClient() tls_client.HttpClient {
	return c.httpClient
}

func (c *ChatClient) endpoint(path string) string {
	return c.baseURL + path
}

func (c *ChatClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "tobchat/"+models.ChatbotVersion)
	if id := c.SessionID(); id != "" {
		req.Header.Set(models.SessionHeader, id)
	}
}

// HealthStatus is the decoded /health response
type HealthStatus struct {
	Status   string
	Name     string
	Version  string
	Provider string
}

// Health checks that the chat API is reachable
func (c *ChatClient) Health(ctx context.Context) (*HealthStatus, error) {
	endpoint := c.endpoint(models.HealthPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("health check", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, http.StatusText(resp.StatusCode), readErrorBody(resp.Body))
	}
	if resp.Body == nil {
		return nil, apierrors.ErrEmptyBody
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("read health", endpoint, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("invalid health response", string(body))
	}

	fields := gjson.GetManyBytes(body, "status", "name", "version", "provider")
	return &HealthStatus{
		Status:   fields[0].String(),
		Name:     fields[1].String(),
		Version:  fields[2].String(),
		Provider: fields[3].String(),
	}, nil
}

// readErrorBody reads at most maxErrorBody bytes of a failed response
func readErrorBody(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return string(data)
}
