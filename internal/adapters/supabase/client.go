package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

var (
	ErrURLRequired = errors.New("supabase: project url is required")
	ErrKeyRequired = errors.New("supabase: api key is required")
)

// Config points the client at a Supabase project.
type Config struct {
	URL string
	// AnonKey is sent as the apikey header and as the bearer token until a
	// user signs in.
	AnonKey string
	// ServiceKey, when set, replaces AnonKey and bypasses row level security.
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("supabase error %d: %s", e.Status, e.Body)
}

// Client issues REST calls against the auth, rest and storage endpoints of a
// project. One client is shared by every adapter so table calls carry the
// signed-in user's token.
type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	http    *http.Client
	logger  interfaces.Logger

	mu          sync.RWMutex
	accessToken string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, ErrURLRequired
	}
	key := cfg.ServiceKey
	if key == "" {
		key = cfg.AnonKey
	}
	if key == "" {
		return nil, ErrKeyRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "media"
	}
	c := &Client{
		baseURL: base,
		apiKey:  key,
		bucket:  bucket,
		http:    &http.Client{Timeout: timeout},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.apiKey
}

type request struct {
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    any
	raw     io.Reader
	token   string
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	body := req.raw
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return err
	}
	token := req.token
	if token == "" {
		token = c.bearer()
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("supabase.request.failed", "method", req.method, "path", req.path, "error", err)
		return fmt.Errorf("supabase %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data), Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls the human readable message out of the error shapes the
// auth, rest and storage services return.
func errorMessage(body []byte) string {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, candidate := range []string{payload.ErrorDescription, payload.Msg, payload.Message, payload.Error} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func eq(value string) string {
	return "eq." + value
}

func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
