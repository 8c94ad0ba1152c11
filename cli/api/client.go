package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/pkg/config"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// Envelope is the common shape of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *Envelope) envelope() *Envelope { return e }

type enveloped interface {
	envelope() *Envelope
}

// Client talks to the learning platform API. Authenticated calls read the
// bearer token from the injected session; a 401 resets that session.
type Client struct {
	http      *resty.Client
	transfer  *resty.Client
	session   *session.Session
	onExpired func(context.Context)
}

type Option func(*Client)

// WithSessionExpiredHook registers fn to run after a 401 reset the session.
func WithSessionExpiredHook(fn func(context.Context)) Option {
	return func(c *Client) { c.onExpired = fn }
}

// WithDebug enables resty request tracing.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.http.SetDebug(debug)
		c.transfer.SetDebug(debug)
	}
}

// New builds a client for cfg. There is no automatic retry.
func New(cfg config.APIConfig, sess *session.Session, opts ...Option) (*Client, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "tinkerfai-cli"
	}
	c := &Client{
		http:     buildHTTPClient(cfg.BaseURL, cfg.Timeout, userAgent),
		transfer: buildHTTPClient("", cfg.UploadTimeout, userAgent),
		session:  sess,
	}
	c.http.SetHeader("Content-Type", "application/json").SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base URL must be absolute with a host, got: %s", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https, got: %s", u.Scheme)
	}
	return nil
}

func buildHTTPClient(baseURL string, timeout time.Duration, userAgent string) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0)
	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(HeaderRequestID) == "" {
			r.SetHeader(HeaderRequestID, uuid.NewString())
		}
		return nil
	})
	return client
}

// Session returns the session the client reads credentials from.
func (c *Client) Session() *session.Session {
	return c.session
}

type call struct {
	op     string
	method string
	path   string
	// auth sends the bearer token and resets the session on 401.
	auth bool
	// expireOn401 resets the session on 401 for calls that carry the token in the body.
	expireOn401 bool
	body        any
	result      any
}

func (c *Client) do(ctx context.Context, in call) error {
	log := logger.FromContext(ctx)
	req := c.http.R().SetContext(ctx)
	if in.auth {
		token, ok := c.session.AccessToken()
		if !ok {
			return &NotAuthenticatedError{}
		}
		req.SetAuthToken(token)
	}
	if in.body != nil {
		req.SetBody(in.body)
	}

	resp, err := req.Execute(in.method, in.path)
	if err != nil {
		return transportError(ctx, in.op, err)
	}
	// a response that lands after the view went away is dropped
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", in.op, context.Cause(ctx))
	}
	log.Debug("API request completed",
		"op", in.op,
		"method", in.method,
		"path", in.path,
		"status", resp.StatusCode(),
		"request_id", resp.Request.Header.Get(HeaderRequestID),
		"duration", resp.Time(),
	)

	if resp.StatusCode() == http.StatusUnauthorized && (in.auth || in.expireOn401) {
		return c.expire(ctx, in.op)
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{Operation: in.op, StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
	}
	if in.result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), in.result); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", in.op, err)
	}
	if env, ok := in.result.(enveloped); ok && !env.envelope().Success {
		msg := env.envelope().Message
		if msg == "" {
			msg = msgFallback
		}
		return &APIError{Operation: in.op, StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}

// expire clears every session key and runs the navigation hook.
func (c *Client) expire(ctx context.Context, op string) error {
	log := logger.FromContext(ctx)
	log.Warn("Session expired", "op", op)
	if err := c.session.Reset(); err != nil {
		log.Error("Failed to clear session", "error", err)
	}
	if c.onExpired != nil {
		c.onExpired(ctx)
	}
	return &SessionExpiredError{Operation: op}
}
