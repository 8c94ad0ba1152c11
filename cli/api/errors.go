package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/tinkerfai/tinkerfai/engine/session"
)

const (
	MsgNetwork          = "Network error. Please check your connection and try again."
	MsgSessionExpired   = "Session expired. Please log in again."
	MsgNotAuthenticated = "No access token found. Please log in again."
	msgFallback         = "An error occurred"
)

var (
	// ErrNetwork is matched by every transport failure.
	ErrNetwork = errors.New("network error")
	// ErrSessionExpired is matched by 401 responses. It is session.ErrExpired.
	ErrSessionExpired = session.ErrExpired
	// ErrNotAuthenticated is returned before sending an authenticated request without a token.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRequestFailed is matched by every non-2xx or unsuccessful envelope response.
	ErrRequestFailed = errors.New("request failed")
)

// NetworkError is a transport failure. Its message is fit for display.
type NetworkError struct {
	Operation string
	Cause     error
}

func (e *NetworkError) Error() string { return MsgNetwork }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func (e *NetworkError) Unwrap() error { return e.Cause }

// SessionExpiredError is returned after a 401 reset the local session.
type SessionExpiredError struct {
	Operation string
}

func (e *SessionExpiredError) Error() string { return MsgSessionExpired }

func (e *SessionExpiredError) Is(target error) bool { return target == ErrSessionExpired }

// NotAuthenticatedError is returned when no access token is stored.
type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string { return MsgNotAuthenticated }

func (e *NotAuthenticatedError) Is(target error) bool { return target == ErrNotAuthenticated }

// APIError carries the server's message unchanged.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Is(target error) bool { return target == ErrRequestFailed }

// String includes the operation and status for logs.
func (e *APIError) String() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Operation, e.Message, e.StatusCode)
}

// errorMessage extracts detail, then message, then the status text.
// FastAPI validation errors carry a list under detail; the first msg is used.
func errorMessage(resp *resty.Response) string {
	body := resp.Body()
	if gjson.ValidBytes(body) {
		detail := gjson.GetBytes(body, "detail")
		switch {
		case detail.IsArray():
			if msg := strings.TrimSpace(detail.Get("0.msg").String()); msg != "" {
				return msg
			}
		case detail.Type == gjson.String:
			if msg := strings.TrimSpace(detail.String()); msg != "" {
				return msg
			}
		}
		if msg := strings.TrimSpace(gjson.GetBytes(body, "message").String()); msg != "" {
			return msg
		}
	}
	if text := http.StatusText(resp.StatusCode()); text != "" {
		return text
	}
	return msgFallback
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	lower := strings.ToLower(err.Error())
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"no route to host",
		"network unreachable",
		"no such host",
		"eof",
	} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// transportError classifies a failed round trip. Cancellation is returned as is
// so callers can drop the result.
func transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, context.Cause(ctx))
	}
	if errors.Is(err, context.DeadlineExceeded) || isNetworkError(err) {
		return &NetworkError{Operation: op, Cause: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
