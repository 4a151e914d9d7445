package homeclip

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for the three failure classes of the remote store.
var (
	ErrNetwork     = errors.New("network error")
	ErrHTTP        = errors.New("http error")
	ErrApplication = errors.New("application error")
)

// NetworkError reports a request that failed before any response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Op, e.StatusCode)
}

func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// NotFound reports whether the server answered 404.
func (e *HTTPError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// ApplicationError reports a 2xx response whose payload signals failure.
type ApplicationError struct {
	Op      string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *ApplicationError) Is(target error) bool { return target == ErrApplication }

// Describe returns the short, user-facing reason for err, suitable for a
// status line ("Upload failed: <reason>").
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := strings.TrimSpace(httpErr.Message); msg != "" {
			return msg
		}
		if text := http.StatusText(httpErr.StatusCode); text != "" {
			return strings.ToLower(text)
		}
		return fmt.Sprintf("status %d", httpErr.StatusCode)
	}
	if errors.Is(err, ErrNetwork) {
		return "server unreachable"
	}
	return err.Error()
}
