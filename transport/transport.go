// Package transport is the narrow contract the cache uses to reach the backend,
// plus a net/http implementation.
package transport

import (
	"context"
	"fmt"
)

// Request is one backend call. Params become the query string; Body, when
// non-nil, is encoded by the transport's codec.
type Request struct {
	Method string
	URL    string
	Params map[string]any
	Body   any
}

// Response carries the raw payload; decoding is the caller's concern.
type Response struct {
	Status      int
	Data        []byte
	ContentType string
}

// Transport performs a call. It returns an error on network failure and on
// non-2xx statuses (*StatusError).
type Transport interface {
	Call(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, req Request) (Response, error)

func (f Func) Call(ctx context.Context, req Request) (Response, error) { return f(ctx, req) }

// StatusError is a completed call with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, truncate(e.Body, 256))
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
