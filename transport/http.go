package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/querycache/codec"
)

const (
	defaultTimeout = 30 * time.Second
	defaultMaxBody = 16 << 20
)

// HTTPOptions configures HTTP. Only BaseURL is required.
type HTTPOptions struct {
	BaseURL string      // e.g. "http://localhost:8080"
	Client  *http.Client // nil => client with 30s timeout

	// BodyCodec encodes Request.Body; nil => codec.JSON[any].
	BodyCodec codec.Codec[any]
	// Limiter, when set, is waited on before every call.
	Limiter *rate.Limiter
	// MaxBody caps how much of a response is read; 0 => 16 MiB.
	MaxBody int64
	// Header is added to every request (e.g. a session cookie or bearer token).
	Header http.Header
}

// HTTP is a Transport over net/http.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	body    codec.Codec[any]
	limiter *rate.Limiter
	maxBody int64
	header  http.Header
}

var _ Transport = (*HTTP)(nil)

func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("transport: base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base URL: %w", err)
	}
	h := &HTTP{
		base:    base,
		client:  opts.Client,
		body:    opts.BodyCodec,
		limiter: opts.Limiter,
		maxBody: opts.MaxBody,
		header:  opts.Header.Clone(),
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: defaultTimeout}
	}
	if h.body == nil {
		h.body = codec.JSON[any]{}
	}
	if h.maxBody <= 0 {
		h.maxBody = defaultMaxBody
	}
	return h, nil
}

func (h *HTTP) Call(ctx context.Context, req Request) (Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return Response{}, err
		}
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	u, err := h.resolve(req)
	if err != nil {
		return Response{}, err
	}

	var body io.Reader
	if req.Body != nil {
		b, err := h.body.Encode(req.Body)
		if err != nil {
			return Response{}, fmt.Errorf("transport: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return Response{}, err
	}
	for k, vs := range h.header {
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}
	if ct := codec.ContentTypeOf(h.body); ct != "" {
		if req.Body != nil {
			hr.Header.Set("Content-Type", ct)
		}
		hr.Header.Set("Accept", ct)
	}
	hr.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := h.client.Do(hr)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody))
	if err != nil {
		return Response{}, fmt.Errorf("transport: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &StatusError{Method: method, URL: req.URL, Status: resp.StatusCode, Body: data}
	}
	return Response{
		Status:      resp.StatusCode,
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// resolve joins req.URL onto the base and encodes Params (sorted by key).
func (h *HTTP) resolve(req Request) (string, error) {
	ref, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("transport: parse url %q: %w", req.URL, err)
	}
	u := h.base.ResolveReference(ref)
	if len(req.Params) > 0 {
		q := u.Query()
		for k, v := range req.Params {
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
